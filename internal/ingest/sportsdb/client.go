package sportsdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// BaseURL is the free-tier TheSportsDB v1 JSON API.
	BaseURL = "https://www.thesportsdb.com/api/v1/json/3"
)

var (
	// ErrRateLimited is returned when TheSportsDB answers 429.
	ErrRateLimited = errors.New("sportsdb: rate limited")
	// ErrStatus is returned for any other non-2xx answer.
	ErrStatus = errors.New("sportsdb: unexpected status")
)

// Client handles TheSportsDB API requests
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new TheSportsDB client with a custom base URL
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithHTTPClient swaps the underlying HTTP client (tests point it at httptest servers).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// SearchTeams queries searchteams.php for a free-text team name.
// A {"teams": null} answer or a payload without a teams array yields no teams and no error.
func (c *Client) SearchTeams(ctx context.Context, term string) ([]Team, error) {
	params := url.Values{}
	params.Set("t", term)

	var resp teamsResponse
	if err := c.get(ctx, "searchteams.php", params, &resp); err != nil {
		return nil, err
	}
	return resp.Teams, nil
}

// LookupLeague fetches a single league by its TheSportsDB id.
func (c *Client) LookupLeague(ctx context.Context, leagueID string) ([]League, error) {
	params := url.Values{}
	params.Set("id", leagueID)

	var resp leaguesResponse
	if err := c.get(ctx, "lookupleague.php", params, &resp); err != nil {
		return nil, err
	}
	return resp.Leagues, nil
}

// EventsSeason fetches every event of a league season (e.g. "2024-2025").
func (c *Client) EventsSeason(ctx context.Context, leagueID, season string) ([]Event, error) {
	params := url.Values{}
	params.Set("id", leagueID)
	params.Set("s", season)

	var resp eventsResponse
	if err := c.get(ctx, "eventsseason.php", params, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// Raw proxies an arbitrary endpoint and returns the undecoded body.
// Used by the CORS relay, which must not reshape upstream payloads.
func (c *Client) Raw(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	body, err := c.fetch(ctx, c.endpointURL(endpoint, params))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("sportsdb %s: invalid JSON body", endpoint)
	}
	return body, nil
}

func (c *Client) endpointURL(endpoint string, params url.Values) string {
	u := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimPrefix(endpoint, "/"))
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// get fetches endpoint and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	body, err := c.fetch(ctx, c.endpointURL(endpoint, params))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w (body: %s)", endpoint, err, string(body[:min(len(body), 200)]))
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sportsdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	// TheSportsDB serves an HTML error page on some edge failures.
	if len(body) > 0 && body[0] == '<' {
		log.Printf("[sportsdb] HTML body from %s", rawURL)
		return nil, fmt.Errorf("sportsdb returned HTML error page: %s", string(body[:min(len(body), 200)]))
	}

	return body, nil
}
