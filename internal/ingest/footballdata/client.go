package footballdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// BaseURL is the football-data.org v4 API.
	BaseURL = "https://api.football-data.org/v4"

	// StatusFinished marks a completed match.
	StatusFinished = "FINISHED"
)

// Client handles football-data.org requests. Every call carries the X-Auth-Token header.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a football-data.org client.
func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// CompetitionMatches returns every match of a competition season.
// competition is the short code (PL, PD, SA, BL1, FL1); season is the starting year.
func (c *Client) CompetitionMatches(ctx context.Context, competition, season string) ([]Match, error) {
	body, err := c.CompetitionMatchesRaw(ctx, competition, season)
	if err != nil {
		return nil, err
	}

	var resp matchesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding matches: %w", err)
	}
	return resp.Matches, nil
}

// CompetitionMatchesRaw returns the undecoded matches payload for the CORS relay.
func (c *Client) CompetitionMatchesRaw(ctx context.Context, competition, season string) ([]byte, error) {
	url := fmt.Sprintf("%s/competitions/%s/matches?season=%s", c.baseURL, competition, season)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("football-data request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("football-data.org API returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
