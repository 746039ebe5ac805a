package wiki

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const (
	// BaseURL for English Wikipedia article pages
	BaseURL = "https://en.wikipedia.org/wiki"

	// UserAgent for requests
	UserAgent = "footyguess/1.0 (badge lookup)"

	// MinRequestInterval to stay polite with the upstream
	MinRequestInterval = 1 * time.Second
)

// Client scrapes a club's article page for its crest image.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a scraper against baseURL (empty means Wikipedia).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(MinRequestInterval), 1),
	}
}

// WithHTTPClient swaps the HTTP client and disables request spacing (tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

// Name identifies the source in logs and metrics.
func (c *Client) Name() string {
	return "wiki"
}

// FindBadge returns the crest URL for teamName, or "" when the page has none.
func (c *Client) FindBadge(ctx context.Context, teamName string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for wiki turn: %w", err)
	}

	page := strings.ReplaceAll(strings.TrimSpace(teamName), " ", "_")
	pageURL := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(page))

	html, err := c.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}

	doc, err := ParseHTML(html)
	if err != nil {
		return "", err
	}
	return ExtractBadge(doc, pageURL), nil
}

func (c *Client) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("wiki request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wiki page %s returned %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading page: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("empty HTML content returned")
	}
	return string(body), nil
}

// ParseHTML converts raw HTML to a goquery Document for parsing
func ParseHTML(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// ExtractBadge pulls a crest URL out of an article page.
// Relative and protocol-relative sources are resolved against pageURL.
func ExtractBadge(doc *goquery.Document, pageURL string) string {
	// Strategy 1: the infobox image, which is the crest on club articles
	src, _ := doc.Find("table.infobox img").First().Attr("src")

	// Strategy 2: the OpenGraph preview image
	if src == "" {
		src, _ = doc.Find(`meta[property="og:image"]`).First().Attr("content")
	}

	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	return absolute(src, pageURL)
}

func absolute(src, pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}
