package radiobrowser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is one of the public radio-browser mirrors.
	DefaultBaseURL = "https://de1.api.radio-browser.info"

	DefaultLimit = 10
	MaxLimit     = 100

	defaultTimeout = 15 * time.Second
)

// SearchParams narrows a station search. Empty fields are not sent.
type SearchParams struct {
	Name    string
	Country string
	Tag     string
	Limit   int
}

// Client queries the station directory.
type Client struct {
	BaseURL   string
	UserAgent string

	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

// NewClient returns a client for baseURL. A zero requestsPerSecond disables
// rate limiting.
func NewClient(baseURL, userAgent string, timeout time.Duration, requestsPerSecond float64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		UserAgent:  userAgent,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if requestsPerSecond > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}

	return c
}

// Search returns the stations matching p. No matches is an empty slice, not
// an error.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]Station, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	q := url.Values{}
	q.Set("name", p.Name)
	q.Set("limit", strconv.Itoa(limit))
	if p.Country != "" {
		q.Set("country", p.Country)
	}
	if p.Tag != "" {
		q.Set("tag", p.Tag)
	}

	var wire []wireStation
	if err := c.getJSON(ctx, "/json/stations/search", q, &wire); err != nil {
		return nil, err
	}

	stations := make([]Station, 0, len(wire))
	for _, w := range wire {
		stations = append(stations, w.station())
	}

	return stations, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("directory returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode directory response: %w", err)
	}

	return nil
}
