// Package nhl provides a client for the public NHL APIs: the game-center
// API at api-web.nhle.com and the stats REST API at api.nhle.com.
package nhl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultWebBaseURL is the game-center API base URL.
	DefaultWebBaseURL = "https://api-web.nhle.com/v1"

	// DefaultStatsBaseURL is the stats REST API base URL.
	DefaultStatsBaseURL = "https://api.nhle.com/stats/rest/en"

	userAgent = "Mozilla/5.0 (compatible; Rinkside/1.0)"

	defaultRateLimit = 10.0 // requests per second
	defaultBurst     = 5
)

// APIError represents a non-2xx response from the NHL API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nhl api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether the upstream answered 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Client is an NHL API client.
type Client struct {
	webBaseURL   string
	statsBaseURL string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *slog.Logger
	now          func() time.Time
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithWebBaseURL sets a custom game-center API base URL.
func WithWebBaseURL(url string) ClientOption {
	return func(c *Client) { c.webBaseURL = url }
}

// WithStatsBaseURL sets a custom stats REST API base URL.
func WithStatsBaseURL(url string) ClientOption {
	return func(c *Client) { c.statsBaseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = client }
}

// WithRateLimit sets custom rate limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithClock sets the time source used for season derivation.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient creates a new NHL API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		webBaseURL:   DefaultWebBaseURL,
		statsBaseURL: DefaultStatsBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest performs a rate-limited GET against a fully assembled URL.
func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}
	return body, nil
}

// getWeb performs a GET against the game-center API.
func (c *Client) getWeb(ctx context.Context, path string, result any) error {
	body, err := c.doRequest(ctx, c.webBaseURL+path)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// getWebRaw performs a GET against the game-center API and returns the raw
// body for passthrough routes.
func (c *Client) getWebRaw(ctx context.Context, path string) (json.RawMessage, error) {
	body, err := c.doRequest(ctx, c.webBaseURL+path)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// getStats performs a GET against the stats REST API.
func (c *Client) getStats(ctx context.Context, path string, query url.Values, result any) error {
	fullURL := c.statsBaseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	body, err := c.doRequest(ctx, fullURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Boxscore returns the raw boxscore for a game.
func (c *Client) Boxscore(ctx context.Context, gamePk string) (json.RawMessage, error) {
	return c.getWebRaw(ctx, "/gamecenter/"+url.PathEscape(gamePk)+"/boxscore")
}

// ScoresNow returns the raw league-wide live scores.
func (c *Client) ScoresNow(ctx context.Context) (json.RawMessage, error) {
	return c.getWebRaw(ctx, "/score/now")
}

// StandingsNow returns the raw current standings.
func (c *Client) StandingsNow(ctx context.Context) (json.RawMessage, error) {
	return c.getWebRaw(ctx, "/standings/now")
}
