package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Gamma API base URL.
	DefaultBaseURL = "https://gamma-api.polymarket.com"

	defaultRateLimit = 10.0 // requests per second
	defaultBurst     = 5
)

// Client is a Gamma Events API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
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

// NewClient creates a new Gamma API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MarketBySlug resolves an event slug (e.g. "nhl-bos-tor-2024-01-15") into
// its moneyline market. It returns (nil, nil) when the event does not exist
// or carries no markets: an absent market is an answer, not an error.
func (c *Client) MarketBySlug(ctx context.Context, eventSlug string) (*Market, error) {
	if eventSlug == "" {
		return nil, nil
	}

	event, err := c.eventBySlug(ctx, eventSlug)
	if err != nil {
		return nil, err
	}
	if event == nil || len(event.Markets) == 0 {
		c.logger.Debug("no market for event", "eventSlug", eventSlug)
		return nil, nil
	}

	// Default to the first market; prefer the moneyline when the event
	// carries several (spreads, totals).
	market := &event.Markets[0]
	for i := range event.Markets {
		if event.Markets[i].SportsMarketType == "moneyline" {
			market = &event.Markets[i]
			break
		}
	}
	return buildMarket(event, market), nil
}

// eventBySlug fetches a single event; a 404 means no such event.
func (c *Client) eventBySlug(ctx context.Context, eventSlug string) (*gammaEvent, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	fullURL := c.baseURL + "/events/slug/" + url.PathEscape(eventSlug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gamma api error %d: %s", resp.StatusCode, string(body))
	}

	var event gammaEvent
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &event, nil
}

// buildMarket assembles the resolved market view. The first outcome is the
// away team by Polymarket's sports convention; probabilities are the prices
// renormalized to sum to one, falling back to 50/50 when both are missing.
func buildMarket(event *gammaEvent, market *gammaMarket) *Market {
	prices := market.OutcomePrices()
	tokenIDs := market.ClobTokenIDs()

	awayPrice := priceAt(prices, 0)
	homePrice := priceAt(prices, 1)

	half := decimal.RequireFromString("0.5")
	awayProb, homeProb := half, half
	if total := awayPrice.Add(homePrice); total.IsPositive() {
		awayProb = awayPrice.Div(total)
		homeProb = homePrice.Div(total)
	}

	out := &Market{
		EventSlug:       event.Slug,
		AwayProbability: awayProb,
		HomeProbability: homeProb,
		AwayPrice:       awayPrice,
		HomePrice:       homePrice,
		Volume:          event.Volume.Decimal,
		MarketType:      marketTypeLabel(market.SportsMarketType),
		ConditionID:     market.ConditionID,
		Question:        market.Question,
		Active:          market.Active || event.Active,
		BestBid:         market.BestBid.Ptr(),
		BestAsk:         market.BestAsk.Ptr(),
		LastTradePrice:  market.LastTradePrice.Ptr(),
	}
	if out.EventSlug == "" {
		out.EventSlug = market.Slug
	}
	if out.Question == "" {
		out.Question = event.Title
	}
	if !event.Volume.set {
		out.Volume = market.Volume.Decimal
	}
	if len(tokenIDs) > 0 {
		out.TokenID = tokenIDs[0]
	}
	if len(tokenIDs) > 1 {
		out.HomeTokenID = tokenIDs[1]
	}
	return out
}

func priceAt(prices []string, i int) decimal.Decimal {
	if i >= len(prices) || prices[i] == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(prices[i])
	if err != nil {
		return decimal.Zero
	}
	return d
}

func marketTypeLabel(sportsMarketType string) string {
	if sportsMarketType == "" {
		return "Moneyline"
	}
	// "moneyline" -> "Moneyline"
	return strings.ToUpper(sportsMarketType[:1]) + sportsMarketType[1:]
}
