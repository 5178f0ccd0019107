package polymarket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(WithBaseURL(server.URL))
}

func TestMarketBySlug(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events/slug/nhl-bos-tor-2024-01-15", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"slug": "nhl-bos-tor-2024-01-15",
			"title": "Bruins vs. Maple Leafs",
			"active": true,
			"volume": "125000.5",
			"markets": [
				{
					"question": "Will the Bruins beat the Maple Leafs?",
					"conditionId": "0xabc123",
					"active": true,
					"sportsMarketType": "moneyline",
					"outcomes": "[\"Bruins\", \"Maple Leafs\"]",
					"outcomePrices": "[\"0.45\", \"0.55\"]",
					"clobTokenIds": "[\"111\", \"222\"]",
					"bestBid": "0.44",
					"bestAsk": "0.46",
					"lastTradePrice": 0.45
				}
			]
		}`))
	})

	client := newTestClient(t, mux)
	market, err := client.MarketBySlug(context.Background(), "nhl-bos-tor-2024-01-15")
	require.NoError(t, err)
	require.NotNil(t, market)

	assert.Equal(t, "nhl-bos-tor-2024-01-15", market.EventSlug)
	assert.Equal(t, "0.45", market.AwayPrice.String())
	assert.Equal(t, "0.55", market.HomePrice.String())
	assert.True(t, market.AwayProbability.Equal(decimal.RequireFromString("0.45")))
	assert.True(t, market.HomeProbability.Equal(decimal.RequireFromString("0.55")))
	assert.Equal(t, "111", market.TokenID)
	assert.Equal(t, "222", market.HomeTokenID)
	assert.Equal(t, "0xabc123", market.ConditionID)
	assert.Equal(t, "Moneyline", market.MarketType)
	assert.True(t, market.Active)
	require.NotNil(t, market.BestBid)
	assert.Equal(t, "0.44", market.BestBid.String())
	require.NotNil(t, market.LastTradePrice)
	assert.Equal(t, "0.45", market.LastTradePrice.String())
}

func TestMarketBySlugPrefersMoneyline(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events/slug/nhl-edm-van-2024-02-01", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"slug": "nhl-edm-van-2024-02-01",
			"active": true,
			"markets": [
				{"question": "Spread", "sportsMarketType": "spreads", "outcomePrices": "[\"0.5\", \"0.5\"]"},
				{"question": "Moneyline", "sportsMarketType": "moneyline", "outcomePrices": "[\"0.6\", \"0.4\"]"}
			]
		}`))
	})

	client := newTestClient(t, mux)
	market, err := client.MarketBySlug(context.Background(), "nhl-edm-van-2024-02-01")
	require.NoError(t, err)
	require.NotNil(t, market)
	assert.Equal(t, "Moneyline", market.Question)
	assert.Equal(t, "0.6", market.AwayPrice.String())
}

func TestMarketBySlugNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	market, err := client.MarketBySlug(context.Background(), "nhl-xxx-yyy-2024-01-01")
	require.NoError(t, err)
	assert.Nil(t, market)
}

func TestMarketBySlugNoMarketsInEvent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events/slug/empty", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"slug": "empty", "markets": []}`))
	})

	client := newTestClient(t, mux)
	market, err := client.MarketBySlug(context.Background(), "empty")
	require.NoError(t, err)
	assert.Nil(t, market)
}

func TestMarketBySlugMissingPricesFallsBackToEvenOdds(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events/slug/no-prices", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"slug": "no-prices", "markets": [{"question": "Q", "sportsMarketType": "moneyline"}]}`))
	})

	client := newTestClient(t, mux)
	market, err := client.MarketBySlug(context.Background(), "no-prices")
	require.NoError(t, err)
	require.NotNil(t, market)
	assert.Equal(t, "0.5", market.AwayProbability.String())
	assert.Equal(t, "0.5", market.HomeProbability.String())
	assert.Nil(t, market.BestBid)
}

func TestClobTokenIDsCommaSeparated(t *testing.T) {
	m := &gammaMarket{ClobTokenIDsRaw: "111, 222"}
	assert.Equal(t, []string{"111", "222"}, m.ClobTokenIDs())

	m = &gammaMarket{ClobTokenIDsRaw: `["333","444"]`}
	assert.Equal(t, []string{"333", "444"}, m.ClobTokenIDs())
}
