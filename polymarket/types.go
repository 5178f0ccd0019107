// Package polymarket provides a read-only client for the Polymarket Gamma
// Events API, resolving sports events by slug into a single tradeable
// market view.
package polymarket

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Market is the resolved market view for one event: moneyline prices,
// implied probabilities and the CLOB token IDs needed to trade it.
type Market struct {
	EventSlug       string           `json:"eventSlug"`
	AwayProbability decimal.Decimal  `json:"awayProbability"`
	HomeProbability decimal.Decimal  `json:"homeProbability"`
	AwayPrice       decimal.Decimal  `json:"awayPrice"`
	HomePrice       decimal.Decimal  `json:"homePrice"`
	Volume          decimal.Decimal  `json:"volume"`
	MarketType      string           `json:"marketType"`
	TokenID         string           `json:"tokenId"`
	HomeTokenID     string           `json:"homeTokenId"`
	ConditionID     string           `json:"conditionId"`
	Question        string           `json:"question"`
	Active          bool             `json:"active"`
	BestBid         *decimal.Decimal `json:"bestBid"`
	BestAsk         *decimal.Decimal `json:"bestAsk"`
	LastTradePrice  *decimal.Decimal `json:"lastTradePrice"`
}

// JSONDecimal decodes Gamma's numeric fields, which arrive as either JSON
// numbers or numeric strings.
type JSONDecimal struct {
	decimal.Decimal
	set bool
}

func (j *JSONDecimal) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		j.set = false
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	j.Decimal = d
	j.set = true
	return nil
}

// Ptr returns the value as a pointer, or nil when the field was absent.
func (j JSONDecimal) Ptr() *decimal.Decimal {
	if !j.set {
		return nil
	}
	d := j.Decimal
	return &d
}

type gammaEvent struct {
	ID      string        `json:"id"`
	Slug    string        `json:"slug"`
	Title   string        `json:"title"`
	Active  bool          `json:"active"`
	Volume  JSONDecimal   `json:"volume"`
	Markets []gammaMarket `json:"markets"`
}

type gammaMarket struct {
	ID               string      `json:"id"`
	Question         string      `json:"question"`
	ConditionID      string      `json:"conditionId"`
	Slug             string      `json:"slug"`
	Active           bool        `json:"active"`
	SportsMarketType string      `json:"sportsMarketType"`
	Volume           JSONDecimal `json:"volume"`
	BestBid          JSONDecimal `json:"bestBid"`
	BestAsk          JSONDecimal `json:"bestAsk"`
	LastTradePrice   JSONDecimal `json:"lastTradePrice"`

	// JSON-encoded arrays.
	OutcomesRaw      string `json:"outcomes"`
	OutcomePricesRaw string `json:"outcomePrices"`
	ClobTokenIDsRaw  string `json:"clobTokenIds"`
}

// Outcomes returns the parsed outcome labels.
func (m *gammaMarket) Outcomes() []string {
	return parseStringArray(m.OutcomesRaw)
}

// OutcomePrices returns the parsed outcome prices.
func (m *gammaMarket) OutcomePrices() []string {
	return parseStringArray(m.OutcomePricesRaw)
}

// ClobTokenIDs returns the parsed CLOB token IDs. The field is usually a
// JSON-encoded array but has also been seen comma-separated.
func (m *gammaMarket) ClobTokenIDs() []string {
	if ids := parseStringArray(m.ClobTokenIDsRaw); len(ids) > 0 {
		return ids
	}
	var ids []string
	for _, id := range strings.Split(m.ClobTokenIDsRaw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func parseStringArray(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
