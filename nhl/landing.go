package nhl

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
)

// GamePkRe is the accepted shape of a gamePk parameter.
var GamePkRe = regexp.MustCompile(`^\d+$`)

// GameLanding is the reshaped game-center landing payload.
type GameLanding struct {
	ID           int64         `json:"id"`
	GamePk       int64         `json:"gamePk"`
	StartTimeUTC string        `json:"startTimeUTC"`
	GameDate     string        `json:"gameDate"`
	GameState    string        `json:"gameState"`
	Venue        LocalizedName `json:"venue"`
	HomeTeam     GameTeam      `json:"homeTeam"`
	AwayTeam     GameTeam      `json:"awayTeam"`

	// Upstream sections forwarded untouched.
	Summary          json.RawMessage `json:"summary,omitempty"`
	Clock            json.RawMessage `json:"clock,omitempty"`
	PeriodDescriptor json.RawMessage `json:"periodDescriptor,omitempty"`
}

type upstreamLanding struct {
	ID               int64           `json:"id"`
	StartTimeUTC     string          `json:"startTimeUTC"`
	GameDate         string          `json:"gameDate"`
	GameState        string          `json:"gameState"`
	Venue            *LocalizedName  `json:"venue"`
	HomeTeam         upstreamTeam    `json:"homeTeam"`
	AwayTeam         upstreamTeam    `json:"awayTeam"`
	Summary          json.RawMessage `json:"summary"`
	Clock            json.RawMessage `json:"clock"`
	PeriodDescriptor json.RawMessage `json:"periodDescriptor"`
}

// GameLanding fetches and reshapes the game-center landing page for a game.
func (c *Client) GameLanding(ctx context.Context, gamePk string) (*GameLanding, error) {
	var upstream upstreamLanding
	if err := c.getWeb(ctx, "/gamecenter/"+url.PathEscape(gamePk)+"/landing", &upstream); err != nil {
		return nil, err
	}

	landing := &GameLanding{
		ID:               upstream.ID,
		GamePk:           upstream.ID,
		StartTimeUTC:     upstream.StartTimeUTC,
		GameDate:         upstream.GameDate,
		GameState:        upstream.GameState,
		HomeTeam:         reshapeTeam(upstream.HomeTeam),
		AwayTeam:         reshapeTeam(upstream.AwayTeam),
		Summary:          upstream.Summary,
		Clock:            upstream.Clock,
		PeriodDescriptor: upstream.PeriodDescriptor,
	}
	if upstream.Venue != nil {
		landing.Venue = *upstream.Venue
	}
	return landing, nil
}
