package nhl

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
)

// DateRe is the accepted shape of a schedule date. It is a format check
// only: calendar-invalid strings like "2024-13-40" pass and are forwarded
// to the upstream as-is.
var DateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// LocalizedName is the NHL API's localized string wrapper.
type LocalizedName struct {
	Default string `json:"default"`
}

// GameTeam is one side of a game in the reshaped schedule.
type GameTeam struct {
	ID         int           `json:"id"`
	Name       LocalizedName `json:"name"`
	PlaceName  LocalizedName `json:"placeName"`
	CommonName LocalizedName `json:"commonName"`
	Abbrev     string        `json:"abbrev"`
	Score      *int          `json:"score,omitempty"`
}

// Game is a single reshaped schedule entry.
type Game struct {
	ID               int64           `json:"id"`
	GamePk           int64           `json:"gamePk"`
	StartTimeUTC     string          `json:"startTimeUTC"`
	GameDate         string          `json:"gameDate"`
	GameState        string          `json:"gameState"`
	GameOutcome      json.RawMessage `json:"gameOutcome,omitempty"`
	PeriodDescriptor json.RawMessage `json:"periodDescriptor,omitempty"`
	// FinishType is "OT", "SO", or null for regulation / unfinished games.
	FinishType *string       `json:"finishType"`
	Venue      LocalizedName `json:"venue"`
	HomeTeam   GameTeam      `json:"homeTeam"`
	AwayTeam   GameTeam      `json:"awayTeam"`
}

// Schedule is the reshaped schedule for a single date.
type Schedule struct {
	Games []Game `json:"games"`
}

type upstreamTeam struct {
	ID         int            `json:"id"`
	CommonName *LocalizedName `json:"commonName"`
	PlaceName  *LocalizedName `json:"placeName"`
	Abbrev     string         `json:"abbrev"`
	Score      *int           `json:"score"`
}

type upstreamGame struct {
	ID               int64           `json:"id"`
	StartTimeUTC     string          `json:"startTimeUTC"`
	GameState        string          `json:"gameState"`
	GameOutcome      json.RawMessage `json:"gameOutcome"`
	PeriodDescriptor json.RawMessage `json:"periodDescriptor"`
	Venue            *LocalizedName  `json:"venue"`
	HomeTeam         upstreamTeam    `json:"homeTeam"`
	AwayTeam         upstreamTeam    `json:"awayTeam"`
}

type upstreamSchedule struct {
	GameWeek []struct {
		Date  string         `json:"date"`
		Games []upstreamGame `json:"games"`
	} `json:"gameWeek"`
}

// ScheduleByDate fetches the schedule for a YYYY-MM-DD date and reshapes
// the upstream gameWeek structure into a flat game list for that date.
func (c *Client) ScheduleByDate(ctx context.Context, date string) (*Schedule, error) {
	var upstream upstreamSchedule
	if err := c.getWeb(ctx, "/schedule/"+date, &upstream); err != nil {
		return nil, err
	}

	schedule := &Schedule{Games: []Game{}}
	for _, week := range upstream.GameWeek {
		if week.Date != date {
			continue
		}
		for _, game := range week.Games {
			schedule.Games = append(schedule.Games, reshapeGame(game))
		}
	}
	return schedule, nil
}

func reshapeGame(game upstreamGame) Game {
	out := Game{
		ID:               game.ID,
		GamePk:           game.ID,
		StartTimeUTC:     game.StartTimeUTC,
		GameDate:         game.StartTimeUTC,
		GameState:        game.GameState,
		GameOutcome:      game.GameOutcome,
		PeriodDescriptor: game.PeriodDescriptor,
		FinishType:       finishType(game.GameOutcome, game.PeriodDescriptor),
		HomeTeam:         reshapeTeam(game.HomeTeam),
		AwayTeam:         reshapeTeam(game.AwayTeam),
	}
	if out.GameState == "" {
		out.GameState = "UNKNOWN"
	}
	if game.Venue != nil {
		out.Venue = *game.Venue
	}
	return out
}

func reshapeTeam(team upstreamTeam) GameTeam {
	out := GameTeam{
		ID:     team.ID,
		Abbrev: team.Abbrev,
		Score:  team.Score,
	}
	if team.CommonName != nil {
		out.Name = *team.CommonName
		out.CommonName = *team.CommonName
	}
	if team.PlaceName != nil {
		out.PlaceName = *team.PlaceName
	}
	return out
}

// finishType derives how a game ended from the outcome's last period type,
// falling back to the period descriptor: shootout, any overtime ("OT",
// "2OT", ...), or nil for regulation and games still in progress.
func finishType(outcome, period json.RawMessage) *string {
	var lastPeriod struct {
		LastPeriodType string `json:"lastPeriodType"`
	}
	var descriptor struct {
		PeriodType string `json:"periodType"`
	}
	if len(outcome) > 0 {
		json.Unmarshal(outcome, &lastPeriod)
	}
	if len(period) > 0 {
		json.Unmarshal(period, &descriptor)
	}

	raw := strings.ToUpper(lastPeriod.LastPeriodType)
	if raw == "" {
		raw = strings.ToUpper(descriptor.PeriodType)
	}

	switch {
	case raw == "SO":
		so := "SO"
		return &so
	case strings.HasPrefix(raw, "OT"):
		ot := "OT"
		return &ot
	default:
		return nil
	}
}
