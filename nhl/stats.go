package nhl

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const regularSeasonGameType = 2

// TeamStats is the derived special-teams and scoring summary for a team.
type TeamStats struct {
	TeamID int `json:"teamId"`

	PowerPlayPct           float64 `json:"powerPlayPct"`
	PowerPlayGoals         float64 `json:"powerPlayGoals"`
	PowerPlayOpportunities float64 `json:"powerPlayOpportunities"`

	PenaltyKillPct           float64 `json:"penaltyKillPct"`
	PenaltyKillGoalsAgainst  float64 `json:"penaltyKillGoalsAgainst"`
	PenaltyKillOpportunities float64 `json:"penaltyKillOpportunities"`

	FaceoffWinPct float64 `json:"faceoffWinPct"`

	GoalsForPerGame     float64 `json:"goalsForPerGame"`
	GoalsAgainstPerGame float64 `json:"goalsAgainstPerGame"`

	ShotsForPerGame     float64 `json:"shotsForPerGame"`
	ShotsAgainstPerGame float64 `json:"shotsAgainstPerGame"`

	GoalieSavePct float64 `json:"goalieSavePct"`
}

type statsEnvelope struct {
	Data []map[string]any `json:"data"`
}

// CurrentSeason returns the season identifier (YYYYYYYY) the given instant
// falls into. Seasons roll over in September.
func CurrentSeason(now time.Time) string {
	startYear := now.Year()
	if now.Month() < time.September {
		startYear--
	}
	return fmt.Sprintf("%d%d", startYear, startYear+1)
}

// TeamStats fetches the team summary from the stats REST API and derives
// the special-teams percentages, plus the save percentage of the team's
// best goalie.
func (c *Client) TeamStats(ctx context.Context, teamID int) (*TeamStats, error) {
	season := CurrentSeason(c.now())

	entry, err := c.teamSummary(ctx, season, teamID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		c.logger.Warn("team stats not found", "teamId", teamID, "season", season)
		return nil, ErrTeamNotFound
	}

	stats := &TeamStats{
		TeamID:                   teamID,
		PowerPlayGoals:           pickNum(entry, "powerPlayGoals", "powerPlayGoalsFor", "ppGoals", "ppGoalsFor", "manAdvantageGoals"),
		PowerPlayOpportunities:   pickNum(entry, "powerPlayOpportunities", "ppOpportunities", "manAdvantageOpportunities", "ppOpps"),
		PenaltyKillGoalsAgainst:  pickNum(entry, "penaltyKillGoalsAgainst", "goalsAgainstOnPk", "pkGoalsAgainst", "shorthandedGoalsAgainst"),
		PenaltyKillOpportunities: pickNum(entry, "penaltyKillOpportunities", "pkOpportunities", "shorthandedOpportunities", "pkOpps"),
		GoalsForPerGame:          pickNum(entry, "goalsForPerGame", "gfPerGame"),
		GoalsAgainstPerGame:      pickNum(entry, "goalsAgainstPerGame", "gaPerGame"),
		ShotsForPerGame:          pickNum(entry, "shotsForPerGame", "sogPerGame"),
		ShotsAgainstPerGame:      pickNum(entry, "shotsAgainstPerGame", "saPerGame"),
	}

	stats.PowerPlayPct = normalizePct(pickNum(entry, "powerPlayPct", "powerPlayPercentage"))
	if stats.PowerPlayPct == 0 && stats.PowerPlayGoals > 0 && stats.PowerPlayOpportunities > 0 {
		stats.PowerPlayPct = stats.PowerPlayGoals / stats.PowerPlayOpportunities * 100
	}

	stats.PenaltyKillPct = normalizePct(pickNum(entry, "penaltyKillPct", "penaltyKillPercentage"))
	if stats.PenaltyKillPct == 0 && stats.PenaltyKillOpportunities > 0 {
		killed := stats.PenaltyKillOpportunities - stats.PenaltyKillGoalsAgainst
		stats.PenaltyKillPct = killed / stats.PenaltyKillOpportunities * 100
	}

	stats.FaceoffWinPct = normalizePct(pickNum(entry, "faceoffWinPct", "faceoffPercentage"))

	// Best-effort goalie lookup; the rest of the stats stand on their own.
	if goalie, err := c.bestGoalie(ctx, season, teamID); err != nil {
		c.logger.Warn("failed to fetch goalie stats", "teamId", teamID, "error", err)
	} else if goalie != nil {
		stats.GoalieSavePct = pickNum(goalie, "savePct", "savePercentage")
	}

	return stats, nil
}

// teamSummary finds the team's row in the season summary, retrying with a
// team-filtered query when the full listing does not carry it.
func (c *Client) teamSummary(ctx context.Context, season string, teamID int) (map[string]any, error) {
	seasonExp := fmt.Sprintf("seasonId=%s and gameTypeId=%d", season, regularSeasonGameType)

	var envelope statsEnvelope
	query := url.Values{"cayenneExp": {seasonExp}}
	if err := c.getStats(ctx, "/team/summary", query, &envelope); err != nil {
		return nil, err
	}
	if entry := findByTeamID(envelope.Data, teamID); entry != nil {
		return entry, nil
	}

	query = url.Values{"cayenneExp": {seasonExp + " and teamId=" + strconv.Itoa(teamID)}}
	if err := c.getStats(ctx, "/team/summary", query, &envelope); err != nil {
		return nil, err
	}
	return findByTeamID(envelope.Data, teamID), nil
}

// bestGoalie returns the team's goalie with the highest save percentage.
func (c *Client) bestGoalie(ctx context.Context, season string, teamID int) (map[string]any, error) {
	query := url.Values{
		"sort":       {"savePct"},
		"dir":        {"DESC"},
		"limit":      {"1"},
		"cayenneExp": {fmt.Sprintf("seasonId=%s and gameTypeId=%d and teamId=%d", season, regularSeasonGameType, teamID)},
	}

	var envelope statsEnvelope
	if err := c.getStats(ctx, "/goalie/summary", query, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Data) == 0 {
		return nil, nil
	}
	return envelope.Data[0], nil
}

func findByTeamID(entries []map[string]any, teamID int) map[string]any {
	for _, entry := range entries {
		if id, ok := entry["teamId"].(float64); ok && int(id) == teamID {
			return entry
		}
	}
	return nil
}

// normalizePct maps fraction-form percentages to percent form: 0.155
// becomes 15.5 while 15.5 passes through unchanged.
func normalizePct(pct float64) float64 {
	if pct > 0 && pct < 1 {
		return pct * 100
	}
	return pct
}
