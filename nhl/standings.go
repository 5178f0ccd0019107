package nhl

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrUnknownTeam means the numeric team ID has no tri-code mapping.
var ErrUnknownTeam = errors.New("unknown team id")

// ErrTeamNotFound means the team was absent from the upstream payload.
var ErrTeamNotFound = errors.New("team standings not found")

// TeamStandings is the reshaped standings record for a single team.
type TeamStandings struct {
	TeamID       int     `json:"teamId"`
	Conference   string  `json:"conference"`
	Place        float64 `json:"place"`
	GamesPlayed  float64 `json:"gamesPlayed"`
	Wins         float64 `json:"wins"`
	Losses       float64 `json:"losses"`
	OTWins       float64 `json:"otWins"`
	ShootoutWins float64 `json:"shootoutWins"`
	GoalsFor     float64 `json:"goalsFor"`
	GoalsAgainst float64 `json:"goalsAgainst"`
	GoalDiff     float64 `json:"goalDiff"`
	Points       float64 `json:"points"`
}

// TeamStandings fetches the league standings and extracts the record for
// one team. The upstream payload shape has drifted over the years, so both
// the team lookup and the field mapping resolve through a fallback chain.
func (c *Client) TeamStandings(ctx context.Context, teamID int) (*TeamStandings, error) {
	teamAbbrev := TeamCode(teamID)
	if teamAbbrev == "" {
		return nil, ErrUnknownTeam
	}

	raw, err := c.getWebRaw(ctx, "/standings/now")
	if err != nil {
		return nil, err
	}

	entry := findStandingsEntry(raw, teamID, teamAbbrev)
	if entry == nil {
		c.logger.Warn("team standings not found", "teamId", teamID, "abbrev", teamAbbrev)
		return nil, ErrTeamNotFound
	}

	goalsFor := pickNum(entry, "goalFor", "goalsFor", "gf")
	goalsAgainst := pickNum(entry, "goalAgainst", "goalsAgainst", "ga")

	otWins := pickNum(entry, "otWins", "ot")
	if otWins == 0 {
		otWins = pickNum(entry, "regulationPlusOtWins") - pickNum(entry, "regulationWins")
		if otWins < 0 {
			otWins = 0
		}
	}

	goalDiff := pickNum(entry, "goalDifferential", "diff")
	if goalDiff == 0 {
		goalDiff = goalsFor - goalsAgainst
	}

	return &TeamStandings{
		TeamID:       teamID,
		Conference:   pickConference(entry),
		Place:        pickNum(entry, "conferenceSequence", "conferenceRank", "place", "rank"),
		GamesPlayed:  pickNum(entry, "gamesPlayed", "gp"),
		Wins:         pickNum(entry, "wins", "w"),
		Losses:       pickNum(entry, "losses", "l"),
		OTWins:       otWins,
		ShootoutWins: pickNum(entry, "shootoutWins", "so"),
		GoalsFor:     goalsFor,
		GoalsAgainst: goalsAgainst,
		GoalDiff:     goalDiff,
		Points:       pickNum(entry, "points", "pts"),
	}, nil
}

// findStandingsEntry locates a team's record in any of the payload shapes
// the standings endpoint has used: {standings: [...]}, {teamRecords: [...]}
// or a bare array.
func findStandingsEntry(raw json.RawMessage, teamID int, teamAbbrev string) map[string]any {
	var wrapped struct {
		Standings   []map[string]any `json:"standings"`
		TeamRecords []map[string]any `json:"teamRecords"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if entry := findByAbbrev(wrapped.Standings, teamAbbrev); entry != nil {
			return entry
		}
		for _, record := range wrapped.TeamRecords {
			team, _ := record["team"].(map[string]any)
			if team == nil {
				continue
			}
			if id, ok := team["id"].(float64); ok && int(id) == teamID {
				return record
			}
			if abbrev, ok := team["abbrev"].(string); ok && strings.EqualFold(abbrev, teamAbbrev) {
				return record
			}
		}
	}

	var bare []map[string]any
	if err := json.Unmarshal(raw, &bare); err == nil {
		return findByAbbrev(bare, teamAbbrev)
	}
	return nil
}

func findByAbbrev(entries []map[string]any, teamAbbrev string) map[string]any {
	for _, entry := range entries {
		if strings.EqualFold(entryAbbrev(entry), teamAbbrev) {
			return entry
		}
	}
	return nil
}

// entryAbbrev pulls the team abbreviation out of whichever field carries it.
func entryAbbrev(entry map[string]any) string {
	switch v := entry["teamAbbrev"].(type) {
	case map[string]any:
		if s, ok := v["default"].(string); ok {
			return s
		}
	case string:
		return v
	}
	if s, ok := entry["abbrev"].(string); ok {
		return s
	}
	return ""
}

func pickConference(entry map[string]any) string {
	if s, ok := entry["conferenceName"].(string); ok && s != "" {
		return s
	}
	if conf, ok := entry["conference"].(map[string]any); ok {
		if name, ok := conf["name"].(map[string]any); ok {
			if s, ok := name["default"].(string); ok {
				return s
			}
		}
	}
	return ""
}

// pickNum returns the first non-zero numeric field among the given keys.
func pickNum(entry map[string]any, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := entry[key].(float64); ok && v != 0 {
			return v
		}
	}
	return 0
}
