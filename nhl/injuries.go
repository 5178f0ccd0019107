package nhl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// injuryStatusCodes are the roster status codes treated as injuries.
var injuryStatusCodes = map[string]bool{
	"INJURED":    true,
	"IR":         true,
	"IR-LT":      true,
	"OUT":        true,
	"DAYTODAY":   true,
	"DAY-TO-DAY": true,
}

// InjuredPlayer is one entry in a team's injury report.
type InjuredPlayer struct {
	ID       int64        `json:"id"`
	FullName string       `json:"fullName"`
	Position string       `json:"position"`
	Status   PlayerStatus `json:"status"`
}

// PlayerStatus carries the roster status code and its description.
type PlayerStatus struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// TeamInjuries is the reshaped injury report for a team.
type TeamInjuries struct {
	TeamID         int             `json:"teamId"`
	TeamCode       string          `json:"teamCode"`
	InjuredPlayers []InjuredPlayer `json:"injuredPlayers"`
}

type rosterPlayer struct {
	ID        int64          `json:"id"`
	FirstName *LocalizedName `json:"firstName"`
	LastName  *LocalizedName `json:"lastName"`
	FullName  string         `json:"fullName"`
	Name      *LocalizedName `json:"name"`
	Position  string         `json:"position"`
	PosCode   string         `json:"positionCode"`
	Status    *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Injury      string `json:"injury"`
	} `json:"status"`
}

type upstreamRoster struct {
	Forwards []rosterPlayer `json:"forwards"`
	Defense  []rosterPlayer `json:"defense"`
	Goalies  []rosterPlayer `json:"goalies"`
	Players  []rosterPlayer `json:"players"`
}

// TeamInjuries fetches a team's roster and filters it down to injured
// players. The roster endpoint's URL shape varies by season, so several
// variants are tried in order; when every variant fails the report is an
// empty list rather than an error, so callers always render something.
func (c *Client) TeamInjuries(ctx context.Context, teamID int) (*TeamInjuries, error) {
	teamCode := TeamCode(teamID)
	if teamCode == "" {
		return nil, ErrUnknownTeam
	}

	report := &TeamInjuries{
		TeamID:         teamID,
		TeamCode:       teamCode,
		InjuredPlayers: []InjuredPlayer{},
	}

	season := CurrentSeason(c.now())
	paths := rosterPaths(teamCode, season)

	var roster *upstreamRoster
	for _, path := range paths {
		var candidate upstreamRoster
		err := c.getWeb(ctx, path, &candidate)
		if err == nil {
			roster = &candidate
			break
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			c.logger.Debug("roster variant not found", "path", path)
			continue
		}
		return nil, err
	}
	if roster == nil {
		c.logger.Warn("no roster variant available", "teamId", teamID, "teamCode", teamCode)
		return report, nil
	}

	var players []rosterPlayer
	players = append(players, roster.Forwards...)
	players = append(players, roster.Defense...)
	players = append(players, roster.Goalies...)
	players = append(players, roster.Players...)

	for _, player := range players {
		if player.Status == nil || player.Status.Code == "" {
			continue
		}
		code := strings.ToUpper(player.Status.Code)
		if !injuryStatusCodes[code] {
			continue
		}
		report.InjuredPlayers = append(report.InjuredPlayers, InjuredPlayer{
			ID:       player.ID,
			FullName: playerName(player),
			Position: playerPosition(player),
			Status: PlayerStatus{
				Code:        player.Status.Code,
				Description: statusDescription(player),
			},
		})
	}
	return report, nil
}

// rosterPaths lists the roster URL variants in preference order: current
// roster, season with game-type suffix, season alone, then the previous
// season.
func rosterPaths(teamCode, season string) []string {
	prevStart, _ := strconv.Atoi(season[:4])
	prevSeason := fmt.Sprintf("%d%d", prevStart-1, prevStart)

	return []string{
		"/roster/" + teamCode + "/now",
		"/roster/" + teamCode + "/" + season + "/regular",
		"/roster/" + teamCode + "/" + season,
		"/roster/" + teamCode + "/" + prevSeason + "/regular",
	}
}

func playerName(player rosterPlayer) string {
	if player.FirstName != nil && player.LastName != nil &&
		player.FirstName.Default != "" && player.LastName.Default != "" {
		return player.FirstName.Default + " " + player.LastName.Default
	}
	if player.FullName != "" {
		return player.FullName
	}
	if player.Name != nil && player.Name.Default != "" {
		return player.Name.Default
	}
	return "Unknown"
}

func playerPosition(player rosterPlayer) string {
	if player.Position != "" {
		return player.Position
	}
	return player.PosCode
}

func statusDescription(player rosterPlayer) string {
	if player.Status.Description != "" {
		return player.Status.Description
	}
	return player.Status.Injury
}
