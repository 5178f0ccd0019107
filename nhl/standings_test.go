package nhl

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standingsHandler(body string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/standings/now", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})
	return mux
}

func TestTeamStandings(t *testing.T) {
	client := newTestClient(t, standingsHandler(`{
		"standings": [
			{
				"teamAbbrev": {"default": "TOR"},
				"conferenceName": "Eastern",
				"conferenceSequence": 3,
				"gamesPlayed": 45,
				"wins": 28,
				"losses": 12,
				"regulationWins": 22,
				"regulationPlusOtWins": 26,
				"shootoutWins": 2,
				"goalFor": 160,
				"goalAgainst": 130,
				"goalDifferential": 30,
				"points": 61
			}
		]
	}`))

	record, err := client.TeamStandings(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 10, record.TeamID)
	assert.Equal(t, "Eastern", record.Conference)
	assert.Equal(t, float64(3), record.Place)
	assert.Equal(t, float64(45), record.GamesPlayed)
	assert.Equal(t, float64(28), record.Wins)
	// otWins derived from regulationPlusOtWins - regulationWins.
	assert.Equal(t, float64(4), record.OTWins)
	assert.Equal(t, float64(2), record.ShootoutWins)
	assert.Equal(t, float64(30), record.GoalDiff)
	assert.Equal(t, float64(61), record.Points)
}

func TestTeamStandingsShortFieldFallbacks(t *testing.T) {
	client := newTestClient(t, standingsHandler(`{
		"standings": [
			{"teamAbbrev": "BOS", "gp": 40, "w": 25, "l": 10, "gf": 140, "ga": 100, "pts": 55}
		]
	}`))

	record, err := client.TeamStandings(context.Background(), 6)
	require.NoError(t, err)

	assert.Equal(t, float64(40), record.GamesPlayed)
	assert.Equal(t, float64(25), record.Wins)
	assert.Equal(t, float64(10), record.Losses)
	// goalDiff computed from gf - ga when not provided.
	assert.Equal(t, float64(40), record.GoalDiff)
	assert.Equal(t, float64(55), record.Points)
}

func TestTeamStandingsTeamRecordsShape(t *testing.T) {
	client := newTestClient(t, standingsHandler(`{
		"teamRecords": [
			{"team": {"id": 22, "abbrev": "EDM"}, "gamesPlayed": 44, "wins": 27, "points": 58}
		]
	}`))

	record, err := client.TeamStandings(context.Background(), 22)
	require.NoError(t, err)
	assert.Equal(t, float64(44), record.GamesPlayed)
	assert.Equal(t, float64(58), record.Points)
}

func TestTeamStandingsUnknownTeamID(t *testing.T) {
	client := newTestClient(t, standingsHandler(`{"standings": []}`))

	_, err := client.TeamStandings(context.Background(), 9999)
	require.ErrorIs(t, err, ErrUnknownTeam)
}

func TestTeamStandingsTeamMissingFromPayload(t *testing.T) {
	client := newTestClient(t, standingsHandler(`{"standings": [{"teamAbbrev": {"default": "BOS"}}]}`))

	_, err := client.TeamStandings(context.Background(), 10)
	require.ErrorIs(t, err, ErrTeamNotFound)
}
