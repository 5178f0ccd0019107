package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/marketsport/rinkside/metrics"
	"github.com/marketsport/rinkside/nhl"
)

// NHLHandlers contains HTTP handlers for the NHL proxy routes.
type NHLHandlers struct {
	client  *nhl.Client
	metrics *metrics.ServerMetrics
	logger  *slog.Logger
}

// NewNHLHandlers creates new NHL proxy handlers.
func NewNHLHandlers(client *nhl.Client, m *metrics.ServerMetrics, logger *slog.Logger) *NHLHandlers {
	return &NHLHandlers{
		client:  client,
		metrics: m,
		logger:  logger,
	}
}

// ScheduleByDate proxies the schedule for a single date. The date is
// validated by shape only; a calendar-invalid value like 2024-13-40 is
// forwarded and answered by the upstream.
func (h *NHLHandlers) ScheduleByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" || !nhl.DateRe.MatchString(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date parameter is required in YYYY-MM-DD format"})
		return
	}

	schedule, err := h.client.ScheduleByDate(c.Request.Context(), date)
	if err != nil {
		h.upstreamError(c, "schedule", err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// GameLanding proxies the landing payload for a single game.
func (h *NHLHandlers) GameLanding(c *gin.Context) {
	gamePk := c.Query("gamePk")
	if gamePk == "" || !nhl.GamePkRe.MatchString(gamePk) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gamePk parameter is required"})
		return
	}

	landing, err := h.client.GameLanding(c.Request.Context(), gamePk)
	if err != nil {
		h.upstreamError(c, "landing", err)
		return
	}
	c.JSON(http.StatusOK, landing)
}

// Boxscore proxies the raw boxscore payload for a single game.
func (h *NHLHandlers) Boxscore(c *gin.Context) {
	gamePk := c.Query("gamePk")
	if gamePk == "" || !nhl.GamePkRe.MatchString(gamePk) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gamePk parameter is required"})
		return
	}

	raw, err := h.client.Boxscore(c.Request.Context(), gamePk)
	if err != nil {
		h.upstreamError(c, "boxscore", err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// ScoresNow proxies the live scores payload.
func (h *NHLHandlers) ScoresNow(c *gin.Context) {
	raw, err := h.client.ScoresNow(c.Request.Context())
	if err != nil {
		h.upstreamError(c, "scores", err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// StandingsNow proxies the raw league standings payload.
func (h *NHLHandlers) StandingsNow(c *gin.Context) {
	raw, err := h.client.StandingsNow(c.Request.Context())
	if err != nil {
		h.upstreamError(c, "standings", err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// TeamStandings returns the reshaped standings record for one team.
func (h *NHLHandlers) TeamStandings(c *gin.Context) {
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}

	standings, err := h.client.TeamStandings(c.Request.Context(), teamID)
	if err != nil {
		if errors.Is(err, nhl.ErrUnknownTeam) || errors.Is(err, nhl.ErrTeamNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
			return
		}
		h.upstreamError(c, "team standings", err)
		return
	}
	c.JSON(http.StatusOK, standings)
}

// TeamStats returns the derived season stats for one team.
func (h *NHLHandlers) TeamStats(c *gin.Context) {
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}

	stats, err := h.client.TeamStats(c.Request.Context(), teamID)
	if err != nil {
		if errors.Is(err, nhl.ErrUnknownTeam) || errors.Is(err, nhl.ErrTeamNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
			return
		}
		h.upstreamError(c, "team stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// TeamInjuries returns the injured players for one team. A roster that
// cannot be fetched in any season variant yields an empty list, not an
// error.
func (h *NHLHandlers) TeamInjuries(c *gin.Context) {
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}

	injuries, err := h.client.TeamInjuries(c.Request.Context(), teamID)
	if err != nil {
		if errors.Is(err, nhl.ErrUnknownTeam) {
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
			return
		}
		h.upstreamError(c, "team injuries", err)
		return
	}
	c.JSON(http.StatusOK, injuries)
}

func teamIDParam(c *gin.Context) (int, bool) {
	raw := c.Query("teamId")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "teamId parameter is required"})
		return 0, false
	}
	teamID, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "teamId must be a number"})
		return 0, false
	}
	return teamID, true
}

// upstreamError maps client errors to responses: upstream non-2xx keeps
// its status code, anything else becomes a 500.
func (h *NHLHandlers) upstreamError(c *gin.Context, route string, err error) {
	if h.metrics != nil {
		h.metrics.RecordUpstreamError(route)
	}

	var apiErr *nhl.APIError
	if errors.As(err, &apiErr) {
		h.logger.Warn("upstream error", "route", route, "status", apiErr.StatusCode)
		c.JSON(apiErr.StatusCode, gin.H{"error": "upstream request failed"})
		return
	}

	h.logger.Error("proxy request failed", "route", route, "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
