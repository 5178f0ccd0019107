package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marketsport/rinkside/metrics"
	"github.com/marketsport/rinkside/polymarket"
)

// PolymarketHandlers contains HTTP handlers for the Polymarket proxy.
type PolymarketHandlers struct {
	client  *polymarket.Client
	metrics *metrics.ServerMetrics
	logger  *slog.Logger
}

// NewPolymarketHandlers creates new Polymarket proxy handlers.
func NewPolymarketHandlers(client *polymarket.Client, m *metrics.ServerMetrics, logger *slog.Logger) *PolymarketHandlers {
	return &PolymarketHandlers{
		client:  client,
		metrics: m,
		logger:  logger,
	}
}

// Market looks up the moneyline market for an event slug. A missing
// event is a 200 with a JSON null body so the caller can distinguish
// "no market" from a proxy failure.
func (h *PolymarketHandlers) Market(c *gin.Context) {
	eventSlug := c.Query("eventSlug")
	if eventSlug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventSlug parameter is required"})
		return
	}

	market, err := h.client.MarketBySlug(c.Request.Context(), eventSlug)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordUpstreamError("polymarket")
		}
		h.logger.Error("market lookup failed", "eventSlug", eventSlug, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch market"})
		return
	}

	// gin renders a nil pointer as JSON null, which is the contract here.
	c.JSON(http.StatusOK, market)
}
