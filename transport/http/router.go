// Package http exposes the auth endpoints and the NHL/Polymarket data
// proxy over a Gin router.
package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marketsport/rinkside/metrics"
	"github.com/marketsport/rinkside/nhl"
	"github.com/marketsport/rinkside/polymarket"
	"github.com/marketsport/rinkside/service"
)

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	AuthService *service.AuthService
	NHL         *nhl.Client
	Polymarket  *polymarket.Client
	Metrics     *metrics.ServerMetrics
	Logger      *slog.Logger
}

// SetupRouter sets up the Gin router
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	authHandlers := NewAuthHandlers(deps.AuthService, deps.Metrics, deps.Logger)
	nhlHandlers := NewNHLHandlers(deps.NHL, deps.Metrics, deps.Logger)
	polyHandlers := NewPolymarketHandlers(deps.Polymarket, deps.Metrics, deps.Logger)

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.GET("/nonce", authHandlers.Nonce)
		auth.POST("/authenticate", authHandlers.Authenticate)
		auth.POST("/logout", authHandlers.Logout)
	}

	// Data proxy routes
	api := router.Group("/api")
	if deps.Metrics != nil {
		api.Use(MetricsMiddleware(deps.Metrics))
	}
	{
		nhlGroup := api.Group("/nhl")
		nhlGroup.GET("/schedule/date", nhlHandlers.ScheduleByDate)
		nhlGroup.GET("/scores/date", nhlHandlers.ScheduleByDate)
		nhlGroup.GET("/scores/now", nhlHandlers.ScoresNow)
		nhlGroup.GET("/game/landing", nhlHandlers.GameLanding)
		nhlGroup.GET("/game/boxscore", nhlHandlers.Boxscore)
		nhlGroup.GET("/standings/now", nhlHandlers.StandingsNow)
		nhlGroup.GET("/team/standings", nhlHandlers.TeamStandings)
		nhlGroup.GET("/team/stats", nhlHandlers.TeamStats)
		nhlGroup.GET("/team/injuries", nhlHandlers.TeamInjuries)

		api.GET("/polymarket/market", polyHandlers.Market)
	}

	// Protected routes
	me := router.Group("/api")
	me.Use(AuthMiddleware(deps.AuthService))
	{
		me.GET("/me", authHandlers.Me)
	}

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			deps.Metrics.Registry(),
			promhttp.HandlerOpts{},
		)))
	}

	return router
}
