package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/chapas/internal/api/handlers"
	"github.com/playmatatu/chapas/internal/config"
	"github.com/playmatatu/chapas/internal/middleware"
	"github.com/playmatatu/chapas/internal/session"
	"github.com/playmatatu/chapas/internal/store"
	"github.com/playmatatu/chapas/internal/transport"
	"github.com/playmatatu/chapas/internal/ws"
)

// Deps is everything the routes serve from. Peers is nil unless the match
// accepts its opponent over websocket.
type Deps struct {
	Config  *config.Config
	Matches *session.Manager
	Hub     *ws.Hub
	History *store.SQLStore
	Frames  *store.RedisStore
	Peers   *transport.WSAcceptor
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, deps Deps) {
	cfg := deps.Config

	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		// Live match
		m := v1.Group("/match")
		{
			m.GET("", handlers.GetMatch(deps.Matches))
			m.POST("/input", handlers.PostInput(deps.Matches))
			m.PUT("/viewport", handlers.PutViewport(deps.Matches))
			m.GET("/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleMatchWebSocket(deps.Hub, deps.Matches))
		}

		// Opponent link
		v1.GET("/peer/ws", handlers.HandlePeerWebSocket(cfg, deps.Peers))

		// History
		v1.GET("/matches/:id", handlers.GetMatchRecord(deps.History))
		v1.GET("/matches/:id/state", handlers.GetMatchState(deps.Matches, deps.Frames))

		admin := v1.Group("/admin", middleware.AdminGuard(cfg))
		{
			admin.POST("/match/end", handlers.EndMatch(deps.Matches))
			admin.POST("/peer-token", handlers.IssuePeerToken(cfg))
		}
	}
}
