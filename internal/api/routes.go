// Package api serves the HTTP surface: health, per-player stats, the attempt history,
// the game websocket and the static client.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladimirvolkov/bucketshot/internal/middleware"
	"github.com/vladimirvolkov/bucketshot/internal/stats"
	"github.com/vladimirvolkov/bucketshot/internal/ws"
)

// AttemptReader lists a player's recent attempts.
type AttemptReader interface {
	Recent(ctx context.Context, player string, limit int) ([]stats.Attempt, error)
}

// Deps are the services the routes read from. Attempts may be nil when no database
// is configured.
type Deps struct {
	Hub            *ws.Hub
	Store          stats.Store
	Attempts       AttemptReader
	Limiter        *middleware.IPRateLimiter
	StaticDir      string
	AllowedOrigins []string
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.SecurityHeaders())

	router.GET("/health", HealthCheck(d.Hub))
	if d.Hub != nil {
		router.GET("/ws", gin.WrapF(d.Hub.HandleWS))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.CORS(d.AllowedOrigins))
	if d.Limiter != nil {
		v1.Use(d.Limiter.Gin())
	}
	{
		v1.GET("/health", HealthCheck(d.Hub))
		v1.GET("/stats/:player", GetStats(d.Store))
		v1.DELETE("/stats/:player", ResetStats(d.Store))
		v1.GET("/attempts/:player", ListAttempts(d.Attempts))
	}

	if d.StaticDir != "" {
		files := http.FileServer(http.Dir(d.StaticDir))
		router.NoRoute(middleware.NoCache(), gin.WrapH(files))
	}
	return router
}
