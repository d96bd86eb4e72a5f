package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vladimirvolkov/bucketshot/internal/stats"
	"github.com/vladimirvolkov/bucketshot/internal/ws"
)

var startTime = time.Now()

// HealthCheck reports uptime and live room counts.
func HealthCheck(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"service": "bucketshot",
			"uptime":  time.Since(startTime).Round(time.Second).String(),
		}
		if hub != nil {
			body["rooms"] = hub.Stats()
		}
		c.JSON(http.StatusOK, body)
	}
}

// player returns the stats key for the :player path parameter, normalized the same
// way nicknames are when a socket connects.
func player(c *gin.Context) string {
	return ws.SanitizeNickname(c.Param("player"))
}

func GetStats(store stats.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := player(c)
		rec, err := stats.LoadOrZero(c.Request.Context(), store, name)
		if err != nil {
			log.Printf("[API] load stats for %s: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"player":   name,
			"best":     rec.Best,
			"lifetime": rec.Lifetime,
		})
	}
}

func ResetStats(store stats.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := player(c)
		if err := store.Reset(c.Request.Context(), name); err != nil {
			log.Printf("[API] reset stats for %s: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reset stats"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func ListAttempts(attempts AttemptReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if attempts == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "attempt history is not enabled"})
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive number"})
			return
		}

		name := player(c)
		list, err := attempts.Recent(c.Request.Context(), name, limit)
		if err != nil {
			log.Printf("[API] list attempts for %s: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load attempts"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"player":   name,
			"attempts": list,
		})
	}
}
