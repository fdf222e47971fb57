package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/chapas/internal/auth"
	"github.com/playmatatu/chapas/internal/config"
	"github.com/playmatatu/chapas/internal/session"
)

// IssuePeerToken signs a token an opponent uses to connect to this server.
func IssuePeerToken(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ttl := time.Duration(cfg.PeerTokenTTLMinutes) * time.Minute
		token, err := auth.IssuePeerToken(cfg.PeerSecret, PeerRole, ttl)
		if err != nil {
			log.Printf("[ADMIN] Failed to issue peer token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"role":       PeerRole,
			"expires_in": int(ttl.Seconds()),
		})
	}
}

// EndMatch ends the current match at once.
func EndMatch(matches *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := matches.Current()
		if err != nil {
			sessionError(c, err)
			return
		}
		if err := s.End(); err != nil {
			if errors.Is(err, session.ErrStopped) {
				c.JSON(http.StatusConflict, gin.H{"error": "match already finished"})
				return
			}
			sessionError(c, err)
			return
		}
		log.Printf("[ADMIN] Match %s ended from %s", s.Info().ID, c.ClientIP())
		c.JSON(http.StatusAccepted, gin.H{"status": "ending", "match_id": s.Info().ID})
	}
}
