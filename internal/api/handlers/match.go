package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/chapas/internal/match"
	"github.com/playmatatu/chapas/internal/session"
	"github.com/playmatatu/chapas/internal/store"
	"github.com/playmatatu/chapas/internal/ws"
)

// sessionError maps session errors to a status code and writes the response.
func sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNoMatch):
		c.JSON(http.StatusNotFound, gin.H{"error": "no match running"})
	case errors.Is(err, session.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrBusy):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrStopped):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[API] unexpected session error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// GetMatch returns the current match and its latest frame.
func GetMatch(matches *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := matches.Current()
		if err != nil {
			sessionError(c, err)
			return
		}
		c.Header("X-Match-ID", s.Info().ID)
		c.JSON(http.StatusOK, gin.H{
			"match":    s.Info(),
			"finished": s.Finished(),
			"snapshot": s.Snapshot(),
		})
	}
}

// PostInput queues a pointer gesture for the current match.
func PostInput(matches *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in session.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		s, err := matches.Current()
		if err != nil {
			sessionError(c, err)
			return
		}
		if err := s.Input(in); err != nil {
			sessionError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
	}
}

// PutViewport resizes the screen the current match projects onto.
func PutViewport(matches *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var vp match.Viewport
		if err := c.ShouldBindJSON(&vp); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		s, err := matches.Current()
		if err != nil {
			sessionError(c, err)
			return
		}
		if err := s.SetViewport(vp); err != nil {
			sessionError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
	}
}

// HandleMatchWebSocket attaches a presentation client to the hub.
func HandleMatchWebSocket(hub *ws.Hub, matches *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.Serve(c, matches.Current)
	}
}

// GetMatchRecord returns the stored history of a match.
func GetMatchRecord(history *store.SQLStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		rec, err := history.Match(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		if err != nil {
			log.Printf("[API] Failed to load match %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load match"})
			return
		}

		shots, err := history.Shots(c.Request.Context(), id)
		if err != nil {
			log.Printf("[API] Failed to load shots for match %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load shots"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"match": rec, "shots": shots})
	}
}

// GetMatchState returns the latest frame of a match: live for the current
// one, from Redis otherwise.
func GetMatchState(matches *session.Manager, frames *store.RedisStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if s, err := matches.Current(); err == nil && s.Info().ID == id {
			c.JSON(http.StatusOK, gin.H{"match_id": id, "live": true, "snapshot": s.Snapshot()})
			return
		}

		snap, err := frames.LatestSnapshot(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "match state not found"})
			return
		}
		if err != nil {
			log.Printf("[API] Failed to load state for match %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load match state"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"match_id": id, "live": false, "snapshot": snap})
	}
}
