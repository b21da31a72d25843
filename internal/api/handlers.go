package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolradio/internal/radio"
)

// GetNowPlaying returns the current track, offset and look-ahead window.
// Every client rendering this payload at the same instant sees the same
// track at the same offset.
func (s *Server) GetNowPlaying(c *gin.Context) {
	info, err := s.engine.CurrentPlaybackInfo()
	if err != nil {
		if errors.Is(err, radio.ErrNoSchedule) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetPlaylist returns the active schedule order.
func (s *Server) GetPlaylist(c *gin.Context) {
	tracks := s.engine.Playlist()
	c.JSON(http.StatusOK, gin.H{
		"tracks": tracks,
		"count":  len(tracks),
	})
}

// GetStats returns the derived listener aggregate.
func (s *Server) GetStats(c *gin.Context) {
	stats, err := s.engine.ListenerStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read listener stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RefreshPlaylist triggers one reconcile pass on demand.
func (s *Server) RefreshPlaylist(c *gin.Context) {
	if err := s.engine.RefreshPlaylist(c.Request.Context()); err != nil {
		// A failed fetch is a soft condition: the active playlist is
		// untouched and the next poll will try again.
		c.JSON(http.StatusAccepted, gin.H{"status": "skipped", "reason": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reconciled"})
}

// ConnectSession registers a listener. The client may bring its own id
// (reconnect) or receive a fresh one.
func (s *Server) ConnectSession(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	_ = c.ShouldBindJSON(&req) // empty body is fine

	session, err := s.tracker.Connect(c.Request.Context(), req.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register session"})
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (s *Server) HeartbeatSession(c *gin.Context) {
	if err := s.tracker.Heartbeat(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record heartbeat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) DisconnectSession(c *gin.Context) {
	if err := s.tracker.Disconnect(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

// HardReset rebuilds the schedule from the catalog and restarts the shared
// clock. Admin only; this interrupts every listener.
func (s *Server) HardReset(c *gin.Context) {
	if err := s.engine.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
