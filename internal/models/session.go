package models

import "time"

// ListenerSession is one connected listener. Sessions are ephemeral: created
// on connect, refreshed by heartbeats, deactivated on disconnect or reaped by
// the presence garbage collector when the heartbeat goes stale.
type ListenerSession struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`
	Active      bool      `json:"active"`
}

// Stale reports whether the session missed its heartbeats for longer than
// the given threshold.
func (s ListenerSession) Stale(now time.Time, threshold time.Duration) bool {
	return now.Sub(s.LastSeen) > threshold
}

// Stats is the derived listener aggregate. Active is always recomputed by
// scanning the session set, never trusted as an incremented counter, so a
// client that crashed without disconnecting self-heals within one GC pass.
type Stats struct {
	Active int   `json:"active"`
	Total  int64 `json:"total"`
}

// PlaybackInfo is what the presentation layer renders: the current track,
// how far into it we are, and a short look-ahead window.
type PlaybackInfo struct {
	Track         Track   `json:"track"`
	Index         int     `json:"index"`
	OffsetSeconds float64 `json:"offset_seconds"`
	Epoch         int64   `json:"epoch"`
	Upcoming      []Track `json:"upcoming"`
}
