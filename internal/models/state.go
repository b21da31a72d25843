package models

import "sort"

// PlaylistState is the single shared mutable record of the station.
// Every node reads and writes the same copy through the state store;
// everything a client needs to compute "what is playing right now" is here.
type PlaylistState struct {
	Playlist []Track `json:"playlist"` // order defines the broadcast schedule

	// OriginMs is the epoch timestamp (ms) all elapsed-time math subtracts.
	// It only moves forward, except on an explicit hard reset.
	OriginMs int64 `json:"origin_ms"`

	// PlayedTracks holds playlist indices already presented this cycle.
	// Bookkeeping only: it feeds cycle detection and stats, never track
	// selection, which is pure duration accumulation over Playlist order.
	PlayedTracks []int `json:"played_tracks"`

	LastCycleStartMs int64 `json:"last_cycle_start_ms"`

	// IsPlaying is advisory for the presentation layer. Scheduling itself is
	// always "playing" as a function of time.
	IsPlaying bool `json:"is_playing"`
}

// Initialized reports whether the record describes a live schedule.
// An empty playlist is equivalent to "no record at all".
func (s *PlaylistState) Initialized() bool {
	return s != nil && len(s.Playlist) > 0
}

// TotalDurationMs sums the effective durations of the whole playlist.
func (s *PlaylistState) TotalDurationMs() int64 {
	var total int64
	for _, t := range s.Playlist {
		total += t.EffectiveDurationMs()
	}
	return total
}

// MarkPlayed records an index as presented this cycle. Idempotent; indices
// outside the playlist are ignored.
func (s *PlaylistState) MarkPlayed(index int) {
	if index < 0 || index >= len(s.Playlist) {
		return
	}
	for _, p := range s.PlayedTracks {
		if p == index {
			return
		}
	}
	s.PlayedTracks = append(s.PlayedTracks, index)
	sort.Ints(s.PlayedTracks)
}

// CycleComplete is true once every track has been marked played this cycle.
func (s *PlaylistState) CycleComplete() bool {
	return len(s.Playlist) > 0 && len(s.PlayedTracks) >= len(s.Playlist)
}

// TrackIDs returns the catalog IDs in schedule order.
func (s *PlaylistState) TrackIDs() []string {
	ids := make([]string, len(s.Playlist))
	for i, t := range s.Playlist {
		ids[i] = t.ID
	}
	return ids
}
