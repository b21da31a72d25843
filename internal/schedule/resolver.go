package schedule

import (
	"time"

	"schoolradio/internal/models"
)

// Position is the resolved playback location at one instant.
type Position struct {
	Index    int   // playlist index of the current track
	OffsetMs int64 // elapsed time inside that track
	Epoch    int64 // completed full passes through the playlist
}

func (p Position) OffsetSeconds() float64 {
	return float64(p.OffsetMs) / 1000.0
}

// Resolve maps wall-clock time onto the schedule. It is a pure function:
// identical (origin, playlist, now) always yields an identical Position, and
// it never touches shared state. Two nodes resolving at the same instant
// with the same record cannot disagree.
func Resolve(originMs int64, playlist []models.Track, now time.Time) Position {
	if len(playlist) == 0 {
		return Position{}
	}

	elapsed := now.UnixMilli() - originMs
	if elapsed < 0 {
		elapsed = 0
	}

	var total int64
	for _, t := range playlist {
		total += t.EffectiveDurationMs()
	}
	if total <= 0 {
		// Degenerate playlist where even defaults summed to nothing.
		total = int64(len(playlist)) * models.DefaultTrackDuration.Milliseconds()
	}

	epoch := elapsed / total
	epochElapsed := elapsed % total

	var cumulative int64
	for i, t := range playlist {
		end := cumulative + t.EffectiveDurationMs()
		if epochElapsed < end {
			return Position{Index: i, OffsetMs: epochElapsed - cumulative, Epoch: epoch}
		}
		cumulative = end
	}

	// Unreachable unless accumulation drifted; pin to the top of the list.
	return Position{Index: 0, OffsetMs: 0, Epoch: epoch}
}

// PlaybackInfoAt assembles what the presentation layer renders: the resolved
// track plus a wrapped look-ahead of the next upcoming tracks. The schedule
// loops, so a look-ahead longer than the playlist wraps past the current
// track and lists it again.
func PlaybackInfoAt(state *models.PlaylistState, now time.Time, upcoming int) *models.PlaybackInfo {
	if !state.Initialized() {
		return nil
	}
	pos := Resolve(state.OriginMs, state.Playlist, now)

	next := make([]models.Track, 0, upcoming)
	for i := 1; i <= upcoming && i < len(state.Playlist)+1; i++ {
		next = append(next, state.Playlist[(pos.Index+i)%len(state.Playlist)])
	}

	return &models.PlaybackInfo{
		Track:         state.Playlist[pos.Index],
		Index:         pos.Index,
		OffsetSeconds: pos.OffsetSeconds(),
		Epoch:         pos.Epoch,
		Upcoming:      next,
	}
}
