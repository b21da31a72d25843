package schedule

import (
	"fmt"
	"testing"
	"time"

	"schoolradio/internal/models"
)

func makeTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{ID: fmt.Sprintf("vid-%03d", i), DurationMs: int64(30+i) * 1000}
	}
	return tracks
}

func TestShuffleIsPermutation(t *testing.T) {
	original := makeTracks(50)
	shuffled := make([]models.Track, len(original))
	copy(shuffled, original)

	Shuffle(shuffled)

	if len(shuffled) != len(original) {
		t.Fatalf("shuffle changed length: %d -> %d", len(original), len(shuffled))
	}

	seen := make(map[string]int)
	for _, tr := range shuffled {
		seen[tr.ID]++
	}
	for _, tr := range original {
		if seen[tr.ID] != 1 {
			t.Fatalf("track %s appears %d times after shuffle", tr.ID, seen[tr.ID])
		}
	}
}

func TestShuffleActuallyShuffles(t *testing.T) {
	// With 50 tracks the odds of an identity permutation are negligible;
	// three identical runs in a row means the shuffle is broken.
	original := makeTracks(50)

	identical := 0
	for run := 0; run < 3; run++ {
		shuffled := make([]models.Track, len(original))
		copy(shuffled, original)
		Shuffle(shuffled)

		same := true
		for i := range original {
			if shuffled[i].ID != original[i].ID {
				same = false
				break
			}
		}
		if same {
			identical++
		}
	}
	if identical == 3 {
		t.Error("shuffle returned the input order three times in a row")
	}
}

func TestInitializeState(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	state := InitializeState(makeTracks(10), now)

	if len(state.Playlist) != 10 {
		t.Fatalf("expected 10 tracks, got %d", len(state.Playlist))
	}
	if state.OriginMs != now.UnixMilli() {
		t.Errorf("origin not set to now: %d", state.OriginMs)
	}
	if state.LastCycleStartMs != now.UnixMilli() {
		t.Errorf("lastCycleStart not set to now: %d", state.LastCycleStartMs)
	}
	if len(state.PlayedTracks) != 0 {
		t.Errorf("fresh state must have empty played set, got %v", state.PlayedTracks)
	}
	if !state.IsPlaying {
		t.Error("fresh state should be flagged playing")
	}
}

func TestMarkPlayedIdempotent(t *testing.T) {
	state := InitializeState(makeTracks(3), time.Now())

	state.MarkPlayed(1)
	state.MarkPlayed(1)
	state.MarkPlayed(1)
	if len(state.PlayedTracks) != 1 {
		t.Errorf("expected 1 played index, got %v", state.PlayedTracks)
	}

	// Out-of-range indices are ignored.
	state.MarkPlayed(-1)
	state.MarkPlayed(99)
	if len(state.PlayedTracks) != 1 {
		t.Errorf("out-of-range marks must be ignored, got %v", state.PlayedTracks)
	}
}

func TestCycleCompleteAndReshuffle(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	state := InitializeState(makeTracks(3), start)

	for i := 0; i < 2; i++ {
		state.MarkPlayed(i)
		if state.CycleComplete() {
			t.Fatalf("cycle complete after only %d of 3 tracks", i+1)
		}
	}
	state.MarkPlayed(2)
	if !state.CycleComplete() {
		t.Fatal("cycle should be complete after all tracks played")
	}

	originBefore := state.OriginMs
	later := start.Add(90 * time.Minute)
	Reshuffle(state, later)

	if len(state.PlayedTracks) != 0 {
		t.Errorf("reshuffle must clear the played set, got %v", state.PlayedTracks)
	}
	if state.LastCycleStartMs != later.UnixMilli() {
		t.Errorf("reshuffle must stamp lastCycleStart, got %d", state.LastCycleStartMs)
	}
	if state.OriginMs != originBefore {
		t.Error("reshuffle must NOT move the origin; only Replace and hard reset do")
	}
	if state.CycleComplete() {
		t.Error("cycle must not be complete right after reshuffle")
	}
}
