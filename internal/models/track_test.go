package models

import (
	"testing"
	"time"
)

func TestParseISODuration(t *testing.T) {
	defaultMs := DefaultTrackDuration.Milliseconds()

	cases := []struct {
		in   string
		want int64
	}{
		{"PT4M13S", 253_000},
		{"PT1H2M3S", 3_723_000},
		{"PT45S", 45_000},
		{"PT2M", 120_000},
		{"PT1H", 3_600_000},
		{"P1DT2H", 93_600_000},
		{"PT3M7.5S", 187_500},
		// Everything unusable falls back to the 3-minute default.
		{"", defaultMs},
		{"garbage", defaultMs},
		{"P0D", defaultMs}, // live streams report zero-length durations
		{"PT0S", defaultMs},
	}

	for _, tc := range cases {
		if got := ParseISODuration(tc.in); got != tc.want {
			t.Errorf("ParseISODuration(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestEffectiveDuration(t *testing.T) {
	known := Track{ID: "a", DurationMs: 95_000}
	if known.EffectiveDurationMs() != 95_000 {
		t.Errorf("known duration must pass through, got %d", known.EffectiveDurationMs())
	}

	unknown := Track{ID: "b"}
	if unknown.EffectiveDurationMs() != DefaultTrackDuration.Milliseconds() {
		t.Errorf("missing duration must default, got %d", unknown.EffectiveDurationMs())
	}
}

func TestTotalDurationMs(t *testing.T) {
	state := &PlaylistState{Playlist: []Track{
		{ID: "a", DurationMs: 60_000},
		{ID: "b"}, // defaults to 3 minutes
	}}
	want := 60_000 + DefaultTrackDuration.Milliseconds()
	if got := state.TotalDurationMs(); got != want {
		t.Errorf("TotalDurationMs = %d, want %d", got, want)
	}
}

func TestSessionStale(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	s := ListenerSession{LastSeen: now.Add(-10 * time.Minute)}
	if !s.Stale(now, 5*time.Minute) {
		t.Error("10 minute old heartbeat must be stale at a 5 minute threshold")
	}
}
