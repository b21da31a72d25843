package models

import (
	"regexp"
	"strconv"
	"time"
)

// DefaultTrackDuration is substituted whenever a track arrives without a
// usable duration (private videos, parse failures, live streams).
const DefaultTrackDuration = 3 * time.Minute

// Track is an immutable descriptor of one catalog item. Identity is the
// catalog ID only; two tracks with the same ID are the same track.
type Track struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Channel    string            `json:"channel"`
	Thumbnails map[string]string `json:"thumbnails,omitempty"` // size name -> URL
	DurationMs int64             `json:"duration_ms"`          // 0 = unknown
}

// EffectiveDurationMs returns the duration used for schedule math.
func (t Track) EffectiveDurationMs() int64 {
	if t.DurationMs <= 0 {
		return DefaultTrackDuration.Milliseconds()
	}
	return t.DurationMs
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?$`)

// ParseISODuration converts an ISO-8601 duration string ("PT4M13S") into
// milliseconds. Anything unparseable falls back to the default duration;
// malformed catalog data must never break scheduling.
func ParseISODuration(s string) int64 {
	if s == "" {
		return DefaultTrackDuration.Milliseconds()
	}
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return DefaultTrackDuration.Milliseconds()
	}

	var total float64
	if m[1] != "" {
		d, _ := strconv.ParseFloat(m[1], 64)
		total += d * 86400
	}
	if m[2] != "" {
		h, _ := strconv.ParseFloat(m[2], 64)
		total += h * 3600
	}
	if m[3] != "" {
		min, _ := strconv.ParseFloat(m[3], 64)
		total += min * 60
	}
	if m[4] != "" {
		sec, _ := strconv.ParseFloat(m[4], 64)
		total += sec
	}

	if total <= 0 {
		// "P0D" and friends: YouTube reports these for live streams.
		return DefaultTrackDuration.Milliseconds()
	}
	return int64(total * 1000)
}
