package schedule

import (
	"context"
	"time"

	"schoolradio/internal/events"
	"schoolradio/internal/statestore"
)

// Clock defines an interface for getting the current time.
// This allows us to inject a fake time during unit tests.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the actual server system time.
type RealClock struct{}

func (c RealClock) Now() time.Time {
	return time.Now()
}

// MockClock implements Clock for testing specific scenarios.
// e.g., "Pretend the origin was exactly 95 seconds ago"
type MockClock struct {
	MockTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.MockTime
}

// ---------------------------------------------------------
// Virtual Clock
// ---------------------------------------------------------

// VirtualClock owns the shared origin timestamp. All position math on every
// node subtracts this one value from wall-clock time, which is what makes
// the station synchronized without a central audio server.
type VirtualClock struct {
	records *statestore.Records
	clock   Clock
	sink    events.Sink

	// localOriginMs holds an origin minted while the store was unreachable.
	// Other nodes may briefly disagree until connectivity returns; that is
	// an accepted relaxation, not an error.
	localOriginMs int64
}

func NewVirtualClock(records *statestore.Records, clock Clock, sink events.Sink) *VirtualClock {
	return &VirtualClock{records: records, clock: clock, sink: sink}
}

// Origin returns the shared origin (unix ms), minting and persisting one if
// none exists. After writing a fresh origin it reads back and adopts
// whatever value actually landed, so two first-booting nodes converge on a
// single origin instead of each keeping their own.
func (v *VirtualClock) Origin(ctx context.Context) int64 {
	if ms, ok, err := v.records.LoadOrigin(ctx); err == nil && ok {
		v.localOriginMs = 0
		return ms
	} else if err == nil {
		// No origin yet: mint one and race to persist it.
		minted := v.clock.Now().UnixMilli()
		if saveErr := v.records.SaveOrigin(ctx, minted); saveErr == nil {
			if stored, ok, rereadErr := v.records.LoadOrigin(ctx); rereadErr == nil && ok {
				return stored
			}
		}
		return v.remember(minted)
	}

	// Store unreachable on read. Reuse a previously minted local origin so
	// this node at least stays consistent with itself.
	if v.localOriginMs != 0 {
		return v.localOriginMs
	}
	minted := v.clock.Now().UnixMilli()
	_ = v.records.SaveOrigin(ctx, minted) // lands in the cache tier at minimum
	return v.remember(minted)
}

// Reset forces a new origin of "now" and persists it. Called whenever the
// playlist is rebuilt from scratch, so elapsed-time math restarts at zero.
func (v *VirtualClock) Reset(ctx context.Context) int64 {
	now := v.clock.Now().UnixMilli()
	if err := v.records.SaveOrigin(ctx, now); err != nil {
		v.remember(now)
	} else {
		v.localOriginMs = 0
	}
	v.sink.Emit(events.Event{Kind: events.KindOriginReset, Fields: map[string]any{
		"origin_ms": now,
	}})
	return now
}

func (v *VirtualClock) remember(ms int64) int64 {
	v.localOriginMs = ms
	return ms
}
