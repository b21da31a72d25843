package presence

import (
	"context"
	"testing"
	"time"

	"schoolradio/internal/events"
	"schoolradio/internal/models"
	"schoolradio/internal/schedule"
	"schoolradio/internal/statestore"
)

func newTestTracker(t *testing.T, name string, clock schedule.Clock) (*Tracker, *events.Recorder) {
	t.Helper()
	cache, err := statestore.NewCache("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open in-memory cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	rec := &events.Recorder{}
	return NewTracker(statestore.NewRecords(cache), clock, rec, 5*time.Minute), rec
}

func TestConnectAndStats(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	tracker, _ := newTestTracker(t, "presence_connect", schedule.MockClock{MockTime: now})
	ctx := context.Background()

	a, err := tracker.Connect(ctx, "")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if a.ID == "" {
		t.Fatal("connect must mint a session id when none is given")
	}
	if _, err := tracker.Connect(ctx, "listener-b"); err != nil {
		t.Fatalf("connect: %v", err)
	}

	stats, err := tracker.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Active != 2 {
		t.Errorf("expected 2 active, got %d", stats.Active)
	}
	if stats.Total != 2 {
		t.Errorf("expected total 2, got %d", stats.Total)
	}
}

func TestDisconnectRecomputesActive(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	tracker, _ := newTestTracker(t, "presence_disconnect", schedule.MockClock{MockTime: now})
	ctx := context.Background()

	tracker.Connect(ctx, "a")
	tracker.Connect(ctx, "b")
	if err := tracker.Disconnect(ctx, "a"); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	stats, _ := tracker.Stats(ctx)
	if stats.Active != 1 {
		t.Errorf("expected 1 active after disconnect, got %d", stats.Active)
	}
	// Total never decreases.
	if stats.Total != 2 {
		t.Errorf("total must not decrease, got %d", stats.Total)
	}

	// Disconnecting an unknown session is a no-op, not an error.
	if err := tracker.Disconnect(ctx, "ghost"); err != nil {
		t.Errorf("unknown disconnect must be a no-op: %v", err)
	}
}

func TestCollectReapsStaleSessions(t *testing.T) {
	connectTime := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	cache, err := statestore.NewCache("file:presence_gc?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	records := statestore.NewRecords(cache)
	rec := &events.Recorder{}
	ctx := context.Background()

	// A heartbeats continuously; B went silent right after connecting.
	early := NewTracker(records, schedule.MockClock{MockTime: connectTime}, rec, 5*time.Minute)
	early.Connect(ctx, "A")
	early.Connect(ctx, "B")

	sixLater := connectTime.Add(6 * time.Minute)
	late := NewTracker(records, schedule.MockClock{MockTime: sixLater}, rec, 5*time.Minute)
	if err := late.Heartbeat(ctx, "A"); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}

	reaped, err := late.Collect(ctx)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if reaped != 1 {
		t.Fatalf("expected exactly 1 reaped session, got %d", reaped)
	}

	stats, _ := late.Stats(ctx)
	if stats.Active != 1 {
		t.Errorf("crashed client must self-heal out of the count: active=%d", stats.Active)
	}
	if rec.Count(events.KindSessionsReaped) != 1 {
		t.Errorf("expected one reaped event, got %d", rec.Count(events.KindSessionsReaped))
	}

	// A second pass finds nothing new.
	again, _ := late.Collect(ctx)
	if again != 0 {
		t.Errorf("second GC pass must reap nothing, got %d", again)
	}
}

func TestHeartbeatResurrectsUnknownSession(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	tracker, _ := newTestTracker(t, "presence_resurrect", schedule.MockClock{MockTime: now})
	ctx := context.Background()

	// The store was wiped but the client is still out there heartbeating.
	if err := tracker.Heartbeat(ctx, "survivor"); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}

	stats, _ := tracker.Stats(ctx)
	if stats.Active != 1 {
		t.Errorf("heartbeat must re-register an unknown session, active=%d", stats.Active)
	}
}

func TestStaleHelper(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	s := models.ListenerSession{LastSeen: now.Add(-4 * time.Minute)}
	if s.Stale(now, 5*time.Minute) {
		t.Error("4 minutes is inside a 5 minute threshold")
	}
	if !s.Stale(now, 3*time.Minute) {
		t.Error("4 minutes is beyond a 3 minute threshold")
	}
}
