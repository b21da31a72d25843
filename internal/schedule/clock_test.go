package schedule

import (
	"context"
	"testing"
	"time"

	"schoolradio/internal/events"
	"schoolradio/internal/statestore"
)

// testRecords creates a throwaway sqlite-backed record set.
func testRecords(t *testing.T, name string) *statestore.Records {
	t.Helper()
	cache, err := statestore.NewCache("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open in-memory cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return statestore.NewRecords(cache)
}

func TestVirtualClockMintsOnce(t *testing.T) {
	records := testRecords(t, "clock_mint")
	boot := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	vc := NewVirtualClock(records, MockClock{MockTime: boot}, &events.Recorder{})

	ctx := context.Background()
	first := vc.Origin(ctx)
	if first != boot.UnixMilli() {
		t.Fatalf("first origin should be minted at now, got %d", first)
	}

	// A later call (even with a later clock) must return the stored origin.
	vcLater := NewVirtualClock(records, MockClock{MockTime: boot.Add(time.Hour)}, &events.Recorder{})
	second := vcLater.Origin(ctx)
	if second != first {
		t.Errorf("origin must be stable across nodes: %d != %d", second, first)
	}
}

func TestVirtualClockAdoptsExisting(t *testing.T) {
	records := testRecords(t, "clock_adopt")
	ctx := context.Background()

	existing := time.Date(2026, 3, 1, 6, 30, 0, 0, time.UTC).UnixMilli()
	if err := records.SaveOrigin(ctx, existing); err != nil {
		t.Fatalf("seed origin: %v", err)
	}

	vc := NewVirtualClock(records, MockClock{MockTime: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}, &events.Recorder{})
	if got := vc.Origin(ctx); got != existing {
		t.Errorf("booting node must adopt the shared origin %d, got %d", existing, got)
	}
}

func TestVirtualClockReset(t *testing.T) {
	records := testRecords(t, "clock_reset")
	ctx := context.Background()

	boot := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rec := &events.Recorder{}
	vc := NewVirtualClock(records, MockClock{MockTime: boot}, rec)
	first := vc.Origin(ctx)

	later := boot.Add(2 * time.Hour)
	vc2 := NewVirtualClock(records, MockClock{MockTime: later}, rec)
	reset := vc2.Reset(ctx)

	if reset != later.UnixMilli() {
		t.Errorf("reset must stamp now, got %d", reset)
	}
	if reset <= first {
		t.Error("reset origin must move forward")
	}
	if got := vc.Origin(ctx); got != reset {
		t.Errorf("all nodes must see the reset origin, got %d want %d", got, reset)
	}
	if rec.Count(events.KindOriginReset) != 1 {
		t.Errorf("expected one origin_reset event, got %d", rec.Count(events.KindOriginReset))
	}
}
