package schedule

import (
	"testing"

	"schoolradio/internal/models"
)

func tracksFromIDs(ids ...string) []models.Track {
	tracks := make([]models.Track, len(ids))
	for i, id := range ids {
		tracks[i] = models.Track{ID: id, DurationMs: 60_000}
	}
	return tracks
}

func TestReconcileIdentical(t *testing.T) {
	active := tracksFromIDs("a", "b", "c", "d", "e")
	// Same set in a different order is still Unchanged: order of the
	// snapshot does not matter, only membership.
	snapshot := tracksFromIDs("e", "d", "c", "b", "a")

	rec := Reconcile(active, snapshot)
	if rec.Action != Unchanged {
		t.Errorf("identical sets must reconcile Unchanged, got %s", rec.Action)
	}
}

func TestReconcileAppendIsMerge(t *testing.T) {
	active := tracksFromIDs("a", "b", "c", "d", "e")
	snapshot := tracksFromIDs("a", "b", "c", "d", "e", "f")

	rec := Reconcile(active, snapshot)
	if rec.Action != Merge {
		t.Fatalf("pure addition must reconcile Merge, got %s", rec.Action)
	}
	if len(rec.Added) != 1 || rec.Added[0].ID != "f" {
		t.Errorf("expected added [f], got %v", rec.Added)
	}
}

func TestReconcileMergePreservesPrefix(t *testing.T) {
	active := tracksFromIDs("c", "a", "b") // in-flight shuffled order
	snapshot := tracksFromIDs("a", "b", "c", "x", "y")

	rec := Reconcile(active, snapshot)
	if rec.Action != Merge {
		t.Fatalf("expected Merge, got %s", rec.Action)
	}

	merged := append(append([]models.Track{}, active...), rec.Added...)
	wantOrder := []string{"c", "a", "b", "x", "y"}
	for i, id := range wantOrder {
		if merged[i].ID != id {
			t.Errorf("merged[%d] = %s, want %s (existing order must stay a prefix)", i, merged[i].ID, id)
		}
	}
}

func TestReconcileRemovalIsReplace(t *testing.T) {
	active := tracksFromIDs("a", "b", "c", "d", "e")

	for _, removed := range []string{"a", "c", "e"} {
		var snapshot []models.Track
		for _, tr := range active {
			if tr.ID != removed {
				snapshot = append(snapshot, tr)
			}
		}
		rec := Reconcile(active, snapshot)
		if rec.Action != Replace {
			t.Errorf("removing %s must reconcile Replace, got %s", removed, rec.Action)
		}
	}
}

func TestReconcileRemovalWinsOverAddition(t *testing.T) {
	active := tracksFromIDs("a", "b", "c")
	snapshot := tracksFromIDs("a", "b", "x") // c removed AND x added

	rec := Reconcile(active, snapshot)
	if rec.Action != Replace {
		t.Errorf("any removal forces Replace even with additions, got %s", rec.Action)
	}
}

func TestReconcileEmptyActive(t *testing.T) {
	rec := Reconcile(nil, tracksFromIDs("a", "b"))
	if rec.Action != Merge {
		t.Errorf("empty active playlist merges everything, got %s", rec.Action)
	}
	if len(rec.Added) != 2 {
		t.Errorf("expected 2 added tracks, got %d", len(rec.Added))
	}
}
