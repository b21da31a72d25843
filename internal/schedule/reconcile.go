package schedule

import "schoolradio/internal/models"

// Action says how a fresh catalog snapshot relates to the active playlist.
type Action int

const (
	// Unchanged: same track set, nothing to do.
	Unchanged Action = iota
	// Merge: snapshot only adds tracks; append them without touching the
	// in-flight schedule. Listeners never notice.
	Merge
	// Replace: a track the schedule references was removed upstream.
	// Continuity cannot be guaranteed, so the playlist is rebuilt and the
	// origin reset. This is the only path allowed to interrupt a broadcast.
	Replace
)

func (a Action) String() string {
	switch a {
	case Merge:
		return "merge"
	case Replace:
		return "replace"
	default:
		return "unchanged"
	}
}

// Reconciliation is the outcome of comparing active playlist vs snapshot.
type Reconciliation struct {
	Action Action
	// Added holds the new tracks to append, snapshot order, Merge only.
	Added []models.Track
}

// Reconcile compares the active playlist against a fresh catalog snapshot
// by ID set. Pure: it decides, the engine acts.
func Reconcile(active, snapshot []models.Track) Reconciliation {
	snapshotIDs := make(map[string]bool, len(snapshot))
	for _, t := range snapshot {
		snapshotIDs[t.ID] = true
	}

	for _, t := range active {
		if !snapshotIDs[t.ID] {
			return Reconciliation{Action: Replace}
		}
	}

	activeIDs := make(map[string]bool, len(active))
	for _, t := range active {
		activeIDs[t.ID] = true
	}

	var added []models.Track
	for _, t := range snapshot {
		if !activeIDs[t.ID] {
			added = append(added, t)
		}
	}

	if len(added) == 0 {
		return Reconciliation{Action: Unchanged}
	}
	return Reconciliation{Action: Merge, Added: added}
}
