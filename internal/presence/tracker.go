// Package presence tracks who is currently listening.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"schoolradio/internal/events"
	"schoolradio/internal/models"
	"schoolradio/internal/schedule"
	"schoolradio/internal/statestore"
)

// DefaultStaleAfter is how long a session may miss heartbeats before the
// garbage collector deactivates it.
const DefaultStaleAfter = 5 * time.Minute

// Tracker maintains the shared session map. The published active count is a
// view over that map, recomputed on every mutation by scanning, so missed
// disconnects (crashed tabs, cut networks) self-heal within one GC pass.
type Tracker struct {
	records    *statestore.Records
	clock      schedule.Clock
	sink       events.Sink
	staleAfter time.Duration
}

func NewTracker(records *statestore.Records, clock schedule.Clock, sink events.Sink, staleAfter time.Duration) *Tracker {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Tracker{records: records, clock: clock, sink: sink, staleAfter: staleAfter}
}

// Connect registers a session. An empty id gets a fresh time+random one.
// Returns the session as stored.
func (t *Tracker) Connect(ctx context.Context, id string) (models.ListenerSession, error) {
	if id == "" {
		id = fmt.Sprintf("%d-%s", t.clock.Now().UnixMilli(), uuid.NewString()[:8])
	}

	sessions, err := t.records.LoadSessions(ctx)
	if err != nil {
		return models.ListenerSession{}, err
	}

	now := t.clock.Now()
	session := models.ListenerSession{
		ID:          id,
		ConnectedAt: now,
		LastSeen:    now,
		Active:      true,
	}
	if existing, ok := sessions[id]; ok {
		session.ConnectedAt = existing.ConnectedAt
	}
	sessions[id] = session

	if err := t.records.SaveSessions(ctx, sessions); err != nil {
		return models.ListenerSession{}, err
	}

	// Total-ever only grows; best effort, the active count never depends on it.
	if total, err := t.records.LoadSessionsTotal(ctx); err == nil {
		_ = t.records.SaveSessionsTotal(ctx, total+1)
	}

	return session, nil
}

// Heartbeat refreshes a session's last-seen stamp. An unknown id is
// re-registered: the client outlived a store wipe and is still listening.
func (t *Tracker) Heartbeat(ctx context.Context, id string) error {
	sessions, err := t.records.LoadSessions(ctx)
	if err != nil {
		return err
	}

	now := t.clock.Now()
	session, ok := sessions[id]
	if !ok {
		session = models.ListenerSession{ID: id, ConnectedAt: now}
	}
	session.LastSeen = now
	session.Active = true
	sessions[id] = session

	return t.records.SaveSessions(ctx, sessions)
}

// Disconnect marks a session inactive. Unknown ids are a no-op; the client
// may have been reaped already.
func (t *Tracker) Disconnect(ctx context.Context, id string) error {
	sessions, err := t.records.LoadSessions(ctx)
	if err != nil {
		return err
	}
	session, ok := sessions[id]
	if !ok {
		return nil
	}
	session.Active = false
	session.LastSeen = t.clock.Now()
	sessions[id] = session
	return t.records.SaveSessions(ctx, sessions)
}

// Collect is the GC pass: deactivate every active session whose heartbeat
// went stale. Returns how many were reaped.
func (t *Tracker) Collect(ctx context.Context) (int, error) {
	sessions, err := t.records.LoadSessions(ctx)
	if err != nil {
		return 0, err
	}

	now := t.clock.Now()
	reaped := 0
	for id, session := range sessions {
		if session.Active && session.Stale(now, t.staleAfter) {
			session.Active = false
			sessions[id] = session
			reaped++
		}
	}

	if reaped == 0 {
		return 0, nil
	}
	if err := t.records.SaveSessions(ctx, sessions); err != nil {
		return 0, err
	}
	t.sink.Emit(events.Event{Kind: events.KindSessionsReaped, Fields: map[string]any{
		"reaped": reaped,
	}})
	return reaped, nil
}

// Stats recomputes the listener aggregate by scanning the session set.
func (t *Tracker) Stats(ctx context.Context) (models.Stats, error) {
	sessions, err := t.records.LoadSessions(ctx)
	if err != nil {
		return models.Stats{}, err
	}

	active := 0
	for _, session := range sessions {
		if session.Active {
			active++
		}
	}

	total, err := t.records.LoadSessionsTotal(ctx)
	if err != nil {
		total = 0
	}
	return models.Stats{Active: active, Total: total}, nil
}
