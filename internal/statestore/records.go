package statestore

import (
	"context"
	"encoding/json"
	"strconv"

	"schoolradio/internal/models"
)

// Keys of the shared records. Everything the station shares lives under
// these few keys; the JSON codec for each is kept here in one place.
const (
	KeyPlaylistState = "playlist_state"
	KeyOrigin        = "origin"
	KeySessions      = "sessions"
	KeySessionsTotal = "sessions_total"
)

// Records wraps a Store with typed accessors for the shared record shapes.
type Records struct {
	store Store
}

func NewRecords(store Store) *Records {
	return &Records{store: store}
}

func (r *Records) Store() Store { return r.store }

// LoadPlaylistState returns the shared playlist record, or nil when no
// record exists yet (first boot).
func (r *Records) LoadPlaylistState(ctx context.Context) (*models.PlaylistState, error) {
	raw, ok, err := r.store.Get(ctx, KeyPlaylistState)
	if err != nil || !ok {
		return nil, err
	}
	var state models.PlaylistState
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupt record is treated as absent; the engine rebuilds it
		// from the catalog.
		return nil, nil
	}
	return &state, nil
}

func (r *Records) SavePlaylistState(ctx context.Context, state *models.PlaylistState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, KeyPlaylistState, raw)
}

func (r *Records) LoadOrigin(ctx context.Context) (int64, bool, error) {
	raw, ok, err := r.store.Get(ctx, KeyOrigin)
	if err != nil || !ok {
		return 0, false, err
	}
	ms, parseErr := strconv.ParseInt(string(raw), 10, 64)
	if parseErr != nil || ms <= 0 {
		return 0, false, nil
	}
	return ms, true, nil
}

func (r *Records) SaveOrigin(ctx context.Context, originMs int64) error {
	return r.store.Set(ctx, KeyOrigin, []byte(strconv.FormatInt(originMs, 10)))
}

func (r *Records) LoadSessions(ctx context.Context) (map[string]models.ListenerSession, error) {
	raw, ok, err := r.store.Get(ctx, KeySessions)
	if err != nil {
		return nil, err
	}
	sessions := make(map[string]models.ListenerSession)
	if !ok {
		return sessions, nil
	}
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return make(map[string]models.ListenerSession), nil
	}
	return sessions, nil
}

func (r *Records) SaveSessions(ctx context.Context, sessions map[string]models.ListenerSession) error {
	raw, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, KeySessions, raw)
}

func (r *Records) LoadSessionsTotal(ctx context.Context) (int64, error) {
	raw, ok, err := r.store.Get(ctx, KeySessionsTotal)
	if err != nil || !ok {
		return 0, err
	}
	total, _ := strconv.ParseInt(string(raw), 10, 64)
	return total, nil
}

func (r *Records) SaveSessionsTotal(ctx context.Context, total int64) error {
	return r.store.Set(ctx, KeySessionsTotal, []byte(strconv.FormatInt(total, 10)))
}

// SubscribePlaylist wakes fn whenever another node rewrites the playlist
// record. Failure is non-fatal; polling remains the source of truth.
func (r *Records) SubscribePlaylist(ctx context.Context, fn func()) (func(), error) {
	return r.store.Subscribe(ctx, KeyPlaylistState, fn)
}
