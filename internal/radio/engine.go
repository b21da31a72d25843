// Package radio runs the synchronized scheduling engine: the per-node tick
// loop, catalog reconciliation and presence garbage collection.
package radio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"schoolradio/internal/catalog"
	"schoolradio/internal/config"
	"schoolradio/internal/events"
	"schoolradio/internal/models"
	"schoolradio/internal/presence"
	"schoolradio/internal/schedule"
	"schoolradio/internal/statestore"
)

// ErrNoSchedule is surfaced while the engine has nothing to schedule:
// catalog empty or initialization impossible.
var ErrNoSchedule = errors.New("no active schedule")

type Engine struct {
	cfg     *config.Config
	records *statestore.Records
	source  catalog.Source
	tracker *presence.Tracker
	vclock  *schedule.VirtualClock
	clock   schedule.Clock
	sink    events.Sink

	// state is this node's consistent view of the shared record. Guarded by
	// mu, and immutable once published: every change swaps in a fresh copy,
	// so a pointer handed out by currentState stays safe to read lock-free.
	mu    sync.Mutex
	state *models.PlaylistState

	// snapshot is what the API reads, swapped atomically each tick.
	snapshot atomic.Pointer[models.PlaybackInfo]

	// degraded holds the user-visible failure (empty catalog), if any.
	degraded atomic.Pointer[string]

	// wake lets subscription pushes and manual refreshes nudge the
	// reconcile loop ahead of its next poll.
	wake chan struct{}
}

func New(cfg *config.Config, records *statestore.Records, source catalog.Source,
	tracker *presence.Tracker, vclock *schedule.VirtualClock, clock schedule.Clock,
	sink events.Sink) *Engine {
	return &Engine{
		cfg:     cfg,
		records: records,
		source:  source,
		tracker: tracker,
		vclock:  vclock,
		clock:   clock,
		sink:    sink,
		wake:    make(chan struct{}, 1),
	}
}

// Run bootstraps the shared record and drives the three loops until ctx is
// canceled. Ticks never overlap: each loop is a single goroutine.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.bootstrap(ctx); err != nil {
		return err
	}

	// Push notifications are a latency optimization only; polling remains
	// the source of truth even when the subscription works.
	unsub, err := e.records.SubscribePlaylist(ctx, e.Nudge)
	if err == nil {
		defer unsub()
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); e.tickLoop(ctx) }()
	go func() { defer wg.Done(); e.reconcileLoop(ctx) }()
	go func() { defer wg.Done(); e.gcLoop(ctx) }()
	wg.Wait()
	return nil
}

// bootstrap loads the shared record, building it from the catalog when no
// node has ever run before. Only a total failure (no catalog, no cached
// state) is fatal.
func (e *Engine) bootstrap(ctx context.Context) error {
	sctx, cancel := e.storeCtx(ctx)
	state, err := e.records.LoadPlaylistState(sctx)
	cancel()
	if err != nil {
		log.Printf("⚠️ State load failed on boot: %v", err)
	}

	if state.Initialized() {
		e.setState(state)
		log.Printf("📻 Resuming schedule: %d tracks, origin %d", len(state.Playlist), state.OriginMs)
		return nil
	}

	if rebuildErr := e.rebuild(ctx, false); rebuildErr != nil {
		if err != nil {
			return fmt.Errorf("initialization failed: no catalog and no cached state: %w", rebuildErr)
		}
		return rebuildErr
	}
	return nil
}

// rebuild replaces the shared record from a fresh catalog snapshot. With
// restartClock the virtual clock is stamped to now (Replace reconciliation,
// admin reset); without it an origin another node already minted is adopted,
// so two first-booting nodes converge instead of racing resets.
func (e *Engine) rebuild(ctx context.Context, restartClock bool) error {
	tracks, err := e.source.FetchPlaylist(ctx, e.cfg.Catalog.PlaylistID)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyCatalog) {
			e.markDegraded(err.Error())
			e.sink.Emit(events.Event{Kind: events.KindCatalogEmpty, Fields: nil})
		}
		return err
	}

	state := schedule.InitializeState(tracks, e.clock.Now())

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()
	if restartClock {
		state.OriginMs = e.vclock.Reset(sctx)
	} else {
		state.OriginMs = e.vclock.Origin(sctx)
	}
	if err := e.records.SavePlaylistState(sctx, state); err != nil && !errors.Is(err, statestore.ErrStoreUnavailable) {
		return err
	}

	e.setState(state)
	e.clearDegraded()
	log.Printf("🔀 New schedule built: %d tracks", len(state.Playlist))
	return nil
}

// ---------------------------------------------------------
// Tick loop
// ---------------------------------------------------------

func (e *Engine) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// tick resolves the current position, publishes it for the API, and does
// the two pieces of bookkeeping the resolver itself must never do: marking
// the current track played and reshuffling on cycle exhaustion.
func (e *Engine) tick(ctx context.Context) {
	ticksTotal.Inc()

	e.mu.Lock()
	state := e.state
	if !state.Initialized() {
		e.mu.Unlock()
		e.snapshot.Store(nil)
		return
	}

	now := e.clock.Now()
	info := schedule.PlaybackInfoAt(state, now, e.cfg.Server.UpcomingTracks)
	e.snapshot.Store(info)

	// Best-effort bookkeeping write, only when the index is newly played.
	// The published record never changes in place: marking swaps in a copy.
	var toSave *models.PlaylistState
	if !containsIndex(state.PlayedTracks, info.Index) {
		copied := *state
		copied.PlayedTracks = append([]int(nil), state.PlayedTracks...)
		copied.MarkPlayed(info.Index)
		e.state = &copied
		state = &copied
		toSave = &copied
	}
	cycleDone := state.CycleComplete()
	e.mu.Unlock()

	if toSave != nil {
		sctx, cancel := e.storeCtx(ctx)
		_ = e.records.SavePlaylistState(sctx, toSave)
		cancel()
	}

	if cycleDone {
		e.finishCycle(ctx)
	}
}

// finishCycle reshuffles exactly once per completed cycle. The guard against
// concurrent nodes is a re-read: only reshuffle if the freshly loaded shared
// record still says the cycle is complete. A second writer finds the played
// set already cleared and backs off.
func (e *Engine) finishCycle(ctx context.Context) {
	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	fresh, err := e.records.LoadPlaylistState(sctx)
	if err != nil || !fresh.Initialized() {
		return
	}
	if !fresh.CycleComplete() {
		// Someone else already reshuffled.
		e.setState(fresh)
		return
	}

	schedule.Reshuffle(fresh, e.clock.Now())
	if err := e.records.SavePlaylistState(sctx, fresh); err != nil && !errors.Is(err, statestore.ErrStoreUnavailable) {
		return
	}
	e.setState(fresh)
	reshufflesTotal.Inc()
	e.sink.Emit(events.Event{Kind: events.KindReshuffle, Fields: map[string]any{
		"tracks": len(fresh.Playlist),
	}})
}

// ---------------------------------------------------------
// Reconcile loop
// ---------------------------------------------------------

func (e *Engine) reconcileLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-e.wake:
		}
		if err := e.reconcilePass(ctx); err != nil {
			log.Printf("⚠️ Reconcile pass skipped: %v", err)
		}
	}
}

// Nudge wakes the reconcile loop ahead of its next poll. Called by the
// store subscription and by the manual refresh endpoint.
func (e *Engine) Nudge() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// reconcilePass fetches the catalog and applies merge-or-replace semantics.
// Fetch failures skip the cycle and leave the active playlist untouched.
func (e *Engine) reconcilePass(ctx context.Context) error {
	snapshot, err := e.source.FetchPlaylist(ctx, e.cfg.Catalog.PlaylistID)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyCatalog) {
			e.markDegraded(err.Error())
			e.sink.Emit(events.Event{Kind: events.KindCatalogEmpty, Fields: nil})
			return err
		}
		catalogErrors.Inc()
		e.sink.Emit(events.Event{Kind: events.KindCatalogFailed, Fields: map[string]any{
			"error": err.Error(),
		}})
		return err
	}
	e.clearDegraded()

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	// Always reconcile against the freshest shared copy, not our own view.
	active, err := e.records.LoadPlaylistState(sctx)
	if err == nil && active.Initialized() {
		e.setState(active)
	} else {
		active = e.currentState()
	}
	if !active.Initialized() {
		return e.rebuild(ctx, false)
	}

	rec := schedule.Reconcile(active.Playlist, snapshot)
	reconcileTotal.WithLabelValues(rec.Action.String()).Inc()

	switch rec.Action {
	case schedule.Unchanged:
		return nil

	case schedule.Merge:
		// Appends never disturb the in-flight schedule: origin and played
		// set stay exactly as they are. active was published above, so the
		// merge grows a fresh copy rather than the record ticks are reading.
		merged := *active
		merged.Playlist = make([]models.Track, 0, len(active.Playlist)+len(rec.Added))
		merged.Playlist = append(merged.Playlist, active.Playlist...)
		merged.Playlist = append(merged.Playlist, rec.Added...)
		if err := e.records.SavePlaylistState(sctx, &merged); err != nil && !errors.Is(err, statestore.ErrStoreUnavailable) {
			return err
		}
		e.setState(&merged)
		e.sink.Emit(events.Event{Kind: events.KindMerge, Fields: map[string]any{
			"added": len(rec.Added), "tracks": len(merged.Playlist),
		}})
		return nil

	default: // Replace
		e.sink.Emit(events.Event{Kind: events.KindReplace, Fields: map[string]any{
			"tracks": len(snapshot),
		}})
		return e.rebuild(ctx, true)
	}
}

// ---------------------------------------------------------
// Presence GC loop
// ---------------------------------------------------------

func (e *Engine) gcLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.GCInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sctx, cancel := e.storeCtx(ctx)
			if _, err := e.tracker.Collect(sctx); err != nil {
				log.Printf("⚠️ Presence GC failed: %v", err)
			}
			if stats, err := e.tracker.Stats(sctx); err == nil {
				activeListeners.Set(float64(stats.Active))
			}
			cancel()
		}
	}
}

// ---------------------------------------------------------
// API surface
// ---------------------------------------------------------

// CurrentPlaybackInfo returns the last resolved position, or an error while
// the station has nothing to schedule.
func (e *Engine) CurrentPlaybackInfo() (*models.PlaybackInfo, error) {
	if msg := e.degraded.Load(); msg != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSchedule, *msg)
	}
	info := e.snapshot.Load()
	if info == nil {
		// First tick may not have fired yet; resolve on demand.
		state := e.currentState()
		if !state.Initialized() {
			return nil, ErrNoSchedule
		}
		return schedule.PlaybackInfoAt(state, e.clock.Now(), e.cfg.Server.UpcomingTracks), nil
	}
	return info, nil
}

// Playlist returns the active schedule order.
func (e *Engine) Playlist() []models.Track {
	state := e.currentState()
	if !state.Initialized() {
		return nil
	}
	out := make([]models.Track, len(state.Playlist))
	copy(out, state.Playlist)
	return out
}

func (e *Engine) ListenerStats(ctx context.Context) (models.Stats, error) {
	sctx, cancel := e.storeCtx(ctx)
	defer cancel()
	return e.tracker.Stats(sctx)
}

// RefreshPlaylist triggers one reconcile pass on demand.
func (e *Engine) RefreshPlaylist(ctx context.Context) error {
	return e.reconcilePass(ctx)
}

// Reset is the administrative hard reset: rebuild from the catalog and
// restart the clock regardless of the current record.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	e.state = nil
	e.mu.Unlock()
	return e.rebuild(ctx, true)
}

// ---------------------------------------------------------

func (e *Engine) currentState() *models.PlaylistState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(state *models.PlaylistState) {
	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
}

func (e *Engine) markDegraded(msg string) {
	e.degraded.Store(&msg)
	e.snapshot.Store(nil)
}

func (e *Engine) clearDegraded() {
	e.degraded.Store(nil)
}

func (e *Engine) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.cfg.StoreTimeout())
}

func containsIndex(set []int, index int) bool {
	for _, v := range set {
		if v == index {
			return true
		}
	}
	return false
}
