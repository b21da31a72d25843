package statestore

import (
	"context"
	"fmt"

	"schoolradio/internal/events"
)

// Tiered layers the primary shared store over the local fallback cache.
// The consistency relaxation lives entirely here: reads prefer the primary
// and silently degrade to the cache; writes go to both, and a failed primary
// write is downgraded to ErrStoreUnavailable after the cache copy lands.
type Tiered struct {
	primary  Store
	fallback Store
	sink     events.Sink
}

func NewTiered(primary, fallback Store, sink events.Sink) *Tiered {
	return &Tiered{primary: primary, fallback: fallback, sink: sink}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := t.primary.Get(ctx, key)
	if err == nil {
		if ok {
			// Keep the cache warm with whatever the primary holds.
			_ = t.fallback.Set(ctx, key, value)
		}
		return value, ok, nil
	}

	t.sink.Emit(events.Event{Kind: events.KindStoreFallback, Fields: map[string]any{
		"op": "get", "key": key, "error": err.Error(),
	}})

	value, ok, cacheErr := t.fallback.Get(ctx, key)
	if cacheErr != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return value, ok, nil
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte) error {
	primaryErr := t.primary.Set(ctx, key, value)
	// The cache mirror happens regardless, so a node that goes offline right
	// after a write still reboots from its own latest state.
	cacheErr := t.fallback.Set(ctx, key, value)

	if primaryErr != nil {
		t.sink.Emit(events.Event{Kind: events.KindStoreFallback, Fields: map[string]any{
			"op": "set", "key": key, "error": primaryErr.Error(),
		}})
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, primaryErr)
	}
	return cacheErr
}

// Subscribe delegates to the primary only. Push is an optimization; a failed
// subscription means "poll harder", not "stop".
func (t *Tiered) Subscribe(ctx context.Context, key string, fn func()) (func(), error) {
	unsub, err := t.primary.Subscribe(ctx, key, fn)
	if err != nil {
		t.sink.Emit(events.Event{Kind: events.KindSubscribeFailed, Fields: map[string]any{
			"key": key, "error": err.Error(),
		}})
	}
	return unsub, err
}

func (t *Tiered) Close() error {
	pErr := t.primary.Close()
	fErr := t.fallback.Close()
	if pErr != nil {
		return pErr
	}
	return fErr
}
