// Package statestore is the access layer for the shared station record.
//
// The primary store is a Valkey instance every node talks to; a local sqlite
// cache shadows it so a node that loses the network keeps scheduling from the
// last known state instead of going dark. The merge policy between the two
// tiers lives in Tiered and nowhere else.
package statestore

import (
	"context"
	"errors"
)

// ErrStoreUnavailable is returned when the primary store cannot be reached
// and the operation was served (or mirrored) by the local cache instead.
// Callers treat it as a soft condition, never fatal.
var ErrStoreUnavailable = errors.New("state store unavailable")

// Store is a subscribable key/value store. All methods honor ctx deadlines;
// the engine wraps every call in a bounded timeout.
type Store interface {
	// Get returns the raw value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes the value atomically and notifies subscribers.
	Set(ctx context.Context, key string, value []byte) error

	// Subscribe registers fn for change notifications on key and returns an
	// unsubscribe func. Implementations that cannot push return a no-op
	// unsubscribe and an error; callers fall back to polling.
	Subscribe(ctx context.Context, key string, fn func()) (func(), error)

	Close() error
}
