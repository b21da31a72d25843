// Package catalog fetches track metadata from the upstream catalog.
package catalog

import (
	"context"
	"errors"

	"schoolradio/internal/models"
)

// ErrCatalogFetch wraps upstream network/quota errors. The engine skips the
// reconcile pass for that cycle and keeps the active playlist untouched.
var ErrCatalogFetch = errors.New("catalog fetch failed")

// ErrEmptyCatalog means the upstream playlist has zero usable tracks.
// This one surfaces to listeners: there is nothing to schedule.
var ErrEmptyCatalog = errors.New("catalog returned no tracks")

// Source returns the ordered list of track descriptors for a catalog ID.
type Source interface {
	FetchPlaylist(ctx context.Context, catalogID string) ([]models.Track, error)
}
