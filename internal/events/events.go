// Package events is the structured event sink the engine reports through.
// It replaces ad hoc rate-limited logging with an injected collaborator so
// tests can assert on emitted events without timing games.
package events

import (
	"log/slog"
	"sync"
)

// Event kinds emitted by the engine and its collaborators.
const (
	KindStoreFallback   = "store.fallback"
	KindSubscribeFailed = "store.subscribe_failed"
	KindCatalogFailed   = "catalog.fetch_failed"
	KindCatalogEmpty    = "catalog.empty"
	KindReshuffle       = "schedule.reshuffle"
	KindMerge           = "schedule.merge"
	KindReplace         = "schedule.replace"
	KindOriginReset     = "schedule.origin_reset"
	KindSessionsReaped  = "presence.reaped"
)

type Event struct {
	Kind   string
	Fields map[string]any
}

type Sink interface {
	Emit(e Event)
}

// SlogSink writes events as structured log lines.
type SlogSink struct {
	Logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{Logger: logger}
}

func (s *SlogSink) Emit(e Event) {
	attrs := make([]any, 0, len(e.Fields)*2)
	for k, v := range e.Fields {
		attrs = append(attrs, k, v)
	}
	s.Logger.Info(e.Kind, attrs...)
}

// Recorder captures events for assertions in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Kinds returns the kinds of all recorded events in order.
func (r *Recorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]string, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Count returns how many events of the given kind were recorded.
func (r *Recorder) Count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
