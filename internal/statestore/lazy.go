package statestore

import (
	"context"
	"fmt"
	"sync"
)

// Lazy defers dialing the wrapped store until the first call and keeps
// retrying on later calls while the dial fails. A primary that is down at
// boot is picked up again as soon as it answers, instead of detaching the
// node for its whole lifetime.
type Lazy struct {
	dial func() (Store, error)

	mu    sync.Mutex
	store Store
}

func NewLazy(dial func() (Store, error)) *Lazy {
	return &Lazy{dial: dial}
}

func (l *Lazy) connect() (Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store != nil {
		return l.store, nil
	}
	s, err := l.dial()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	l.store = s
	return s, nil
}

func (l *Lazy) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s, err := l.connect()
	if err != nil {
		return nil, false, err
	}
	return s.Get(ctx, key)
}

func (l *Lazy) Set(ctx context.Context, key string, value []byte) error {
	s, err := l.connect()
	if err != nil {
		return err
	}
	return s.Set(ctx, key, value)
}

func (l *Lazy) Subscribe(ctx context.Context, key string, fn func()) (func(), error) {
	s, err := l.connect()
	if err != nil {
		return func() {}, err
	}
	return s.Subscribe(ctx, key, fn)
}

func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}
