// Package dashboard holds the state container behind the dashboard views: it
// loads an aggregate payload, exposes a loading/error/data snapshot and can be
// refreshed by hand. It knows nothing about what the payload means.
package dashboard

import (
	"context"
	"errors"
	"sync"
)

var errNoData = errors.New("fetch returned no data")

// FetchFunc loads the aggregate. Credentials travel in ctx.
type FetchFunc[T any] func(ctx context.Context) (*T, error)

// Snapshot is a copy of the loader state at one moment.
//
// Data is the last successful payload. It survives later failures, so Error
// and a non-nil Data can be observed together.
type Snapshot[T any] struct {
	Data    *T
	Loading bool
	Error   bool
}

// Loader starts in the loading state with no data.
//
// Concurrent Refresh calls are not serialised or cancelled: whichever fetch
// resolves last writes the state, even when it was issued first. Loading is
// cleared by the first call to finish while others may still be in flight.
// A fetch that never returns keeps Loading set until its context ends.
type Loader[T any] struct {
	fetch FetchFunc[T]

	mu      sync.RWMutex
	data    *T
	loading bool
	failed  bool
}

func NewLoader[T any](fetch FetchFunc[T]) *Loader[T] {
	return &Loader[T]{fetch: fetch, loading: true}
}

// Refresh marks the loader as loading, runs the fetch and records the
// outcome. The fetch error is returned for logging only; callers render from
// State.
func (l *Loader[T]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.failed = false
	l.mu.Unlock()

	data, err := l.fetch(ctx)
	if err == nil && data == nil {
		err = errNoData
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.failed = true
	} else {
		l.data = data
	}
	l.loading = false
	return err
}

func (l *Loader[T]) State() Snapshot[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Snapshot[T]{Data: l.data, Loading: l.loading, Error: l.failed}
}
