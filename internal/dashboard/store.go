package dashboard

import (
	"sync"
	"time"
)

type storeEntry[T any] struct {
	loader   *Loader[T]
	lastUsed time.Time
}

// Store keeps one Loader per signed-in user so the last good payload outlives
// a single request. A user's loader is created on first use and removed by
// Drop (logout) or after idleTTL without use.
type Store[T any] struct {
	fetch   FetchFunc[T]
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*storeEntry[T]
}

func NewStore[T any](fetch FetchFunc[T], idleTTL time.Duration) *Store[T] {
	return &Store[T]{
		fetch:   fetch,
		idleTTL: idleTTL,
		now:     time.Now,
		entries: make(map[string]*storeEntry[T]),
	}
}

func (s *Store[T]) Get(userID string) *Loader[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	e, ok := s.entries[userID]
	if !ok {
		e = &storeEntry[T]{loader: NewLoader(s.fetch)}
		s.entries[userID] = e
	}
	e.lastUsed = now
	return e.loader
}

func (s *Store[T]) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store[T]) pruneLocked(now time.Time) {
	if s.idleTTL <= 0 {
		return
	}
	for id, e := range s.entries {
		if now.Sub(e.lastUsed) > s.idleTTL {
			delete(s.entries, id)
		}
	}
}
