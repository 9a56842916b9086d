// Package ratelimit implements fixed-window request limiting keyed by
// client identity.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Status is the outcome of a single Hit.
type Status struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Store counts hits per key in fixed windows. Implementations must make
// each Hit atomic with respect to concurrent callers on the same key.
type Store interface {
	// Hit records one request against key. When the window is exhausted
	// the call is rejected without incrementing the counter.
	Hit(ctx context.Context, key string, limit int, window time.Duration) (Status, error)

	// Reset clears all state. Test isolation only.
	Reset(ctx context.Context) error
}

type fixedWindow struct {
	count int
	reset time.Time
}

// MemoryStore keeps all windows in one map under a single mutex. At this
// request rate a global lock is cheaper than per-key locking.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]*fixedWindow
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*fixedWindow)}
}

// Hit implements Store.
func (s *MemoryStore) Hit(_ context.Context, key string, limit int, window time.Duration) (Status, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.data[key]
	if !ok || !now.Before(w.reset) {
		w = &fixedWindow{reset: now.Add(window)}
		s.data[key] = w
	}

	if w.count >= limit {
		retry := w.reset.Sub(now)
		if retry < 0 {
			retry = 0
		}
		return Status{Allowed: false, Remaining: 0, ResetAt: w.reset, RetryAfter: retry}, nil
	}

	w.count++
	return Status{Allowed: true, Remaining: limit - w.count, ResetAt: w.reset}, nil
}

// Reset implements Store.
func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]*fixedWindow)
	return nil
}

// Prune drops windows whose reset instant has passed and reports how many
// were removed. Pruning never changes Hit semantics: an expired window is
// reinitialized on access anyway. Called periodically by the janitor so
// the key map stays bounded.
func (s *MemoryStore) Prune() int {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for key, w := range s.data {
		if !now.Before(w.reset) {
			delete(s.data, key)
			pruned++
		}
	}
	return pruned
}
