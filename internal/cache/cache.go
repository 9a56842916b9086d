// Package cache provides a process-local TTL cache.
//
// Eviction is lazy: an expired entry is removed by the Get that observes
// it. There is no background sweeper, so an entry that is never read again
// stays in the map until overwritten.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache memoizes values with a per-entry absolute expiry. Safe for
// concurrent use.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
}

// New returns an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]entry[V])}
}

// Get returns the value stored under key, or false if the key is missing
// or expired. An expired entry is evicted as a side effect.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !time.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl, overwriting any previous entry.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
