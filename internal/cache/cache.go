// Package cache provides a process-local TTL cache. Entries are evicted
// lazily on read; nothing sweeps expired entries proactively. Loss of the
// cache never changes a correctness guarantee, only recomputation cost.
package cache

import (
	"sync"
	"time"
)

// Default TTLs used across the engine.
const (
	ScoreTTL       = 2 * time.Minute
	DiscoveryTTL   = 7 * time.Minute
	HolderCountTTL = 10 * time.Minute
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a generic key→value store with per-entry expiry.
// A miss is a normal outcome, never a failure.
type Cache[K comparable, V any] struct {
	mu   sync.Mutex
	data map[K]entry[V]
	now  func() time.Time
}

// New creates an empty cache using the wall clock.
func New[K comparable, V any]() *Cache[K, V] {
	return NewWithClock[K, V](time.Now)
}

// NewWithClock creates an empty cache with an injectable clock for tests.
func NewWithClock[K comparable, V any](now func() time.Time) *Cache[K, V] {
	return &Cache[K, V]{
		data: make(map[K]entry[V]),
		now:  now,
	}
}

// Get returns the value for key. An entry whose expiry has passed is treated
// as absent and removed as a side effect.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.data, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl. Writes are last-writer-wins.
func (c *Cache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// Delete removes key if present.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
}

// Len reports the number of stored entries, expired or not.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.data)
}
