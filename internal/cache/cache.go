// Package cache provides an explicit memoization map with whole-cache
// invalidation.
package cache

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache maps string keys to computed values. Concurrent computations of the
// same key within one generation are coalesced. A value computed across an
// Invalidate call is returned to its callers but not stored.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	gen     uint64
	group   singleflight.Group
}

// New returns an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]V)}
}

// Get returns the cached value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Delete drops a single entry.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Invalidate drops every entry. Safe to call at any time.
func (c *Cache[V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]V)
	c.gen++
}

// GetOrCompute returns the cached value for key, or runs compute and caches
// its result. hit reports whether the value came from the cache. Errors are
// never cached.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (v V, hit bool, err error) {
	c.mu.RLock()
	v, ok := c.entries[key]
	gen := c.gen
	c.mu.RUnlock()
	if ok {
		return v, true, nil
	}

	flight := strconv.FormatUint(gen, 10) + "\x00" + key
	res, err, _ := c.group.Do(flight, func() (any, error) {
		computed, err := compute()
		if err != nil {
			return computed, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.entries[key] = computed
		}
		c.mu.Unlock()
		return computed, nil
	})
	v, _ = res.(V)
	return v, false, err
}
