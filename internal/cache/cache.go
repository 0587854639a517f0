// gamestats: release tallies and award prediction over game release exports
// SPDX-License-Identifier: MIT
//
// In-memory memo for values that are expensive to recompute within one run.

package cache

import "sync"

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
	hits  int
	miss  int
}

func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{items: make(map[K]V)}
}

// GetOrCompute returns the cached value for key, calling compute and
// storing its result on a miss. Errors are not cached.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	c.mu.RLock()
	v, ok := c.items[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return v, nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.miss++
	if existing, ok := c.items[key]; ok {
		return existing, nil
	}
	c.items[key] = v
	return v, nil
}

// Stats reports hit and miss counts of GetOrCompute.
func (c *Cache[K, V]) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.miss
}
