package assets

import "sync"

// Cache is an in-memory map of loaded assets with hit/miss counters.
// onEvict, if set, runs for every value that leaves the cache.
type Cache[T any] struct {
	data    map[string]T
	onEvict func(key string, v T)
	mu      sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache[T any](onEvict func(key string, v T)) *Cache[T] {
	return &Cache[T]{
		data:    make(map[string]T),
		onEvict: onEvict,
	}
}

// Get retrieves an item from cache.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set stores an item, evicting any previous value under key.
func (c *Cache[T]) Set(key string, v T) {
	c.mu.Lock()
	old, replaced := c.data[key]
	c.data[key] = v
	c.mu.Unlock()

	if replaced && c.onEvict != nil {
		c.onEvict(key, old)
	}
}

// Delete evicts key and reports whether it was present.
func (c *Cache[T]) Delete(key string) bool {
	c.mu.Lock()
	v, ok := c.data[key]
	delete(c.data, key)
	c.mu.Unlock()

	if ok && c.onEvict != nil {
		c.onEvict(key, v)
	}
	return ok
}

// Len returns the number of cached items.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear evicts everything and resets the statistics.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	old := c.data
	c.data = make(map[string]T)
	c.hits = 0
	c.misses = 0
	c.mu.Unlock()

	if c.onEvict != nil {
		for k, v := range old {
			c.onEvict(k, v)
		}
	}
}

// Stats returns cache statistics.
func (c *Cache[T]) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
