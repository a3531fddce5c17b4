package resolve

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes the outcome of a fetch per key, failures included.
//
// Concurrent callers for the same key share one in-flight fetch; unrelated
// keys fetch in parallel. Entries are never evicted: a Cache lives for one
// resolution run and is then dropped.
type Cache[K comparable, V any] struct {
	group singleflight.Group

	mu      sync.Mutex
	entries map[K]cacheEntry[V]
}

type cacheEntry[V any] struct {
	val V
	err error
}

// NewCache creates an empty cache.
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]cacheEntry[V])}
}

// GetOrFetch returns the stored outcome for key, calling fetch if there is
// none yet. fetch runs at most once per key for the lifetime of the cache.
func (c *Cache[K, V]) GetOrFetch(ctx context.Context, key K, fetch func(context.Context) (V, error)) (V, error) {
	if e, ok := c.lookup(key); ok {
		return e.val, e.err
	}

	// %#v does not go through String methods, so distinct keys never share a flight.
	v, err, _ := c.group.Do(fmt.Sprintf("%#v", key), func() (any, error) {
		if e, ok := c.lookup(key); ok {
			return e.val, e.err
		}
		val, err := fetch(ctx)
		c.mu.Lock()
		c.entries[key] = cacheEntry[V]{val: val, err: err}
		c.mu.Unlock()
		return val, err
	})
	val, _ := v.(V)
	return val, err
}

// Len returns the number of completed fetches.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[K, V]) lookup(key K) (cacheEntry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}
