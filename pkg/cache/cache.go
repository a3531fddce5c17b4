// Package cache provides byte caches for repository responses and resolution
// results.
//
// A [Cache] stores opaque byte slices under string keys with an optional TTL.
// Implementations:
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [MemoryCache]: a bounded in-process LRU, used by the HTTP service
//   - [RedisCache]: a shared cache for several service replicas
//   - [NullCache]: stores nothing
//
// Keys are built with a [Keyer] so that every component agrees on the layout.
//
// This cache is an optimization layered on top of repository access. The
// descriptor memo that guarantees one fetch per coordinate within a single
// resolution lives in package resolve and is never persisted.
package cache

import (
	"context"
	"time"
)

// Cache stores byte values by key.
//
// Get reports a miss with hit=false and a nil error. Errors are reserved for
// backend failures; callers treat them as misses.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
