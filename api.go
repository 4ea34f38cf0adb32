package tagcache

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	c "github.com/unkn0wn-root/tagcache/codec"
	"github.com/unkn0wn-root/tagcache/store"
)

// Backend names reported by Stats.
const (
	BackendRedis = "redis"
	BackendLocal = "local"
)

// Cache is the public caching contract. It is a pure optimization layer:
// no operation except Close ever returns an error, and any backend failure
// degrades to the result a plain miss/no-op would produce. Callers stay
// correct when the cache is empty or entirely unavailable; failures are
// visible only through Stats().Metrics.Errors, logs and hooks.
type Cache[V any] interface {
	// Get returns the cached value and whether it was present and live.
	Get(ctx context.Context, key string) (V, bool)

	// Set stores value under key for ttl (0 => DefaultTTL) and registers
	// it under each tag for group invalidation. A later Set on the same
	// key replaces the entry and its tag association wholesale. Reports
	// whether the write was applied.
	Set(ctx context.Context, key string, value V, ttl time.Duration, tags ...string) bool

	// Del removes a key. Deleting an absent key is a no-op, not an error.
	Del(ctx context.Context, key string)

	// DelPattern removes every key matching the glob pattern ('*' and '?'
	// wildcards; everything else literal) and returns how many went away.
	// A malformed pattern yields zero matches.
	DelPattern(ctx context.Context, pattern string) int

	// InvalidateTag removes every key registered under tag plus the tag's
	// own index and returns the number of entries removed.
	InvalidateTag(ctx context.Context, tag string) int

	// Clear removes every entry owned by this cache's namespace. Foreign
	// data sharing the same backend is untouched.
	Clear(ctx context.Context)

	// GetOrLoad returns the cached value or runs loader and caches its
	// result under the given tags. Loader failures are returned to the
	// caller and never cached.
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) (V, error), tags ...string) (V, error)

	// Stats reports the live backend, connectivity, counters and the local
	// store's entry count.
	Stats(ctx context.Context) Stats

	// Close stops the sweep goroutine and releases owned resources.
	Close(ctx context.Context) error
}

// Stats is the getStats() surface.
type Stats struct {
	Backend   string   `json:"backendType"`
	Connected bool     `json:"connected"`
	Metrics   Snapshot `json:"metrics"`
	LocalSize int      `json:"localSize"`
}

// Options tune the cache. Only Namespace is required; with a nil Client and
// nil Store the cache runs purely on the local fallback.
type Options[V any] struct {
	// Namespace prefixes every key this cache manages, preventing
	// collisions with unrelated data sharing the same backend.
	Namespace string

	// Client is the shared Redis connection used as the primary tier.
	Client goredis.UniversalClient

	// Store overrides Client with a custom remote store. Mainly for tests
	// that need to inject a failing or always-unhealthy backend.
	Store store.Store

	Codec  c.Codec[V] // nil => codec.JSON
	Logger Logger     // nil => NopLogger
	Hooks  Hooks      // nil => NopHooks

	DefaultTTL    time.Duration // 0 => 5m
	SweepInterval time.Duration // local expiry sweep; 0 => 1m
	TagTTLBuffer  time.Duration // tag index outlives members by this; 0 => 60s
	ScanBatch     int64         // redis SCAN COUNT hint; 0 => 100

	// Health decides per call whether the remote store is live. nil =>
	// PING with a short timeout. Evaluated freshly on every call so
	// recovery is automatic.
	Health func(ctx context.Context) bool

	// Disabled turns every operation into a no-op miss.
	Disabled bool

	// CloseClient should be true only if this cache exclusively owns the
	// redis client.
	CloseClient bool
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
