package tagcache

import (
	"context"

	"github.com/unkn0wn-root/tagcache/store"
)

// pick routes one call to the live backend. The health predicate runs
// freshly on every call, never once at startup, so the first call after the
// remote store comes back is already served by it - no reconnect step, no
// restart. Exactly one store services a given call.
func (c *cache[V]) pick(ctx context.Context, op string) (store.Store, string) {
	if c.remote == nil {
		return c.local, BackendLocal
	}
	if c.healthy(ctx) {
		return c.remote, BackendRedis
	}
	c.hooks.FallbackEngaged(op)
	return c.local, BackendLocal
}
