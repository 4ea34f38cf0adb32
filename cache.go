package tagcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unkn0wn-root/tagcache/codec"
	"github.com/unkn0wn-root/tagcache/internal/match"
	"github.com/unkn0wn-root/tagcache/store"
	"github.com/unkn0wn-root/tagcache/store/local"
	redistore "github.com/unkn0wn-root/tagcache/store/redis"
)

type cache[V any] struct {
	ns      string
	remote  store.Store // nil => local-only
	local   *local.Store
	codec   codec.Codec[V]
	log     Logger
	hooks   Hooks
	metrics Metrics

	enabled      bool
	defaultTTL   time.Duration
	tagTTLBuffer time.Duration
	healthy      func(ctx context.Context) bool
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Namespace == "" {
		return nil, fmt.Errorf("tagcache: namespace is required")
	}

	c := &cache[V]{
		ns:      opts.Namespace,
		enabled: !opts.Disabled,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.defaultTTL = coalesce[time.Duration](opts.DefaultTTL, defaultTTL)
	c.tagTTLBuffer = coalesce[time.Duration](opts.TagTTLBuffer, defaultTagBuffer)

	if opts.Codec != nil {
		c.codec = opts.Codec
	} else {
		c.codec = codec.JSON[V]{}
	}

	switch {
	case opts.Store != nil:
		c.remote = opts.Store
	case opts.Client != nil:
		r, err := redistore.New(redistore.Config{
			Client:      opts.Client,
			Namespace:   opts.Namespace,
			ScanBatch:   opts.ScanBatch,
			CloseClient: opts.CloseClient,
		})
		if err != nil {
			return nil, err
		}
		c.remote = r
	}

	hooks := c.hooks
	c.local = local.New(local.Config{
		SweepInterval: coalesce[time.Duration](opts.SweepInterval, defaultSweep),
		OnSweep:       func(n int) { hooks.SweepRemoved(n) },
	})

	if opts.Health != nil {
		c.healthy = opts.Health
	} else {
		remote := c.remote
		c.healthy = func(ctx context.Context) bool {
			if remote == nil {
				return false
			}
			ctx, cancel := context.WithTimeout(ctx, healthTimeout)
			defer cancel()
			return remote.Ping(ctx) == nil
		}
	}

	return c, nil
}

func (c *cache[V]) key(userKey string) string { return c.ns + ":" + userKey }
func (c *cache[V]) tagKey(tag string) string  { return c.ns + ":tag:" + tag }

// Get reports a hit or a miss; every non-hit path counts exactly one miss.
// A corrupt payload is deleted on sight (self-heal) and reported as a miss.
func (c *cache[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	if !c.enabled {
		return zero, false
	}
	st, backend := c.pick(ctx, "get")
	k := c.key(key)

	raw, ok, err := st.Get(ctx, k)
	if err != nil {
		c.fail("get", key, err)
		c.metrics.miss()
		return zero, false
	}
	if !ok {
		c.metrics.miss()
		return zero, false
	}
	v, err := c.codec.Decode(raw)
	if err != nil {
		c.metrics.fail()
		c.hooks.StoreError("get", key, KindSerialization, err)
		c.log.Warn("cache entry undecodable, self-healing", Fields{"key": key, "backend": backend, "err": err})
		_ = st.Del(ctx, k)
		c.metrics.miss()
		return zero, false
	}
	c.metrics.hit()
	return v, true
}

// Set writes the entry with an absolute expiry and registers it under each
// tag. The tag index is given ttl + buffer so it cannot vanish before its
// members could have naturally expired.
func (c *cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration, tags ...string) bool {
	if !c.enabled {
		return false
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	payload, err := c.codec.Encode(value)
	if err != nil {
		c.metrics.fail()
		c.hooks.StoreError("set", key, KindSerialization, err)
		c.log.Warn("cache value unencodable, set skipped", Fields{"key": key, "err": err})
		return false
	}

	var tagKeys []string
	if len(tags) > 0 {
		tagKeys = make([]string, len(tags))
		for i, t := range tags {
			tagKeys[i] = c.tagKey(t)
		}
	}

	st, _ := c.pick(ctx, "set")
	if err := st.Set(ctx, c.key(key), payload, ttl, tagKeys, ttl+c.tagTTLBuffer); err != nil {
		c.fail("set", key, err)
		return false
	}
	c.metrics.set()
	return true
}

func (c *cache[V]) Del(ctx context.Context, key string) {
	if !c.enabled {
		return
	}
	st, _ := c.pick(ctx, "del")
	if err := st.Del(ctx, c.key(key)); err != nil {
		c.fail("del", key, err)
		return
	}
	c.metrics.del(1)
}

func (c *cache[V]) DelPattern(ctx context.Context, pattern string) int {
	if !c.enabled {
		return 0
	}
	st, _ := c.pick(ctx, "delPattern")
	n, err := st.DelPattern(ctx, c.ns+":"+pattern)
	if err != nil {
		if errors.Is(err, match.ErrBadPattern) {
			c.hooks.PatternRejected(pattern)
		}
		c.fail("delPattern", pattern, err)
		return n
	}
	c.metrics.del(int64(n))
	return n
}

func (c *cache[V]) InvalidateTag(ctx context.Context, tag string) int {
	if !c.enabled {
		return 0
	}
	st, _ := c.pick(ctx, "invalidateTag")
	n, err := st.InvalidateTag(ctx, c.tagKey(tag))
	if err != nil {
		c.fail("invalidateTag", tag, err)
		return n
	}
	c.metrics.del(int64(n))
	return n
}

func (c *cache[V]) Clear(ctx context.Context) {
	if !c.enabled {
		return
	}
	st, _ := c.pick(ctx, "clear")
	if err := st.Clear(ctx); err != nil {
		c.fail("clear", "", err)
	}
}

// GetOrLoad is the read-through path: check the cache, run the expensive
// work on a miss, cache only successful results.
func (c *cache[V]) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) (V, error), tags ...string) (V, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}
	v, err := loader(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(ctx, key, v, ttl, tags...)
	return v, nil
}

func (c *cache[V]) Stats(ctx context.Context) Stats {
	connected := c.remote != nil && c.healthy(ctx)
	backend := BackendLocal
	if connected {
		backend = BackendRedis
	}
	return Stats{
		Backend:   backend,
		Connected: connected,
		Metrics:   c.metrics.Snapshot(),
		LocalSize: c.local.Size(),
	}
}

func (c *cache[V]) Close(ctx context.Context) error {
	err := c.local.Close(ctx)
	if c.remote != nil {
		err = errors.Join(err, c.remote.Close(ctx))
	}
	return err
}

// fail records a degraded store call: error counter, hook, log. The caller
// then returns whatever a plain miss/no-op would have returned.
func (c *cache[V]) fail(op, key string, err error) {
	c.metrics.fail()
	kind := kindOf(err)
	c.hooks.StoreError(op, key, kind, err)
	oe := &StoreOpError{Op: op, Key: key, Err: err}
	c.log.Warn("cache operation degraded", Fields{"op": op, "key": key, "kind": kind, "err": oe.Error()})
}
