// Package asynchook decouples hook callbacks from the cache's hot path by
// queueing events to worker goroutines. Events are dropped when the queue
// is full; hooks are diagnostics, never backpressure.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{StoreErrorEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := tagcache.New[Tour](tagcache.Options[Tour]{
//	    Namespace: "app:prod:tours",
//	    Client:    rdb,
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/tagcache"
)

type Hooks struct {
	inner tagcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ tagcache.Hooks = (*Hooks)(nil)

func New(inner tagcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// enqueue drops the event when the queue is full.
func (h *Hooks) enqueue(f func()) {
	select {
	case h.q <- f:
	default:
	}
}

func (h *Hooks) StoreError(op, key, kind string, err error) {
	h.enqueue(func() { h.inner.StoreError(op, key, kind, err) })
}

func (h *Hooks) FallbackEngaged(op string) {
	h.enqueue(func() { h.inner.FallbackEngaged(op) })
}

func (h *Hooks) PatternRejected(pattern string) {
	h.enqueue(func() { h.inner.PatternRejected(pattern) })
}

func (h *Hooks) SweepRemoved(n int) {
	h.enqueue(func() { h.inner.SweepRemoved(n) })
}

// Close drains queued events and stops the workers.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}
