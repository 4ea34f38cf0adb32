// Package local implements the in-process fallback store. It holds entries
// in a mutex-guarded map and removes expired ones both lazily on read and
// through a periodic sweep goroutine owned by the store.
package local

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/tagcache/internal/match"
	"github.com/unkn0wn-root/tagcache/store"
)

type entry struct {
	value     []byte
	expiresAt time.Time
	tags      []string // namespaced tag set keys, fixed at write time
}

// Store is a process-local key/value map with TTLs and tag tracking.
// The tag->keys view is reconstructed by iteration; cardinality is bounded
// by process memory, so no cursor machinery is needed here.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry

	ticker    *time.Ticker
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	onSweep func(removed int)
}

var _ store.Store = (*Store)(nil)

type Config struct {
	// SweepInterval is how often the background sweep runs. <= 0 disables
	// the sweep; expired entries are then removed only on read.
	SweepInterval time.Duration

	// OnSweep, if set, is called after each sweep pass that removed at
	// least one entry. Must be cheap and non-blocking.
	OnSweep func(removed int)
}

func New(cfg Config) *Store {
	s := &Store{
		entries: make(map[string]entry),
		onSweep: cfg.OnSweep,
	}
	if cfg.SweepInterval > 0 {
		s.ticker = time.NewTicker(cfg.SweepInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.sweep(time.Now())
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		// lazy eviction; recheck under the write lock in case a fresh
		// Set raced in between
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && time.Now().After(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set replaces the entry and its tag association wholesale. tagTTL is
// ignored: tag membership here lives on the entry itself, so it can never
// outlive the member.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration, tagKeys []string, _ time.Duration) error {
	var tags []string
	if len(tagKeys) > 0 {
		tags = make([]string, len(tagKeys))
		copy(tags, tagKeys)
	}
	e := entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
		tags:      tags,
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) DelPattern(_ context.Context, pattern string) (int, error) {
	re, err := match.Compile(pattern)
	if err != nil {
		return 0, err
	}
	n := 0
	s.mu.Lock()
	for k := range s.entries {
		if re.MatchString(k) {
			delete(s.entries, k)
			n++
		}
	}
	s.mu.Unlock()
	return n, nil
}

func (s *Store) InvalidateTag(_ context.Context, tagKey string) (int, error) {
	n := 0
	s.mu.Lock()
	for k, e := range s.entries {
		for _, t := range e.tags {
			if t == tagKey {
				delete(s.entries, k)
				n++
				break
			}
		}
	}
	s.mu.Unlock()
	return n, nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
	return nil
}

// Ping always succeeds; the process-local map is reachable by definition.
func (s *Store) Ping(_ context.Context) error { return nil }

// Size returns the number of live-or-not-yet-swept entries.
func (s *Store) Size() int {
	s.mu.RLock()
	n := len(s.entries)
	s.mu.RUnlock()
	return n
}

func (s *Store) sweep(now time.Time) {
	removed := 0
	s.mu.Lock()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	s.mu.Unlock()
	if removed > 0 && s.onSweep != nil {
		s.onSweep(removed)
	}
}

// Close stops the sweep goroutine. Safe to call multiple times.
func (s *Store) Close(_ context.Context) error {
	s.closeOnce.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			s.ticker.Stop()
			s.wg.Wait()
		}
	})
	return nil
}
