package tagcache

import "sync/atomic"

// Metrics tracks process-lifetime operation counters. All methods are safe
// for concurrent use.
type Metrics struct {
	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
	errors  atomic.Int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Sets    int64 `json:"sets"`
	Deletes int64 `json:"deletes"`
	Errors  int64 `json:"errors"`
}

// HitRate is hits / (hits + misses), 0 when nothing was read yet.
func (s Snapshot) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Sets:    m.sets.Load(),
		Deletes: m.deletes.Load(),
		Errors:  m.errors.Load(),
	}
}

// Reset zeroes all counters. For test isolation only; production code paths
// never reset.
func (m *Metrics) Reset() {
	m.hits.Store(0)
	m.misses.Store(0)
	m.sets.Store(0)
	m.deletes.Store(0)
	m.errors.Store(0)
}

func (m *Metrics) hit()        { m.hits.Add(1) }
func (m *Metrics) miss()       { m.misses.Add(1) }
func (m *Metrics) set()        { m.sets.Add(1) }
func (m *Metrics) del(n int64) { m.deletes.Add(n) }
func (m *Metrics) fail()       { m.errors.Add(1) }
