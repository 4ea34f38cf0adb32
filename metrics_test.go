package tagcache

import "testing"

func TestHitRateZeroDenominator(t *testing.T) {
	var m Metrics
	if hr := m.Snapshot().HitRate(); hr != 0 {
		t.Fatalf("empty hit rate = %v, want 0", hr)
	}
}

func TestResetForTestIsolation(t *testing.T) {
	var m Metrics
	m.hit()
	m.miss()
	m.set()
	m.del(3)
	m.fail()

	s := m.Snapshot()
	if s.Hits != 1 || s.Misses != 1 || s.Sets != 1 || s.Deletes != 3 || s.Errors != 1 {
		t.Fatalf("snapshot: %+v", s)
	}

	m.Reset()
	if s := m.Snapshot(); s != (Snapshot{}) {
		t.Fatalf("snapshot after reset: %+v", s)
	}
}
