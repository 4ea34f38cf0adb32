package local

import (
	"context"
	"testing"
	"time"
)

func newStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	s := New(cfg)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, Config{})

	if err := s.Set(ctx, "app:k", []byte("v"), time.Minute, nil, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, "app:k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Get: ok=%v err=%v got=%q", ok, err, got)
	}

	// miss is not an error
	if _, ok, err := s.Get(ctx, "app:absent"); err != nil || ok {
		t.Fatalf("absent key: ok=%v err=%v", ok, err)
	}
}

func TestLazyExpiryOnGet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, Config{})

	if err := s.Set(ctx, "app:short", []byte("v"), 10*time.Millisecond, nil, 0); err != nil {
		t.Fatal(err)
	}
	time.Sleep(25 * time.Millisecond)

	if _, ok, _ := s.Get(ctx, "app:short"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	// the read itself evicted the dead entry
	if n := s.Size(); n != 0 {
		t.Fatalf("expected size 0 after lazy eviction, got %d", n)
	}
}

func TestSweepRemovesExpiredOnly(t *testing.T) {
	ctx := context.Background()
	var swept int
	s := newStore(t, Config{OnSweep: func(n int) { swept += n }})

	_ = s.Set(ctx, "app:dead1", []byte("x"), time.Millisecond, nil, 0)
	_ = s.Set(ctx, "app:dead2", []byte("x"), time.Millisecond, nil, 0)
	_ = s.Set(ctx, "app:live", []byte("x"), time.Hour, nil, 0)

	s.sweep(time.Now().Add(time.Second))

	if swept != 2 {
		t.Fatalf("OnSweep reported %d, want 2", swept)
	}
	if n := s.Size(); n != 1 {
		t.Fatalf("size after sweep = %d, want 1", n)
	}
	if _, ok, _ := s.Get(ctx, "app:live"); !ok {
		t.Fatalf("live entry removed by sweep")
	}
}

func TestSweepLoopRuns(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, Config{SweepInterval: 10 * time.Millisecond})

	_ = s.Set(ctx, "app:k", []byte("x"), 5*time.Millisecond, nil, 0)

	deadline := time.Now().Add(2 * time.Second)
	for s.Size() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sweep loop never removed the expired entry")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDelPattern(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, Config{})

	_ = s.Set(ctx, "app:route:/tours", []byte("x"), time.Minute, nil, 0)
	_ = s.Set(ctx, "app:route:/tours/1", []byte("x"), time.Minute, nil, 0)
	_ = s.Set(ctx, "app:user:1", []byte("x"), time.Minute, nil, 0)

	n, err := s.DelPattern(ctx, "app:route:*")
	if err != nil {
		t.Fatalf("DelPattern: %v", err)
	}
	if n != 2 {
		t.Fatalf("DelPattern removed %d, want 2", n)
	}
	if _, ok, _ := s.Get(ctx, "app:user:1"); !ok {
		t.Fatalf("unrelated key was removed")
	}
}

func TestInvalidateTag(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, Config{})

	tag := "app:tag:tours"
	_ = s.Set(ctx, "app:k1", []byte("x"), time.Minute, []string{tag}, 0)
	_ = s.Set(ctx, "app:k2", []byte("x"), time.Minute, []string{tag, "app:tag:other"}, 0)
	_ = s.Set(ctx, "app:k3", []byte("x"), time.Minute, nil, 0)

	n, err := s.InvalidateTag(ctx, tag)
	if err != nil {
		t.Fatalf("InvalidateTag: %v", err)
	}
	if n != 2 {
		t.Fatalf("InvalidateTag removed %d, want 2", n)
	}
	if _, ok, _ := s.Get(ctx, "app:k1"); ok {
		t.Fatalf("k1 still present after tag invalidation")
	}
	if _, ok, _ := s.Get(ctx, "app:k3"); !ok {
		t.Fatalf("untagged k3 was removed")
	}
}

func TestSetReplacesTagsWholesale(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, Config{})

	_ = s.Set(ctx, "app:k", []byte("x"), time.Minute, []string{"app:tag:a"}, 0)
	// re-set with a different tag; the old association must be gone
	_ = s.Set(ctx, "app:k", []byte("y"), time.Minute, []string{"app:tag:b"}, 0)

	if n, _ := s.InvalidateTag(ctx, "app:tag:a"); n != 0 {
		t.Fatalf("stale tag still claims %d members", n)
	}
	if n, _ := s.InvalidateTag(ctx, "app:tag:b"); n != 1 {
		t.Fatalf("current tag claims %d members, want 1", n)
	}
}

func TestDelIdempotentAndClear(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, Config{})

	if err := s.Del(ctx, "app:never-set"); err != nil {
		t.Fatalf("Del absent: %v", err)
	}
	if err := s.Del(ctx, "app:never-set"); err != nil {
		t.Fatalf("Del absent twice: %v", err)
	}

	_ = s.Set(ctx, "app:a", []byte("x"), time.Minute, nil, 0)
	_ = s.Set(ctx, "app:b", []byte("x"), time.Minute, nil, 0)
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n := s.Size(); n != 0 {
		t.Fatalf("size after Clear = %d", n)
	}
}

func TestCloseTwice(t *testing.T) {
	s := New(Config{SweepInterval: time.Minute})
	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
}
