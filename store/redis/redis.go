// Package redis adapts the shared Redis key-value store to the cache's
// storage contract. Tag sets ride on Redis sets; multi-step tag operations
// are pipelined so concurrent observers never see a tag set claiming
// members that are already gone.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/tagcache/internal/match"
	"github.com/unkn0wn-root/tagcache/store"
)

var ErrNilClient = errors.New("redis store: nil client")

const defaultScanBatch = 100

type Store struct {
	rdb         goredis.UniversalClient
	ns          string
	scanBatch   int64
	closeClient bool
}

var _ store.Store = (*Store)(nil)

type Config struct {
	Client goredis.UniversalClient

	// Namespace scopes Clear. It must match the prefix the facade applies
	// to every key it hands this store.
	Namespace string

	// ScanBatch bounds the COUNT hint of incremental SCANs. 0 => 100.
	ScanBatch int64

	// CloseClient should be true only if this store exclusively owns the
	// client.
	CloseClient bool
}

func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	batch := cfg.ScanBatch
	if batch <= 0 {
		batch = defaultScanBatch
	}
	return &Store{
		rdb:         cfg.Client,
		ns:          cfg.Namespace,
		scanBatch:   batch,
		closeClient: cfg.CloseClient,
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set stores the entry and registers it with each tag set in one pipeline.
// Tag set expiry is written with NX (seed a fresh set) and GT (extend, never
// shorten), so the set always outlives its longest member by the buffer the
// facade folded into tagTTL. Without that, a tag set could expire while
// members are still live and a later InvalidateTag would silently no-op.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tagKeys []string, tagTTL time.Duration) error {
	if len(tagKeys) == 0 {
		return s.rdb.Set(ctx, key, value, ttl).Err()
	}
	_, err := s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, key, value, ttl)
		for _, tk := range tagKeys {
			p.SAdd(ctx, tk, key)
			p.ExpireNX(ctx, tk, tagTTL)
			p.ExpireGT(ctx, tk, tagTTL)
		}
		return nil
	})
	return err
}

func (s *Store) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// DelPattern walks the keyspace with an incremental cursor in bounded
// batches and unlinks each matched batch, so a high-cardinality keyspace
// never blocks the shared store on one long command.
func (s *Store) DelPattern(ctx context.Context, pattern string) (int, error) {
	matchPat := match.EscapeRedis(pattern)
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, matchPat, s.scanBatch).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := s.rdb.Unlink(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += int(n)
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

// InvalidateTag reads the member set, then removes all members plus the tag
// set itself in a single pipeline.
func (s *Store) InvalidateTag(ctx context.Context, tagKey string) (int, error) {
	members, err := s.rdb.SMembers(ctx, tagKey).Result()
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, s.rdb.Del(ctx, tagKey).Err()
	}
	var del *goredis.IntCmd
	_, err = s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		del = p.Del(ctx, members...)
		p.Del(ctx, tagKey)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(del.Val()), nil
}

// Clear removes every key under this store's namespace prefix. Foreign data
// sharing the Redis instance is untouched.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.DelPattern(ctx, s.ns+":*")
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying client only when this store owns it.
func (s *Store) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
