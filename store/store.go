// Package store defines the storage contract shared by the cache backends.
//
// Implementations receive fully namespaced keys from the facade: entry keys
// as "<ns>:<key>", tag set keys as "<ns>:tag:<tag>", and patterns already
// prefixed with the namespace. A store never invents or strips prefixes.
//
// Stores must be safe for concurrent use. A missing key is a miss, never an
// error; errors are reserved for IO/transport/serialization failures.
package store

import (
	"context"
	"time"
)

// Store is a byte store with TTLs, tag sets and pattern deletion.
type Store interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key with the given TTL and registers key in
	// every tag set named by tagKeys. Each tag set's own expiry must be at
	// least tagTTL from now and must never be shortened by this call, so a
	// tag set cannot expire before its longest-lived member.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tagKeys []string, tagTTL time.Duration) error

	// Del removes a key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error

	// DelPattern removes every key matching the glob pattern and returns
	// how many were removed. Large keyspaces must be scanned incrementally,
	// never enumerated in one blocking call.
	DelPattern(ctx context.Context, pattern string) (int, error)

	// InvalidateTag removes every member of the tag set plus the set itself
	// and returns the number of member entries removed.
	InvalidateTag(ctx context.Context, tagKey string) (int, error)

	// Clear removes everything this store holds for its namespace. Data
	// outside the namespace sharing the same substrate is untouched.
	Clear(ctx context.Context) error

	// Ping reports whether the store is reachable right now.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close(ctx context.Context) error
}
