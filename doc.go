// Package tagcache implements a caching layer between request handlers and
// a slow source of truth, with group invalidation by tag. Entries live in a
// shared Redis tier when it is reachable and in a process-local fallback
// map when it is not; a health predicate evaluated on every call picks the
// backend, so recovery needs no reconnect step.
//
// Components:
//   - store.Store: capability contract implemented by store/redis and
//     store/local.
//   - codec.Codec[V]: (de)serializes V <-> []byte (JSON default; msgpack,
//     CBOR, protobuf, raw available).
//   - internal/match: glob ('*', '?') to anchored predicate translation.
//
// Keys:
//
//	<ns>:<key>      - entries
//	<ns>:tag:<tag>  - tag member sets; expiry always exceeds the longest
//	                  member TTL by a buffer
//
// The cache is a pure optimization: no public operation returns an error,
// every backend failure degrades to the same result a miss/no-op would
// produce, and callers must stay correct when the cache is empty or down.
// Failures are observable through Stats().Metrics.Errors, logs and Hooks.
package tagcache
