package tagcache

// Hooks are lightweight callbacks for high-signal events. Failures never
// escape the public API, so hooks (plus the error counter) are the only way
// an operator sees them. Implementations MUST be cheap and non-blocking;
// the cache calls them on hot paths. Wrap with hooks/async if an
// implementation might stall.
type Hooks interface {
	// A store call failed and the operation degraded to a miss/no-op.
	// kind is one of "connectivity", "serialization", "pattern".
	StoreError(op, key, kind string, err error)

	// A call was served by the local fallback while a remote store is
	// configured.
	FallbackEngaged(op string)

	// A malformed pattern produced zero matches.
	PatternRejected(pattern string)

	// A sweep pass removed n expired entries from the local store.
	SweepRemoved(n int)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) StoreError(string, string, string, error) {}
func (NopHooks) FallbackEngaged(string)                   {}
func (NopHooks) PatternRejected(string)                   {}
func (NopHooks) SweepRemoved(int)                         {}
