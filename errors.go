package tagcache

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/tagcache/internal/match"
)

// Failure kinds. Public operations never return errors; the kind shows up
// in logs and hook callbacks so an operator can tell a down backend from a
// bad codec or a malformed pattern.
const (
	KindConnectivity  = "connectivity"
	KindSerialization = "serialization"
	KindPattern       = "pattern"
)

// StoreOpError wraps a failed backend call with its operation and key for
// logging. It never crosses the public API.
type StoreOpError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreOpError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("tagcache: %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("tagcache: %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *StoreOpError) Unwrap() error { return e.Err }

func kindOf(err error) string {
	if errors.Is(err, match.ErrBadPattern) {
		return KindPattern
	}
	return KindConnectivity
}
