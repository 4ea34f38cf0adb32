// Package match translates glob-style key patterns into exact-match
// predicates. Two wildcard tokens are supported: '*' (any run of zero or
// more characters) and '?' (exactly one character). Everything else is
// matched literally.
package match

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrBadPattern = errors.New("match: bad pattern")

// Compile builds an anchored regexp from a glob pattern. All characters
// besides '*' and '?' are quoted before substitution, and the result is
// anchored start-to-end, so "route:*" cannot match a key that merely
// contains "route:" somewhere in the middle.
func Compile(glob string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.Grow(len(glob) + 4)
	b.WriteByte('^')
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
	}
	return re, nil
}

// EscapeRedis rewrites a glob for the Redis MATCH dialect. Redis honors
// '*', '?' and '[...]' classes; only the first two are part of our pattern
// contract, so brackets and backslashes are escaped to keep them literal.
func EscapeRedis(glob string) string {
	if !strings.ContainsAny(glob, `[]\`) {
		return glob
	}
	var b strings.Builder
	b.Grow(len(glob) + 2)
	for _, r := range glob {
		switch r {
		case '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
