// Package sloghooks emits tagcache hook events through log/slog with
// per-event sampling, so a flapping backend cannot flood the logs.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/tagcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	StoreErrorEvery uint64
	FallbackEvery   uint64
	// Optional key redactor. Defaults to SHA-256 prefix so raw cache keys
	// (which may embed user data) never land in logs.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	storeErrCtr atomic.Uint64
	fallbackCtr atomic.Uint64
}

var _ tagcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if k == "" {
		return ""
	}
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) StoreError(op, key, kind string, err error) {
	if h.l == nil || !sample(h.opts.StoreErrorEvery, &h.storeErrCtr) {
		return
	}
	h.l.Warn("cache store error",
		slog.String("op", op),
		slog.String("key", h.redact(key)),
		slog.String("kind", kind),
		slog.Any("err", err),
	)
}

func (h *Hooks) FallbackEngaged(op string) {
	if h.l == nil || !sample(h.opts.FallbackEvery, &h.fallbackCtr) {
		return
	}
	h.l.Warn("cache serving from local fallback", slog.String("op", op))
}

func (h *Hooks) PatternRejected(pattern string) {
	if h.l == nil {
		return
	}
	h.l.Warn("cache pattern rejected", slog.String("pattern", pattern))
}

func (h *Hooks) SweepRemoved(n int) {
	if h.l == nil {
		return
	}
	h.l.Debug("cache sweep removed entries", slog.Int("removed", n))
}
