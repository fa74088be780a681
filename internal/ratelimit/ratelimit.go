// Package ratelimit enforces per-account sliding windows over venue
// operations. Buckets live inside the portfolio aggregate so they persist
// and roll back with everything else; this package holds only the window
// arithmetic.
package ratelimit

import (
	"fmt"

	"github.com/google/uuid"

	"swapvenue/internal/portfolio"
	"swapvenue/internal/tier"
)

// Operation kinds tracked per account.
const (
	KindSwap      = "swap"
	KindLiquidity = "lp"
)

// Status describes one account's current window for one operation kind.
type Status struct {
	Kind          string `json:"kind"`
	Limit         uint32 `json:"limit"`
	Remaining     uint32 `json:"remaining"`
	WindowResetAt uint64 `json:"window_reset_at"`
}

// Check reports whether the account may perform one more operation of the
// given kind at now. It never mutates the bucket; an expired window counts
// as empty.
func Check(p *portfolio.Portfolio, user uuid.UUID, kind string, limit uint32, now uint64) error {
	b := p.RateBucketFor(user, kind)
	if windowExpired(b, now) {
		return nil
	}
	if b.Count >= limit {
		return fmt.Errorf("%w: %d %s ops in window", portfolio.ErrRateLimitExceeded, b.Count, kind)
	}
	return nil
}

// Record counts one operation of the given kind at now, starting a fresh
// window if the previous one has elapsed.
func Record(p *portfolio.Portfolio, user uuid.UUID, kind string, now uint64) {
	b := p.RateBucketFor(user, kind)
	if windowExpired(b, now) {
		b = portfolio.RateBucket{WindowStart: now}
	}
	b.Count++
	p.SetRateBucket(user, kind, b)
}

// GetStatus returns the account's remaining allowance for the given kind at
// now under the supplied tier's limits.
func GetStatus(p *portfolio.Portfolio, user uuid.UUID, kind string, t tier.Tier, now uint64) Status {
	limit := t.SwapLimit()
	if kind == KindLiquidity {
		limit = t.LPLimit()
	}
	b := p.RateBucketFor(user, kind)
	if windowExpired(b, now) {
		return Status{Kind: kind, Limit: limit, Remaining: limit, WindowResetAt: now + tier.WindowSeconds}
	}
	remaining := uint32(0)
	if b.Count < limit {
		remaining = limit - b.Count
	}
	return Status{
		Kind:          kind,
		Limit:         limit,
		Remaining:     remaining,
		WindowResetAt: b.WindowStart + tier.WindowSeconds,
	}
}

// windowExpired treats a zero bucket as expired so first use always starts a
// fresh window.
func windowExpired(b portfolio.RateBucket, now uint64) bool {
	if b.Count == 0 && b.WindowStart == 0 {
		return true
	}
	return now >= b.WindowStart+tier.WindowSeconds
}
