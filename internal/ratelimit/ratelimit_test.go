package ratelimit_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"swapvenue/internal/portfolio"
	"swapvenue/internal/ratelimit"
	"swapvenue/internal/tier"
)

func TestCheck_AllowsUpToLimit(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()
	limit := tier.Basic.SwapLimit()

	now := uint64(1_000)
	for i := uint32(0); i < limit; i++ {
		if err := ratelimit.Check(p, user, ratelimit.KindSwap, limit, now); err != nil {
			t.Fatalf("op %d rejected: %v", i, err)
		}
		ratelimit.Record(p, user, ratelimit.KindSwap, now)
	}

	err := ratelimit.Check(p, user, ratelimit.KindSwap, limit, now)
	if !errors.Is(err, portfolio.ErrRateLimitExceeded) {
		t.Fatalf("op %d should be rate limited, got %v", limit, err)
	}
}

func TestCheck_WindowResets(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()
	limit := tier.Basic.SwapLimit()

	now := uint64(1_000)
	for i := uint32(0); i < limit; i++ {
		ratelimit.Record(p, user, ratelimit.KindSwap, now)
	}
	if err := ratelimit.Check(p, user, ratelimit.KindSwap, limit, now); err == nil {
		t.Fatal("window should be full")
	}

	later := now + tier.WindowSeconds
	if err := ratelimit.Check(p, user, ratelimit.KindSwap, limit, later); err != nil {
		t.Fatalf("expired window should allow: %v", err)
	}
	ratelimit.Record(p, user, ratelimit.KindSwap, later)
	if got := p.RateBucketFor(user, ratelimit.KindSwap); got.Count != 1 || got.WindowStart != later {
		t.Fatalf("bucket not reset: %+v", got)
	}
}

func TestCheck_KindsAreIndependent(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()
	now := uint64(50)

	for i := uint32(0); i < tier.Basic.SwapLimit(); i++ {
		ratelimit.Record(p, user, ratelimit.KindSwap, now)
	}
	if err := ratelimit.Check(p, user, ratelimit.KindLiquidity, tier.Basic.LPLimit(), now); err != nil {
		t.Fatalf("liquidity window should be untouched: %v", err)
	}
}

func TestGetStatus(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()
	now := uint64(500)

	ratelimit.Record(p, user, ratelimit.KindSwap, now)
	ratelimit.Record(p, user, ratelimit.KindSwap, now)

	st := ratelimit.GetStatus(p, user, ratelimit.KindSwap, tier.Basic, now+10)
	if st.Limit != tier.Basic.SwapLimit() {
		t.Errorf("limit = %d", st.Limit)
	}
	if st.Remaining != tier.Basic.SwapLimit()-2 {
		t.Errorf("remaining = %d, want %d", st.Remaining, tier.Basic.SwapLimit()-2)
	}
	if st.WindowResetAt != now+tier.WindowSeconds {
		t.Errorf("reset at %d, want %d", st.WindowResetAt, now+tier.WindowSeconds)
	}
}

func TestGetStatus_FreshUser(t *testing.T) {
	p := portfolio.New()
	st := ratelimit.GetStatus(p, uuid.New(), ratelimit.KindLiquidity, tier.Gold, 100)
	if st.Remaining != tier.Gold.LPLimit() {
		t.Errorf("fresh user remaining = %d, want full limit %d", st.Remaining, tier.Gold.LPLimit())
	}
}
