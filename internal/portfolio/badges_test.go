package portfolio_test

import (
	"testing"

	"github.com/google/uuid"

	"swapvenue/internal/asset"
	"swapvenue/internal/portfolio"
)

func TestRecordTrade_FirstTradeBadge(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()

	p.RecordTrade(user)
	if !p.HasBadge(user, portfolio.BadgeFirstTrade) {
		t.Error("first trade should award FirstTrade")
	}
	if p.TradeCount(user) != 1 {
		t.Errorf("trade count = %d", p.TradeCount(user))
	}
}

func TestAwardBadge_Idempotent(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()

	if !p.AwardBadge(user, portfolio.BadgeTrader) {
		t.Error("first award should report newly granted")
	}
	if p.AwardBadge(user, portfolio.BadgeTrader) {
		t.Error("second award should report already held")
	}
	if got := len(p.UserBadges(user)); got != 1 {
		t.Errorf("badges = %d, want 1", got)
	}
}

func TestCheckAndAwardBadges_TraderAtThreshold(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()

	for i := 0; i < portfolio.TraderTradeThreshold-1; i++ {
		p.RecordTrade(user)
	}
	p.CheckAndAwardBadges(user)
	if p.HasBadge(user, portfolio.BadgeTrader) {
		t.Error("Trader awarded below threshold")
	}

	p.RecordTrade(user)
	p.CheckAndAwardBadges(user)
	if !p.HasBadge(user, portfolio.BadgeTrader) {
		t.Error("Trader not awarded at threshold")
	}
}

func TestCheckAndAwardBadges_LiquidityProvider(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()

	p.RecordLPDeposit(user)
	p.CheckAndAwardBadges(user)
	if !p.HasBadge(user, portfolio.BadgeLiquidityProvider) {
		t.Error("LiquidityProvider not awarded after first deposit")
	}
}

func TestCheckAndAwardBadges_WealthBuilder(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()

	// Baseline 100, then grow the accumulator to 10x.
	p.Mint(asset.Native(), user, 100)
	p.CheckAndAwardBadges(user)
	if p.HasBadge(user, portfolio.BadgeWealthBuilder) {
		t.Error("WealthBuilder awarded at 1x")
	}

	p.Mint(asset.Native(), user, 900)
	p.CheckAndAwardBadges(user)
	if !p.HasBadge(user, portfolio.BadgeWealthBuilder) {
		t.Error("WealthBuilder not awarded at 10x baseline")
	}
}

func TestTrackTrade_DiversifierCountsDistinctSourceAssets(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()
	native := asset.Native()

	// Five trades from the same source asset count once.
	for i := 0; i < 5; i++ {
		p.TrackTrade(user, native, asset.Custom("USDC-SIM"), uint64(i))
	}
	p.CheckAndAwardBadges(user)
	if p.HasBadge(user, portfolio.BadgeDiversifier) {
		t.Error("Diversifier awarded for a single source asset")
	}

	for _, sym := range []string{"A", "B", "C", "D"} {
		p.TrackTrade(user, asset.Custom(sym), native, 1)
	}
	p.CheckAndAwardBadges(user)
	if !p.HasBadge(user, portfolio.BadgeDiversifier) {
		t.Error("Diversifier not awarded at 5 distinct source assets")
	}
}

func TestTrackTrade_ConsistencyCountsDistinctHeights(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()

	for i := 0; i < portfolio.ConsistencyHeightThreshold; i++ {
		// Same height repeated does not accumulate.
		p.TrackTrade(user, asset.Native(), asset.Custom("USDC-SIM"), 42)
	}
	p.CheckAndAwardBadges(user)
	if p.HasBadge(user, portfolio.BadgeConsistency) {
		t.Error("Consistency awarded for one height")
	}

	for h := uint64(0); h < portfolio.ConsistencyHeightThreshold; h++ {
		p.TrackTrade(user, asset.Native(), asset.Custom("USDC-SIM"), h)
	}
	p.CheckAndAwardBadges(user)
	if !p.HasBadge(user, portfolio.BadgeConsistency) {
		t.Error("Consistency not awarded at threshold distinct heights")
	}
}

func TestBadgeProgressFor_CoversAllKinds(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()
	p.RecordTrade(user)

	progress := p.BadgeProgressFor(user)
	if len(progress) != 6 {
		t.Fatalf("got %d progress rows, want 6", len(progress))
	}
	seen := make(map[portfolio.BadgeKind]bool)
	for _, row := range progress {
		if seen[row.Badge] {
			t.Errorf("badge %s reported twice", row.Badge)
		}
		seen[row.Badge] = true
		if row.Threshold == 0 {
			t.Errorf("badge %s has zero threshold", row.Badge)
		}
	}
}
