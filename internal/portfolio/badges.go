package portfolio

import (
	"math"

	"swapvenue/internal/asset"

	"github.com/google/uuid"
)

// BadgeKind is a one-time, non-revocable achievement flag.
type BadgeKind uint8

const (
	BadgeFirstTrade BadgeKind = iota
	BadgeTrader
	BadgeWealthBuilder
	BadgeLiquidityProvider
	BadgeDiversifier
	BadgeConsistency

	badgeKindCount
)

// Badge thresholds.
const (
	TraderTradeThreshold       = 10
	WealthBuilderMultiplier    = 10
	DiversifierPairThreshold   = 5
	ConsistencyHeightThreshold = 7
)

var badgeNames = [badgeKindCount]string{
	"first_trade",
	"trader",
	"wealth_builder",
	"liquidity_provider",
	"diversifier",
	"consistency",
}

func (b BadgeKind) String() string {
	if b < badgeKindCount {
		return badgeNames[b]
	}
	return "unknown"
}

// BadgeProgress reports an account's progress toward one badge.
type BadgeProgress struct {
	Badge     BadgeKind
	Current   uint32
	Threshold uint32
}

// HasBadge reports whether the account holds the badge.
func (p *Portfolio) HasBadge(user uuid.UUID, badge BadgeKind) bool {
	return p.badges[badgeKey{Account: user, Badge: badge}]
}

// AwardBadge grants a badge if not already held. Awarding never fails;
// returns true only when the badge was newly granted.
func (p *Portfolio) AwardBadge(user uuid.UUID, badge BadgeKind) bool {
	key := badgeKey{Account: user, Badge: badge}
	if p.badges[key] {
		return false
	}
	p.badges[key] = true
	return true
}

// UserBadges returns all badges the account holds, in kind order.
func (p *Portfolio) UserBadges(user uuid.UUID) []BadgeKind {
	var held []BadgeKind
	for b := BadgeKind(0); b < badgeKindCount; b++ {
		if p.HasBadge(user, b) {
			held = append(held, b)
		}
	}
	return held
}

// RecordTrade increments the account's trade counter and awards FirstTrade
// on the first one.
func (p *Portfolio) RecordTrade(user uuid.UUID) {
	count := p.trades[user]
	p.trades[user] = count + 1
	p.counters.TradesExecuted++

	if count == 0 {
		p.AwardBadge(user, BadgeFirstTrade)
	}
}

// pairKey canonicalizes a traded pair for diversity tracking. Upstream
// behavior: the key is the source asset only, so the Diversifier count is
// distinct source assets, not distinct pairs. Kept as-is pending a product
// decision on true pair identity.
func pairKey(from, _ asset.Asset) string {
	return from.Symbol()
}

// TrackTrade records the traded pair and ledger height into the account's
// diversity sets. Both sets hold distinct values only.
func (p *Portfolio) TrackTrade(user uuid.UUID, from, to asset.Asset, height uint64) {
	pairs := p.pairsTraded[user]
	if pairs == nil {
		pairs = make(map[string]struct{})
		p.pairsTraded[user] = pairs
	}
	pairs[pairKey(from, to)] = struct{}{}

	heights := p.heightsTraded[user]
	if heights == nil {
		heights = make(map[uint64]struct{})
		p.heightsTraded[user] = heights
	}
	heights[height] = struct{}{}
}

// RecordLPDeposit bumps the account's liquidity-deposit counter.
func (p *Portfolio) RecordLPDeposit(user uuid.UUID) {
	p.lpDeposits[user]++
}

// LPDepositCount returns the number of liquidity deposits for an account.
func (p *Portfolio) LPDepositCount(user uuid.UUID) uint32 {
	return p.lpDeposits[user]
}

// CheckAndAwardBadges evaluates every threshold badge for the account.
// Idempotent: a badge already held is never re-awarded.
func (p *Portfolio) CheckAndAwardBadges(user uuid.UUID) {
	if p.trades[user] >= TraderTradeThreshold {
		p.AwardBadge(user, BadgeTrader)
	}

	// WealthBuilder compares the PnL accumulator (the balance-growth proxy)
	// against the first recorded positive balance.
	initial := p.initialBalances[user]
	if initial > 0 && initial <= math.MaxInt64/WealthBuilderMultiplier &&
		p.pnl[user] >= initial*WealthBuilderMultiplier {
		p.AwardBadge(user, BadgeWealthBuilder)
	}

	if p.lpDeposits[user] >= 1 {
		p.AwardBadge(user, BadgeLiquidityProvider)
	}

	if len(p.pairsTraded[user]) >= DiversifierPairThreshold {
		p.AwardBadge(user, BadgeDiversifier)
	}

	if len(p.heightsTraded[user]) >= ConsistencyHeightThreshold {
		p.AwardBadge(user, BadgeConsistency)
	}
}

// BadgeProgressFor reports, for every badge kind, the account's current
// counter and the award threshold.
func (p *Portfolio) BadgeProgressFor(user uuid.UUID) []BadgeProgress {
	trades := p.trades[user]

	var wealthMultiple uint32
	if initial := p.initialBalances[user]; initial > 0 {
		if pnl := p.pnl[user]; pnl > 0 {
			wealthMultiple = uint32(pnl / initial)
		}
	}

	return []BadgeProgress{
		{Badge: BadgeFirstTrade, Current: trades, Threshold: 1},
		{Badge: BadgeTrader, Current: trades, Threshold: TraderTradeThreshold},
		{Badge: BadgeWealthBuilder, Current: wealthMultiple, Threshold: WealthBuilderMultiplier},
		{Badge: BadgeLiquidityProvider, Current: p.lpDeposits[user], Threshold: 1},
		{Badge: BadgeDiversifier, Current: uint32(len(p.pairsTraded[user])), Threshold: DiversifierPairThreshold},
		{Badge: BadgeConsistency, Current: uint32(len(p.heightsTraded[user])), Threshold: ConsistencyHeightThreshold},
	}
}
