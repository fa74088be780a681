package engine

import (
	"github.com/google/uuid"

	"swapvenue/internal/amm"
	"swapvenue/internal/asset"
	"swapvenue/internal/portfolio"
	"swapvenue/internal/ratelimit"
	"swapvenue/internal/tier"
)

// Read-only accessors over the aggregate. None of these mutate state or
// touch the store.

// BalanceOf returns the account's balance of one asset.
func (e *Engine) BalanceOf(user uuid.UUID, a asset.Asset) int64 {
	return e.state.BalanceOf(a, user)
}

// TradeCount returns the account's lifetime completed trades.
func (e *Engine) TradeCount(user uuid.UUID) uint32 {
	return e.state.TradeCount(user)
}

// PnL returns the account's cumulative profit/loss accumulator.
func (e *Engine) PnL(user uuid.UUID) int64 {
	return e.state.PnL(user)
}

// TierOf returns the account's current fee tier.
func (e *Engine) TierOf(user uuid.UUID) tier.Tier {
	return tier.Classify(e.state.TradeCount(user))
}

// UserBadges returns the account's earned badges.
func (e *Engine) UserBadges(user uuid.UUID) []portfolio.BadgeKind {
	return e.state.UserBadges(user)
}

// BadgeProgress returns the account's progress toward every badge.
func (e *Engine) BadgeProgress(user uuid.UUID) []portfolio.BadgeProgress {
	return e.state.BadgeProgressFor(user)
}

// LPPosition returns the account's pool position, if any.
func (e *Engine) LPPosition(user uuid.UUID) (portfolio.LPPosition, bool) {
	return e.state.GetLPPosition(user)
}

// PoolReserves returns the pool's reserves and outstanding share supply.
func (e *Engine) PoolReserves() (reserveA, reserveB, totalShares int64) {
	reserveA, reserveB = e.state.Reserves()
	return reserveA, reserveB, e.state.TotalLPSupply()
}

// TopTraders returns up to limit leaderboard entries, best PnL first.
func (e *Engine) TopTraders(limit uint32) []portfolio.LeaderboardEntry {
	return e.state.TopTraders(limit)
}

// Stats returns the venue's global aggregates.
func (e *Engine) Stats() portfolio.VenueStats {
	return e.state.Stats()
}

// Counters returns the op counters.
func (e *Engine) Counters() portfolio.Counters {
	return e.state.Counters()
}

// UserTransactions returns the account's most recent swaps, newest first.
func (e *Engine) UserTransactions(user uuid.UUID, limit uint32) []portfolio.Transaction {
	return e.state.UserTransactions(user, limit)
}

// RateLimitStatus returns the account's remaining allowance for one
// operation kind at the current clock.
func (e *Engine) RateLimitStatus(user uuid.UUID, kind string) ratelimit.Status {
	t := tier.Classify(e.state.TradeCount(user))
	return ratelimit.GetStatus(e.state, user, kind, t, e.clock.Timestamp())
}

// SwapQuote returns the fee and output a swap of amount would produce right
// now, without executing it.
func (e *Engine) SwapQuote(user uuid.UUID, from, to asset.Asset, amount int64) (fee, out int64, err error) {
	if from == to {
		return 0, 0, portfolio.ErrInvalidSwapPair
	}
	assetA, assetB := portfolio.PoolAssetA(), portfolio.PoolAssetB()
	if (from != assetA && from != assetB) || (to != assetA && to != assetB) {
		return 0, 0, portfolio.ErrInvalidSwapPair
	}
	if amount <= 0 {
		return 0, 0, portfolio.ErrInvalidAmount
	}
	reserveIn, reserveOut := e.state.Reserves()
	if from == assetB {
		reserveIn, reserveOut = reserveOut, reserveIn
	}
	if reserveIn <= 0 || reserveOut <= 0 {
		return 0, 0, portfolio.ErrNoLiquidity
	}
	t := tier.Classify(e.state.TradeCount(user))
	fee = amm.Fee(amount, t.FeeBps())
	out, err = amm.SwapOutput(amount-fee, reserveIn, reserveOut)
	if err != nil {
		return 0, 0, portfolio.ErrAmountOverflow
	}
	if out >= reserveOut {
		return 0, 0, portfolio.ErrNoLiquidity
	}
	return fee, out, nil
}

// Paused reports whether trading is halted.
func (e *Engine) Paused() bool {
	return e.state.Paused()
}

// SchemaVersion returns the aggregate's schema version.
func (e *Engine) SchemaVersion() uint32 {
	return e.state.Version()
}
