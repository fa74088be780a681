package portfolio

import (
	"fmt"

	"github.com/google/uuid"

	"swapvenue/internal/amm"
	"swapvenue/internal/asset"
)

// ExecuteSwap trades amount of from for to through the venue pool at the
// given fee. Every validation runs before the first balance moves, so an
// error return means the portfolio is exactly as it was.
func (p *Portfolio) ExecuteSwap(user uuid.UUID, from, to asset.Asset, amount int64, feeBps uint32, height, ts uint64) (int64, error) {
	if from == to {
		return 0, fmt.Errorf("%w: identical assets", ErrInvalidSwapPair)
	}
	assetA, assetB := PoolAssetA(), PoolAssetB()
	if (from != assetA && from != assetB) || (to != assetA && to != assetB) {
		return 0, fmt.Errorf("%w: %s/%s not pooled", ErrInvalidSwapPair, from.Symbol(), to.Symbol())
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: swap amount must be positive", ErrInvalidAmount)
	}
	if have := p.BalanceOf(from, user); have < amount {
		return 0, fmt.Errorf("%w: have %d", ErrInsufficientBalance, have)
	}

	reserveIn, reserveOut := p.reserveA, p.reserveB
	if from == assetB {
		reserveIn, reserveOut = p.reserveB, p.reserveA
	}
	if reserveIn <= 0 || reserveOut <= 0 {
		return 0, ErrNoLiquidity
	}

	fee := amm.Fee(amount, feeBps)
	net := amount - fee
	if net <= 0 {
		return 0, fmt.Errorf("%w: amount consumed by fee", ErrInvalidAmount)
	}
	out, err := amm.SwapOutput(net, reserveIn, reserveOut)
	if err != nil {
		return 0, fmt.Errorf("%w: swap output", ErrAmountOverflow)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%w: swap yields no output", ErrInvalidAmount)
	}
	if out >= reserveOut {
		return 0, fmt.Errorf("swap would drain the pool: %w", ErrNoLiquidity)
	}
	newReserveIn, err := amm.AddChecked(reserveIn, net)
	if err != nil {
		return 0, fmt.Errorf("%w: pool reserve", ErrAmountOverflow)
	}
	newBalOut, err := amm.AddChecked(p.BalanceOf(to, user), out)
	if err != nil {
		return 0, fmt.Errorf("%w: %s balance", ErrAmountOverflow, to.Symbol())
	}

	p.balances[balanceKey{user, from}] -= amount
	p.balances[balanceKey{user, to}] = newBalOut
	if from == assetA {
		p.reserveA = newReserveIn
		p.reserveB = reserveOut - out
	} else {
		p.reserveB = newReserveIn
		p.reserveA = reserveOut - out
	}

	p.collectFee(fee)
	p.counters.BalancesUpdated += 2
	p.RecordTrade(user)
	p.TrackTrade(user, from, to, height)
	p.updateStatsOnTrade(user, amount)
	p.addPnL(user, out-amount)
	p.recordTransaction(user, from, to, amount, out, ts)
	p.CheckAndAwardBadges(user)
	return out, nil
}
