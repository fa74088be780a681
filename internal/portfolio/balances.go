package portfolio

import (
	"errors"
	"fmt"
	"math"

	"swapvenue/internal/amm"
	"swapvenue/internal/asset"

	"github.com/google/uuid"
)

// BalanceOf returns the account's balance of an asset. Unknown keys read as 0.
func (p *Portfolio) BalanceOf(a asset.Asset, user uuid.UUID) int64 {
	return p.balances[balanceKey{Account: user, Asset: a}]
}

// Credit adds amount to the account's balance. Amount 0 is a no-op; negative
// amounts are rejected before any mutation.
func (p *Portfolio) Credit(a asset.Asset, user uuid.UUID, amount int64) error {
	if amount == 0 {
		return nil
	}
	if amount < 0 {
		return fmt.Errorf("credit %d %s: %w", amount, a, ErrInvalidAmount)
	}

	key := balanceKey{Account: user, Asset: a}
	next, err := amm.AddChecked(p.balances[key], amount)
	if err != nil {
		return fmt.Errorf("credit %d %s: %w", amount, a, ErrAmountOverflow)
	}

	p.balances[key] = next
	p.counters.BalancesUpdated++
	return nil
}

// Debit removes amount from the account's balance, failing without mutation
// when the balance is short. A successful debit decrements the account's PnL
// accumulator by the same amount; this is a coarse proxy, not cost accounting.
func (p *Portfolio) Debit(a asset.Asset, user uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit %d %s: %w", amount, a, ErrInvalidAmount)
	}

	key := balanceKey{Account: user, Asset: a}
	current := p.balances[key]
	if current < amount {
		return fmt.Errorf("debit %d %s (have %d): %w", amount, a, current, ErrInsufficientBalance)
	}

	p.balances[key] = current - amount
	p.addPnL(user, -amount)
	p.counters.BalancesUpdated++
	return nil
}

// Mint credits newly issued units of an asset to an account. A zero amount is
// a no-op; the PnL accumulator rises with the minted amount. The first
// positive mint for an account is recorded as its initial-balance baseline.
func (p *Portfolio) Mint(a asset.Asset, user uuid.UUID, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("mint %d %s: %w", amount, a, ErrInvalidAmount)
	}
	if amount == 0 {
		return nil
	}

	key := balanceKey{Account: user, Asset: a}
	next, err := amm.AddChecked(p.balances[key], amount)
	if err != nil {
		return fmt.Errorf("mint %d %s: %w", amount, a, ErrAmountOverflow)
	}

	p.balances[key] = next
	p.addPnL(user, amount)
	p.recordInitialBalance(user, amount)
	p.counters.BalancesUpdated++
	return nil
}

// TransferAsset moves amount of an account's balance from one asset to
// another. All preconditions are validated before any delta is applied, so a
// failure can never leave the transfer half-done.
func (p *Portfolio) TransferAsset(from, to asset.Asset, user uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("transfer %d: %w", amount, ErrInvalidAmount)
	}
	if from == to {
		return fmt.Errorf("transfer %s to itself: %w", from, ErrInvalidSwapPair)
	}

	fromKey := balanceKey{Account: user, Asset: from}
	if p.balances[fromKey] < amount {
		return fmt.Errorf("transfer %d %s (have %d): %w", amount, from, p.balances[fromKey], ErrInsufficientBalance)
	}
	toKey := balanceKey{Account: user, Asset: to}
	toNext, err := amm.AddChecked(p.balances[toKey], amount)
	if err != nil {
		return fmt.Errorf("transfer %d %s: %w", amount, to, ErrAmountOverflow)
	}

	p.balances[fromKey] -= amount
	p.balances[toKey] = toNext
	p.addPnL(user, -amount)
	p.counters.BalancesUpdated += 2
	p.updateStatsOnTrade(user, amount)
	return nil
}

// addPnL adjusts the PnL accumulator, saturating at the int64 bounds, and
// re-slots the account on the leaderboard.
func (p *Portfolio) addPnL(user uuid.UUID, delta int64) {
	next, err := amm.AddChecked(p.pnl[user], delta)
	if err != nil {
		if errors.Is(err, amm.ErrOverflow) && delta > 0 {
			next = math.MaxInt64
		} else {
			next = math.MinInt64
		}
	}
	p.pnl[user] = next
	p.updateTopTraders(user)
}

// recordInitialBalance writes the WealthBuilder baseline once, at the first
// positive balance observation.
func (p *Portfolio) recordInitialBalance(user uuid.UUID, amount int64) {
	if amount <= 0 {
		return
	}
	if _, ok := p.initialBalances[user]; !ok {
		p.initialBalances[user] = amount
	}
}

// InitialBalance returns the WealthBuilder baseline, 0 if never recorded.
func (p *Portfolio) InitialBalance(user uuid.UUID) int64 {
	return p.initialBalances[user]
}
