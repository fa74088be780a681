package portfolio

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"swapvenue/internal/amm"
)

// LPPosition is one account's stake in the venue pool.
type LPPosition struct {
	Account    uuid.UUID `json:"account"`
	DepositedA int64     `json:"deposited_a"`
	DepositedB int64     `json:"deposited_b"`
	Shares     int64     `json:"shares"`
}

// GetLPPosition reports the account's pool position. ok is false when the
// account holds no shares; a zeroed position is never stored.
func (p *Portfolio) GetLPPosition(user uuid.UUID) (LPPosition, bool) {
	pos, ok := p.lpPositions[user]
	return pos, ok
}

// Reserves returns the current pool reserves (asset A, asset B).
func (p *Portfolio) Reserves() (int64, int64) {
	return p.reserveA, p.reserveB
}

// TotalLPSupply returns the outstanding LP share supply.
func (p *Portfolio) TotalLPSupply() int64 {
	return p.totalLPSupply
}

// LPFeesAccrued returns the undistributed fee pool.
func (p *Portfolio) LPFeesAccrued() int64 {
	return p.lpFeesAccrued
}

// AddLiquidity deposits both pool assets and mints LP shares. All checks run
// before any balance moves; a failed deposit leaves the portfolio untouched.
func (p *Portfolio) AddLiquidity(user uuid.UUID, amountA, amountB int64) (int64, error) {
	if amountA <= 0 || amountB <= 0 {
		return 0, fmt.Errorf("%w: deposit amounts must be positive", ErrInvalidAmount)
	}
	assetA, assetB := PoolAssetA(), PoolAssetB()
	if p.BalanceOf(assetA, user) < amountA {
		return 0, fmt.Errorf("%w: %s deposit", ErrInsufficientBalance, assetA.Symbol())
	}
	if p.BalanceOf(assetB, user) < amountB {
		return 0, fmt.Errorf("%w: %s deposit", ErrInsufficientBalance, assetB.Symbol())
	}

	shares, err := amm.SharesForDeposit(amountA, amountB, p.reserveA, p.reserveB, p.totalLPSupply)
	if err != nil {
		switch {
		case errors.Is(err, amm.ErrOverflow):
			return 0, fmt.Errorf("%w: share computation", ErrAmountOverflow)
		case errors.Is(err, amm.ErrEmptyProduct):
			return 0, fmt.Errorf("%w: deposit too small to seed pool", ErrInvalidAmount)
		default:
			return 0, err
		}
	}
	if shares <= 0 {
		return 0, fmt.Errorf("%w: deposit yields no shares", ErrInvalidAmount)
	}
	newReserveA, err := amm.AddChecked(p.reserveA, amountA)
	if err != nil {
		return 0, fmt.Errorf("%w: pool reserve", ErrAmountOverflow)
	}
	newReserveB, err := amm.AddChecked(p.reserveB, amountB)
	if err != nil {
		return 0, fmt.Errorf("%w: pool reserve", ErrAmountOverflow)
	}
	newSupply, err := amm.AddChecked(p.totalLPSupply, shares)
	if err != nil {
		return 0, fmt.Errorf("%w: share supply", ErrAmountOverflow)
	}

	// Both legs are straight debits: balance down, PnL down, until the
	// redemption credits them back.
	p.balances[balanceKey{user, assetA}] -= amountA
	p.balances[balanceKey{user, assetB}] -= amountB
	p.addPnL(user, -amountA)
	p.addPnL(user, -amountB)
	p.reserveA = newReserveA
	p.reserveB = newReserveB
	p.totalLPSupply = newSupply

	pos := p.lpPositions[user]
	pos.Account = user
	pos.DepositedA += amountA
	pos.DepositedB += amountB
	pos.Shares += shares
	p.lpPositions[user] = pos

	p.counters.BalancesUpdated += 2
	p.RecordLPDeposit(user)
	p.CheckAndAwardBadges(user)
	return shares, nil
}

// RemoveLiquidity burns LP shares and returns the proportional reserves. A
// redemption paying out more than 1% above what the account ever deposited
// is rejected outright rather than clamped.
func (p *Portfolio) RemoveLiquidity(user uuid.UUID, shares int64) (int64, int64, error) {
	if shares <= 0 {
		return 0, 0, fmt.Errorf("%w: shares must be positive", ErrInvalidAmount)
	}
	pos, ok := p.lpPositions[user]
	if !ok {
		return 0, 0, ErrPositionNotFound
	}
	if shares > pos.Shares {
		return 0, 0, fmt.Errorf("%w: hold %d shares", ErrInsufficientBalance, pos.Shares)
	}
	if p.totalLPSupply <= 0 {
		return 0, 0, ErrNoLiquidity
	}

	outA, outB, err := amm.RedeemAmounts(shares, p.reserveA, p.reserveB, p.totalLPSupply)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: redemption", ErrAmountOverflow)
	}
	if exceedsDepositTolerance(outA, pos.DepositedA) || exceedsDepositTolerance(outB, pos.DepositedB) {
		return 0, 0, fmt.Errorf("%w: redemption exceeds deposit tolerance", ErrInvalidAmount)
	}

	assetA, assetB := PoolAssetA(), PoolAssetB()
	newBalA, err := amm.AddChecked(p.BalanceOf(assetA, user), outA)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s balance", ErrAmountOverflow, assetA.Symbol())
	}
	newBalB, err := amm.AddChecked(p.BalanceOf(assetB, user), outB)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s balance", ErrAmountOverflow, assetB.Symbol())
	}

	p.reserveA -= outA
	p.reserveB -= outB
	if p.reserveA < 0 {
		p.reserveA = 0
	}
	if p.reserveB < 0 {
		p.reserveB = 0
	}
	p.balances[balanceKey{user, assetA}] = newBalA
	p.balances[balanceKey{user, assetB}] = newBalB
	p.addPnL(user, outA)
	p.addPnL(user, outB)

	pos.Shares -= shares
	// The payout can exceed the remaining deposit by the 1% tolerance, so
	// the decrement floors at zero.
	pos.DepositedA = max(0, pos.DepositedA-outA)
	pos.DepositedB = max(0, pos.DepositedB-outB)
	if pos.Shares == 0 {
		delete(p.lpPositions, user)
	} else {
		p.lpPositions[user] = pos
	}
	p.totalLPSupply -= shares
	if p.totalLPSupply < 0 {
		p.totalLPSupply = 0
	}
	p.counters.BalancesUpdated += 2
	return outA, outB, nil
}

// exceedsDepositTolerance reports whether a payout is more than 1% above the
// account's lifetime deposit of that asset.
func exceedsDepositTolerance(out, deposited int64) bool {
	if deposited > (1<<62)/101 {
		// Deposit large enough that the scaled bound would overflow; any
		// representable payout is within tolerance.
		return false
	}
	return out > deposited*101/100
}
