package portfolio

import (
	"fmt"

	"github.com/google/uuid"
)

// CheckInvariants verifies the portfolio's internal accounting. Run after
// every mutating operation; a non-nil return means state is corrupt and the
// portfolio must not be persisted.
func (p *Portfolio) CheckInvariants() error {
	if p.reserveA < 0 || p.reserveB < 0 {
		return fmt.Errorf("%w: negative reserve (%d, %d)", ErrInvariantViolation, p.reserveA, p.reserveB)
	}
	if p.totalLPSupply < 0 {
		return fmt.Errorf("%w: negative LP supply %d", ErrInvariantViolation, p.totalLPSupply)
	}
	if p.totalLPSupply > 0 && (p.reserveA == 0 || p.reserveB == 0) {
		return fmt.Errorf("%w: shares outstanding on empty pool", ErrInvariantViolation)
	}
	if p.lpFeesAccrued < 0 || p.totalFees < 0 || p.totalVolume < 0 {
		return fmt.Errorf("%w: negative aggregate counter", ErrInvariantViolation)
	}

	for key, bal := range p.balances {
		if bal < 0 {
			return fmt.Errorf("%w: negative balance %d for %s/%s",
				ErrInvariantViolation, bal, key.Account, key.Asset.Symbol())
		}
	}
	for user, pos := range p.lpPositions {
		if pos.Shares <= 0 {
			return fmt.Errorf("%w: stored LP position with %d shares for %s",
				ErrInvariantViolation, pos.Shares, user)
		}
	}

	if len(p.topTraders) > LeaderboardCap {
		return fmt.Errorf("%w: leaderboard holds %d entries", ErrInvariantViolation, len(p.topTraders))
	}
	for i := 1; i < len(p.topTraders); i++ {
		if p.topTraders[i-1].PnL < p.topTraders[i].PnL {
			return fmt.Errorf("%w: leaderboard out of order at %d", ErrInvariantViolation, i)
		}
	}

	badgeCounts := make(map[uuid.UUID]int, len(p.badges))
	for key := range p.badges {
		badgeCounts[key.Account]++
		if badgeCounts[key.Account] > int(badgeKindCount) {
			return fmt.Errorf("%w: account %s holds %d badges",
				ErrInvariantViolation, key.Account, badgeCounts[key.Account])
		}
	}
	return nil
}
