package portfolio

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// LeaderboardCap bounds the top-traders list.
const LeaderboardCap = 100

// LeaderboardEntry is one slot on the top-traders board.
type LeaderboardEntry struct {
	Account uuid.UUID
	PnL     int64
}

// VenueStats are the global aggregate counters.
type VenueStats struct {
	TotalUsers         uint32
	ActiveUsers        uint32
	TotalTradingVolume int64
	TotalFeesCollected int64
}

// updateTopTraders re-slots the account after a PnL change. The board stays
// sorted by PnL descending and never exceeds LeaderboardCap entries; when
// full, a new account enters only by beating the lowest slot.
func (p *Portfolio) updateTopTraders(user uuid.UUID) {
	pnl := p.pnl[user]

	// Drop the account's old slot, if any. The board is sorted by PnL, not
	// account, so this lookup is a scan over at most LeaderboardCap entries.
	for i, e := range p.topTraders {
		if e.Account == user {
			p.topTraders = append(p.topTraders[:i], p.topTraders[i+1:]...)
			break
		}
	}

	if len(p.topTraders) >= LeaderboardCap {
		if p.topTraders[len(p.topTraders)-1].PnL >= pnl {
			return
		}
		p.topTraders = p.topTraders[:len(p.topTraders)-1]
	}

	at := sort.Search(len(p.topTraders), func(i int) bool {
		return p.topTraders[i].PnL < pnl
	})
	p.topTraders = append(p.topTraders, LeaderboardEntry{})
	copy(p.topTraders[at+1:], p.topTraders[at:])
	p.topTraders[at] = LeaderboardEntry{Account: user, PnL: pnl}
}

// TopTraders returns up to limit leaderboard entries, PnL descending. Limits
// above LeaderboardCap are clamped.
func (p *Portfolio) TopTraders(limit uint32) []LeaderboardEntry {
	if limit > LeaderboardCap {
		limit = LeaderboardCap
	}
	n := int(limit)
	if n > len(p.topTraders) {
		n = len(p.topTraders)
	}
	return append([]LeaderboardEntry(nil), p.topTraders[:n]...)
}

// updateStatsOnTrade folds a trade into the global aggregates: first-time
// accounts grow the user counters, and volume accrues (saturating).
func (p *Portfolio) updateStatsOnTrade(user uuid.UUID, amount int64) {
	if _, seen := p.activeUsers[user]; !seen {
		p.activeUsers[user] = struct{}{}
		p.totalUsers++
	}

	if amount > 0 {
		if p.totalVolume > math.MaxInt64-amount {
			p.totalVolume = math.MaxInt64
		} else {
			p.totalVolume += amount
		}
	}
}

// collectFee accrues a swap fee into the venue's fee counter and the LP fee
// pool (distribution is not performed here; the pool only accumulates).
func (p *Portfolio) collectFee(fee int64) {
	if fee <= 0 {
		return
	}
	if p.totalFees > math.MaxInt64-fee {
		p.totalFees = math.MaxInt64
	} else {
		p.totalFees += fee
	}
	if p.lpFeesAccrued > math.MaxInt64-fee {
		p.lpFeesAccrued = math.MaxInt64
	} else {
		p.lpFeesAccrued += fee
	}
}

// Stats returns a copy of the global aggregates.
func (p *Portfolio) Stats() VenueStats {
	return VenueStats{
		TotalUsers:         p.totalUsers,
		ActiveUsers:        uint32(len(p.activeUsers)),
		TotalTradingVolume: p.totalVolume,
		TotalFeesCollected: p.totalFees,
	}
}
