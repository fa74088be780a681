package portfolio

import (
	"swapvenue/internal/asset"

	"github.com/google/uuid"
)

// SchemaVersion is the current aggregate schema version.
const SchemaVersion uint32 = 2

// PoolCounterSymbol is the symbol of the pool's counter asset. The single
// venue pool trades the native asset against this asset.
const PoolCounterSymbol = "USDC-SIM"

// PoolAssetA returns the pool's first reserve asset (native).
func PoolAssetA() asset.Asset { return asset.Native() }

// PoolAssetB returns the pool's second reserve asset.
func PoolAssetB() asset.Asset { return asset.Custom(PoolCounterSymbol) }

type balanceKey struct {
	Account uuid.UUID
	Asset   asset.Asset
}

type badgeKey struct {
	Account uuid.UUID
	Badge   BadgeKind
}

type rateKey struct {
	Account uuid.UUID
	Kind    string
}

// RateBucket counts operations of one kind within the current window.
type RateBucket struct {
	Count       uint32
	WindowStart uint64
}

// Counters are the aggregate's monotonically non-decreasing op counters.
type Counters struct {
	TradesExecuted  uint64 `json:"trades_executed"`
	FailedOrders    uint64 `json:"failed_orders"`
	BalancesUpdated uint64 `json:"balances_updated"`
}

// Portfolio is the venue's single accounting aggregate. It is loaded whole
// per operation, mutated synchronously, and stored whole; there is no partial
// visibility of in-progress mutation.
type Portfolio struct {
	balances map[balanceKey]int64
	trades   map[uuid.UUID]uint32
	pnl      map[uuid.UUID]int64

	badges          map[badgeKey]bool
	initialBalances map[uuid.UUID]int64
	pairsTraded     map[uuid.UUID]map[string]struct{}
	heightsTraded   map[uuid.UUID]map[uint64]struct{}
	lpDeposits      map[uuid.UUID]uint32
	transactions    map[uuid.UUID][]Transaction

	lpPositions   map[uuid.UUID]LPPosition
	reserveA      int64 // native asset held by the pool
	reserveB      int64 // counter asset held by the pool
	totalLPSupply int64
	lpFeesAccrued int64

	counters    Counters
	totalUsers  uint32
	totalVolume int64
	totalFees   int64
	activeUsers map[uuid.UUID]struct{}
	topTraders  []LeaderboardEntry // sorted by PnL descending, len <= LeaderboardCap

	rateBuckets map[rateKey]RateBucket

	admin      *uuid.UUID
	paused     bool
	version    uint32
	migratedAt *uint64
}

// New returns an empty aggregate at schema version 0 (uninitialized).
func New() *Portfolio {
	return &Portfolio{
		balances:        make(map[balanceKey]int64),
		trades:          make(map[uuid.UUID]uint32),
		pnl:             make(map[uuid.UUID]int64),
		badges:          make(map[badgeKey]bool),
		initialBalances: make(map[uuid.UUID]int64),
		pairsTraded:     make(map[uuid.UUID]map[string]struct{}),
		heightsTraded:   make(map[uuid.UUID]map[uint64]struct{}),
		lpDeposits:      make(map[uuid.UUID]uint32),
		transactions:    make(map[uuid.UUID][]Transaction),
		lpPositions:     make(map[uuid.UUID]LPPosition),
		activeUsers:     make(map[uuid.UUID]struct{}),
		rateBuckets:     make(map[rateKey]RateBucket),
	}
}

// Clone returns a deep copy of the aggregate. Batch atomic mode applies
// operations to a clone and swaps it in only on full success.
func (p *Portfolio) Clone() *Portfolio {
	c := New()

	for k, v := range p.balances {
		c.balances[k] = v
	}
	for k, v := range p.trades {
		c.trades[k] = v
	}
	for k, v := range p.pnl {
		c.pnl[k] = v
	}
	for k, v := range p.badges {
		c.badges[k] = v
	}
	for k, v := range p.initialBalances {
		c.initialBalances[k] = v
	}
	for user, pairs := range p.pairsTraded {
		set := make(map[string]struct{}, len(pairs))
		for pair := range pairs {
			set[pair] = struct{}{}
		}
		c.pairsTraded[user] = set
	}
	for user, heights := range p.heightsTraded {
		set := make(map[uint64]struct{}, len(heights))
		for h := range heights {
			set[h] = struct{}{}
		}
		c.heightsTraded[user] = set
	}
	for k, v := range p.lpDeposits {
		c.lpDeposits[k] = v
	}
	for user, txs := range p.transactions {
		c.transactions[user] = append([]Transaction(nil), txs...)
	}
	for k, v := range p.lpPositions {
		c.lpPositions[k] = v
	}
	for k := range p.activeUsers {
		c.activeUsers[k] = struct{}{}
	}
	for k, v := range p.rateBuckets {
		c.rateBuckets[k] = v
	}
	c.topTraders = append([]LeaderboardEntry(nil), p.topTraders...)

	c.reserveA = p.reserveA
	c.reserveB = p.reserveB
	c.totalLPSupply = p.totalLPSupply
	c.lpFeesAccrued = p.lpFeesAccrued
	c.counters = p.counters
	c.totalUsers = p.totalUsers
	c.totalVolume = p.totalVolume
	c.totalFees = p.totalFees
	c.paused = p.paused
	c.version = p.version

	if p.admin != nil {
		admin := *p.admin
		c.admin = &admin
	}
	if p.migratedAt != nil {
		at := *p.migratedAt
		c.migratedAt = &at
	}

	return c
}

// Counters returns a copy of the op counters.
func (p *Portfolio) Counters() Counters {
	return p.counters
}

// IncFailedOrder bumps the failed-order counter (non-panicking swap variants).
func (p *Portfolio) IncFailedOrder() {
	p.counters.FailedOrders++
}

// TradeCount returns the number of completed trades for an account.
func (p *Portfolio) TradeCount(user uuid.UUID) uint32 {
	return p.trades[user]
}

// PnL returns the account's cumulative balance-change accumulator. It is a
// coarse proxy for realized profit/loss, not mark-to-market.
func (p *Portfolio) PnL(user uuid.UUID) int64 {
	return p.pnl[user]
}
