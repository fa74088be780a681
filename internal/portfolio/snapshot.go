package portfolio

import (
	"fmt"

	"github.com/google/uuid"

	"swapvenue/internal/asset"
)

// Snapshot is the serializable form of the aggregate. Maps with composite or
// non-string keys flatten to slices so the JSON stays stable and greppable.
type Snapshot struct {
	Version    uint32  `json:"version"`
	MigratedAt *uint64 `json:"migrated_at,omitempty"`
	Admin      string  `json:"admin,omitempty"`
	Paused     bool    `json:"paused"`

	Balances        []BalanceSnap            `json:"balances"`
	Trades          map[string]uint32        `json:"trades"`
	PnL             map[string]int64         `json:"pnl"`
	Badges          []BadgeSnap              `json:"badges"`
	InitialBalances map[string]int64         `json:"initial_balances"`
	PairsTraded     map[string][]string      `json:"pairs_traded"`
	HeightsTraded   map[string][]uint64      `json:"heights_traded"`
	LPDeposits      map[string]uint32        `json:"lp_deposits"`
	Transactions    map[string][]Transaction `json:"transactions"`

	LPPositions   []LPPosition `json:"lp_positions"`
	ReserveA      int64        `json:"reserve_a"`
	ReserveB      int64        `json:"reserve_b"`
	TotalLPSupply int64        `json:"total_lp_supply"`
	LPFeesAccrued int64        `json:"lp_fees_accrued"`

	Counters    Counters         `json:"counters"`
	TotalUsers  uint32           `json:"total_users"`
	TotalVolume int64            `json:"total_volume"`
	TotalFees   int64            `json:"total_fees"`
	ActiveUsers []string         `json:"active_users"`
	TopTraders  []TopTraderSnap  `json:"top_traders"`
	RateBuckets []RateBucketSnap `json:"rate_buckets"`
}

// BalanceSnap is one (account, asset) balance row.
type BalanceSnap struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Amount  int64  `json:"amount"`
}

// BadgeSnap is one awarded badge.
type BadgeSnap struct {
	Account string `json:"account"`
	Badge   uint8  `json:"badge"`
}

// TopTraderSnap is one leaderboard slot.
type TopTraderSnap struct {
	Account string `json:"account"`
	PnL     int64  `json:"pnl"`
}

// RateBucketSnap is one account's window bucket for one operation kind.
type RateBucketSnap struct {
	Account     string `json:"account"`
	Kind        string `json:"kind"`
	Count       uint32 `json:"count"`
	WindowStart uint64 `json:"window_start"`
}

// Snapshot flattens the aggregate for persistence.
func (p *Portfolio) Snapshot() *Snapshot {
	s := &Snapshot{
		Version:         p.version,
		Paused:          p.paused,
		Trades:          make(map[string]uint32, len(p.trades)),
		PnL:             make(map[string]int64, len(p.pnl)),
		InitialBalances: make(map[string]int64, len(p.initialBalances)),
		PairsTraded:     make(map[string][]string, len(p.pairsTraded)),
		HeightsTraded:   make(map[string][]uint64, len(p.heightsTraded)),
		LPDeposits:      make(map[string]uint32, len(p.lpDeposits)),
		Transactions:    make(map[string][]Transaction, len(p.transactions)),
		ReserveA:        p.reserveA,
		ReserveB:        p.reserveB,
		TotalLPSupply:   p.totalLPSupply,
		LPFeesAccrued:   p.lpFeesAccrued,
		Counters:        p.counters,
		TotalUsers:      p.totalUsers,
		TotalVolume:     p.totalVolume,
		TotalFees:       p.totalFees,
	}
	if p.admin != nil {
		s.Admin = p.admin.String()
	}
	if p.migratedAt != nil {
		at := *p.migratedAt
		s.MigratedAt = &at
	}

	for key, amount := range p.balances {
		s.Balances = append(s.Balances, BalanceSnap{
			Account: key.Account.String(),
			Asset:   key.Asset.Symbol(),
			Amount:  amount,
		})
	}
	for user, count := range p.trades {
		s.Trades[user.String()] = count
	}
	for user, pnl := range p.pnl {
		s.PnL[user.String()] = pnl
	}
	for key := range p.badges {
		s.Badges = append(s.Badges, BadgeSnap{
			Account: key.Account.String(),
			Badge:   uint8(key.Badge),
		})
	}
	for user, amount := range p.initialBalances {
		s.InitialBalances[user.String()] = amount
	}
	for user, pairs := range p.pairsTraded {
		list := make([]string, 0, len(pairs))
		for pair := range pairs {
			list = append(list, pair)
		}
		s.PairsTraded[user.String()] = list
	}
	for user, heights := range p.heightsTraded {
		list := make([]uint64, 0, len(heights))
		for h := range heights {
			list = append(list, h)
		}
		s.HeightsTraded[user.String()] = list
	}
	for user, count := range p.lpDeposits {
		s.LPDeposits[user.String()] = count
	}
	for user, txs := range p.transactions {
		s.Transactions[user.String()] = append([]Transaction(nil), txs...)
	}
	for _, pos := range p.lpPositions {
		s.LPPositions = append(s.LPPositions, pos)
	}
	for user := range p.activeUsers {
		s.ActiveUsers = append(s.ActiveUsers, user.String())
	}
	for _, e := range p.topTraders {
		s.TopTraders = append(s.TopTraders, TopTraderSnap{Account: e.Account.String(), PnL: e.PnL})
	}
	for key, b := range p.rateBuckets {
		s.RateBuckets = append(s.RateBuckets, RateBucketSnap{
			Account:     key.Account.String(),
			Kind:        key.Kind,
			Count:       b.Count,
			WindowStart: b.WindowStart,
		})
	}
	return s
}

// FromSnapshot rebuilds an aggregate from its serialized form.
func FromSnapshot(s *Snapshot) (*Portfolio, error) {
	p := New()
	p.version = s.Version
	p.paused = s.Paused
	if s.MigratedAt != nil {
		at := *s.MigratedAt
		p.migratedAt = &at
	}
	if s.Admin != "" {
		admin, err := uuid.Parse(s.Admin)
		if err != nil {
			return nil, fmt.Errorf("parse admin: %w", err)
		}
		p.admin = &admin
	}

	for _, row := range s.Balances {
		user, err := uuid.Parse(row.Account)
		if err != nil {
			return nil, fmt.Errorf("parse balance account: %w", err)
		}
		a, err := parseSnapshotAsset(row.Asset)
		if err != nil {
			return nil, err
		}
		p.balances[balanceKey{user, a}] = row.Amount
	}
	if err := restoreByAccount(s.Trades, func(user uuid.UUID, v uint32) {
		p.trades[user] = v
	}); err != nil {
		return nil, err
	}
	if err := restoreByAccount(s.PnL, func(user uuid.UUID, v int64) {
		p.pnl[user] = v
	}); err != nil {
		return nil, err
	}
	for _, row := range s.Badges {
		user, err := uuid.Parse(row.Account)
		if err != nil {
			return nil, fmt.Errorf("parse badge account: %w", err)
		}
		p.badges[badgeKey{user, BadgeKind(row.Badge)}] = true
	}
	if err := restoreByAccount(s.InitialBalances, func(user uuid.UUID, v int64) {
		p.initialBalances[user] = v
	}); err != nil {
		return nil, err
	}
	if err := restoreByAccount(s.PairsTraded, func(user uuid.UUID, pairs []string) {
		set := make(map[string]struct{}, len(pairs))
		for _, pair := range pairs {
			set[pair] = struct{}{}
		}
		p.pairsTraded[user] = set
	}); err != nil {
		return nil, err
	}
	if err := restoreByAccount(s.HeightsTraded, func(user uuid.UUID, heights []uint64) {
		set := make(map[uint64]struct{}, len(heights))
		for _, h := range heights {
			set[h] = struct{}{}
		}
		p.heightsTraded[user] = set
	}); err != nil {
		return nil, err
	}
	if err := restoreByAccount(s.LPDeposits, func(user uuid.UUID, v uint32) {
		p.lpDeposits[user] = v
	}); err != nil {
		return nil, err
	}
	if err := restoreByAccount(s.Transactions, func(user uuid.UUID, txs []Transaction) {
		p.transactions[user] = append([]Transaction(nil), txs...)
	}); err != nil {
		return nil, err
	}
	for _, pos := range s.LPPositions {
		p.lpPositions[pos.Account] = pos
	}
	for _, raw := range s.ActiveUsers {
		user, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse active user: %w", err)
		}
		p.activeUsers[user] = struct{}{}
	}
	for _, row := range s.TopTraders {
		user, err := uuid.Parse(row.Account)
		if err != nil {
			return nil, fmt.Errorf("parse leaderboard account: %w", err)
		}
		p.topTraders = append(p.topTraders, LeaderboardEntry{Account: user, PnL: row.PnL})
	}
	for _, row := range s.RateBuckets {
		user, err := uuid.Parse(row.Account)
		if err != nil {
			return nil, fmt.Errorf("parse rate bucket account: %w", err)
		}
		p.rateBuckets[rateKey{user, row.Kind}] = RateBucket{Count: row.Count, WindowStart: row.WindowStart}
	}

	p.reserveA = s.ReserveA
	p.reserveB = s.ReserveB
	p.totalLPSupply = s.TotalLPSupply
	p.lpFeesAccrued = s.LPFeesAccrued
	p.counters = s.Counters
	p.totalUsers = s.TotalUsers
	p.totalVolume = s.TotalVolume
	p.totalFees = s.TotalFees
	return p, nil
}

func restoreByAccount[V any](in map[string]V, set func(uuid.UUID, V)) error {
	for raw, v := range in {
		user, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse account %q: %w", raw, err)
		}
		set(user, v)
	}
	return nil
}

func parseSnapshotAsset(symbol string) (asset.Asset, error) {
	a, err := asset.Parse(symbol)
	if err != nil {
		return asset.Asset{}, fmt.Errorf("parse asset %q: %w", symbol, err)
	}
	return a, nil
}
