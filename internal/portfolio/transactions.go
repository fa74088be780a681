package portfolio

import (
	"math/big"

	"github.com/google/uuid"

	"swapvenue/internal/asset"
)

// RateScale is the fixed-point denominator for achieved swap rates:
// rate = toAmount * RateScale / fromAmount.
const RateScale = 10_000_000

// Transaction is one completed swap in an account's history.
type Transaction struct {
	Timestamp  uint64 `json:"timestamp"`
	FromAsset  string `json:"from_asset"`
	ToAsset    string `json:"to_asset"`
	FromAmount int64  `json:"from_amount"`
	ToAmount   int64  `json:"to_amount"`
	Rate       uint64 `json:"rate"`
}

func (p *Portfolio) recordTransaction(user uuid.UUID, from, to asset.Asset, fromAmount, toAmount int64, ts uint64) {
	var rate uint64
	if fromAmount > 0 {
		r := new(big.Int).SetInt64(toAmount)
		r.Mul(r, big.NewInt(RateScale))
		r.Quo(r, big.NewInt(fromAmount))
		if r.IsUint64() {
			rate = r.Uint64()
		}
	}
	p.transactions[user] = append(p.transactions[user], Transaction{
		Timestamp:  ts,
		FromAsset:  from.Symbol(),
		ToAsset:    to.Symbol(),
		FromAmount: fromAmount,
		ToAmount:   toAmount,
		Rate:       rate,
	})
}

// UserTransactions returns up to limit of the account's most recent swaps,
// newest first. limit == 0 returns the full history.
func (p *Portfolio) UserTransactions(user uuid.UUID, limit uint32) []Transaction {
	history := p.transactions[user]
	n := len(history)
	if limit > 0 && int(limit) < n {
		n = int(limit)
	}
	out := make([]Transaction, n)
	for i := 0; i < n; i++ {
		out[i] = history[len(history)-1-i]
	}
	return out
}
