package engine

import (
	"context"

	"github.com/google/uuid"

	"swapvenue/internal/asset"
	"swapvenue/internal/portfolio"
	"swapvenue/internal/ratelimit"
	"swapvenue/internal/tier"
)

// Operation names, used as metric labels and event subjects.
const (
	OpMint            = "mint"
	OpSwap            = "swap"
	OpTransfer        = "transfer"
	OpAddLiquidity    = "add_liquidity"
	OpRemoveLiquidity = "remove_liquidity"
	OpBatch           = "batch"
)

// MintEvent is emitted after a successful mint.
type MintEvent struct {
	Account uuid.UUID `json:"account"`
	Asset   string    `json:"asset"`
	Amount  int64     `json:"amount"`
}

// SwapEvent is emitted after a successful swap.
type SwapEvent struct {
	Account   uuid.UUID `json:"account"`
	FromAsset string    `json:"from_asset"`
	ToAsset   string    `json:"to_asset"`
	AmountIn  int64     `json:"amount_in"`
	AmountOut int64     `json:"amount_out"`
	FeeBps    uint32    `json:"fee_bps"`
	Tier      string    `json:"tier"`
}

// TransferEvent is emitted after a successful cross-asset transfer.
type TransferEvent struct {
	Account   uuid.UUID `json:"account"`
	FromAsset string    `json:"from_asset"`
	ToAsset   string    `json:"to_asset"`
	Amount    int64     `json:"amount"`
}

// LiquidityEvent is emitted after a successful liquidity change.
type LiquidityEvent struct {
	Account uuid.UUID `json:"account"`
	AmountA int64     `json:"amount_a"`
	AmountB int64     `json:"amount_b"`
	Shares  int64     `json:"shares"`
	Removed bool      `json:"removed"`
}

// Mint credits new units of an asset to an account. Minting stays available
// while trading is paused so accounts can still be provisioned.
func (e *Engine) Mint(ctx context.Context, user uuid.UUID, a asset.Asset, amount int64) error {
	err := e.apply(ctx, OpMint, func(st *portfolio.Portfolio) error {
		if err := e.authorize(user, OpMint); err != nil {
			return err
		}
		return st.Mint(a, user, amount)
	})
	if err != nil {
		return err
	}
	e.emit(OpMint, MintEvent{Account: user, Asset: a.Symbol(), Amount: amount})
	return nil
}

// Swap trades amount of from for to at the caller's tier fee, subject to the
// tier's swap rate limit.
func (e *Engine) Swap(ctx context.Context, user uuid.UUID, from, to asset.Asset, amount int64) (int64, error) {
	var out int64
	var t tier.Tier
	err := e.apply(ctx, OpSwap, func(st *portfolio.Portfolio) error {
		if err := e.authorize(user, OpSwap); err != nil {
			return err
		}
		if st.Paused() {
			return portfolio.ErrTradingPaused
		}
		now := e.clock.Timestamp()
		t = tier.Classify(st.TradeCount(user))
		if err := ratelimit.Check(st, user, ratelimit.KindSwap, t.SwapLimit(), now); err != nil {
			return err
		}
		var err error
		out, err = st.ExecuteSwap(user, from, to, amount, t.FeeBps(), e.clock.Height(), now)
		if err != nil {
			return err
		}
		ratelimit.Record(st, user, ratelimit.KindSwap, now)
		return nil
	})
	if err != nil {
		return 0, err
	}
	e.emit(OpSwap, SwapEvent{
		Account:   user,
		FromAsset: from.Symbol(),
		ToAsset:   to.Symbol(),
		AmountIn:  amount,
		AmountOut: out,
		FeeBps:    t.FeeBps(),
		Tier:      t.String(),
	})
	return out, nil
}

// TrySwap is the non-failing swap variant: a rejected swap returns ok=false
// and bumps the failed-order counter instead of surfacing the error. The
// counter bump follows the same stage-then-commit path as any mutation; if
// persisting it fails the bump is dropped rather than left half-applied.
func (e *Engine) TrySwap(ctx context.Context, user uuid.UUID, from, to asset.Asset, amount int64) (int64, bool) {
	out, err := e.Swap(ctx, user, from, to, amount)
	if err != nil {
		next := e.state.Clone()
		next.IncFailedOrder()
		if e.store != nil {
			if serr := e.store.Store(ctx, next); serr != nil {
				e.log.Warn().Err(serr).Msg("persist failed-order counter")
				return 0, false
			}
		}
		e.state = next
		return 0, false
	}
	return out, true
}

// Transfer moves value between two of the account's own asset balances
// without touching the pool.
func (e *Engine) Transfer(ctx context.Context, user uuid.UUID, from, to asset.Asset, amount int64) error {
	err := e.apply(ctx, OpTransfer, func(st *portfolio.Portfolio) error {
		if err := e.authorize(user, OpTransfer); err != nil {
			return err
		}
		if st.Paused() {
			return portfolio.ErrTradingPaused
		}
		return st.TransferAsset(from, to, user, amount)
	})
	if err != nil {
		return err
	}
	e.emit(OpTransfer, TransferEvent{
		Account:   user,
		FromAsset: from.Symbol(),
		ToAsset:   to.Symbol(),
		Amount:    amount,
	})
	return nil
}

// AddLiquidity deposits both pool assets, subject to the tier's liquidity
// rate limit, and mints LP shares.
func (e *Engine) AddLiquidity(ctx context.Context, user uuid.UUID, amountA, amountB int64) (int64, error) {
	var shares int64
	err := e.apply(ctx, OpAddLiquidity, func(st *portfolio.Portfolio) error {
		if err := e.authorize(user, OpAddLiquidity); err != nil {
			return err
		}
		if st.Paused() {
			return portfolio.ErrTradingPaused
		}
		now := e.clock.Timestamp()
		t := tier.Classify(st.TradeCount(user))
		if err := ratelimit.Check(st, user, ratelimit.KindLiquidity, t.LPLimit(), now); err != nil {
			return err
		}
		var err error
		shares, err = st.AddLiquidity(user, amountA, amountB)
		if err != nil {
			return err
		}
		ratelimit.Record(st, user, ratelimit.KindLiquidity, now)
		return nil
	})
	if err != nil {
		return 0, err
	}
	e.emit(OpAddLiquidity, LiquidityEvent{Account: user, AmountA: amountA, AmountB: amountB, Shares: shares})
	return shares, nil
}

// RemoveLiquidity burns LP shares and pays out the proportional reserves,
// subject to the tier's liquidity rate limit.
func (e *Engine) RemoveLiquidity(ctx context.Context, user uuid.UUID, shares int64) (int64, int64, error) {
	var outA, outB int64
	err := e.apply(ctx, OpRemoveLiquidity, func(st *portfolio.Portfolio) error {
		if err := e.authorize(user, OpRemoveLiquidity); err != nil {
			return err
		}
		if st.Paused() {
			return portfolio.ErrTradingPaused
		}
		now := e.clock.Timestamp()
		t := tier.Classify(st.TradeCount(user))
		if err := ratelimit.Check(st, user, ratelimit.KindLiquidity, t.LPLimit(), now); err != nil {
			return err
		}
		var err error
		outA, outB, err = st.RemoveLiquidity(user, shares)
		if err != nil {
			return err
		}
		ratelimit.Record(st, user, ratelimit.KindLiquidity, now)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	e.emit(OpRemoveLiquidity, LiquidityEvent{Account: user, AmountA: outA, AmountB: outB, Shares: shares, Removed: true})
	return outA, outB, nil
}
