package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"swapvenue/internal/asset"
	"swapvenue/internal/portfolio"
	"swapvenue/internal/ratelimit"
	"swapvenue/internal/tier"
)

// BatchOperation is one step of a batch. Kind selects which fields matter:
// mint and transfer use Amount, swap uses Amount with FromAsset/ToAsset,
// add_liquidity uses AmountA/AmountB, remove_liquidity uses Shares.
type BatchOperation struct {
	Kind      string    `json:"kind"`
	Account   uuid.UUID `json:"account"`
	FromAsset string    `json:"from_asset,omitempty"`
	ToAsset   string    `json:"to_asset,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	AmountA   int64     `json:"amount_a,omitempty"`
	AmountB   int64     `json:"amount_b,omitempty"`
	Shares    int64     `json:"shares,omitempty"`
}

// OperationResult reports the outcome of one batch step.
type OperationResult struct {
	Index   int    `json:"index"`
	Kind    string `json:"kind"`
	OK      bool   `json:"ok"`
	Output  int64  `json:"output,omitempty"`
	OutputB int64  `json:"output_b,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BatchResult summarizes a batch execution.
type BatchResult struct {
	Atomic    bool              `json:"atomic"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   []OperationResult `json:"results"`
}

// ExecuteBatch runs the operations in order against the staged aggregate.
// Atomic mode aborts on the first failure, discarding the stage and
// reporting zero successes. Best-effort mode keeps going past failures;
// each step either applies whole or not at all, so the surviving successes
// commit together.
func (e *Engine) ExecuteBatch(ctx context.Context, ops []BatchOperation, atomic bool) (BatchResult, error) {
	result := BatchResult{Atomic: atomic, Results: make([]OperationResult, 0, len(ops))}
	if len(ops) == 0 {
		return result, fmt.Errorf("%w: empty batch", portfolio.ErrInvalidAmount)
	}

	err := e.apply(ctx, OpBatch, func(st *portfolio.Portfolio) error {
		if st.Paused() {
			return portfolio.ErrTradingPaused
		}

		for i, op := range ops {
			res := e.applyBatchOp(st, i, op)
			if !res.OK && atomic {
				// Earlier successes die with the stage.
				result.Results = append(result.Results[:0], res)
				result.Succeeded = 0
				result.Failed = 1
				return fmt.Errorf("batch aborted at op %d (%s): %s", i, op.Kind, res.Error)
			}
			result.Results = append(result.Results, res)
			if res.OK {
				result.Succeeded++
			} else {
				result.Failed++
			}
		}
		return nil
	})
	if err != nil {
		return result, err
	}
	e.emit(OpBatch, result)
	return result, nil
}

// applyBatchOp runs one step against the given aggregate, with the same tier
// fee and rate-limit treatment as the standalone operations.
func (e *Engine) applyBatchOp(p *portfolio.Portfolio, index int, op BatchOperation) OperationResult {
	res := OperationResult{Index: index, Kind: op.Kind}
	now := e.clock.Timestamp()

	fail := func(err error) OperationResult {
		res.OK = false
		res.Error = err.Error()
		return res
	}

	if err := e.authorize(op.Account, op.Kind); err != nil {
		return fail(err)
	}

	switch op.Kind {
	case OpMint:
		a, err := asset.Parse(op.FromAsset)
		if err != nil {
			return fail(err)
		}
		if err := p.Mint(a, op.Account, op.Amount); err != nil {
			return fail(err)
		}
		res.Output = op.Amount

	case OpTransfer:
		from, to, err := parsePair(op.FromAsset, op.ToAsset)
		if err != nil {
			return fail(err)
		}
		if err := p.TransferAsset(from, to, op.Account, op.Amount); err != nil {
			return fail(err)
		}
		res.Output = op.Amount

	case OpSwap:
		from, to, err := parsePair(op.FromAsset, op.ToAsset)
		if err != nil {
			return fail(err)
		}
		t := tier.Classify(p.TradeCount(op.Account))
		if err := ratelimit.Check(p, op.Account, ratelimit.KindSwap, t.SwapLimit(), now); err != nil {
			return fail(err)
		}
		out, err := p.ExecuteSwap(op.Account, from, to, op.Amount, t.FeeBps(), e.clock.Height(), now)
		if err != nil {
			return fail(err)
		}
		ratelimit.Record(p, op.Account, ratelimit.KindSwap, now)
		res.Output = out

	case OpAddLiquidity:
		t := tier.Classify(p.TradeCount(op.Account))
		if err := ratelimit.Check(p, op.Account, ratelimit.KindLiquidity, t.LPLimit(), now); err != nil {
			return fail(err)
		}
		shares, err := p.AddLiquidity(op.Account, op.AmountA, op.AmountB)
		if err != nil {
			return fail(err)
		}
		ratelimit.Record(p, op.Account, ratelimit.KindLiquidity, now)
		res.Output = shares

	case OpRemoveLiquidity:
		t := tier.Classify(p.TradeCount(op.Account))
		if err := ratelimit.Check(p, op.Account, ratelimit.KindLiquidity, t.LPLimit(), now); err != nil {
			return fail(err)
		}
		outA, outB, err := p.RemoveLiquidity(op.Account, op.Shares)
		if err != nil {
			return fail(err)
		}
		ratelimit.Record(p, op.Account, ratelimit.KindLiquidity, now)
		res.Output = outA
		res.OutputB = outB

	default:
		return fail(fmt.Errorf("%w: unknown batch op %q", portfolio.ErrInvalidAmount, op.Kind))
	}

	res.OK = true
	return res
}

func parsePair(fromSymbol, toSymbol string) (asset.Asset, asset.Asset, error) {
	from, err := asset.Parse(fromSymbol)
	if err != nil {
		return asset.Asset{}, asset.Asset{}, err
	}
	to, err := asset.Parse(toSymbol)
	if err != nil {
		return asset.Asset{}, asset.Asset{}, err
	}
	return from, to, nil
}
