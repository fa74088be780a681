package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"swapvenue/internal/dispatch"
	"swapvenue/internal/engine"
	"swapvenue/internal/portfolio"
)

func TestOpFromSubject(t *testing.T) {
	cases := []struct {
		subject string
		want    string
	}{
		{"venue.ops.swap", "swap"},
		{"venue.ops.add_liquidity", "add_liquidity"},
		{"venue.events.swap", ""},
		{"other", ""},
	}
	for _, tc := range cases {
		if got := dispatch.OpFromSubject(tc.subject); got != tc.want {
			t.Errorf("OpFromSubject(%q) = %q, want %q", tc.subject, got, tc.want)
		}
	}
}

func TestApply_MintRequest(t *testing.T) {
	eng := engine.New(engine.Options{})
	user := uuid.New()

	body, _ := json.Marshal(map[string]any{
		"account": user.String(),
		"asset":   "XLM",
		"amount":  1_500,
	})
	if err := dispatch.Apply(context.Background(), eng, engine.OpMint, body); err != nil {
		t.Fatal(err)
	}
	if got := eng.BalanceOf(user, portfolio.PoolAssetA()); got != 1_500 {
		t.Errorf("balance = %d, want 1500", got)
	}
}

func TestApply_SwapRequest(t *testing.T) {
	eng := engine.New(engine.Options{})
	ctx := context.Background()
	lp := uuid.New()
	eng.Mint(ctx, lp, portfolio.PoolAssetA(), 100_000)
	eng.Mint(ctx, lp, portfolio.PoolAssetB(), 100_000)
	if _, err := eng.AddLiquidity(ctx, lp, 100_000, 100_000); err != nil {
		t.Fatal(err)
	}

	user := uuid.New()
	eng.Mint(ctx, user, portfolio.PoolAssetA(), 1_000)

	body, _ := json.Marshal(map[string]any{
		"account":    user.String(),
		"from_asset": "XLM",
		"to_asset":   "USDC-SIM",
		"amount":     500,
	})
	if err := dispatch.Apply(ctx, eng, engine.OpSwap, body); err != nil {
		t.Fatal(err)
	}
	if eng.TradeCount(user) != 1 {
		t.Error("swap not applied")
	}
}

func TestApply_BatchRequest(t *testing.T) {
	eng := engine.New(engine.Options{})
	user := uuid.New()

	body, _ := json.Marshal(map[string]any{
		"account": user.String(),
		"atomic":  true,
		"operations": []map[string]any{
			{"kind": "mint", "account": user.String(), "from_asset": "XLM", "amount": 100},
			{"kind": "mint", "account": user.String(), "from_asset": "USDC-SIM", "amount": 200},
		},
	})
	if err := dispatch.Apply(context.Background(), eng, engine.OpBatch, body); err != nil {
		t.Fatal(err)
	}
	if got := eng.BalanceOf(user, portfolio.PoolAssetB()); got != 200 {
		t.Errorf("balance = %d, want 200", got)
	}
}

func TestApply_MalformedJSONIsBadRequest(t *testing.T) {
	eng := engine.New(engine.Options{})
	err := dispatch.Apply(context.Background(), eng, engine.OpSwap, []byte("{not json"))
	if !errors.Is(err, dispatch.ErrBadRequest) {
		t.Errorf("got %v", err)
	}
}

func TestApply_BadAccountIsBadRequest(t *testing.T) {
	eng := engine.New(engine.Options{})
	body, _ := json.Marshal(map[string]any{"account": "nope", "asset": "XLM", "amount": 1})
	err := dispatch.Apply(context.Background(), eng, engine.OpMint, body)
	if !errors.Is(err, dispatch.ErrBadRequest) {
		t.Errorf("got %v", err)
	}
}

func TestApply_UnknownOpIsBadRequest(t *testing.T) {
	eng := engine.New(engine.Options{})
	body, _ := json.Marshal(map[string]any{"account": uuid.New().String()})
	err := dispatch.Apply(context.Background(), eng, "liquidate", body)
	if !errors.Is(err, dispatch.ErrBadRequest) {
		t.Errorf("got %v", err)
	}
}

func TestApply_DomainRejectionIsNotBadRequest(t *testing.T) {
	eng := engine.New(engine.Options{})
	body, _ := json.Marshal(map[string]any{
		"account":    uuid.New().String(),
		"from_asset": "XLM",
		"to_asset":   "USDC-SIM",
		"amount":     100,
	})
	err := dispatch.Apply(context.Background(), eng, engine.OpSwap, body)
	if err == nil {
		t.Fatal("swap on empty pool should fail")
	}
	if errors.Is(err, dispatch.ErrBadRequest) {
		t.Error("domain rejection mislabeled as bad request")
	}
}
