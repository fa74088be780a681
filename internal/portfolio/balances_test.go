package portfolio_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"swapvenue/internal/asset"
	"swapvenue/internal/portfolio"
)

func TestBalanceOf_UnknownIsZero(t *testing.T) {
	p := portfolio.New()
	if got := p.BalanceOf(asset.Native(), uuid.New()); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestMint_CreditsAndSetsBaseline(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()

	if err := p.Mint(asset.Native(), user, 1_000); err != nil {
		t.Fatal(err)
	}
	if got := p.BalanceOf(asset.Native(), user); got != 1_000 {
		t.Errorf("balance = %d, want 1000", got)
	}
	if got := p.InitialBalance(user); got != 1_000 {
		t.Errorf("initial balance = %d, want 1000", got)
	}

	// A second mint grows the balance but not the baseline.
	if err := p.Mint(asset.Native(), user, 500); err != nil {
		t.Fatal(err)
	}
	if got := p.InitialBalance(user); got != 1_000 {
		t.Errorf("baseline moved to %d", got)
	}
	if got := p.PnL(user); got != 1_500 {
		t.Errorf("pnl = %d, want 1500", got)
	}
}

func TestMint_ZeroIsNoOp(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()
	before := p.Counters()

	if err := p.Mint(asset.Native(), user, 0); err != nil {
		t.Fatal(err)
	}
	if p.Counters() != before {
		t.Error("zero mint should not touch counters")
	}
}

func TestMint_NegativeRejected(t *testing.T) {
	p := portfolio.New()
	err := p.Mint(asset.Native(), uuid.New(), -1)
	if !errors.Is(err, portfolio.ErrInvalidAmount) {
		t.Errorf("got %v", err)
	}
}

func TestMint_OverflowRejected(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()
	if err := p.Mint(asset.Native(), user, math.MaxInt64); err != nil {
		t.Fatal(err)
	}
	err := p.Mint(asset.Native(), user, 1)
	if !errors.Is(err, portfolio.ErrAmountOverflow) {
		t.Errorf("got %v", err)
	}
	if got := p.BalanceOf(asset.Native(), user); got != math.MaxInt64 {
		t.Errorf("balance moved to %d", got)
	}
}

func TestDebit_InsufficientLeavesStateUntouched(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()
	p.Mint(asset.Native(), user, 100)

	err := p.Debit(asset.Native(), user, 200)
	if !errors.Is(err, portfolio.ErrInsufficientBalance) {
		t.Fatalf("got %v", err)
	}
	if got := p.BalanceOf(asset.Native(), user); got != 100 {
		t.Errorf("balance = %d, want 100", got)
	}
}

func TestTransferAsset_MovesValueBetweenAssets(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()
	usdc := asset.Custom(portfolio.PoolCounterSymbol)
	p.Mint(asset.Native(), user, 1_000)

	if err := p.TransferAsset(asset.Native(), usdc, user, 400); err != nil {
		t.Fatal(err)
	}
	if got := p.BalanceOf(asset.Native(), user); got != 600 {
		t.Errorf("native = %d, want 600", got)
	}
	if got := p.BalanceOf(usdc, user); got != 400 {
		t.Errorf("usdc = %d, want 400", got)
	}
}

func TestTransferAsset_SameAssetRejected(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()
	p.Mint(asset.Native(), user, 1_000)

	err := p.TransferAsset(asset.Native(), asset.Native(), user, 100)
	if !errors.Is(err, portfolio.ErrInvalidSwapPair) {
		t.Errorf("got %v", err)
	}
}

func TestTransferAsset_CountsUserOnce(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()
	usdc := asset.Custom(portfolio.PoolCounterSymbol)
	p.Mint(asset.Native(), user, 1_000)

	p.TransferAsset(asset.Native(), usdc, user, 100)
	p.TransferAsset(asset.Native(), usdc, user, 100)

	stats := p.Stats()
	if stats.TotalUsers != 1 || stats.ActiveUsers != 1 {
		t.Errorf("stats = %+v, want one user", stats)
	}
	if stats.TotalTradingVolume != 200 {
		t.Errorf("volume = %d, want 200", stats.TotalTradingVolume)
	}
}
