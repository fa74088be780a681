package portfolio_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"swapvenue/internal/amm"
	"swapvenue/internal/asset"
	"swapvenue/internal/portfolio"
)

func seedPool(t *testing.T, p *portfolio.Portfolio, amountA, amountB int64) uuid.UUID {
	t.Helper()
	lp := uuid.New()
	if err := p.Mint(portfolio.PoolAssetA(), lp, amountA); err != nil {
		t.Fatal(err)
	}
	if err := p.Mint(portfolio.PoolAssetB(), lp, amountB); err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddLiquidity(lp, amountA, amountB); err != nil {
		t.Fatal(err)
	}
	return lp
}

// ============================================================================
// Test: ExecuteSwap
// ============================================================================

func TestExecuteSwap_MovesBalancesAndReserves(t *testing.T) {
	p := portfolio.New()
	seedPool(t, p, 100_000, 100_000)

	user := uuid.New()
	p.Mint(portfolio.PoolAssetA(), user, 10_000)

	out, err := p.ExecuteSwap(user, portfolio.PoolAssetA(), portfolio.PoolAssetB(), 10_000, 30, 7, 1_000)
	if err != nil {
		t.Fatal(err)
	}
	// fee = 30, net 9970, out = 9970*100000/109970 rounded up = 9067
	if out != 9067 {
		t.Errorf("out = %d, want 9067", out)
	}
	if got := p.BalanceOf(portfolio.PoolAssetA(), user); got != 0 {
		t.Errorf("native balance = %d, want 0", got)
	}
	if got := p.BalanceOf(portfolio.PoolAssetB(), user); got != out {
		t.Errorf("counter balance = %d, want %d", got, out)
	}

	reserveA, reserveB := p.Reserves()
	if reserveA != 100_000+9_970 {
		t.Errorf("reserveA = %d", reserveA)
	}
	if reserveB != 100_000-out {
		t.Errorf("reserveB = %d", reserveB)
	}
	if p.TradeCount(user) != 1 {
		t.Errorf("trade count = %d", p.TradeCount(user))
	}
}

func TestExecuteSwap_RecordsTransaction(t *testing.T) {
	p := portfolio.New()
	seedPool(t, p, 100_000, 100_000)

	user := uuid.New()
	p.Mint(portfolio.PoolAssetA(), user, 10_000)
	out, err := p.ExecuteSwap(user, portfolio.PoolAssetA(), portfolio.PoolAssetB(), 10_000, 30, 7, 1_234)
	if err != nil {
		t.Fatal(err)
	}

	txs := p.UserTransactions(user, 10)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions", len(txs))
	}
	tx := txs[0]
	if tx.Timestamp != 1_234 || tx.FromAmount != 10_000 || tx.ToAmount != out {
		t.Errorf("tx = %+v", tx)
	}
	wantRate := uint64(out) * portfolio.RateScale / 10_000
	if tx.Rate != wantRate {
		t.Errorf("rate = %d, want %d", tx.Rate, wantRate)
	}
}

func TestExecuteSwap_InsufficientBalanceLeavesStateUnchanged(t *testing.T) {
	p := portfolio.New()
	seedPool(t, p, 100_000, 100_000)
	reserveA, reserveB := p.Reserves()

	user := uuid.New()
	_, err := p.ExecuteSwap(user, portfolio.PoolAssetA(), portfolio.PoolAssetB(), 100, 30, 1, 1)
	if !errors.Is(err, portfolio.ErrInsufficientBalance) {
		t.Fatalf("got %v", err)
	}

	afterA, afterB := p.Reserves()
	if afterA != reserveA || afterB != reserveB {
		t.Error("reserves moved on a rejected swap")
	}
	if p.TradeCount(user) != 0 {
		t.Error("trade counted on a rejected swap")
	}
	if len(p.UserTransactions(user, 10)) != 0 {
		t.Error("transaction recorded on a rejected swap")
	}
}

func TestExecuteSwap_UnpooledAssetRejected(t *testing.T) {
	p := portfolio.New()
	seedPool(t, p, 100_000, 100_000)

	user := uuid.New()
	p.Mint(asset.Custom("FOO"), user, 1_000)
	_, err := p.ExecuteSwap(user, asset.Custom("FOO"), portfolio.PoolAssetB(), 100, 30, 1, 1)
	if !errors.Is(err, portfolio.ErrInvalidSwapPair) {
		t.Errorf("got %v", err)
	}
}

func TestExecuteSwap_EmptyPoolRejected(t *testing.T) {
	p := portfolio.New()
	user := uuid.New()
	p.Mint(portfolio.PoolAssetA(), user, 1_000)

	_, err := p.ExecuteSwap(user, portfolio.PoolAssetA(), portfolio.PoolAssetB(), 100, 30, 1, 1)
	if !errors.Is(err, portfolio.ErrNoLiquidity) {
		t.Errorf("got %v", err)
	}
}

func TestExecuteSwap_ReverseDirection(t *testing.T) {
	p := portfolio.New()
	seedPool(t, p, 100_000, 100_000)

	user := uuid.New()
	p.Mint(portfolio.PoolAssetB(), user, 10_000)
	out, err := p.ExecuteSwap(user, portfolio.PoolAssetB(), portfolio.PoolAssetA(), 10_000, 0, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	// No fee: out = 10000*100000/110000 rounded up = 9091
	if out != 9091 {
		t.Errorf("out = %d, want 9091", out)
	}
	reserveA, reserveB := p.Reserves()
	if reserveA != 100_000-9_091 || reserveB != 110_000 {
		t.Errorf("reserves = %d/%d", reserveA, reserveB)
	}
}

func TestExecuteSwap_FeeAccrues(t *testing.T) {
	p := portfolio.New()
	seedPool(t, p, 100_000, 100_000)

	user := uuid.New()
	p.Mint(portfolio.PoolAssetA(), user, 10_000)
	p.ExecuteSwap(user, portfolio.PoolAssetA(), portfolio.PoolAssetB(), 10_000, 30, 1, 1)

	if got := p.Stats().TotalFeesCollected; got != 30 {
		t.Errorf("fees = %d, want 30", got)
	}
	if got := p.LPFeesAccrued(); got != 30 {
		t.Errorf("lp fee pool = %d, want 30", got)
	}
}

func TestExecuteSwap_ReserveProductNeverIncreases(t *testing.T) {
	cases := []struct {
		reserveA, reserveB, amount int64
		feeBps                     uint32
	}{
		{1_000, 1_000, 100, 30},
		{1_000, 1_000, 1, 10},
		{100_000, 100_000, 10_000, 30},
		{5_000, 2_000, 777, 0},
	}
	for _, tc := range cases {
		p := portfolio.New()
		seedPool(t, p, tc.reserveA, tc.reserveB)

		user := uuid.New()
		p.Mint(portfolio.PoolAssetA(), user, tc.amount)
		before := amm.ReserveProduct(p.Reserves())
		if _, err := p.ExecuteSwap(user, portfolio.PoolAssetA(), portfolio.PoolAssetB(), tc.amount, tc.feeBps, 1, 1); err != nil {
			t.Fatalf("swap %+v: %v", tc, err)
		}
		after := amm.ReserveProduct(p.Reserves())
		if after.Cmp(before) > 0 {
			t.Errorf("swap %+v: reserve product increased from %s to %s", tc, before, after)
		}
	}
}

// ============================================================================
// Test: AddLiquidity / RemoveLiquidity
// ============================================================================

func TestAddLiquidity_FirstDepositMintsGeometricMean(t *testing.T) {
	p := portfolio.New()
	lp := uuid.New()
	p.Mint(portfolio.PoolAssetA(), lp, 1_000)
	p.Mint(portfolio.PoolAssetB(), lp, 1_000)

	shares, err := p.AddLiquidity(lp, 1_000, 1_000)
	if err != nil {
		t.Fatal(err)
	}
	if shares != 1_000 {
		t.Errorf("shares = %d, want 1000", shares)
	}
	if p.TotalLPSupply() != 1_000 {
		t.Errorf("supply = %d", p.TotalLPSupply())
	}
	pos, ok := p.GetLPPosition(lp)
	if !ok || pos.Shares != 1_000 || pos.DepositedA != 1_000 || pos.DepositedB != 1_000 {
		t.Errorf("position = %+v ok=%v", pos, ok)
	}
	if !p.HasBadge(lp, portfolio.BadgeLiquidityProvider) {
		t.Error("LiquidityProvider badge not awarded")
	}
}

func TestAddLiquidity_SecondDepositProportional(t *testing.T) {
	p := portfolio.New()
	seedPool(t, p, 1_000, 1_000)

	lp2 := uuid.New()
	p.Mint(portfolio.PoolAssetA(), lp2, 500)
	p.Mint(portfolio.PoolAssetB(), lp2, 500)

	shares, err := p.AddLiquidity(lp2, 500, 500)
	if err != nil {
		t.Fatal(err)
	}
	if shares != 500 {
		t.Errorf("shares = %d, want 500", shares)
	}
	if p.TotalLPSupply() != 1_500 {
		t.Errorf("supply = %d", p.TotalLPSupply())
	}
}

func TestAddLiquidity_InsufficientBalanceRejected(t *testing.T) {
	p := portfolio.New()
	lp := uuid.New()
	p.Mint(portfolio.PoolAssetA(), lp, 100)
	p.Mint(portfolio.PoolAssetB(), lp, 1_000)

	_, err := p.AddLiquidity(lp, 1_000, 1_000)
	if !errors.Is(err, portfolio.ErrInsufficientBalance) {
		t.Fatalf("got %v", err)
	}
	if got := p.BalanceOf(portfolio.PoolAssetA(), lp); got != 100 {
		t.Errorf("balance moved to %d", got)
	}
	if p.TotalLPSupply() != 0 {
		t.Error("supply moved on rejected deposit")
	}
}

func TestRemoveLiquidity_RoundTrip(t *testing.T) {
	p := portfolio.New()
	lp := seedPool(t, p, 1_000, 1_000)

	outA, outB, err := p.RemoveLiquidity(lp, 1_000)
	if err != nil {
		t.Fatal(err)
	}
	if outA != 1_000 || outB != 1_000 {
		t.Errorf("payout = (%d, %d)", outA, outB)
	}
	if _, ok := p.GetLPPosition(lp); ok {
		t.Error("zero-share position should be deleted")
	}
	if p.TotalLPSupply() != 0 {
		t.Errorf("supply = %d", p.TotalLPSupply())
	}

	// A further removal finds no position.
	_, _, err = p.RemoveLiquidity(lp, 1)
	if !errors.Is(err, portfolio.ErrPositionNotFound) {
		t.Errorf("got %v", err)
	}
}

func TestRemoveLiquidity_PartialKeepsPosition(t *testing.T) {
	p := portfolio.New()
	lp := seedPool(t, p, 1_000, 1_000)

	outA, outB, err := p.RemoveLiquidity(lp, 400)
	if err != nil {
		t.Fatal(err)
	}
	if outA != 400 || outB != 400 {
		t.Errorf("payout = (%d, %d)", outA, outB)
	}
	pos, ok := p.GetLPPosition(lp)
	if !ok || pos.Shares != 600 {
		t.Errorf("position = %+v ok=%v", pos, ok)
	}
	if pos.DepositedA != 600 || pos.DepositedB != 600 {
		t.Errorf("deposited = (%d, %d), want (600, 600)", pos.DepositedA, pos.DepositedB)
	}
}

func TestLiquidityRoundTrip_PnLRestored(t *testing.T) {
	p := portfolio.New()
	lp := uuid.New()
	p.Mint(portfolio.PoolAssetA(), lp, 1_000)
	p.Mint(portfolio.PoolAssetB(), lp, 1_000)
	if got := p.PnL(lp); got != 2_000 {
		t.Fatalf("pnl after mints = %d", got)
	}

	if _, err := p.AddLiquidity(lp, 500, 500); err != nil {
		t.Fatal(err)
	}
	if got := p.PnL(lp); got != 1_000 {
		t.Errorf("pnl after deposit = %d, want 1000", got)
	}

	if _, _, err := p.RemoveLiquidity(lp, 500); err != nil {
		t.Fatal(err)
	}
	if got := p.PnL(lp); got != 2_000 {
		t.Errorf("pnl after redemption = %d, want 2000", got)
	}
}

func TestRemoveLiquidity_MoreThanHeldRejected(t *testing.T) {
	p := portfolio.New()
	lp := seedPool(t, p, 1_000, 1_000)

	_, _, err := p.RemoveLiquidity(lp, 2_000)
	if !errors.Is(err, portfolio.ErrInsufficientBalance) {
		t.Errorf("got %v", err)
	}
}

func TestRemoveLiquidity_PayoutBeyondDepositToleranceRejected(t *testing.T) {
	p := portfolio.New()
	lp := seedPool(t, p, 1_000, 1_000)

	// A large fee-free swap doubles reserveA; full redemption would now pay
	// out about twice the deposit, beyond the 1% tolerance.
	trader := uuid.New()
	p.Mint(portfolio.PoolAssetA(), trader, 1_000)
	if _, err := p.ExecuteSwap(trader, portfolio.PoolAssetA(), portfolio.PoolAssetB(), 1_000, 0, 1, 1); err != nil {
		t.Fatal(err)
	}

	_, _, err := p.RemoveLiquidity(lp, 1_000)
	if !errors.Is(err, portfolio.ErrInvalidAmount) {
		t.Errorf("got %v", err)
	}
	pos, ok := p.GetLPPosition(lp)
	if !ok || pos.Shares != 1_000 {
		t.Error("position changed on rejected removal")
	}
}
