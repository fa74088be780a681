// Package amm holds the pool math: constant-product pricing, fee computation,
// LP share minting/redemption, and the bounded integer square root used for
// the first liquidity deposit. All intermediates go through big.Int so that
// int64 inputs cannot silently wrap.
package amm

import (
	"errors"
	"math"
	"math/big"
)

// ErrOverflow is returned when a result does not fit in int64.
var ErrOverflow = errors.New("arithmetic overflow")

// ErrEmptyProduct is returned when the first LP deposit has a zero product.
var ErrEmptyProduct = errors.New("reserve product is zero")

// sqrtMaxIterations bounds the Newton iteration so it always terminates.
const sqrtMaxIterations = 100

// FeeBpsDenominator is the basis-point scale for fees.
const FeeBpsDenominator = 10_000

// MaxFeeBps caps any tier's fee at 1% of the amount.
const MaxFeeBps = 100

// Fee computes floor(amount * feeBps / 10000). Amounts <= 0 and feeBps of 0
// yield a zero fee. The result never exceeds amount.
func Fee(amount int64, feeBps uint32) int64 {
	if amount <= 0 || feeBps == 0 {
		return 0
	}
	n := new(big.Int).Mul(big.NewInt(amount), big.NewInt(int64(feeBps)))
	n.Quo(n, big.NewInt(FeeBpsDenominator))
	return n.Int64() // <= amount, always fits
}

// SwapOutput prices amountIn (net of fees) against the constant-product
// curve: out = in * reserveOut / (reserveIn + in), rounded up. Rounding the
// payout up makes (reserveIn+in)*(reserveOut-out) <= reserveIn*reserveOut
// hold for every input; the reserve product never increases across a swap.
// Callers must reject out >= reserveOut, which a large enough input can
// produce.
func SwapOutput(amountIn, reserveIn, reserveOut int64) (int64, error) {
	if amountIn <= 0 {
		return 0, ErrOverflow
	}
	num := new(big.Int).Mul(big.NewInt(amountIn), big.NewInt(reserveOut))
	den := new(big.Int).Add(big.NewInt(reserveIn), big.NewInt(amountIn))
	out, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Sign() != 0 {
		out.Add(out, big.NewInt(1))
	}
	if !out.IsInt64() {
		return 0, ErrOverflow
	}
	return out.Int64(), nil
}

// SharesForDeposit computes LP shares minted for a deposit of (amountA,
// amountB) against the current reserves and total supply.
//
// First deposit (totalSupply == 0): shares = isqrt(amountA * amountB).
// Subsequent deposits: shares = min(amountA*S/reserveA, amountB*S/reserveB),
// so a deposit can never claim more than its proportional share along either
// axis.
func SharesForDeposit(amountA, amountB, reserveA, reserveB, totalSupply int64) (int64, error) {
	if totalSupply == 0 {
		product := new(big.Int).Mul(big.NewInt(amountA), big.NewInt(amountB))
		if product.Sign() == 0 {
			return 0, ErrEmptyProduct
		}
		root := integerSqrt(product)
		if !root.IsInt64() {
			return 0, ErrOverflow
		}
		return root.Int64(), nil
	}

	shareA := proportionalShare(amountA, totalSupply, reserveA)
	shareB := proportionalShare(amountB, totalSupply, reserveB)
	shares := shareA
	if shareB.Cmp(shareA) < 0 {
		shares = shareB
	}
	if !shares.IsInt64() {
		return 0, ErrOverflow
	}
	return shares.Int64(), nil
}

// RedeemAmounts computes the reserve amounts returned for burning shares:
// floor(shares * reserve / totalSupply) per axis.
func RedeemAmounts(shares, reserveA, reserveB, totalSupply int64) (int64, int64, error) {
	outA := proportionalShare(shares, reserveA, totalSupply)
	outB := proportionalShare(shares, reserveB, totalSupply)
	if !outA.IsInt64() || !outB.IsInt64() {
		return 0, 0, ErrOverflow
	}
	return outA.Int64(), outB.Int64(), nil
}

// proportionalShare computes floor(amount * numerator / denominator),
// returning 0 when the denominator is not positive.
func proportionalShare(amount, numerator, denominator int64) *big.Int {
	if denominator <= 0 {
		return new(big.Int)
	}
	n := new(big.Int).Mul(big.NewInt(amount), big.NewInt(numerator))
	return n.Quo(n, big.NewInt(denominator))
}

// integerSqrt computes floor(sqrt(n)) for n > 0 by Newton/Babylonian
// iteration, capped at sqrtMaxIterations to guarantee termination.
func integerSqrt(n *big.Int) *big.Int {
	guess := new(big.Int).Set(n)
	prev := new(big.Int)
	two := big.NewInt(2)

	for i := 0; i < sqrtMaxIterations && guess.Cmp(prev) != 0; i++ {
		prev.Set(guess)
		q := new(big.Int).Quo(n, guess)
		guess.Add(guess, q)
		guess.Quo(guess, two)
		if guess.Sign() == 0 {
			return big.NewInt(1)
		}
	}

	// Newton from above can land one step high for non-squares.
	sq := new(big.Int).Mul(guess, guess)
	if sq.Cmp(n) > 0 {
		guess.Sub(guess, big.NewInt(1))
	}
	return guess
}

// AddChecked returns a+b or ErrOverflow if the sum wraps.
func AddChecked(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrOverflow
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// ReserveProduct returns reserveA*reserveB as a big.Int, for invariant checks.
func ReserveProduct(reserveA, reserveB int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(reserveA), big.NewInt(reserveB))
}
