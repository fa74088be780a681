package portfolio

import "errors"

// Error taxonomy for venue operations. Every validation failure aborts its
// operation before any state delta is applied; callers match with errors.Is.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidSwapPair     = errors.New("invalid swap pair")
	ErrRateLimitExceeded   = errors.New("rate limit exceeded")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrAmountOverflow      = errors.New("amount overflow")
	ErrNoLiquidity         = errors.New("no liquidity")
	ErrPositionNotFound    = errors.New("lp position not found")
	ErrTradingPaused       = errors.New("trading paused")
	ErrNotAdmin            = errors.New("caller is not admin")
)

// ErrInvariantViolation reports internal accounting corruption detected by a
// post-mutation check.
var ErrInvariantViolation = errors.New("invariant violation")
