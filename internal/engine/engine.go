// Package engine is the venue's single-threaded operation processor. It owns
// the portfolio aggregate, applies one operation at a time, verifies
// invariants after every mutation, and writes the aggregate through to the
// store before acknowledging.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"swapvenue/internal/observability"
	"swapvenue/internal/portfolio"
)

// PortfolioStore persists the aggregate between runs.
type PortfolioStore interface {
	// Load returns the stored aggregate, or (nil, nil) when no snapshot
	// exists yet.
	Load(ctx context.Context) (*portfolio.Portfolio, error)
	Store(ctx context.Context, p *portfolio.Portfolio) error
}

// Clock supplies the height and timestamp stamped onto operations. Both are
// inputs, never read from the wall inside the engine, so replays are
// deterministic.
type Clock interface {
	Height() uint64
	// Timestamp is seconds since epoch.
	Timestamp() uint64
}

// EventSink receives one event per applied operation. Emission is
// best-effort; a slow or failed sink never blocks or rolls back the
// operation.
type EventSink interface {
	Emit(op string, payload any)
}

// Identity is consulted before every mutating operation, with the account
// the operation acts on behalf of. A non-nil error rejects the operation as
// unauthorized. Transports that carry caller credentials implement this;
// OpenPolicy admits everyone.
type Identity interface {
	Authorize(account uuid.UUID, op string) error
}

// OpenPolicy authorizes every account for every operation.
type OpenPolicy struct{}

func (OpenPolicy) Authorize(uuid.UUID, string) error { return nil }

// SystemClock reads the wall clock and has no height source.
type SystemClock struct{}

func (SystemClock) Height() uint64    { return 0 }
func (SystemClock) Timestamp() uint64 { return uint64(time.Now().Unix()) }

// Engine processes operations against the portfolio. It is not safe for
// concurrent use; callers serialize operations through a single goroutine.
type Engine struct {
	state   *portfolio.Portfolio
	store   PortfolioStore
	clock   Clock
	sink    EventSink
	ident   Identity
	metrics *observability.Metrics
	log     zerolog.Logger
}

// Options carries the engine's optional collaborators. Store, Sink, and
// Metrics may each be nil; Clock defaults to SystemClock and Identity to
// OpenPolicy.
type Options struct {
	Store    PortfolioStore
	Clock    Clock
	Sink     EventSink
	Identity Identity
	Metrics  *observability.Metrics
}

// New builds an engine over a fresh aggregate.
func New(opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	ident := opts.Identity
	if ident == nil {
		ident = OpenPolicy{}
	}
	return &Engine{
		state:   portfolio.New(),
		store:   opts.Store,
		clock:   clock,
		sink:    opts.Sink,
		ident:   ident,
		metrics: opts.Metrics,
		log:     observability.NewLogger("engine"),
	}
}

// NewFromStore builds an engine and restores the aggregate from the store.
// An empty store yields a fresh aggregate.
func NewFromStore(ctx context.Context, opts Options) (*Engine, error) {
	e := New(opts)
	if e.store == nil {
		return e, nil
	}
	loaded, err := e.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore portfolio: %w", err)
	}
	if loaded != nil {
		e.state = loaded
		e.log.Info().
			Uint32("schema_version", loaded.Version()).
			Msg("portfolio restored from store")
	}
	return e, nil
}

// apply stages one mutating operation on a clone of the aggregate: fn
// mutates the clone, invariants are checked, the clone is persisted, and
// only then does it replace the live state. A failure at any point leaves
// the live aggregate and the store exactly as they were.
func (e *Engine) apply(ctx context.Context, op string, fn func(st *portfolio.Portfolio) error) error {
	start := time.Now()
	next := e.state.Clone()
	err := fn(next)
	if err == nil {
		err = next.CheckInvariants()
	}
	if err == nil && e.store != nil {
		if serr := e.store.Store(ctx, next); serr != nil {
			err = fmt.Errorf("persist %s: %w", op, serr)
		}
	}
	if err == nil {
		e.state = next
	}

	if e.metrics != nil {
		e.metrics.OpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		if err != nil {
			e.metrics.OpsRejected.WithLabelValues(op, rejectReason(err)).Inc()
		} else {
			e.metrics.OpsApplied.WithLabelValues(op).Inc()
			e.publishGauges()
		}
	}
	if err != nil {
		e.log.Debug().Err(err).Str("op", op).Msg("operation rejected")
	}
	return err
}

// authorize maps an identity rejection onto the error taxonomy.
func (e *Engine) authorize(user uuid.UUID, op string) error {
	if err := e.ident.Authorize(user, op); err != nil {
		return fmt.Errorf("%s as %s: %v: %w", op, user, err, portfolio.ErrUnauthorized)
	}
	return nil
}

func (e *Engine) emit(op string, payload any) {
	if e.sink != nil {
		e.sink.Emit(op, payload)
	}
}

func (e *Engine) publishGauges() {
	stats := e.state.Stats()
	reserveA, reserveB := e.state.Reserves()
	e.metrics.PoolReserveA.Set(float64(reserveA))
	e.metrics.PoolReserveB.Set(float64(reserveB))
	e.metrics.LPShareSupply.Set(float64(e.state.TotalLPSupply()))
	e.metrics.TotalUsers.Set(float64(stats.TotalUsers))
	e.metrics.TotalVolume.Set(float64(stats.TotalTradingVolume))
	e.metrics.TotalFees.Set(float64(stats.TotalFeesCollected))
}

func rejectReason(err error) string {
	for _, known := range []struct {
		target error
		label  string
	}{
		{portfolio.ErrInvalidAmount, "invalid_amount"},
		{portfolio.ErrInsufficientBalance, "insufficient_balance"},
		{portfolio.ErrInvalidSwapPair, "invalid_pair"},
		{portfolio.ErrRateLimitExceeded, "rate_limited"},
		{portfolio.ErrAmountOverflow, "overflow"},
		{portfolio.ErrNoLiquidity, "no_liquidity"},
		{portfolio.ErrPositionNotFound, "position_not_found"},
		{portfolio.ErrTradingPaused, "paused"},
		{portfolio.ErrNotAdmin, "not_admin"},
		{portfolio.ErrUnauthorized, "unauthorized"},
		{portfolio.ErrInvariantViolation, "invariant"},
	} {
		if errors.Is(err, known.target) {
			return known.label
		}
	}
	return "other"
}
