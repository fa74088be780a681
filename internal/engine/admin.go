package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"swapvenue/internal/portfolio"
)

// Admin operation names.
const (
	OpPause         = "pause"
	OpResume        = "resume"
	OpSetAdmin      = "set_admin"
	OpInitialize    = "initialize"
	OpMigrateSchema = "migrate_schema"
)

// AdminEvent is emitted after a successful admin operation.
type AdminEvent struct {
	Caller  uuid.UUID `json:"caller"`
	Target  uuid.UUID `json:"target,omitempty"`
	Version uint32    `json:"version,omitempty"`
}

func (e *Engine) requireAdmin(st *portfolio.Portfolio, caller uuid.UUID) error {
	admin, ok := st.Admin()
	if !ok {
		return fmt.Errorf("%w: no admin configured", portfolio.ErrNotAdmin)
	}
	if caller != admin {
		return portfolio.ErrNotAdmin
	}
	return nil
}

// Initialize stamps a fresh aggregate with the current schema version and
// installs its first admin. It is rejected once an admin exists.
func (e *Engine) Initialize(ctx context.Context, admin uuid.UUID) error {
	err := e.apply(ctx, OpInitialize, func(st *portfolio.Portfolio) error {
		if err := e.authorize(admin, OpInitialize); err != nil {
			return err
		}
		if _, ok := st.Admin(); ok {
			return fmt.Errorf("%w: already initialized", portfolio.ErrUnauthorized)
		}
		st.SetAdmin(admin)
		st.Initialize(portfolio.SchemaVersion)
		return nil
	})
	if err != nil {
		return err
	}
	e.emit(OpInitialize, AdminEvent{Caller: admin, Version: portfolio.SchemaVersion})
	return nil
}

// Pause halts trading. Queries and minting stay available.
func (e *Engine) Pause(ctx context.Context, caller uuid.UUID) error {
	err := e.apply(ctx, OpPause, func(st *portfolio.Portfolio) error {
		if err := e.authorize(caller, OpPause); err != nil {
			return err
		}
		if err := e.requireAdmin(st, caller); err != nil {
			return err
		}
		st.SetPaused(true)
		return nil
	})
	if err != nil {
		return err
	}
	e.log.Warn().Str("caller", caller.String()).Msg("trading paused")
	e.emit(OpPause, AdminEvent{Caller: caller})
	return nil
}

// Resume lifts a trading halt.
func (e *Engine) Resume(ctx context.Context, caller uuid.UUID) error {
	err := e.apply(ctx, OpResume, func(st *portfolio.Portfolio) error {
		if err := e.authorize(caller, OpResume); err != nil {
			return err
		}
		if err := e.requireAdmin(st, caller); err != nil {
			return err
		}
		st.SetPaused(false)
		return nil
	})
	if err != nil {
		return err
	}
	e.log.Info().Str("caller", caller.String()).Msg("trading resumed")
	e.emit(OpResume, AdminEvent{Caller: caller})
	return nil
}

// SetAdmin hands the admin role to another account.
func (e *Engine) SetAdmin(ctx context.Context, caller, next uuid.UUID) error {
	err := e.apply(ctx, OpSetAdmin, func(st *portfolio.Portfolio) error {
		if err := e.authorize(caller, OpSetAdmin); err != nil {
			return err
		}
		if err := e.requireAdmin(st, caller); err != nil {
			return err
		}
		st.SetAdmin(next)
		return nil
	})
	if err != nil {
		return err
	}
	e.emit(OpSetAdmin, AdminEvent{Caller: caller, Target: next})
	return nil
}

// MigrateSchema advances the aggregate to the current schema version. It is
// a no-op error-free call when already current.
func (e *Engine) MigrateSchema(ctx context.Context, caller uuid.UUID) error {
	var migrated bool
	err := e.apply(ctx, OpMigrateSchema, func(st *portfolio.Portfolio) error {
		if err := e.authorize(caller, OpMigrateSchema); err != nil {
			return err
		}
		if err := e.requireAdmin(st, caller); err != nil {
			return err
		}
		migrated = st.MigrateSchema(portfolio.SchemaVersion, e.clock.Timestamp())
		return nil
	})
	if err != nil {
		return err
	}
	if migrated {
		e.log.Info().Uint32("schema_version", portfolio.SchemaVersion).Msg("schema migrated")
		e.emit(OpMigrateSchema, AdminEvent{Caller: caller, Version: portfolio.SchemaVersion})
	}
	return nil
}
