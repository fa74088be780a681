package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"swapvenue/internal/observability"
)

// migration is one versioned pair of SQL files on disk. Files follow the
// golang-migrate convention: {version}_{name}.up.sql / {version}_{name}.down.sql.
type migration struct {
	Version string
	Name    string
	UpFile  string
}

// Migrator applies the migrations directory against a database, tracking
// state in a schema_migrations table.
type Migrator struct {
	db  *sql.DB
	dir string
	log zerolog.Logger
}

func NewMigrator(db *sql.DB, dir string) *Migrator {
	return &Migrator{db: db, dir: dir, log: observability.NewLogger("migrator")}
}

// Up applies every migration not yet recorded, oldest first.
func (m *Migrator) Up(ctx context.Context) error {
	migs, err := m.load()
	if err != nil {
		return err
	}
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	var ran int
	for _, mig := range migs {
		if applied[mig.Version] {
			continue
		}
		err := m.runInTx(ctx, mig.UpFile, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, filename) VALUES ($1, $2)`,
				mig.Version, mig.UpFile)
			return err
		})
		if err != nil {
			return err
		}
		m.log.Info().Str("version", mig.Version).Str("name", mig.Name).Msg("migration applied")
		ran++
	}
	if ran == 0 {
		m.log.Info().Msg("schema up to date")
	}
	return nil
}

// Down rolls back the most recently applied migration, if any.
func (m *Migrator) Down(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}

	var version, upFile string
	err := m.db.QueryRowContext(ctx,
		`SELECT version, filename FROM schema_migrations ORDER BY version DESC LIMIT 1`,
	).Scan(&version, &upFile)
	if err == sql.ErrNoRows {
		m.log.Info().Msg("nothing to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("latest migration: %w", err)
	}

	downFile := strings.Replace(upFile, ".up.sql", ".down.sql", 1)
	err = m.runInTx(ctx, downFile, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, version)
		return err
	})
	if err != nil {
		return err
	}
	m.log.Info().Str("version", version).Msg("migration rolled back")
	return nil
}

// runInTx executes the given SQL file and the bookkeeping statement in one
// transaction.
func (m *Migrator) runInTx(ctx context.Context, file string, record func(*sql.Tx) error) error {
	body, err := os.ReadFile(filepath.Join(m.dir, file))
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", file, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return fmt.Errorf("exec %s: %w", file, err)
	}
	if err := record(tx); err != nil {
		return fmt.Errorf("record %s: %w", file, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", file, err)
	}
	return nil
}

func (m *Migrator) load() ([]migration, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var migs []migration
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		base := strings.TrimSuffix(name, ".up.sql")
		version, rest, ok := strings.Cut(base, "_")
		if !ok {
			version, rest = base, ""
		}
		migs = append(migs, migration{Version: version, Name: rest, UpFile: name})
	}
	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	return migs, nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			filename   TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}
