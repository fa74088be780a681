package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"swapvenue/internal/observability"
	"swapvenue/internal/portfolio"
)

// PostgresStore persists the aggregate as a JSON snapshot in a single-row
// slot table. Every write replaces the slot's previous snapshot.
type PostgresStore struct {
	db      *sql.DB
	metrics *observability.Metrics
	log     zerolog.Logger
}

// NewPostgresStore wraps an open connection. metrics may be nil.
func NewPostgresStore(db *sql.DB, metrics *observability.Metrics) *PostgresStore {
	return &PostgresStore{
		db:      db,
		metrics: metrics,
		log:     observability.NewLogger("persistence"),
	}
}

const slotID = 1

// Load returns the stored aggregate, or (nil, nil) on a cold start.
func (s *PostgresStore) Load(ctx context.Context) (*portfolio.Portfolio, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT data FROM portfolio_snapshots WHERE slot_id = $1
	`, slotID)

	var data []byte
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap portfolio.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return portfolio.FromSnapshot(&snap)
}

// Store upserts the aggregate into the slot.
func (s *PostgresStore) Store(ctx context.Context, p *portfolio.Portfolio) error {
	start := time.Now()
	data, err := json.Marshal(p.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO portfolio_snapshots (slot_id, schema_version, data, size_bytes, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (slot_id) DO UPDATE
		SET schema_version = $2, data = $3, size_bytes = $4, updated_at = NOW()
	`, slotID, p.Version(), data, len(data))
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SnapshotsWritten.Inc()
		s.metrics.SnapshotBytes.Set(float64(len(data)))
		s.metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
	}
	return nil
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
