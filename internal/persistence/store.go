// Package persistence stores the portfolio aggregate as a whole-snapshot
// slot: every write replaces the previous snapshot, every load returns the
// latest one.
package persistence

import (
	"context"
	"sync"

	"swapvenue/internal/portfolio"
)

// MemoryStore keeps the snapshot in memory. Used in tests and for running
// without Postgres.
type MemoryStore struct {
	mu   sync.Mutex
	snap *portfolio.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*portfolio.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, nil
	}
	return portfolio.FromSnapshot(s.snap)
}

func (s *MemoryStore) Store(ctx context.Context, p *portfolio.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = p.Snapshot()
	return nil
}
