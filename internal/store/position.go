package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/terminalsim/internal/domain"
)

// PositionStore holds one position per (symbol, account). Positions are never
// deleted; flat positions persist with zero quantity.
type PositionStore struct {
	mu        sync.RWMutex
	positions map[domain.PositionKey]domain.Position
}

// NewPositionStore creates an empty PositionStore.
func NewPositionStore() *PositionStore {
	return &PositionStore{
		positions: make(map[domain.PositionKey]domain.Position),
	}
}

// Get returns the position for symbol and account, or domain.ErrPositionNotFound.
// An empty account resolves to the default account.
func (s *PositionStore) Get(symbol, accountID string) (domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.positions[domain.KeyFor(symbol, accountID)]
	if !ok {
		return domain.Position{}, domain.ErrPositionNotFound
	}
	return p, nil
}

// Snapshot returns a copy of the key → position map.
func (s *PositionStore) Snapshot() map[domain.PositionKey]domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.PositionKey]domain.Position, len(s.positions))
	for k, v := range s.positions {
		out[k] = v
	}
	return out
}

// List returns all positions ordered by symbol then account.
func (s *PositionStore) List() []domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Position, 0, len(s.positions))
	for _, p := range s.positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Symbol != out[j].Symbol {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out
}

// Upsert inserts or replaces positions under one write lock.
func (s *PositionStore) Upsert(positions ...domain.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range positions {
		if p.AccountID == "" {
			p.AccountID = domain.DefaultAccountID
		}
		s.positions[p.Key()] = p
	}
}

// Len returns the number of positions.
func (s *PositionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.positions)
}
