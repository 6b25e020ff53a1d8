package store

import (
	"sync"

	"github.com/efreitasn/terminalsim/internal/domain"
)

// TickStore holds the latest tick per symbol. It is a pure cache: ticks are
// replaced wholesale and never partially mutated.
type TickStore struct {
	mu    sync.RWMutex
	ticks map[string]domain.Tick
}

// NewTickStore creates an empty TickStore.
func NewTickStore() *TickStore {
	return &TickStore{
		ticks: make(map[string]domain.Tick),
	}
}

// Get returns the latest tick for symbol, or domain.ErrTickNotFound.
func (s *TickStore) Get(symbol string) (domain.Tick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.ticks[symbol]
	if !ok {
		return domain.Tick{}, domain.ErrTickNotFound
	}
	return t, nil
}

// Merge replaces the stored tick of every symbol present in ticks.
func (s *TickStore) Merge(ticks []domain.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range ticks {
		s.ticks[t.Symbol] = t
	}
}

// Set discards all ticks and stores the given ones.
func (s *TickStore) Set(ticks []domain.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticks = make(map[string]domain.Tick, len(ticks))
	for _, t := range ticks {
		s.ticks[t.Symbol] = t
	}
}

// Snapshot returns a copy of the symbol → tick map.
func (s *TickStore) Snapshot() map[string]domain.Tick {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Tick, len(s.ticks))
	for k, v := range s.ticks {
		out[k] = v
	}
	return out
}

// Len returns the number of symbols with a tick.
func (s *TickStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ticks)
}
