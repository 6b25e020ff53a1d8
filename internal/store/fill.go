package store

import (
	"sync"

	"github.com/efreitasn/terminalsim/internal/domain"
)

// FillLedger is an append-only record of executed fills. Fills are kept in
// append order internally and served newest first.
type FillLedger struct {
	mu    sync.RWMutex
	fills []domain.Fill
	byID  map[string]struct{}
}

// NewFillLedger creates an empty FillLedger.
func NewFillLedger() *FillLedger {
	return &FillLedger{
		byID: make(map[string]struct{}),
	}
}

// Append records fills. A fill whose ID is already in the ledger is ignored,
// so replaying a batch never double-books. It returns the fills accepted.
func (l *FillLedger) Append(fills ...domain.Fill) []domain.Fill {
	l.mu.Lock()
	defer l.mu.Unlock()

	accepted := make([]domain.Fill, 0, len(fills))
	for _, f := range fills {
		if _, dup := l.byID[f.ID]; dup {
			continue
		}
		l.byID[f.ID] = struct{}{}
		l.fills = append(l.fills, f)
		accepted = append(accepted, f)
	}
	return accepted
}

// List returns every fill, newest first.
func (l *FillLedger) List() []domain.Fill {
	return l.filter(func(domain.Fill) bool { return true })
}

// ByOrder returns the fills of one order, newest first.
func (l *FillLedger) ByOrder(orderID string) []domain.Fill {
	return l.filter(func(f domain.Fill) bool { return f.OrderID == orderID })
}

// BySymbol returns the fills for a symbol, newest first.
func (l *FillLedger) BySymbol(symbol string) []domain.Fill {
	return l.filter(func(f domain.Fill) bool { return f.Symbol == symbol })
}

// Len returns the number of recorded fills.
func (l *FillLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.fills)
}

func (l *FillLedger) filter(keep func(domain.Fill) bool) []domain.Fill {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Fill, 0)
	for i := len(l.fills) - 1; i >= 0; i-- {
		if keep(l.fills[i]) {
			out = append(out, l.fills[i])
		}
	}
	return out
}
