package service

import (
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/efreitasn/terminalsim/internal/engine"
	"github.com/efreitasn/terminalsim/internal/store"
)

// TerminalService serves the watchlist and the read side of the blotters.
type TerminalService struct {
	gate   Gate
	stores engine.Stores
	source *engine.TickSource
	clock  clock.Clock
	logger *slog.Logger
}

// NewTerminalService creates a TerminalService. source quotes symbols newly
// added to the watchlist so they are visible before the next market cycle.
func NewTerminalService(gate Gate, stores engine.Stores, source *engine.TickSource, clk clock.Clock, logger *slog.Logger) *TerminalService {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TerminalService{gate: gate, stores: stores, source: source, clock: clk, logger: logger}
}

// Watchlist returns the watched symbols in display order.
func (s *TerminalService) Watchlist() []string {
	return s.stores.Watchlist.Symbols()
}

// SetWatchlist replaces the watchlist.
func (s *TerminalService) SetWatchlist(symbols []string) ([]string, error) {
	clean := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		v, err := validSymbol(sym)
		if err != nil {
			return nil, err
		}
		clean = append(clean, v)
	}

	var out []string
	s.gate.Write(func() {
		out = s.stores.Watchlist.Set(clean)
		s.quoteMissingLocked(out)
	})
	s.logger.Info("watchlist replaced", "symbols", len(out))
	return out, nil
}

// AddSymbol appends symbol to the watchlist. Adding a watched symbol is a no-op.
func (s *TerminalService) AddSymbol(symbol string) ([]string, error) {
	sym, err := validSymbol(symbol)
	if err != nil {
		return nil, err
	}

	var out []string
	s.gate.Write(func() {
		if s.stores.Watchlist.Add(sym) {
			s.quoteMissingLocked([]string{sym})
		}
		out = s.stores.Watchlist.Symbols()
	})
	return out, nil
}

// RemoveSymbol drops symbol from the watchlist. Its last tick is kept.
func (s *TerminalService) RemoveSymbol(symbol string) ([]string, error) {
	if err := s.stores.Watchlist.Remove(domain.NormalizeSymbol(symbol)); err != nil {
		return nil, err
	}
	return s.stores.Watchlist.Symbols(), nil
}

// MoveSymbol moves the symbol at index from to index to.
func (s *TerminalService) MoveSymbol(from, to int) ([]string, error) {
	if err := s.stores.Watchlist.Move(from, to); err != nil {
		return nil, err
	}
	return s.stores.Watchlist.Symbols(), nil
}

// quoteMissingLocked seeds an opening tick for symbols that have none.
// Callers must hold the write gate.
func (s *TerminalService) quoteMissingLocked(symbols []string) {
	if s.source == nil {
		return
	}
	known := s.stores.Ticks.Snapshot()
	var missing []string
	for _, sym := range symbols {
		if _, ok := known[sym]; !ok {
			missing = append(missing, sym)
		}
	}
	if len(missing) > 0 {
		s.stores.Ticks.Merge(s.source.Seed(missing, s.clock.Now()))
	}
}

// Tick returns the latest tick for symbol.
func (s *TerminalService) Tick(symbol string) (domain.Tick, error) {
	return s.stores.Ticks.Get(domain.NormalizeSymbol(symbol))
}

// Ticks returns the latest tick of every watched symbol in watchlist order.
// Watched symbols without a tick yet are omitted.
func (s *TerminalService) Ticks() []domain.Tick {
	var out []domain.Tick
	s.gate.Read(func() {
		symbols := s.stores.Watchlist.Symbols()
		ticks := s.stores.Ticks.Snapshot()
		out = make([]domain.Tick, 0, len(symbols))
		for _, sym := range symbols {
			if t, ok := ticks[sym]; ok {
				out = append(out, t)
			}
		}
	})
	return out
}

// Fills returns fills newest first, filtered by order and/or symbol when
// those are non-empty.
func (s *TerminalService) Fills(orderID, symbol string) []domain.Fill {
	symbol = domain.NormalizeSymbol(symbol)
	var fills []domain.Fill
	switch {
	case orderID != "":
		fills = s.stores.Fills.ByOrder(orderID)
	case symbol != "":
		return s.stores.Fills.BySymbol(symbol)
	default:
		return s.stores.Fills.List()
	}
	if symbol == "" {
		return fills
	}
	out := fills[:0]
	for _, f := range fills {
		if f.Symbol == symbol {
			out = append(out, f)
		}
	}
	return out
}

// Positions returns every position, flat ones included.
func (s *TerminalService) Positions() []domain.Position {
	return s.stores.Positions.List()
}

// Position returns the position for symbol in accountID (default account
// when empty).
func (s *TerminalService) Position(symbol, accountID string) (domain.Position, error) {
	return s.stores.Positions.Get(domain.NormalizeSymbol(symbol), accountID)
}

// RiskHistory returns snapshots newest first, filtered by symbol and
// account when those are non-empty.
func (s *TerminalService) RiskHistory(symbol, accountID string) []domain.RiskSnapshot {
	return s.stores.Risk.List(domain.NormalizeSymbol(symbol), accountID)
}

// LatestRisk returns the newest snapshot matching the filters.
func (s *TerminalService) LatestRisk(symbol, accountID string) (domain.RiskSnapshot, error) {
	snap, ok := s.stores.Risk.Latest(domain.NormalizeSymbol(symbol), accountID)
	if !ok {
		return domain.RiskSnapshot{}, domain.ErrSnapshotNotFound
	}
	return snap, nil
}

// Connection returns the current connectivity status.
func (s *TerminalService) Connection() store.ConnectionStatus {
	return s.stores.Connection.Get()
}
