package store

import (
	"sync"

	"github.com/efreitasn/terminalsim/internal/domain"
)

// Watchlist is the ordered list of symbols the market cycle quotes.
type Watchlist struct {
	mu      sync.RWMutex
	symbols []string
}

// NewWatchlist creates a watchlist from symbols, normalizing and dropping
// duplicates and blanks.
func NewWatchlist(symbols []string) *Watchlist {
	w := &Watchlist{}
	w.symbols = dedupe(symbols)
	return w
}

// Symbols returns a copy of the ordered list.
func (w *Watchlist) Symbols() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]string, len(w.symbols))
	copy(out, w.symbols)
	return out
}

// Set replaces the list.
func (w *Watchlist) Set(symbols []string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.symbols = dedupe(symbols)
	out := make([]string, len(w.symbols))
	copy(out, w.symbols)
	return out
}

// Add appends a symbol. It reports false when the symbol was already watched.
func (w *Watchlist) Add(symbol string) bool {
	symbol = domain.NormalizeSymbol(symbol)
	w.mu.Lock()
	defer w.mu.Unlock()

	if symbol == "" || w.indexLocked(symbol) >= 0 {
		return false
	}
	w.symbols = append(w.symbols, symbol)
	return true
}

// Remove drops a symbol. It returns domain.ErrSymbolNotWatched when absent.
func (w *Watchlist) Remove(symbol string) error {
	symbol = domain.NormalizeSymbol(symbol)
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.indexLocked(symbol)
	if i < 0 {
		return domain.ErrSymbolNotWatched
	}
	w.symbols = append(w.symbols[:i], w.symbols[i+1:]...)
	return nil
}

// Move relocates the symbol at index from to index to.
func (w *Watchlist) Move(from, to int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(w.symbols)
	if from < 0 || from >= n || to < 0 || to >= n {
		return &domain.ValidationError{Message: "move index out of range"}
	}
	if from == to {
		return nil
	}
	sym := w.symbols[from]
	w.symbols = append(w.symbols[:from], w.symbols[from+1:]...)
	w.symbols = append(w.symbols[:to], append([]string{sym}, w.symbols[to:]...)...)
	return nil
}

func (w *Watchlist) indexLocked(symbol string) int {
	for i, s := range w.symbols {
		if s == symbol {
			return i
		}
	}
	return -1
}

func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = domain.NormalizeSymbol(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
