package domain

import "strings"

// DefaultBasePrice is the session-open price for symbols with no configured base.
const DefaultBasePrice = 100.0

// DefaultBasePrices are the session-open reference prices of the demo universe.
var DefaultBasePrices = map[string]float64{
	"AAPL":  185,
	"MSFT":  415,
	"GOOGL": 172,
	"AMZN":  178,
	"META":  485,
	"NVDA":  138,
	"TSLA":  248,
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SymbolRegistry holds the session-open base price of each configured
// symbol. It is immutable after construction, so concurrent reads are safe.
// Unknown symbols resolve to DefaultBasePrice.
type SymbolRegistry struct {
	prices map[string]float64
}

// NewSymbolRegistry creates a registry from the given base prices.
// Non-positive prices are ignored.
func NewSymbolRegistry(base map[string]float64) *SymbolRegistry {
	r := &SymbolRegistry{prices: make(map[string]float64, len(base))}
	for sym, p := range base {
		if p > 0 {
			r.prices[NormalizeSymbol(sym)] = p
		}
	}
	return r
}

// BasePrice returns the symbol's session-open reference price.
func (r *SymbolRegistry) BasePrice(symbol string) float64 {
	if p, ok := r.prices[NormalizeSymbol(symbol)]; ok {
		return p
	}
	return DefaultBasePrice
}
