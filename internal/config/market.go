package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/efreitasn/terminalsim/internal/domain"
)

// Market describes the simulated universe: the initial watchlist, the
// session-open base price per symbol and per-account equity.
type Market struct {
	Watchlist  []string           `yaml:"watchlist"`
	BasePrices map[string]float64 `yaml:"base_prices"`
	Accounts   []AccountConfig    `yaml:"accounts"`
}

// AccountConfig registers an account with its own equity.
type AccountConfig struct {
	ID     string  `yaml:"id"`
	Equity float64 `yaml:"equity"`
}

// DefaultMarket returns the demo universe.
func DefaultMarket() *Market {
	base := make(map[string]float64, len(domain.DefaultBasePrices))
	for k, v := range domain.DefaultBasePrices {
		base[k] = v
	}
	return &Market{
		Watchlist:  []string{"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "TSLA"},
		BasePrices: base,
	}
}

// LoadMarket reads a YAML market file. Missing sections fall back to the
// demo universe.
func LoadMarket(path string) (*Market, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read market file: %w", err)
	}
	return ParseMarket(b)
}

// ParseMarket decodes and validates YAML market data.
func ParseMarket(b []byte) (*Market, error) {
	m := &Market{}
	if err := yaml.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("parse market yaml: %w", err)
	}

	def := DefaultMarket()
	if len(m.Watchlist) == 0 {
		m.Watchlist = def.Watchlist
	}
	if len(m.BasePrices) == 0 {
		m.BasePrices = def.BasePrices
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the market for unusable values.
func (m *Market) Validate() error {
	for _, s := range m.Watchlist {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("watchlist contains an empty symbol")
		}
	}
	for sym, p := range m.BasePrices {
		if p <= 0 {
			return fmt.Errorf("base price for %s must be positive", sym)
		}
	}
	seen := make(map[string]bool, len(m.Accounts))
	for _, a := range m.Accounts {
		if a.ID == "" {
			return fmt.Errorf("account id is required")
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate account %s", a.ID)
		}
		seen[a.ID] = true
		if a.Equity < 0 {
			return fmt.Errorf("equity for %s must not be negative", a.ID)
		}
	}
	return nil
}
