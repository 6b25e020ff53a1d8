package domain

import "time"

// RiskSnapshot is a point-in-time risk record derived from a position.
type RiskSnapshot struct {
	ID              string
	Symbol          string
	AccountID       string
	MarginUsed      float64
	MarginAvailable float64
	GrossExposure   float64
	ValueAtRisk95   float64
	Timestamp       time.Time
}

// Key returns the (symbol, account) the snapshot was taken for.
func (s *RiskSnapshot) Key() PositionKey {
	return KeyFor(s.Symbol, s.AccountID)
}
