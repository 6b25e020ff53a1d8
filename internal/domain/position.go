package domain

import "time"

// DefaultAccountID is used when an order or fill carries no account.
const DefaultAccountID = "default"

// PositionKey identifies a position by symbol and account.
type PositionKey struct {
	Symbol    string
	AccountID string
}

// KeyFor builds a PositionKey, substituting DefaultAccountID for an empty account.
func KeyFor(symbol, accountID string) PositionKey {
	if accountID == "" {
		accountID = DefaultAccountID
	}
	return PositionKey{Symbol: symbol, AccountID: accountID}
}

// Position is the net holding of a symbol in one account. Qty is signed:
// positive is long, negative is short. AvgPrice is 0 whenever Qty is 0.
type Position struct {
	Symbol          string
	AccountID       string
	StrategyID      string
	Qty             int64
	AvgPrice        float64
	UnrealizedPnl   float64
	RealizedPnl     float64
	GrossExposure   float64
	MarginUsed      float64
	MarginAvailable float64
	LastUpdated     time.Time
}

// Key returns the position's identity.
func (p *Position) Key() PositionKey {
	return KeyFor(p.Symbol, p.AccountID)
}

// IsFlat reports whether the position holds no quantity.
func (p *Position) IsFlat() bool {
	return p.Qty == 0
}
