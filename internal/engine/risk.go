package engine

import (
	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/google/uuid"
)

// NewRiskSnapshot derives a risk record from a position. Value at risk is a
// linear proxy: gross exposure times varFactor.
func NewRiskSnapshot(p domain.Position, varFactor float64) domain.RiskSnapshot {
	return domain.RiskSnapshot{
		ID:              uuid.NewString(),
		Symbol:          p.Symbol,
		AccountID:       accountOrDefault(p.AccountID),
		MarginUsed:      p.MarginUsed,
		MarginAvailable: p.MarginAvailable,
		GrossExposure:   p.GrossExposure,
		ValueAtRisk95:   domain.RoundMoney(p.GrossExposure * varFactor),
		Timestamp:       p.LastUpdated,
	}
}

// Snapshots derives one snapshot per position, in order.
func Snapshots(positions []domain.Position, varFactor float64) []domain.RiskSnapshot {
	out := make([]domain.RiskSnapshot, 0, len(positions))
	for _, p := range positions {
		out = append(out, NewRiskSnapshot(p, varFactor))
	}
	return out
}
