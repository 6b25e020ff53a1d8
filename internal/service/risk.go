package service

import (
	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/efreitasn/terminalsim/internal/store"
)

// Warning thresholds of the risk banner.
const (
	PnlWarningThreshold           = -500.0
	MarginUtilizationWarningLevel = 0.82
)

// RiskSummary aggregates the book-wide risk shown in the banner.
type RiskSummary struct {
	TotalUnrealizedPnl float64
	TotalRealizedPnl   float64
	MarginUsed         float64
	MarginAvailable    float64
	MarginUtilization  float64 // used / (used + available), 0 when both are 0
	PnlWarning         bool
	MarginWarning      bool
	Positions          int
}

// RiskService computes the risk summary.
type RiskService struct {
	gate      Gate
	positions *store.PositionStore
	history   *store.RiskHistory
}

// NewRiskService creates a new RiskService.
func NewRiskService(gate Gate, positions *store.PositionStore, history *store.RiskHistory) *RiskService {
	return &RiskService{gate: gate, positions: positions, history: history}
}

// Summary sums unrealized PnL over all positions and margin over the latest
// snapshot of each (symbol, account). Both stores are read between cycles
// so the two halves agree.
func (s *RiskService) Summary() RiskSummary {
	var (
		positions []domain.Position
		latest    map[domain.PositionKey]domain.RiskSnapshot
	)
	s.gate.Read(func() {
		positions = s.positions.List()
		latest = s.history.LatestByKey()
	})

	var sum RiskSummary
	sum.Positions = len(positions)
	for _, p := range positions {
		sum.TotalUnrealizedPnl += p.UnrealizedPnl
		sum.TotalRealizedPnl += p.RealizedPnl
	}
	for _, snap := range latest {
		sum.MarginUsed += snap.MarginUsed
		sum.MarginAvailable += snap.MarginAvailable
	}

	sum.TotalUnrealizedPnl = domain.RoundMoney(sum.TotalUnrealizedPnl)
	sum.TotalRealizedPnl = domain.RoundMoney(sum.TotalRealizedPnl)
	sum.MarginUsed = domain.RoundMoney(sum.MarginUsed)
	sum.MarginAvailable = domain.RoundMoney(sum.MarginAvailable)
	if denom := sum.MarginUsed + sum.MarginAvailable; denom > 0 {
		sum.MarginUtilization = sum.MarginUsed / denom
	}
	sum.PnlWarning = sum.TotalUnrealizedPnl < PnlWarningThreshold
	sum.MarginWarning = sum.MarginUtilization > MarginUtilizationWarningLevel
	return sum
}
