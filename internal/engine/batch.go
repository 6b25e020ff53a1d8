package engine

import (
	"time"

	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/efreitasn/terminalsim/internal/store"
)

// MarketBatch is everything one market cycle changed.
type MarketBatch struct {
	At         time.Time
	Ticks      []domain.Tick
	Positions  []domain.Position
	Snapshots  []domain.RiskSnapshot
	LatencyMs  int
	Connection store.ConnectionStatus
}

// ExecutionBatch is everything one execution cycle changed.
type ExecutionBatch struct {
	At        time.Time
	Orders    []*domain.Order
	Fills     []domain.Fill
	Positions []domain.Position
	Snapshots []domain.RiskSnapshot
	Activated int
	Skipped   int
}

// Empty reports whether the cycle changed nothing.
func (b ExecutionBatch) Empty() bool {
	return len(b.Orders) == 0 && len(b.Fills) == 0
}

// BatchPublisher receives each cycle's batch. Implementations must not block:
// the scheduler calls them on its own goroutine.
type BatchPublisher interface {
	PublishMarket(MarketBatch)
	PublishExecution(ExecutionBatch)
	// PublishConnection is called when streaming starts or stops.
	PublishConnection(store.ConnectionStatus)
}

// CycleObserver records cycle statistics.
type CycleObserver interface {
	ObserveMarketCycle(d time.Duration, ticks, positions int)
	ObserveExecutionCycle(d time.Duration, fills, activated, skipped int)
	ObserveRiskEvicted(n int)
}
