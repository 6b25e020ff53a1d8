package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/efreitasn/terminalsim/internal/domain"
)

// scriptedRand replays values in order and then repeats the last one.
type scriptedRand struct {
	mu   sync.Mutex
	vals []float64
	i    int
}

func script(vals ...float64) *scriptedRand { return &scriptedRand{vals: vals} }

func (r *scriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.vals) == 0 {
		return 0
	}
	if r.i >= len(r.vals) {
		return r.vals[len(r.vals)-1]
	}
	v := r.vals[r.i]
	r.i++
	return v
}

// constRand always returns v.
type constRand float64

func (c constRand) Float64() float64 { return float64(c) }

// seqIDs yields prefix-1, prefix-2, ...
type seqIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func (g *seqIDs) Next(time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

var t0 = time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

func limitOrder(id string, side domain.OrderSide, qty int64, limit float64, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:         id,
		Symbol:     "AAPL",
		Side:       side,
		Qty:        qty,
		Type:       domain.OrderTypeLimit,
		LimitPrice: &limit,
		Status:     status,
		CreatedAt:  t0,
		UpdatedAt:  t0,
		AccountID:  "ACC-1",
		StrategyID: "manual",
		RiskFlag:   domain.RiskFlagOK,
	}
}

func marketOrder(id, symbol string, side domain.OrderSide, qty int64, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:         id,
		Symbol:     symbol,
		Side:       side,
		Qty:        qty,
		Type:       domain.OrderTypeMarket,
		Status:     status,
		CreatedAt:  t0,
		UpdatedAt:  t0,
		StrategyID: "manual",
		RiskFlag:   domain.RiskFlagOK,
	}
}

func fill(side domain.OrderSide, qty int64, price float64) domain.Fill {
	return domain.Fill{
		ID:        fmt.Sprintf("f-%s-%d-%v", side, qty, price),
		OrderID:   "o1",
		Symbol:    "AAPL",
		Side:      side,
		Price:     price,
		Qty:       qty,
		Timestamp: t0,
		AccountID: domain.DefaultAccountID,
	}
}
