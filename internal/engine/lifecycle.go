package engine

import (
	"log/slog"
	"math"
	"time"

	"github.com/efreitasn/terminalsim/internal/domain"
)

// LifecycleParams holds the probabilities and sizing used to advance orders.
type LifecycleParams struct {
	ActivationProbability float64 // PENDING → LIVE per cycle
	FillProbability       float64 // chance a LIVE order fills per cycle
	PartialFillRatio      float64 // upper bound of a fill as a share of remaining
	MaxSlippage           float64 // absolute price slippage bound
	FeeRate               float64
}

// DefaultLifecycleParams returns the demo lifecycle parameters.
func DefaultLifecycleParams() LifecycleParams {
	return LifecycleParams{
		ActivationProbability: 0.45,
		FillProbability:       0.5,
		PartialFillRatio:      0.45,
		MaxSlippage:           0.01,
		FeeRate:               0.0002,
	}
}

// LifecycleResult is the outcome of one evaluation pass. Updates are
// computed against the input snapshot and are meant to be applied as one batch.
type LifecycleResult struct {
	Updates   []domain.OrderUpdate
	Fills     []domain.Fill
	Activated int
	Skipped   int
}

// Lifecycle advances working orders through PENDING → LIVE →
// PARTIALLY_FILLED → FILLED and emits fills.
type Lifecycle struct {
	params LifecycleParams
	rng    Rand
	ids    IDGenerator
	logger *slog.Logger
}

// NewLifecycle creates a Lifecycle.
func NewLifecycle(params LifecycleParams, rng Rand, ids IDGenerator, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{params: params, rng: rng, ids: ids, logger: logger}
}

// Evaluate runs one execution pass over orders using the tick snapshot.
// Orders in a terminal state are ignored. An order whose reference price is
// unavailable is skipped for this pass only.
func (l *Lifecycle) Evaluate(orders []*domain.Order, ticks map[string]domain.Tick, now time.Time) LifecycleResult {
	var res LifecycleResult

	for _, o := range orders {
		if !o.Status.IsWorking() {
			continue
		}

		if o.Status == domain.OrderStatusPending {
			if l.rng.Float64() < l.params.ActivationProbability {
				live := domain.OrderStatusLive
				res.Updates = append(res.Updates, domain.OrderUpdate{
					ID:    o.ID,
					Patch: domain.OrderPatch{Status: &live},
				})
				res.Activated++
			}
			// An order must be LIVE before it can fill.
			continue
		}

		if l.rng.Float64() >= l.params.FillProbability {
			continue
		}

		ref, ok := referencePrice(o, ticks)
		if !ok {
			l.logger.Debug("order skipped, no reference price", "order_id", o.ID, "symbol", o.Symbol)
			res.Skipped++
			continue
		}

		remaining := o.Remaining()
		if remaining <= 0 {
			res.Skipped++
			continue
		}

		qty := l.fillQty(remaining)
		price := l.fillPrice(ref)
		fill := domain.Fill{
			ID:         l.ids.Next(now),
			OrderID:    o.ID,
			Symbol:     o.Symbol,
			Side:       o.Side,
			Price:      price,
			Qty:        qty,
			Timestamp:  now,
			AccountID:  accountOrDefault(o.AccountID),
			StrategyID: o.StrategyID,
			Fee:        domain.Fee(price, qty, l.params.FeeRate),
		}
		res.Fills = append(res.Fills, fill)

		filled := o.FilledQty + qty
		avg := runningAverage(o.AvgFillPrice, o.FilledQty, price, qty)
		status := domain.OrderStatusPartiallyFilled
		if filled >= o.Qty {
			status = domain.OrderStatusFilled
		}
		res.Updates = append(res.Updates, domain.OrderUpdate{
			ID: o.ID,
			Patch: domain.OrderPatch{
				Status:       &status,
				FilledQty:    &filled,
				AvgFillPrice: &avg,
			},
		})
	}
	return res
}

// referencePrice is the limit price for LIMIT orders and the latest last
// for MARKET orders. A LIMIT order without a limit falls back to the tick.
func referencePrice(o *domain.Order, ticks map[string]domain.Tick) (float64, bool) {
	var ref float64
	if o.Type == domain.OrderTypeLimit && o.LimitPrice != nil {
		ref = *o.LimitPrice
	} else if t, ok := ticks[o.Symbol]; ok {
		ref = t.Last
	}
	return ref, ref > 0
}

// fillQty draws a size in [1, remaining], biased toward partial fills.
func (l *Lifecycle) fillQty(remaining int64) int64 {
	bound := math.Max(1, float64(remaining)*l.params.PartialFillRatio)
	qty := int64(math.Ceil(l.rng.Float64() * bound))
	if qty > remaining {
		qty = remaining
	}
	if qty < 1 {
		qty = 1
	}
	return qty
}

// fillPrice applies symmetric slippage. The result stays positive.
func (l *Lifecycle) fillPrice(ref float64) float64 {
	slip := (l.rng.Float64()*2 - 1) * l.params.MaxSlippage
	price := domain.RoundPrice(ref + slip)
	if price <= 0 {
		return ref
	}
	return price
}

// runningAverage folds a new fill into an order's notional-weighted average.
func runningAverage(prevAvg *float64, prevQty int64, price float64, qty int64) float64 {
	prior := 0.0
	if prevAvg != nil && prevQty > 0 {
		prior = *prevAvg * float64(prevQty)
	}
	return domain.RoundPrice((prior + price*float64(qty)) / float64(prevQty+qty))
}

func accountOrDefault(id string) string {
	if id == "" {
		return domain.DefaultAccountID
	}
	return id
}
