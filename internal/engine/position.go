package engine

import (
	"sort"

	"github.com/efreitasn/terminalsim/internal/domain"
)

// EquitySource resolves the equity margin is measured against.
type EquitySource interface {
	Equity(accountID string) float64
}

// ApplyFill folds a fill into a position using weighted-average cost and
// returns the new position. existing may be nil. Realized PnL changes only
// on the closing portion of a fill. The function is pure: replaying the same
// fills over the same starting position always yields the same result.
func ApplyFill(existing *domain.Position, fill domain.Fill, marginRate, equity float64) domain.Position {
	signed := fill.SignedQty()

	var next domain.Position
	if existing == nil {
		next = domain.Position{
			Symbol:     fill.Symbol,
			AccountID:  accountOrDefault(fill.AccountID),
			StrategyID: fill.StrategyID,
			Qty:        signed,
			AvgPrice:   domain.RoundPrice(fill.Price),
		}
	} else {
		next = *existing
		if next.StrategyID == "" {
			next.StrategyID = fill.StrategyID
		}
		prevQty := existing.Qty
		nextQty := prevQty + signed

		if prevQty == 0 || sign(prevQty) == sign(signed) {
			prevAbs := abs(prevQty)
			fillAbs := abs(signed)
			next.AvgPrice = domain.RoundPrice(
				(float64(prevAbs)*existing.AvgPrice + float64(fillAbs)*fill.Price) / float64(prevAbs+fillAbs),
			)
		} else {
			closing := min(abs(prevQty), abs(signed))
			pnl := float64(closing) * (fill.Price - existing.AvgPrice) * float64(sign(prevQty))
			next.RealizedPnl = domain.RoundMoney(existing.RealizedPnl + pnl)
			switch {
			case nextQty == 0:
				next.AvgPrice = 0
			case sign(nextQty) != sign(prevQty):
				next.AvgPrice = domain.RoundPrice(fill.Price)
			}
		}
		next.Qty = nextQty
	}

	next.LastUpdated = fill.Timestamp
	return revalue(next, fill.Price, marginRate, equity)
}

// MarkToMarket revalues a position against a tick's last price.
func MarkToMarket(p domain.Position, tick domain.Tick, marginRate, equity float64) domain.Position {
	p.LastUpdated = tick.Timestamp
	return revalue(p, tick.Last, marginRate, equity)
}

// revalue recomputes the price-dependent fields of p at mark.
func revalue(p domain.Position, mark, marginRate, equity float64) domain.Position {
	if p.Qty == 0 {
		p.AvgPrice = 0
		p.UnrealizedPnl = 0
	} else {
		p.UnrealizedPnl = domain.RoundMoney((mark - p.AvgPrice) * float64(p.Qty))
	}
	p.GrossExposure = domain.RoundMoney(float64(abs(p.Qty)) * mark)
	p.MarginUsed = domain.RoundMoney(p.GrossExposure * marginRate)
	p.MarginAvailable = domain.MarginAvailable(equity, p.MarginUsed)
	return p
}

// PositionAggregator folds fills into positions and marks positions to market.
type PositionAggregator struct {
	marginRate float64
	equity     EquitySource
}

// NewPositionAggregator creates a PositionAggregator.
func NewPositionAggregator(marginRate float64, equity EquitySource) *PositionAggregator {
	return &PositionAggregator{marginRate: marginRate, equity: equity}
}

// Fold applies fills in order on top of current and returns one position per
// fill, each reflecting every earlier fill of the batch for the same key.
// current is not modified.
func (a *PositionAggregator) Fold(current map[domain.PositionKey]domain.Position, fills []domain.Fill) []domain.Position {
	if len(fills) == 0 {
		return nil
	}
	working := make(map[domain.PositionKey]domain.Position, len(fills))
	out := make([]domain.Position, 0, len(fills))

	for _, f := range fills {
		key := domain.KeyFor(f.Symbol, f.AccountID)
		var prev *domain.Position
		if p, ok := working[key]; ok {
			prev = &p
		} else if p, ok := current[key]; ok {
			prev = &p
		}
		next := ApplyFill(prev, f, a.marginRate, a.equity.Equity(key.AccountID))
		working[key] = next
		out = append(out, next)
	}
	return out
}

// Mark revalues every position with a tick in ticks. Positions without a
// matching tick are left out of the result, sorted by symbol then account.
func (a *PositionAggregator) Mark(current map[domain.PositionKey]domain.Position, ticks map[string]domain.Tick) []domain.Position {
	out := make([]domain.Position, 0, len(current))
	for key, p := range current {
		t, ok := ticks[key.Symbol]
		if !ok {
			continue
		}
		out = append(out, MarkToMarket(p, t, a.marginRate, a.equity.Equity(key.AccountID)))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Symbol != out[j].Symbol {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out
}

func sign(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
