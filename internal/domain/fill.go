package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fill is an immutable execution record attributable to exactly one order.
type Fill struct {
	ID         string
	OrderID    string
	Symbol     string
	Side       OrderSide
	Price      float64
	Qty        int64
	Timestamp  time.Time
	AccountID  string
	StrategyID string
	Fee        float64
}

// SignedQty returns +Qty for buys and -Qty for sells.
func (f Fill) SignedQty() int64 {
	return f.Side.Sign() * f.Qty
}

// Fee returns the commission charged on a fill: notional × rate, rounded to cents.
func Fee(price float64, qty int64, rate float64) float64 {
	fee := decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(qty)).
		Mul(decimal.NewFromFloat(rate))
	return fee.Round(MoneyPlaces).InexactFloat64()
}
