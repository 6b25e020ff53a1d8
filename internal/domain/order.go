package domain

import "time"

// OrderType distinguishes market orders from limit orders.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// OrderSide indicates whether an order buys or sells.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Sign returns +1 for BUY and -1 for SELL.
func (s OrderSide) Sign() int64 {
	if s == OrderSideSell {
		return -1
	}
	return 1
}

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusLive            OrderStatus = "LIVE"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
	OrderStatusRejected        OrderStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is possible from s.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected:
		return true
	}
	return false
}

// IsWorking reports whether the lifecycle engine evaluates orders in s.
func (s OrderStatus) IsWorking() bool {
	switch s {
	case OrderStatusPending, OrderStatusLive, OrderStatusPartiallyFilled:
		return true
	}
	return false
}

// statusRank orders the forward path PENDING → LIVE → PARTIALLY_FILLED → FILLED.
// Cancelled and rejected sit past every working state.
var statusRank = map[OrderStatus]int{
	OrderStatusPending:         0,
	OrderStatusLive:            1,
	OrderStatusPartiallyFilled: 2,
	OrderStatusFilled:          3,
	OrderStatusCancelled:       3,
	OrderStatusRejected:        3,
}

// CanTransition reports whether moving from one status to another is a legal
// forward step of the order state machine. Staying in the same working state
// is allowed (a partial fill followed by another partial fill).
func CanTransition(from, to OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if from == to {
		return from == OrderStatusPartiallyFilled
	}
	switch to {
	case OrderStatusCancelled, OrderStatusRejected:
		return true
	case OrderStatusPending:
		return false
	case OrderStatusPartiallyFilled, OrderStatusFilled:
		// Only a live order can fill.
		return from == OrderStatusLive || from == OrderStatusPartiallyFilled
	}
	return statusRank[to] > statusRank[from]
}

// RiskFlag is the pre-trade risk classification attached at order entry.
type RiskFlag string

const (
	RiskFlagOK      RiskFlag = "OK"
	RiskFlagWarn    RiskFlag = "WARN"
	RiskFlagBlocked RiskFlag = "BLOCKED"
)

// Order is a working or completed instruction to buy or sell a symbol.
// AvgFillPrice is nil until the first fill.
type Order struct {
	ID           string
	Symbol       string
	Side         OrderSide
	Qty          int64
	Type         OrderType
	LimitPrice   *float64
	Status       OrderStatus
	FilledQty    int64
	AvgFillPrice *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	AccountID    string
	StrategyID   string
	EstNotional  float64
	RiskFlag     RiskFlag
}

// Remaining returns the unfilled quantity.
func (o *Order) Remaining() int64 {
	return o.Qty - o.FilledQty
}

// Clone returns a deep copy so that callers cannot mutate store-owned state.
func (o *Order) Clone() *Order {
	c := *o
	if o.LimitPrice != nil {
		v := *o.LimitPrice
		c.LimitPrice = &v
	}
	if o.AvgFillPrice != nil {
		v := *o.AvgFillPrice
		c.AvgFillPrice = &v
	}
	return &c
}

// OrderPatch is a partial update to an order's mutable fields. Nil fields are
// left untouched.
type OrderPatch struct {
	Status       *OrderStatus
	FilledQty    *int64
	AvgFillPrice *float64
	Qty          *int64
	LimitPrice   *float64
	EstNotional  *float64
	RiskFlag     *RiskFlag
}

// Apply writes the non-nil fields of p onto o and stamps UpdatedAt.
func (p OrderPatch) Apply(o *Order, now time.Time) {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.FilledQty != nil {
		o.FilledQty = *p.FilledQty
	}
	if p.AvgFillPrice != nil {
		v := *p.AvgFillPrice
		o.AvgFillPrice = &v
	}
	if p.Qty != nil {
		o.Qty = *p.Qty
	}
	if p.LimitPrice != nil {
		v := *p.LimitPrice
		o.LimitPrice = &v
	}
	if p.EstNotional != nil {
		o.EstNotional = *p.EstNotional
	}
	if p.RiskFlag != nil {
		o.RiskFlag = *p.RiskFlag
	}
	o.UpdatedAt = now
}

// OrderUpdate pairs an order ID with the patch to apply to it.
type OrderUpdate struct {
	ID    string
	Patch OrderPatch
}
