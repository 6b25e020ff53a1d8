// Package view converts domain records into the JSON shapes served over HTTP
// and pushed to stream subscribers.
package view

import (
	"time"

	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/efreitasn/terminalsim/internal/store"
)

// TimeFormat renders timestamps in UTC with millisecond precision.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// FormatTime formats t with TimeFormat.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// Tick is the JSON form of a quote.
type Tick struct {
	Symbol    string  `json:"symbol"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	Last      float64 `json:"last"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
	Volume    int64   `json:"volume"`
	Timestamp string  `json:"ts"`
}

// Order is the JSON form of an order. Nullable fields use pointers.
type Order struct {
	ID           string   `json:"id"`
	Symbol       string   `json:"symbol"`
	Side         string   `json:"side"`
	Qty          int64    `json:"qty"`
	Type         string   `json:"type"`
	LimitPrice   *float64 `json:"limit_price"`
	Status       string   `json:"status"`
	FilledQty    int64    `json:"filled_qty"`
	RemainingQty int64    `json:"remaining_qty"`
	AvgFillPrice *float64 `json:"avg_fill_price"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
	AccountID    string   `json:"account_id"`
	StrategyID   string   `json:"strategy_id"`
	EstNotional  float64  `json:"est_notional"`
	RiskFlag     string   `json:"risk_flag"`
}

// Fill is the JSON form of a fill.
type Fill struct {
	ID         string  `json:"id"`
	OrderID    string  `json:"order_id"`
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Price      float64 `json:"price"`
	Qty        int64   `json:"qty"`
	Timestamp  string  `json:"ts"`
	AccountID  string  `json:"account_id"`
	StrategyID string  `json:"strategy_id"`
	Fee        float64 `json:"fee"`
}

// Position is the JSON form of a position.
type Position struct {
	Symbol          string  `json:"symbol"`
	AccountID       string  `json:"account_id"`
	StrategyID      string  `json:"strategy_id"`
	Qty             int64   `json:"qty"`
	AvgPrice        float64 `json:"avg_price"`
	UnrealizedPnl   float64 `json:"unrealized_pnl"`
	RealizedPnl     float64 `json:"realized_pnl"`
	GrossExposure   float64 `json:"gross_exposure"`
	MarginUsed      float64 `json:"margin_used"`
	MarginAvailable float64 `json:"margin_available"`
	LastUpdated     string  `json:"last_updated"`
}

// RiskSnapshot is the JSON form of a risk snapshot.
type RiskSnapshot struct {
	ID              string  `json:"id"`
	Symbol          string  `json:"symbol"`
	AccountID       string  `json:"account_id"`
	MarginUsed      float64 `json:"margin_used"`
	MarginAvailable float64 `json:"margin_available"`
	GrossExposure   float64 `json:"gross_exposure"`
	ValueAtRisk95   float64 `json:"value_at_risk_95"`
	Timestamp       string  `json:"ts"`
}

// Connection is the JSON form of the connectivity status.
type Connection struct {
	Environment string `json:"environment"`
	Connected   bool   `json:"connected"`
	LatencyMs   int    `json:"latency_ms"`
	UpdatedAt   string `json:"updated_at"`
}

// Account is the JSON form of an account summary.
type Account struct {
	AccountID       string  `json:"account_id"`
	Equity          float64 `json:"equity"`
	MarginUsed      float64 `json:"margin_used"`
	MarginAvailable float64 `json:"margin_available"`
	OpenPositions   int     `json:"open_positions"`
	CreatedAt       string  `json:"created_at"`
}

// FromTick converts a tick.
func FromTick(t domain.Tick) Tick {
	return Tick{
		Symbol:    t.Symbol,
		Bid:       t.Bid,
		Ask:       t.Ask,
		Last:      t.Last,
		Change:    t.Change,
		ChangePct: t.ChangePct,
		Volume:    t.Volume,
		Timestamp: FormatTime(t.Timestamp),
	}
}

// FromOrder converts an order.
func FromOrder(o *domain.Order) Order {
	return Order{
		ID:           o.ID,
		Symbol:       o.Symbol,
		Side:         string(o.Side),
		Qty:          o.Qty,
		Type:         string(o.Type),
		LimitPrice:   o.LimitPrice,
		Status:       string(o.Status),
		FilledQty:    o.FilledQty,
		RemainingQty: o.Remaining(),
		AvgFillPrice: o.AvgFillPrice,
		CreatedAt:    FormatTime(o.CreatedAt),
		UpdatedAt:    FormatTime(o.UpdatedAt),
		AccountID:    o.AccountID,
		StrategyID:   o.StrategyID,
		EstNotional:  o.EstNotional,
		RiskFlag:     string(o.RiskFlag),
	}
}

// FromFill converts a fill.
func FromFill(f domain.Fill) Fill {
	return Fill{
		ID:         f.ID,
		OrderID:    f.OrderID,
		Symbol:     f.Symbol,
		Side:       string(f.Side),
		Price:      f.Price,
		Qty:        f.Qty,
		Timestamp:  FormatTime(f.Timestamp),
		AccountID:  f.AccountID,
		StrategyID: f.StrategyID,
		Fee:        f.Fee,
	}
}

// FromPosition converts a position.
func FromPosition(p domain.Position) Position {
	return Position{
		Symbol:          p.Symbol,
		AccountID:       p.AccountID,
		StrategyID:      p.StrategyID,
		Qty:             p.Qty,
		AvgPrice:        p.AvgPrice,
		UnrealizedPnl:   p.UnrealizedPnl,
		RealizedPnl:     p.RealizedPnl,
		GrossExposure:   p.GrossExposure,
		MarginUsed:      p.MarginUsed,
		MarginAvailable: p.MarginAvailable,
		LastUpdated:     FormatTime(p.LastUpdated),
	}
}

// FromRiskSnapshot converts a risk snapshot.
func FromRiskSnapshot(s domain.RiskSnapshot) RiskSnapshot {
	return RiskSnapshot{
		ID:              s.ID,
		Symbol:          s.Symbol,
		AccountID:       s.AccountID,
		MarginUsed:      s.MarginUsed,
		MarginAvailable: s.MarginAvailable,
		GrossExposure:   s.GrossExposure,
		ValueAtRisk95:   s.ValueAtRisk95,
		Timestamp:       FormatTime(s.Timestamp),
	}
}

// FromConnection converts a connection status.
func FromConnection(c store.ConnectionStatus) Connection {
	return Connection{
		Environment: string(c.Environment),
		Connected:   c.Connected,
		LatencyMs:   c.LatencyMs,
		UpdatedAt:   FormatTime(c.UpdatedAt),
	}
}

// Ticks converts a slice of ticks.
func Ticks(in []domain.Tick) []Tick {
	out := make([]Tick, len(in))
	for i, t := range in {
		out[i] = FromTick(t)
	}
	return out
}

// Orders converts a slice of orders.
func Orders(in []*domain.Order) []Order {
	out := make([]Order, len(in))
	for i, o := range in {
		out[i] = FromOrder(o)
	}
	return out
}

// Fills converts a slice of fills.
func Fills(in []domain.Fill) []Fill {
	out := make([]Fill, len(in))
	for i, f := range in {
		out[i] = FromFill(f)
	}
	return out
}

// Positions converts a slice of positions.
func Positions(in []domain.Position) []Position {
	out := make([]Position, len(in))
	for i, p := range in {
		out[i] = FromPosition(p)
	}
	return out
}

// RiskSnapshots converts a slice of risk snapshots.
func RiskSnapshots(in []domain.RiskSnapshot) []RiskSnapshot {
	out := make([]RiskSnapshot, len(in))
	for i, s := range in {
		out[i] = FromRiskSnapshot(s)
	}
	return out
}

// FromAccount converts an account with its margin figures.
func FromAccount(a domain.Account, marginUsed, marginAvailable float64, open int) Account {
	return Account{
		AccountID:       a.AccountID,
		Equity:          a.Equity,
		MarginUsed:      marginUsed,
		MarginAvailable: marginAvailable,
		OpenPositions:   open,
		CreatedAt:       FormatTime(a.CreatedAt),
	}
}
