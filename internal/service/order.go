package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/efreitasn/terminalsim/internal/engine"
	"github.com/efreitasn/terminalsim/internal/store"
)

// DefaultStrategyID tags orders entered without a strategy.
const DefaultStrategyID = "manual"

// ValidOrderStatuses lists all valid order status values for validation.
var ValidOrderStatuses = map[domain.OrderStatus]bool{
	domain.OrderStatusPending:         true,
	domain.OrderStatusLive:            true,
	domain.OrderStatusPartiallyFilled: true,
	domain.OrderStatusFilled:          true,
	domain.OrderStatusCancelled:       true,
	domain.OrderStatusRejected:        true,
}

// SubmitOrderRequest represents the input for order entry.
type SubmitOrderRequest struct {
	Symbol     string
	Side       domain.OrderSide
	Type       domain.OrderType
	Qty        int64
	LimitPrice *float64 // required for LIMIT, must be nil for MARKET
	AccountID  string
	StrategyID string
}

// UpdateOrderRequest is a manual edit. Nil fields are left untouched.
type UpdateOrderRequest struct {
	Qty        *int64
	LimitPrice *float64
}

// OrderLimits are the pre-trade risk thresholds applied at entry.
type OrderLimits struct {
	LargeOrderThreshold int64   // qty at or above this is flagged WARN
	MaxNotional         float64 // estimated notional above this is BLOCKED
}

// OrderPublisher is notified of orders changed outside the execution cycle.
type OrderPublisher interface {
	PublishOrders(at time.Time, orders []*domain.Order)
}

// EntryRecorder counts entered orders by risk flag.
type EntryRecorder interface {
	OrderEntered(riskFlag string)
}

// AccountDirectory reports whether an account is registered.
type AccountDirectory interface {
	Exists(accountID string) bool
}

// OrderService handles order entry, edits, cancellation and queries.
type OrderService struct {
	gate      Gate
	orders    *store.OrderStore
	ticks     *store.TickStore
	ids       engine.IDGenerator
	limits    OrderLimits
	clock     clock.Clock
	publisher OrderPublisher
	recorder  EntryRecorder
	accounts  AccountDirectory
	logger    *slog.Logger
}

// OrderOption customizes an OrderService.
type OrderOption func(*OrderService)

// WithOrderClock replaces the wall clock.
func WithOrderClock(c clock.Clock) OrderOption {
	return func(s *OrderService) { s.clock = c }
}

// WithOrderPublisher sets the publisher notified after entry, edit and cancel.
func WithOrderPublisher(p OrderPublisher) OrderOption {
	return func(s *OrderService) { s.publisher = p }
}

// WithEntryRecorder sets the entry recorder.
func WithEntryRecorder(r EntryRecorder) OrderOption {
	return func(s *OrderService) { s.recorder = r }
}

// WithAccounts makes entry fail with domain.ErrAccountNotFound for
// accounts the directory does not know.
func WithAccounts(d AccountDirectory) OrderOption {
	return func(s *OrderService) { s.accounts = d }
}

// WithOrderLogger sets the logger.
func WithOrderLogger(l *slog.Logger) OrderOption {
	return func(s *OrderService) { s.logger = l }
}

// NewOrderService creates a new OrderService with the given dependencies.
func NewOrderService(
	gate Gate,
	orders *store.OrderStore,
	ticks *store.TickStore,
	ids engine.IDGenerator,
	limits OrderLimits,
	opts ...OrderOption,
) *OrderService {
	s := &OrderService{
		gate:   gate,
		orders: orders,
		ticks:  ticks,
		ids:    ids,
		limits: limits,
		clock:  clock.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the request, prices it against the limit or the latest
// tick, classifies its pre-trade risk and records it. BLOCKED orders are
// recorded as REJECTED and never reach the lifecycle engine. A MARKET order
// for a symbol with no quote cannot be priced and is refused.
func (s *OrderService) Submit(req SubmitOrderRequest) (*domain.Order, error) {
	symbol, err := validSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	if req.Side != domain.OrderSideBuy && req.Side != domain.OrderSideSell {
		return nil, &domain.ValidationError{Message: "side must be 'BUY' or 'SELL'"}
	}
	if req.Qty <= 0 {
		return nil, &domain.ValidationError{Message: "qty must be a positive integer"}
	}

	var limit *float64
	switch req.Type {
	case domain.OrderTypeLimit:
		if req.LimitPrice == nil {
			return nil, &domain.ValidationError{Message: "limit_price is required for LIMIT orders"}
		}
		if *req.LimitPrice <= 0 {
			return nil, &domain.ValidationError{Message: "limit_price must be greater than 0"}
		}
		v := domain.RoundPrice(*req.LimitPrice)
		limit = &v
	case domain.OrderTypeMarket:
		if req.LimitPrice != nil {
			return nil, &domain.ValidationError{Message: "MARKET orders must not include limit_price"}
		}
	default:
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("Unknown order type: %s. Must be one of: MARKET, LIMIT", req.Type),
		}
	}

	accountID := req.AccountID
	if accountID == "" {
		accountID = domain.DefaultAccountID
	}
	strategyID := req.StrategyID
	if strategyID == "" {
		strategyID = DefaultStrategyID
	}

	now := s.clock.Now()
	order := &domain.Order{
		Symbol:     symbol,
		Side:       req.Side,
		Qty:        req.Qty,
		Type:       req.Type,
		LimitPrice: limit,
		Status:     domain.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
		AccountID:  accountID,
		StrategyID: strategyID,
	}

	s.gate.Write(func() {
		if s.accounts != nil && !s.accounts.Exists(accountID) {
			err = domain.ErrAccountNotFound
			return
		}
		ref, ok := s.referencePrice(order.Symbol, order.LimitPrice)
		if !ok {
			err = &domain.ValidationError{
				Message: fmt.Sprintf("no quote for %s: MARKET orders need a last price", symbol),
			}
			return
		}
		order.EstNotional = estimateNotional(ref, order.Qty)
		order.RiskFlag = s.classify(order.Qty, order.EstNotional)
		if order.RiskFlag == domain.RiskFlagBlocked {
			order.Status = domain.OrderStatusRejected
		}
		order.ID = s.ids.Next(now)
		err = s.orders.Add(order)
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.OrderEntered(string(order.RiskFlag))
	}
	s.publish(now, order)
	s.logger.Info("order entered",
		"order_id", order.ID,
		"symbol", order.Symbol,
		"side", order.Side,
		"qty", order.Qty,
		"risk_flag", order.RiskFlag,
		"status", order.Status,
	)
	return order.Clone(), nil
}

// referencePrice is the limit price, else the latest traded price. It
// reports false when neither exists.
func (s *OrderService) referencePrice(symbol string, limit *float64) (float64, bool) {
	if limit != nil {
		return *limit, true
	}
	if t, err := s.ticks.Get(symbol); err == nil && t.Last > 0 {
		return t.Last, true
	}
	return 0, false
}

func estimateNotional(ref float64, qty int64) float64 {
	return domain.RoundMoney(domain.Notional(ref, qty))
}

func (s *OrderService) classify(qty int64, estNotional float64) domain.RiskFlag {
	if s.limits.MaxNotional > 0 && estNotional > s.limits.MaxNotional {
		return domain.RiskFlagBlocked
	}
	if s.limits.LargeOrderThreshold > 0 && qty >= s.limits.LargeOrderThreshold {
		return domain.RiskFlagWarn
	}
	return domain.RiskFlagOK
}

// Update applies a manual qty and/or limit price edit. Invalid values are
// rejected and the order keeps its prior values. The edited order is
// re-priced and re-classified; an edit that would make it BLOCKED is
// rejected. Reducing qty to exactly the filled quantity completes the order.
func (s *OrderService) Update(orderID string, req UpdateOrderRequest) (*domain.Order, error) {
	if req.Qty == nil && req.LimitPrice == nil {
		return nil, &domain.ValidationError{Message: "at least one of qty or limit_price is required"}
	}
	if req.Qty != nil && *req.Qty <= 0 {
		return nil, &domain.ValidationError{Message: "qty must be a positive integer"}
	}
	if req.LimitPrice != nil && *req.LimitPrice <= 0 {
		return nil, &domain.ValidationError{Message: "limit_price must be greater than 0"}
	}

	now := s.clock.Now()
	var (
		updated *domain.Order
		err     error
	)
	s.gate.Write(func() {
		var current *domain.Order
		current, err = s.orders.Get(orderID)
		if err != nil {
			return
		}
		if current.Status.IsTerminal() {
			err = domain.ErrOrderNotEditable
			return
		}

		var patch domain.OrderPatch
		if req.LimitPrice != nil {
			if current.Type != domain.OrderTypeLimit {
				err = &domain.ValidationError{Message: "limit_price can only be edited on LIMIT orders"}
				return
			}
			v := domain.RoundPrice(*req.LimitPrice)
			patch.LimitPrice = &v
		}
		if req.Qty != nil {
			if *req.Qty < current.FilledQty {
				err = &domain.ValidationError{
					Message: fmt.Sprintf("qty must be at least the filled quantity (%d)", current.FilledQty),
				}
				return
			}
			patch.Qty = req.Qty
			if *req.Qty == current.FilledQty {
				filled := domain.OrderStatusFilled
				patch.Status = &filled
			}
		}

		// Re-price the edited order. An edit that would block it is refused.
		qty, limit := current.Qty, current.LimitPrice
		if patch.Qty != nil {
			qty = *patch.Qty
		}
		if patch.LimitPrice != nil {
			limit = patch.LimitPrice
		}
		est := current.EstNotional
		if ref, ok := s.referencePrice(current.Symbol, limit); ok {
			est = estimateNotional(ref, qty)
		}
		flag := s.classify(qty, est)
		if flag == domain.RiskFlagBlocked {
			err = &domain.ValidationError{
				Message: fmt.Sprintf("edit exceeds max order notional: %.2f > %.2f", est, s.limits.MaxNotional),
			}
			return
		}
		patch.EstNotional = &est
		patch.RiskFlag = &flag

		updated, err = s.orders.Update(orderID, patch, now)
	})
	if err != nil {
		return nil, err
	}

	s.publish(now, updated)
	s.logger.Info("order updated",
		"order_id", orderID,
		"qty", updated.Qty,
		"risk_flag", updated.RiskFlag,
		"status", updated.Status,
	)
	return updated, nil
}

// Cancel moves a non-terminal order to CANCELLED.
func (s *OrderService) Cancel(orderID string) (*domain.Order, error) {
	now := s.clock.Now()
	var (
		cancelled *domain.Order
		err       error
	)
	s.gate.Write(func() {
		var current *domain.Order
		current, err = s.orders.Get(orderID)
		if err != nil {
			return
		}
		if current.Status.IsTerminal() {
			err = domain.ErrOrderNotCancellable
			return
		}
		status := domain.OrderStatusCancelled
		cancelled, err = s.orders.Update(orderID, domain.OrderPatch{Status: &status}, now)
	})
	if err != nil {
		return nil, err
	}

	s.publish(now, cancelled)
	s.logger.Info("order cancelled", "order_id", orderID)
	return cancelled, nil
}

// Get retrieves an order by ID.
func (s *OrderService) Get(orderID string) (*domain.Order, error) {
	return s.orders.Get(orderID)
}

// List returns all orders newest first, optionally filtered by status.
func (s *OrderService) List(status *domain.OrderStatus) ([]*domain.Order, error) {
	if status != nil && !ValidOrderStatuses[*status] {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("Invalid status filter: '%s'. Must be one of: PENDING, LIVE, PARTIALLY_FILLED, FILLED, CANCELLED, REJECTED", *status),
		}
	}

	all := s.orders.List()
	if status == nil {
		return all, nil
	}
	out := make([]*domain.Order, 0, len(all))
	for _, o := range all {
		if o.Status == *status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *OrderService) publish(at time.Time, o *domain.Order) {
	if s.publisher != nil {
		s.publisher.PublishOrders(at, []*domain.Order{o})
	}
}
