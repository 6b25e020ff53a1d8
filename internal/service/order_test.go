package service

import (
	"errors"
	"testing"
	"time"

	"github.com/efreitasn/terminalsim/internal/domain"
)

// --- Submit ---

func TestSubmit_LimitOrder(t *testing.T) {
	env := newTestEnv()

	o, err := env.orders.Submit(SubmitOrderRequest{
		Symbol:     " aapl ",
		Side:       domain.OrderSideBuy,
		Type:       domain.OrderTypeLimit,
		Qty:        100,
		LimitPrice: floatPtr(184.5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.ID != "ord-1" || o.Symbol != "AAPL" {
		t.Fatalf("id/symbol = %s/%s, want ord-1/AAPL", o.ID, o.Symbol)
	}
	if o.Status != domain.OrderStatusPending {
		t.Errorf("status = %s, want PENDING", o.Status)
	}
	if o.EstNotional != 18450 {
		t.Errorf("est notional = %v, want 18450", o.EstNotional)
	}
	if o.RiskFlag != domain.RiskFlagOK {
		t.Errorf("risk flag = %s, want OK", o.RiskFlag)
	}
	if o.AccountID != domain.DefaultAccountID || o.StrategyID != DefaultStrategyID {
		t.Errorf("account/strategy = %s/%s", o.AccountID, o.StrategyID)
	}
	if !o.CreatedAt.Equal(t0) || !o.UpdatedAt.Equal(t0) {
		t.Errorf("timestamps = %v/%v, want %v", o.CreatedAt, o.UpdatedAt, t0)
	}

	stored, err := env.orders.Get(o.ID)
	if err != nil || stored.Qty != 100 {
		t.Fatalf("stored order = %+v, %v", stored, err)
	}
	if len(env.publisher.orders) != 1 {
		t.Errorf("published %d orders, want 1", len(env.publisher.orders))
	}
	if env.entered["OK"] != 1 {
		t.Errorf("entered OK = %d, want 1", env.entered["OK"])
	}
}

func TestSubmit_MarketOrderPricedFromTick(t *testing.T) {
	env := newTestEnv()
	env.stores.Ticks.Merge([]domain.Tick{{Symbol: "MSFT", Last: 415.25}})

	o, err := env.orders.Submit(SubmitOrderRequest{
		Symbol: "MSFT", Side: domain.OrderSideSell, Type: domain.OrderTypeMarket, Qty: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.EstNotional != 4152.5 {
		t.Errorf("est notional = %v, want 4152.5", o.EstNotional)
	}
	if o.LimitPrice != nil {
		t.Error("market order must not carry a limit price")
	}
}

func TestSubmit_MarketOrderWithoutTickRejected(t *testing.T) {
	env := newTestEnv()

	_, err := env.orders.Submit(SubmitOrderRequest{
		Symbol: "NVDA", Side: domain.OrderSideBuy, Type: domain.OrderTypeMarket, Qty: 1_000_000,
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if env.stores.Orders.Len() != 0 {
		t.Errorf("orders = %d, want 0", env.stores.Orders.Len())
	}
	if len(env.publisher.orders) != 0 {
		t.Errorf("published %d orders, want 0", len(env.publisher.orders))
	}
}

func TestSubmit_UnknownAccountRejected(t *testing.T) {
	env := newTestEnv()
	if err := env.accounts.Create(&domain.Account{AccountID: "ACC-1", Equity: 10_000}); err != nil {
		t.Fatal(err)
	}
	orders := NewOrderService(env.gate, env.stores.Orders, env.stores.Ticks, &seqIDs{},
		OrderLimits{LargeOrderThreshold: 1000, MaxNotional: 5_000_000},
		WithOrderClock(env.clock),
		WithAccounts(env.accounts),
	)

	req := SubmitOrderRequest{
		Symbol: "AAPL", Side: domain.OrderSideBuy, Type: domain.OrderTypeLimit, Qty: 1, LimitPrice: floatPtr(185),
		AccountID: "ACC-2",
	}
	if _, err := orders.Submit(req); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	req.AccountID = "ACC-1"
	if _, err := orders.Submit(req); err != nil {
		t.Fatalf("registered account: unexpected error: %v", err)
	}
	if env.stores.Orders.Len() != 1 {
		t.Errorf("orders = %d, want 1", env.stores.Orders.Len())
	}
}

func TestSubmit_LargeOrderWarns(t *testing.T) {
	env := newTestEnv()

	o, err := env.orders.Submit(SubmitOrderRequest{
		Symbol: "AAPL", Side: domain.OrderSideBuy, Type: domain.OrderTypeLimit, Qty: 1000, LimitPrice: floatPtr(10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.RiskFlag != domain.RiskFlagWarn {
		t.Errorf("risk flag = %s, want WARN", o.RiskFlag)
	}
	if o.Status != domain.OrderStatusPending {
		t.Errorf("status = %s, want PENDING", o.Status)
	}
}

func TestSubmit_OverNotionalIsRejected(t *testing.T) {
	env := newTestEnv()

	o, err := env.orders.Submit(SubmitOrderRequest{
		Symbol: "AAPL", Side: domain.OrderSideBuy, Type: domain.OrderTypeLimit, Qty: 30000, LimitPrice: floatPtr(185),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.RiskFlag != domain.RiskFlagBlocked {
		t.Errorf("risk flag = %s, want BLOCKED", o.RiskFlag)
	}
	if o.Status != domain.OrderStatusRejected {
		t.Errorf("status = %s, want REJECTED", o.Status)
	}
	if n := len(env.stores.Orders.Working()); n != 0 {
		t.Errorf("working orders = %d, want 0", n)
	}
	if env.entered["BLOCKED"] != 1 {
		t.Errorf("entered BLOCKED = %d, want 1", env.entered["BLOCKED"])
	}
}

func TestSubmit_KeepsAccountAndStrategy(t *testing.T) {
	env := newTestEnv()

	o, err := env.orders.Submit(SubmitOrderRequest{
		Symbol: "AAPL", Side: domain.OrderSideBuy, Type: domain.OrderTypeLimit, Qty: 1,
		LimitPrice: floatPtr(184.123456), AccountID: "ACC-7", StrategyID: "momo",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.AccountID != "ACC-7" || o.StrategyID != "momo" {
		t.Errorf("account/strategy = %s/%s", o.AccountID, o.StrategyID)
	}
	if *o.LimitPrice != 184.1235 {
		t.Errorf("limit = %v, want 184.1235", *o.LimitPrice)
	}
}

func TestSubmit_ValidationErrors(t *testing.T) {
	valid := SubmitOrderRequest{
		Symbol: "AAPL", Side: domain.OrderSideBuy, Type: domain.OrderTypeLimit, Qty: 10, LimitPrice: floatPtr(100),
	}
	tests := []struct {
		name   string
		mutate func(r *SubmitOrderRequest)
	}{
		{"empty symbol", func(r *SubmitOrderRequest) { r.Symbol = "" }},
		{"bad symbol", func(r *SubmitOrderRequest) { r.Symbol = "AA PL" }},
		{"bad side", func(r *SubmitOrderRequest) { r.Side = "HOLD" }},
		{"zero qty", func(r *SubmitOrderRequest) { r.Qty = 0 }},
		{"negative qty", func(r *SubmitOrderRequest) { r.Qty = -5 }},
		{"limit missing price", func(r *SubmitOrderRequest) { r.LimitPrice = nil }},
		{"limit zero price", func(r *SubmitOrderRequest) { r.LimitPrice = floatPtr(0) }},
		{"market with price", func(r *SubmitOrderRequest) { r.Type = domain.OrderTypeMarket }},
		{"unknown type", func(r *SubmitOrderRequest) { r.Type = "STOP" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			req := valid
			tt.mutate(&req)

			_, err := env.orders.Submit(req)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if env.stores.Orders.Len() != 0 {
				t.Error("invalid order must not be stored")
			}
		})
	}
}

// --- Update ---

func submitLimit(t *testing.T, env *testEnv, qty int64, limit float64) *domain.Order {
	t.Helper()
	o, err := env.orders.Submit(SubmitOrderRequest{
		Symbol: "AAPL", Side: domain.OrderSideBuy, Type: domain.OrderTypeLimit, Qty: qty, LimitPrice: floatPtr(limit),
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return o
}

func TestUpdate_QtyAndLimit(t *testing.T) {
	env := newTestEnv()
	o := submitLimit(t, env, 100, 184.5)
	env.clock.Add(time.Second)

	updated, err := env.orders.Update(o.ID, UpdateOrderRequest{Qty: int64Ptr(150), LimitPrice: floatPtr(183.75)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Qty != 150 || *updated.LimitPrice != 183.75 {
		t.Errorf("qty/limit = %d/%v, want 150/183.75", updated.Qty, *updated.LimitPrice)
	}
	if !updated.UpdatedAt.Equal(t0.Add(time.Second)) {
		t.Errorf("updated at = %v", updated.UpdatedAt)
	}
	if len(env.publisher.orders) != 2 {
		t.Errorf("published %d, want 2", len(env.publisher.orders))
	}
}

func TestUpdate_InvalidValuesKeepPriorState(t *testing.T) {
	env := newTestEnv()
	o := submitLimit(t, env, 100, 184.5)

	tests := []struct {
		name string
		req  UpdateOrderRequest
	}{
		{"empty", UpdateOrderRequest{}},
		{"zero qty", UpdateOrderRequest{Qty: int64Ptr(0)}},
		{"negative limit", UpdateOrderRequest{LimitPrice: floatPtr(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.orders.Update(o.ID, tt.req)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			got, _ := env.orders.Get(o.ID)
			if got.Qty != 100 || *got.LimitPrice != 184.5 {
				t.Errorf("order changed: qty=%d limit=%v", got.Qty, *got.LimitPrice)
			}
		})
	}
}

func TestUpdate_QtyBelowFilledRejected(t *testing.T) {
	env := newTestEnv()
	o := submitLimit(t, env, 100, 184.5)
	live, pf := domain.OrderStatusLive, domain.OrderStatusPartiallyFilled
	if _, err := env.stores.Orders.Update(o.ID, domain.OrderPatch{Status: &live}, t0); err != nil {
		t.Fatal(err)
	}
	if _, err := env.stores.Orders.Update(o.ID, domain.OrderPatch{Status: &pf, FilledQty: int64Ptr(40)}, t0); err != nil {
		t.Fatal(err)
	}

	_, err := env.orders.Update(o.ID, UpdateOrderRequest{Qty: int64Ptr(30)})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	done, err := env.orders.Update(o.ID, UpdateOrderRequest{Qty: int64Ptr(40)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.Status != domain.OrderStatusFilled {
		t.Errorf("status = %s, want FILLED when qty drops to filled qty", done.Status)
	}
}

func TestUpdate_LimitOnMarketOrderRejected(t *testing.T) {
	env := newTestEnv()
	env.stores.Ticks.Merge([]domain.Tick{{Symbol: "AAPL", Last: 185}})
	o, _ := env.orders.Submit(SubmitOrderRequest{
		Symbol: "AAPL", Side: domain.OrderSideBuy, Type: domain.OrderTypeMarket, Qty: 5,
	})

	_, err := env.orders.Update(o.ID, UpdateOrderRequest{LimitPrice: floatPtr(10)})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUpdate_QtyEditOverMaxNotionalRejected(t *testing.T) {
	env := newTestEnv()
	o := submitLimit(t, env, 10, 185)
	if o.EstNotional != 1850 || o.RiskFlag != domain.RiskFlagOK {
		t.Fatalf("entry est/flag = %v/%s", o.EstNotional, o.RiskFlag)
	}

	_, err := env.orders.Update(o.ID, UpdateOrderRequest{Qty: int64Ptr(100_000)})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	stored, _ := env.orders.Get(o.ID)
	if stored.Qty != 10 || stored.EstNotional != 1850 || stored.RiskFlag != domain.RiskFlagOK {
		t.Errorf("stored qty/est/flag = %d/%v/%s, want 10/1850/OK", stored.Qty, stored.EstNotional, stored.RiskFlag)
	}
	if stored.Status != domain.OrderStatusPending {
		t.Errorf("status = %s, want PENDING", stored.Status)
	}
}

func TestUpdate_LimitEditOverMaxNotionalRejected(t *testing.T) {
	env := newTestEnv()
	o := submitLimit(t, env, 500, 185)

	_, err := env.orders.Update(o.ID, UpdateOrderRequest{LimitPrice: floatPtr(20_000)})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	stored, _ := env.orders.Get(o.ID)
	if *stored.LimitPrice != 185 {
		t.Errorf("limit price = %v, want 185", *stored.LimitPrice)
	}
}

func TestUpdate_RepricesAndReclassifies(t *testing.T) {
	env := newTestEnv()
	o := submitLimit(t, env, 10, 185)

	u, err := env.orders.Update(o.ID, UpdateOrderRequest{Qty: int64Ptr(2000), LimitPrice: floatPtr(100)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.EstNotional != 200_000 {
		t.Errorf("est notional = %v, want 200000", u.EstNotional)
	}
	if u.RiskFlag != domain.RiskFlagWarn {
		t.Errorf("risk flag = %s, want WARN", u.RiskFlag)
	}

	u, err = env.orders.Update(o.ID, UpdateOrderRequest{Qty: int64Ptr(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.EstNotional != 500 || u.RiskFlag != domain.RiskFlagOK {
		t.Errorf("est/flag = %v/%s, want 500/OK", u.EstNotional, u.RiskFlag)
	}
}

func TestUpdate_MarketOrderRepricedFromTick(t *testing.T) {
	env := newTestEnv()
	env.stores.Ticks.Merge([]domain.Tick{{Symbol: "MSFT", Last: 400}})
	o, err := env.orders.Submit(SubmitOrderRequest{
		Symbol: "MSFT", Side: domain.OrderSideSell, Type: domain.OrderTypeMarket, Qty: 10,
	})
	if err != nil {
		t.Fatal(err)
	}

	env.stores.Ticks.Merge([]domain.Tick{{Symbol: "MSFT", Last: 410}})
	u, err := env.orders.Update(o.ID, UpdateOrderRequest{Qty: int64Ptr(20)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.EstNotional != 8200 {
		t.Errorf("est notional = %v, want 8200", u.EstNotional)
	}
}

func TestUpdate_TerminalAndUnknown(t *testing.T) {
	env := newTestEnv()
	o := submitLimit(t, env, 100, 184.5)
	if _, err := env.orders.Cancel(o.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := env.orders.Update(o.ID, UpdateOrderRequest{Qty: int64Ptr(10)}); !errors.Is(err, domain.ErrOrderNotEditable) {
		t.Errorf("expected ErrOrderNotEditable, got %v", err)
	}
	if _, err := env.orders.Update("nope", UpdateOrderRequest{Qty: int64Ptr(10)}); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

// --- Cancel ---

func TestCancel(t *testing.T) {
	env := newTestEnv()
	o := submitLimit(t, env, 100, 184.5)

	c, err := env.orders.Cancel(o.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != domain.OrderStatusCancelled {
		t.Errorf("status = %s, want CANCELLED", c.Status)
	}
	if n := len(env.stores.Orders.Working()); n != 0 {
		t.Errorf("working = %d, want 0", n)
	}

	if _, err := env.orders.Cancel(o.ID); !errors.Is(err, domain.ErrOrderNotCancellable) {
		t.Errorf("second cancel: expected ErrOrderNotCancellable, got %v", err)
	}
	if _, err := env.orders.Cancel("missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

// --- List ---

func TestList_StatusFilter(t *testing.T) {
	env := newTestEnv()
	a := submitLimit(t, env, 10, 100)
	submitLimit(t, env, 20, 100)
	if _, err := env.orders.Cancel(a.ID); err != nil {
		t.Fatal(err)
	}

	all, err := env.orders.List(nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("list all = %d, %v", len(all), err)
	}
	if all[0].ID != "ord-2" {
		t.Errorf("first = %s, want newest ord-2", all[0].ID)
	}

	cancelled := domain.OrderStatusCancelled
	got, err := env.orders.List(&cancelled)
	if err != nil || len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("cancelled filter = %+v, %v", got, err)
	}

	bogus := domain.OrderStatus("EXPIRED")
	if _, err := env.orders.List(&bogus); err == nil {
		t.Error("expected validation error for unknown status")
	}
}
