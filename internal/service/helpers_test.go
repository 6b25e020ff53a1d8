package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/efreitasn/terminalsim/internal/engine"
	"github.com/efreitasn/terminalsim/internal/store"
)

var t0 = time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

// lockGate is a Gate backed by a plain RWMutex, standing in for the scheduler.
type lockGate struct{ mu sync.RWMutex }

func (g *lockGate) Read(fn func()) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn()
}

func (g *lockGate) Write(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}

// halfRand makes every tick walk step zero, so ticks equal base prices.
type halfRand struct{}

func (halfRand) Float64() float64 { return 0.5 }

type seqIDs struct{ n int }

func (g *seqIDs) Next(time.Time) string {
	g.n++
	return fmt.Sprintf("ord-%d", g.n)
}

type recordingPublisher struct {
	mu     sync.Mutex
	orders []*domain.Order
}

func (p *recordingPublisher) PublishOrders(_ time.Time, orders []*domain.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, orders...)
}

type flagCounter map[string]int

func (c flagCounter) OrderEntered(flag string) { c[flag]++ }

// testEnv bundles all dependencies needed by the service tests.
type testEnv struct {
	gate      *lockGate
	clock     *clock.Mock
	stores    engine.Stores
	accounts  *store.AccountStore
	source    *engine.TickSource
	publisher *recordingPublisher
	entered   flagCounter
	orders    *OrderService
	terminal  *TerminalService
	risk      *RiskService
}

func newTestEnv(symbols ...string) *testEnv {
	if len(symbols) == 0 {
		symbols = []string{"AAPL", "MSFT"}
	}
	mock := clock.NewMock()
	mock.Set(t0)

	env := &testEnv{
		gate:  &lockGate{},
		clock: mock,
		stores: engine.Stores{
			Watchlist:  store.NewWatchlist(symbols),
			Ticks:      store.NewTickStore(),
			Orders:     store.NewOrderStore(),
			Fills:      store.NewFillLedger(),
			Positions:  store.NewPositionStore(),
			Risk:       store.NewRiskHistory(100),
			Connection: store.NewConnectionStore(store.EnvironmentSim),
		},
		accounts:  store.NewAccountStore(50000),
		publisher: &recordingPublisher{},
		entered:   flagCounter{},
	}
	env.source = engine.NewTickSource(
		domain.NewSymbolRegistry(domain.DefaultBasePrices),
		engine.DefaultMarketParams(),
		halfRand{},
	)
	env.orders = NewOrderService(
		env.gate,
		env.stores.Orders,
		env.stores.Ticks,
		&seqIDs{},
		OrderLimits{LargeOrderThreshold: 1000, MaxNotional: 5_000_000},
		WithOrderClock(mock),
		WithOrderPublisher(env.publisher),
		WithEntryRecorder(env.entered),
	)
	env.terminal = NewTerminalService(env.gate, env.stores, env.source, mock, nil)
	env.risk = NewRiskService(env.gate, env.stores.Positions, env.stores.Risk)
	return env
}

func floatPtr(f float64) *float64 { return &f }

func int64Ptr(v int64) *int64 { return &v }
