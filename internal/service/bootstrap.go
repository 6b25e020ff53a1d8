package service

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/efreitasn/terminalsim/internal/engine"
	"github.com/efreitasn/terminalsim/internal/store"
)

// BootstrapParams controls what the session seed contains.
type BootstrapParams struct {
	Demo       bool // seed the demo orders, fill and positions
	Accounts   []domain.Account
	MarginRate float64
	VaRFactor  float64
	FeeRate    float64
}

// Bootstrapper seeds the session state once: accounts, an opening tick per
// watched symbol and, optionally, the demo blotter. The default account is
// always registered. Demo data only goes into stores that are still empty.
type Bootstrapper struct {
	gate     Gate
	stores   engine.Stores
	accounts *store.AccountStore
	source   *engine.TickSource
	params   BootstrapParams
	clock    clock.Clock
	logger   *slog.Logger

	mu   sync.Mutex
	done bool
}

// NewBootstrapper creates a Bootstrapper.
func NewBootstrapper(
	gate Gate,
	stores engine.Stores,
	accounts *store.AccountStore,
	source *engine.TickSource,
	params BootstrapParams,
	clk clock.Clock,
	logger *slog.Logger,
) *Bootstrapper {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bootstrapper{
		gate:     gate,
		stores:   stores,
		accounts: accounts,
		source:   source,
		params:   params,
		clock:    clk,
		logger:   logger,
	}
}

// Run seeds the stores. Only the first call has an effect; it reports
// whether this call did the seeding.
func (b *Bootstrapper) Run() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return false, nil
	}

	now := b.clock.Now()
	var err error
	b.gate.Write(func() {
		for i := range b.params.Accounts {
			a := b.params.Accounts[i]
			if a.CreatedAt.IsZero() {
				a.CreatedAt = now
			}
			if cerr := b.accounts.Create(&a); cerr != nil && !errors.Is(cerr, domain.ErrAccountExists) {
				err = cerr
				return
			}
		}
		if !b.accounts.Exists(domain.DefaultAccountID) {
			err = b.accounts.Create(&domain.Account{
				AccountID: domain.DefaultAccountID,
				Equity:    b.accounts.Equity(domain.DefaultAccountID),
				CreatedAt: now,
			})
			if err != nil {
				return
			}
		}

		b.stores.Ticks.Set(b.source.Seed(b.stores.Watchlist.Symbols(), now))

		if b.params.Demo {
			err = b.seedDemoLocked(now)
		}
	})
	if err != nil {
		return false, err
	}

	b.done = true
	b.logger.Info("session bootstrapped",
		"symbols", b.stores.Ticks.Len(),
		"orders", b.stores.Orders.Len(),
		"positions", b.stores.Positions.Len(),
		"demo", b.params.Demo,
	)
	return true, nil
}

func (b *Bootstrapper) seedDemoLocked(now time.Time) error {
	if b.stores.Orders.Len() == 0 {
		for _, o := range demoOrders(now) {
			if err := b.stores.Orders.Add(o); err != nil {
				return err
			}
		}
	}

	if b.stores.Fills.Len() == 0 {
		b.stores.Fills.Append(domain.Fill{
			ID:         "fill-demo-1",
			OrderID:    "ord-demo-2",
			Symbol:     "MSFT",
			Side:       domain.OrderSideSell,
			Price:      414.8,
			Qty:        50,
			Timestamp:  now.Add(-119500 * time.Millisecond),
			AccountID:  domain.DefaultAccountID,
			StrategyID: DefaultStrategyID,
			Fee:        domain.Fee(414.8, 50, b.params.FeeRate),
		})
	}

	if b.stores.Positions.Len() == 0 {
		ticks := b.stores.Ticks.Snapshot()
		seeded := make([]domain.Position, 0, 2)
		for _, p := range demoPositions(now) {
			if t, ok := ticks[p.Symbol]; ok {
				p = engine.MarkToMarket(p, t, b.params.MarginRate, b.accounts.Equity(p.AccountID))
			}
			seeded = append(seeded, p)
		}
		b.stores.Positions.Upsert(seeded...)
		if b.stores.Risk.Len() == 0 {
			b.stores.Risk.Push(engine.Snapshots(seeded, b.params.VaRFactor)...)
		}
	}
	return nil
}

func demoOrders(now time.Time) []*domain.Order {
	limit := 184.5
	avg := 414.8
	return []*domain.Order{
		{
			ID:           "ord-demo-2",
			Symbol:       "MSFT",
			Side:         domain.OrderSideSell,
			Qty:          50,
			Type:         domain.OrderTypeMarket,
			Status:       domain.OrderStatusFilled,
			FilledQty:    50,
			AvgFillPrice: &avg,
			CreatedAt:    now.Add(-2 * time.Minute),
			UpdatedAt:    now.Add(-119500 * time.Millisecond),
			AccountID:    domain.DefaultAccountID,
			StrategyID:   DefaultStrategyID,
			EstNotional:  domain.RoundMoney(domain.Notional(avg, 50)),
			RiskFlag:     domain.RiskFlagOK,
		},
		{
			ID:          "ord-demo-1",
			Symbol:      "AAPL",
			Side:        domain.OrderSideBuy,
			Qty:         100,
			Type:        domain.OrderTypeLimit,
			LimitPrice:  &limit,
			Status:      domain.OrderStatusLive,
			CreatedAt:   now.Add(-time.Minute),
			UpdatedAt:   now,
			AccountID:   domain.DefaultAccountID,
			StrategyID:  DefaultStrategyID,
			EstNotional: domain.RoundMoney(domain.Notional(limit, 100)),
			RiskFlag:    domain.RiskFlagOK,
		},
	}
}

func demoPositions(now time.Time) []domain.Position {
	return []domain.Position{
		{
			Symbol:      "MSFT",
			AccountID:   domain.DefaultAccountID,
			StrategyID:  DefaultStrategyID,
			Qty:         -50,
			AvgPrice:    414.8,
			LastUpdated: now,
		},
		{
			Symbol:      "AAPL",
			AccountID:   domain.DefaultAccountID,
			StrategyID:  DefaultStrategyID,
			Qty:         200,
			AvgPrice:    183.2,
			RealizedPnl: 120.5,
			LastUpdated: now,
		},
	}
}
