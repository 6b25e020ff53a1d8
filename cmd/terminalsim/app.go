package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/efreitasn/terminalsim/internal/config"
	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/efreitasn/terminalsim/internal/engine"
	"github.com/efreitasn/terminalsim/internal/handler"
	"github.com/efreitasn/terminalsim/internal/id"
	"github.com/efreitasn/terminalsim/internal/metrics"
	"github.com/efreitasn/terminalsim/internal/service"
	"github.com/efreitasn/terminalsim/internal/store"
	"github.com/efreitasn/terminalsim/internal/stream"
)

// Simulated round-trip latency is drawn from [latencyBaseMs, latencyBaseMs+latencyJitterMs).
const (
	latencyBaseMs   = 7
	latencyJitterMs = 16
)

// app is the wired simulator.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry

	stores    engine.Stores
	scheduler *engine.Scheduler
	hub       *stream.Hub

	orders    *service.OrderService
	terminal  *service.TerminalService
	risk      *service.RiskService
	accounts  *service.AccountService
	bootstrap *service.Bootstrapper
}

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := engine.NewRand(seed)

	// Stores.
	stores := engine.Stores{
		Watchlist:  store.NewWatchlist(cfg.Market.Watchlist),
		Ticks:      store.NewTickStore(),
		Orders:     store.NewOrderStore(),
		Fills:      store.NewFillLedger(),
		Positions:  store.NewPositionStore(),
		Risk:       store.NewRiskHistory(cfg.RiskHistoryCap),
		Connection: store.NewConnectionStore(store.Environment(cfg.Environment)),
	}
	accounts := store.NewAccountStore(cfg.AccountEquity)

	// Metrics.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	hub := stream.NewHub(logger, m)

	// Engine.
	marketParams := engine.DefaultMarketParams()
	marketParams.PriceStep = cfg.PriceStep
	marketParams.SpreadBps = cfg.SpreadBps
	marketParams.MinTick = cfg.MinTick
	source := engine.NewTickSource(domain.NewSymbolRegistry(cfg.Market.BasePrices), marketParams, rng)

	lifecycleParams := engine.DefaultLifecycleParams()
	lifecycleParams.ActivationProbability = cfg.ActivationProbability
	lifecycleParams.FillProbability = cfg.FillProbability
	lifecycleParams.FeeRate = cfg.FeeRate
	lifecycle := engine.NewLifecycle(lifecycleParams, rng, id.NewGenerator("fill", cfg.Seed), logger)

	scheduler := engine.NewScheduler(
		engine.SchedulerConfig{
			TickInterval:      cfg.TickInterval,
			ExecutionInterval: cfg.ExecutionInterval,
			VaRFactor:         cfg.VaRFactor,
			LatencyBaseMs:     latencyBaseMs,
			LatencyJitterMs:   latencyJitterMs,
		},
		stores,
		source,
		lifecycle,
		engine.NewPositionAggregator(cfg.MarginRate, accounts),
		rng,
		engine.WithPublisher(hub),
		engine.WithObserver(m),
		engine.WithLogger(logger),
	)

	// Services.
	orderIDs := id.NewGenerator("ord", cfg.Seed)
	orders := service.NewOrderService(
		scheduler,
		stores.Orders,
		stores.Ticks,
		orderIDs,
		service.OrderLimits{
			LargeOrderThreshold: cfg.LargeOrderThreshold,
			MaxNotional:         cfg.MaxOrderNotional,
		},
		service.WithOrderPublisher(hub),
		service.WithEntryRecorder(m),
		service.WithAccounts(accounts),
		service.WithOrderLogger(logger),
	)

	seedAccounts := make([]domain.Account, 0, len(cfg.Market.Accounts))
	for _, a := range cfg.Market.Accounts {
		seedAccounts = append(seedAccounts, domain.Account{AccountID: a.ID, Equity: a.Equity})
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		stores:    stores,
		scheduler: scheduler,
		hub:       hub,
		orders:    orders,
		terminal:  service.NewTerminalService(scheduler, stores, source, nil, logger),
		risk:      service.NewRiskService(scheduler, stores.Positions, stores.Risk),
		accounts:  service.NewAccountService(scheduler, accounts, stores.Positions),
		bootstrap: service.NewBootstrapper(scheduler, stores, accounts, source, service.BootstrapParams{
			Demo:       cfg.SeedDemo,
			Accounts:   seedAccounts,
			MarginRate: cfg.MarginRate,
			VaRFactor:  cfg.VaRFactor,
			FeeRate:    cfg.FeeRate,
		}, nil, logger),
	}
}

// router builds the HTTP handler. Cycles started over HTTP stop with ctx.
func (a *app) router(ctx context.Context) http.Handler {
	return handler.NewRouter(handler.Deps{
		Orders:      a.orders,
		Terminal:    a.terminal,
		Risk:        a.risk,
		Accounts:    a.accounts,
		Streamer:    a.scheduler,
		StreamCtx:   ctx,
		Stream:      a.hub,
		Metrics:     promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
		CORSOrigins: a.cfg.CORSOrigins,
		Logger:      a.logger,
	})
}
