package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/efreitasn/terminalsim/internal/store"
)

// Stores groups the state the scheduler sequences. Each store stays the sole
// owner of its data; the scheduler only goes through their accessors.
type Stores struct {
	Watchlist  *store.Watchlist
	Ticks      *store.TickStore
	Orders     *store.OrderStore
	Fills      *store.FillLedger
	Positions  *store.PositionStore
	Risk       *store.RiskHistory
	Connection *store.ConnectionStore
}

// SchedulerConfig holds the scheduler's cadence and risk parameters.
type SchedulerConfig struct {
	TickInterval      time.Duration
	ExecutionInterval time.Duration
	VaRFactor         float64
	LatencyBaseMs     int
	LatencyJitterMs   int
}

// Scheduler drives the market cycle and the execution cycle from a single
// goroutine, so the two never run concurrently. A read/write gate lets
// other goroutines read several stores consistently or apply edits between
// cycles.
type Scheduler struct {
	cfg       SchedulerConfig
	clock     clock.Clock
	stores    Stores
	source    *TickSource
	lifecycle *Lifecycle
	positions *PositionAggregator
	rng       Rand
	publisher BatchPublisher
	observer  CycleObserver
	logger    *slog.Logger

	gate sync.RWMutex

	mu      sync.Mutex // protects running, stop and done
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// SchedulerOption customizes a Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock replaces the wall clock, typically with clock.NewMock in tests.
func WithClock(c clock.Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

// WithPublisher sets the batch publisher.
func WithPublisher(p BatchPublisher) SchedulerOption {
	return func(s *Scheduler) { s.publisher = p }
}

// WithObserver sets the cycle observer.
func WithObserver(o CycleObserver) SchedulerOption {
	return func(s *Scheduler) { s.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// NewScheduler creates a stopped Scheduler.
func NewScheduler(
	cfg SchedulerConfig,
	stores Stores,
	source *TickSource,
	lifecycle *Lifecycle,
	positions *PositionAggregator,
	rng Rand,
	opts ...SchedulerOption,
) *Scheduler {
	s := &Scheduler{
		cfg:       cfg,
		clock:     clock.New(),
		stores:    stores,
		source:    source,
		lifecycle: lifecycle,
		positions: positions,
		rng:       rng,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the cycle loop. It returns false without doing anything if
// the scheduler is already running. The loop also exits when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	// Tickers are created before Start returns so a mock clock advanced
	// right after Start already drives them.
	market := s.clock.Ticker(s.cfg.TickInterval)
	execution := s.clock.Ticker(s.cfg.ExecutionInterval)

	s.stores.Connection.SetConnected(true, s.clock.Now())
	s.publishConnection()
	s.logger.Info("streaming started",
		"tick_interval", s.cfg.TickInterval,
		"execution_interval", s.cfg.ExecutionInterval,
	)

	go s.loop(ctx, market, execution, s.stop, s.done)
	return true
}

// Stop halts the loop and waits for it to exit, so no cycle mutates state
// after Stop returns. Calling Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
}

func (s *Scheduler) publishConnection() {
	if s.publisher != nil {
		s.publisher.PublishConnection(s.stores.Connection.Get())
	}
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(ctx context.Context, market, execution *clock.Ticker, stop, done chan struct{}) {
	defer func() {
		market.Stop()
		execution.Stop()
		s.stores.Connection.SetConnected(false, s.clock.Now())
		s.publishConnection()

		s.mu.Lock()
		if s.done == done {
			s.running = false
		}
		s.mu.Unlock()

		s.logger.Info("streaming stopped")
		close(done)
	}()

	for {
		// Check for shutdown first so a pending tick never runs after Stop.
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case t := <-market.C:
			s.MarketCycle(t)
		case t := <-execution.C:
			s.ExecutionCycle(t)
		}
	}
}

// Read runs fn while no cycle is in progress. Concurrent readers are allowed.
func (s *Scheduler) Read(fn func()) {
	s.gate.RLock()
	defer s.gate.RUnlock()
	fn()
}

// Write runs fn exclusively between cycles.
func (s *Scheduler) Write(fn func()) {
	s.gate.Lock()
	defer s.gate.Unlock()
	fn()
}

// MarketCycle generates ticks for every watched symbol, merges them, marks
// open positions to market and records one risk snapshot per revalued
// position, in that order. It is exported for headless stepping.
func (s *Scheduler) MarketCycle(now time.Time) MarketBatch {
	started := time.Now()

	s.gate.Lock()
	symbols := s.stores.Watchlist.Symbols()
	prev := s.stores.Ticks.Snapshot()

	batch := MarketBatch{At: now, Ticks: make([]domain.Tick, 0, len(symbols))}
	fresh := make(map[string]domain.Tick, len(symbols))
	for _, sym := range symbols {
		last := 0.0
		if p, ok := prev[sym]; ok {
			last = p.Last
		}
		t := s.source.Next(sym, last, now)
		batch.Ticks = append(batch.Ticks, t)
		fresh[sym] = t
	}
	s.stores.Ticks.Merge(batch.Ticks)

	batch.Positions = s.positions.Mark(s.stores.Positions.Snapshot(), fresh)
	s.stores.Positions.Upsert(batch.Positions...)

	batch.Snapshots = Snapshots(batch.Positions, s.cfg.VaRFactor)
	evicted := s.stores.Risk.Push(batch.Snapshots...)

	batch.LatencyMs = s.cfg.LatencyBaseMs + int(s.rng.Float64()*float64(s.cfg.LatencyJitterMs))
	s.stores.Connection.SetLatency(batch.LatencyMs, now)
	batch.Connection = s.stores.Connection.Get()
	s.gate.Unlock()

	if s.observer != nil {
		s.observer.ObserveMarketCycle(time.Since(started), len(batch.Ticks), len(batch.Positions))
		s.observer.ObserveRiskEvicted(evicted)
	}
	if s.publisher != nil {
		s.publisher.PublishMarket(batch)
	}
	s.logger.Debug("market cycle",
		"ticks", len(batch.Ticks),
		"positions", len(batch.Positions),
		"latency_ms", batch.LatencyMs,
	)
	return batch
}

// ExecutionCycle advances working orders, records the resulting fills,
// folds them into positions and records one risk snapshot per fold, in that
// order. Order patches are applied as a single batch. It is exported for
// headless stepping.
func (s *Scheduler) ExecutionCycle(now time.Time) ExecutionBatch {
	started := time.Now()

	s.gate.Lock()
	res := s.lifecycle.Evaluate(s.stores.Orders.Working(), s.stores.Ticks.Snapshot(), now)

	batch := ExecutionBatch{At: now, Activated: res.Activated, Skipped: res.Skipped}
	batch.Orders = s.stores.Orders.ApplyPatches(res.Updates, now)
	batch.Fills = s.stores.Fills.Append(res.Fills...)

	batch.Positions = s.positions.Fold(s.stores.Positions.Snapshot(), batch.Fills)
	s.stores.Positions.Upsert(batch.Positions...)

	batch.Snapshots = Snapshots(batch.Positions, s.cfg.VaRFactor)
	evicted := s.stores.Risk.Push(batch.Snapshots...)
	s.gate.Unlock()

	if s.observer != nil {
		s.observer.ObserveExecutionCycle(time.Since(started), len(batch.Fills), batch.Activated, batch.Skipped)
		s.observer.ObserveRiskEvicted(evicted)
	}
	if s.publisher != nil && !batch.Empty() {
		s.publisher.PublishExecution(batch)
	}
	if !batch.Empty() {
		s.logger.Debug("execution cycle",
			"orders", len(batch.Orders),
			"fills", len(batch.Fills),
			"activated", batch.Activated,
			"positions", len(batch.Positions),
		)
	}
	return batch
}
