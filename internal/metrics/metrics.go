// Package metrics exposes Prometheus collectors for the simulator.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "terminalsim"

// Metrics holds the simulator's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	cycles        *prometheus.CounterVec
	cycleDuration *prometheus.HistogramVec
	ticks         prometheus.Counter
	fills         prometheus.Counter
	activated     prometheus.Counter
	skipped       prometheus.Counter
	riskEvicted   prometheus.Counter
	ordersEntered *prometheus.CounterVec
	streamClients prometheus.Gauge
	streamDropped prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed scheduler cycles by kind.",
		}, []string{"cycle"}),
		cycleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time spent inside a scheduler cycle.",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025},
		}, []string{"cycle"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Ticks generated.",
		}),
		fills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fills_total",
			Help:      "Fills emitted by the lifecycle engine.",
		}),
		activated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_activated_total",
			Help:      "Orders moved from PENDING to LIVE.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_skipped_total",
			Help:      "Order evaluations skipped for lack of a reference price.",
		}),
		riskEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_snapshots_evicted_total",
			Help:      "Risk snapshots dropped by the retention cap.",
		}),
		ordersEntered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_entered_total",
			Help:      "Orders accepted at entry by risk flag.",
		}, []string{"risk_flag"}),
		streamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Connected websocket subscribers.",
		}),
		streamDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_dropped_total",
			Help:      "Subscribers disconnected for falling behind.",
		}),
	}
	reg.MustRegister(
		m.cycles, m.cycleDuration, m.ticks, m.fills, m.activated, m.skipped,
		m.riskEvicted, m.ordersEntered, m.streamClients, m.streamDropped,
	)
	return m
}

// ObserveMarketCycle records a completed market cycle.
func (m *Metrics) ObserveMarketCycle(d time.Duration, ticks, _ int) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues("market").Inc()
	m.cycleDuration.WithLabelValues("market").Observe(d.Seconds())
	m.ticks.Add(float64(ticks))
}

// ObserveExecutionCycle records a completed execution cycle.
func (m *Metrics) ObserveExecutionCycle(d time.Duration, fills, activated, skipped int) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues("execution").Inc()
	m.cycleDuration.WithLabelValues("execution").Observe(d.Seconds())
	m.fills.Add(float64(fills))
	m.activated.Add(float64(activated))
	m.skipped.Add(float64(skipped))
}

// ObserveRiskEvicted records snapshots evicted by the retention cap.
func (m *Metrics) ObserveRiskEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.riskEvicted.Add(float64(n))
}

// OrderEntered records an order accepted at entry.
func (m *Metrics) OrderEntered(riskFlag string) {
	if m == nil {
		return
	}
	m.ordersEntered.WithLabelValues(riskFlag).Inc()
}

// StreamClients sets the subscriber gauge.
func (m *Metrics) StreamClients(n int) {
	if m == nil {
		return
	}
	m.streamClients.Set(float64(n))
}

// StreamDropped records a subscriber dropped for falling behind.
func (m *Metrics) StreamDropped() {
	if m == nil {
		return
	}
	m.streamDropped.Inc()
}
