package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsCycles(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveMarketCycle(time.Millisecond, 7, 2)
	m.ObserveMarketCycle(time.Millisecond, 7, 2)
	m.ObserveExecutionCycle(time.Millisecond, 3, 1, 2)
	m.ObserveRiskEvicted(5)
	m.ObserveRiskEvicted(0)
	m.OrderEntered("WARN")
	m.StreamClients(4)
	m.StreamDropped()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cycles.WithLabelValues("market")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues("execution")))
	assert.Equal(t, 14.0, testutil.ToFloat64(m.ticks))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.fills))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.skipped))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.riskEvicted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersEntered.WithLabelValues("WARN")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.streamClients))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.streamDropped))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveMarketCycle(time.Millisecond, 1, 1)
	m.ObserveExecutionCycle(time.Millisecond, 1, 1, 1)
	m.ObserveRiskEvicted(1)
	m.OrderEntered("OK")
	m.StreamClients(1)
	m.StreamDropped()
}
