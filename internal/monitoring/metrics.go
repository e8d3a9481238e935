package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Hardening metrics
	HardenRuns         *prometheus.CounterVec
	HardenDuration     prometheus.Histogram
	PassNodes          *prometheus.CounterVec
	PropertiesRepaired prometheus.Counter
	RepairFailures     prometheus.Counter

	// Sandbox metrics
	Executions        *prometheus.CounterVec
	ExecutionDuration prometheus.Histogram
	PoolAvailable     prometheus.Gauge

	// Snapshot for reports - track current values
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values for reports
type Snapshot struct {
	HardenRuns     int64
	HardenFailures int64
	NodesFrozen    int64
	Executions     int64
	ExecutionFails int64
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// registers with the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HardenRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harden_runs_total",
				Help: "Total number of intrinsics hardening runs",
			},
			[]string{"status"},
		),
		HardenDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "harden_run_duration_seconds",
				Help:    "Hardening run duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		PassNodes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harden_pass_nodes_total",
				Help: "Total number of objects visited per hardening pass",
			},
			[]string{"pass"},
		),
		PropertiesRepaired: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "harden_properties_repaired_total",
				Help: "Total number of dangerous accessors converted to data properties",
			},
		),
		RepairFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "harden_repair_failures_total",
				Help: "Total number of dangerous accessors that could not be converted",
			},
		),

		Executions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sandbox_executions_total",
				Help: "Total number of sandboxed script executions",
			},
			[]string{"status"},
		),
		ExecutionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sandbox_execution_duration_seconds",
				Help:    "Sandboxed script execution duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		PoolAvailable: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sandbox_pool_available",
				Help: "Number of idle hardened runtimes in the pool",
			},
		),
	}
}

// RecordHardenRun records a completed hardening run
func (m *Metrics) RecordHardenRun(status string, duration time.Duration) {
	m.HardenRuns.WithLabelValues(status).Inc()
	m.HardenDuration.Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.HardenRuns++
	if status != "success" {
		m.snapshot.HardenFailures++
	}
	m.mu.Unlock()
}

// RecordPass records the objects visited by one hardening pass
func (m *Metrics) RecordPass(pass string, nodes int) {
	m.PassNodes.WithLabelValues(pass).Add(float64(nodes))

	if pass == "freeze" {
		m.mu.Lock()
		m.snapshot.NodesFrozen += int64(nodes)
		m.mu.Unlock()
	}
}

// RecordRepairs records the outcome of a repair pass
func (m *Metrics) RecordRepairs(repaired, failed int) {
	m.PropertiesRepaired.Add(float64(repaired))
	m.RepairFailures.Add(float64(failed))
}

// RecordExecution records a sandboxed script execution
func (m *Metrics) RecordExecution(status string, duration time.Duration) {
	m.Executions.WithLabelValues(status).Inc()
	m.ExecutionDuration.Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.Executions++
	if status != "success" {
		m.snapshot.ExecutionFails++
	}
	m.mu.Unlock()
}

// SetPoolAvailable sets the number of idle runtimes
func (m *Metrics) SetPoolAvailable(count int) {
	m.PoolAvailable.Set(float64(count))
}

// Snapshot returns a copy of the tracked values
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
