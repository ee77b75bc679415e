package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the memory engine. All methods
// are nil-safe so wiring metrics stays optional in tests.
type Metrics struct {
	// Writes by scope
	Writes *prometheus.CounterVec

	// Read attempts by operation (read, continue) and outcome (ok, denied)
	Reads *prometheus.CounterVec

	// Grants revoked, counting only actual transitions
	Revocations prometheus.Counter

	// Merge latency per scope
	MergeLatency *prometheus.HistogramVec
}

// New creates a Metrics instance with all engine metrics registered.
func New() *Metrics {
	return &Metrics{
		Writes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "memscope_memory_writes_total",
			Help: "Total memory writes by scope",
		}, []string{"scope"}),

		Reads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "memscope_memory_reads_total",
			Help: "Total read attempts by operation and outcome",
		}, []string{"operation", "outcome"}),

		Revocations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "memscope_grant_revocations_total",
			Help: "Total grant revocations that transitioned a grant",
		}),

		MergeLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "memscope_merge_duration_seconds",
			Help:    "Duration of deterministic merges by scope",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}, []string{"scope"}),
	}
}

// IncrementWrite records a persisted memory write.
func (m *Metrics) IncrementWrite(scope string) {
	if m != nil {
		m.Writes.WithLabelValues(scope).Inc()
	}
}

// IncrementRead records a read or continue attempt.
func (m *Metrics) IncrementRead(operation, outcome string) {
	if m != nil {
		m.Reads.WithLabelValues(operation, outcome).Inc()
	}
}

// IncrementRevocation records a grant transition to revoked.
func (m *Metrics) IncrementRevocation() {
	if m != nil {
		m.Revocations.Inc()
	}
}

// ObserveMergeLatency records the duration of one merge.
func (m *Metrics) ObserveMergeLatency(scope string, d time.Duration) {
	if m != nil {
		m.MergeLatency.WithLabelValues(scope).Observe(d.Seconds())
	}
}
