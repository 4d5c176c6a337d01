// Package metrics instruments ledger operations with Prometheus
// counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts ledger operations and their failures, labeled by
// operation name. A nil *Metrics is valid and records nothing, so the
// ledger can run uninstrumented in tests.
type Metrics struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
}

// New registers the ledger counters with reg and returns the handle.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "splitpot_ledger_operations_total",
			Help: "Total ledger operations attempted, by operation.",
		}, []string{"op"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "splitpot_ledger_operation_failures_total",
			Help: "Ledger operations rejected or failed, by operation.",
		}, []string{"op"}),
	}
}

// Observe records one attempt of op, and a failure if err is non-nil.
func (m *Metrics) Observe(op string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op).Inc()
	if err != nil {
		m.failures.WithLabelValues(op).Inc()
	}
}
