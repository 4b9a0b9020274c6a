package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"simpleapp/itemsvc/pkg/config"
)

// OperationMetrics tracks what the instrumentation flags.
//
// Metrics:
//   - itemsvc_slow_operations_total: operations over their threshold by kind, name
//   - itemsvc_exceptions_total: logged exceptions by class
type OperationMetrics struct {
	slowTotal       *prometheus.CounterVec
	exceptionsTotal *prometheus.CounterVec
}

// NewOperationMetrics creates and registers operation metrics with the provided registry.
func NewOperationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *OperationMetrics {
	om := &OperationMetrics{
		slowTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "slow_operations_total",
				Help:      "Total number of operations that exceeded their latency threshold",
			},
			[]string{"kind", "name"},
		),

		exceptionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "exceptions_total",
				Help:      "Total number of logged exceptions",
			},
			[]string{"class"},
		),
	}

	registry.MustRegister(om.slowTotal, om.exceptionsTotal)

	return om
}

// RecordSlow counts one slow operation.
func (om *OperationMetrics) RecordSlow(kind, name string) {
	om.slowTotal.WithLabelValues(kind, name).Inc()
}

// RecordException counts one logged exception.
func (om *OperationMetrics) RecordException(class string) {
	om.exceptionsTotal.WithLabelValues(class).Inc()
}
