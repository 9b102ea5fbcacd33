package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters exposed on /metrics.
type Metrics struct {
	ClockIns    prometheus.Counter
	ClockOuts   prometheus.Counter
	PayrollRuns prometheus.Counter
}

// NewMetrics creates and registers all counters on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers the counters on reg. Tests pass a fresh
// registry so parallel handler fixtures do not collide.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ClockIns: factory.NewCounter(prometheus.CounterOpts{
			Name: "fleet_payroll_clock_ins_total",
			Help: "Total number of successful driver clock-ins",
		}),
		ClockOuts: factory.NewCounter(prometheus.CounterOpts{
			Name: "fleet_payroll_clock_outs_total",
			Help: "Total number of successful driver clock-outs",
		}),
		PayrollRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "fleet_payroll_computations_total",
			Help: "Total number of payroll computations served",
		}),
	}
}
