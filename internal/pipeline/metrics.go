package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics counts operations and authentications for one process. It uses a
// private registry so tests and embedders never collide on the default one.
// A nil *Metrics records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	operations      *prometheus.CounterVec
	authentications *prometheus.CounterVec
	duration        *prometheus.HistogramVec
}

// NewMetrics creates and registers the akops collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "akops_operations_total",
				Help: "Total number of Akeyless operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		authentications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "akops_authentications_total",
				Help: "Total number of Akeyless authentications by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "akops_operation_duration_seconds",
				Help:    "Duration of Akeyless operations in seconds, including authentication",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 30},
			},
			[]string{"operation"},
		),
	}
	m.registry.MustRegister(m.operations, m.authentications, m.duration)
	return m
}

// Registry exposes the collectors, e.g. for a textfile export.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordAuthentication counts one authentication attempt.
func (m *Metrics) RecordAuthentication(err error) {
	if m == nil {
		return
	}
	m.authentications.WithLabelValues(outcome(err)).Inc()
}

// RecordOperation counts one record and observes its duration.
func (m *Metrics) RecordOperation(operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

// WriteTextfile writes the current values in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
