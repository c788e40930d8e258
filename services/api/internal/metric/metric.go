// Package metric exposes the Prometheus metrics of the API.
package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cimillas/pro-portal/services/api/internal/wizard"
)

const namespace = "pro_portal"

// Metrics implements wizard.Observer and adapter.Observer.
type Metrics struct {
	StepSubmits     *prometheus.CounterVec
	WizardsFinished *prometheus.CounterVec
	AdapterCalls    *prometheus.CounterVec
	AdapterDuration *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		StepSubmits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "wizard",
				Name:      "step_submits_total",
				Help:      "Step submits by step and outcome",
			},
			[]string{"step", "outcome"},
		),

		WizardsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "wizard",
				Name:      "finished_total",
				Help:      "Wizards closed, by final status",
			},
			[]string{"status"},
		),

		AdapterCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "adapter",
				Name:      "calls_total",
				Help:      "Backend adapter calls by operation and result",
			},
			[]string{"operation", "ok"},
		),

		AdapterDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "adapter",
				Name:      "duration_seconds",
				Help:      "Backend adapter call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by method and status",
			},
			[]string{"method", "status"},
		),
	}
}

// Register adds every metric to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.StepSubmits,
		m.WizardsFinished,
		m.AdapterCalls,
		m.AdapterDuration,
		m.HTTPRequests,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) StepSubmitted(step wizard.StepID, outcome wizard.Outcome) {
	m.StepSubmits.WithLabelValues(string(step), string(outcome)).Inc()
}

func (m *Metrics) WizardFinished(status wizard.Status) {
	m.WizardsFinished.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) AdapterCalled(operation string, ok bool, elapsed time.Duration) {
	m.AdapterCalls.WithLabelValues(operation, strconv.FormatBool(ok)).Inc()
	m.AdapterDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) RequestServed(method string, status int) {
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
