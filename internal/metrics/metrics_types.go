// Package metrics exposes simulation counters and histograms on a private
// Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics for the simulator
type Registry struct {
	// Run Metrics
	RunsTotal          *prometheus.CounterVec
	RunTicks           prometheus.Histogram
	RunDurationSeconds prometheus.Histogram

	// Step Metrics
	StepsTotal             *prometheus.CounterVec
	StepSuccessProbability *prometheus.HistogramVec

	// Event Metrics
	EventsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initRunMetrics()
	r.initStepMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

func (r *Registry) initRunMetrics() {
	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "breachsim_runs_total",
			Help: "Total number of scenario runs by result label",
		},
		[]string{"result"},
	)

	r.RunTicks = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "breachsim_run_ticks",
			Help:    "Number of steps executed per run",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 20, 50, 100},
		},
	)

	r.RunDurationSeconds = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "breachsim_run_duration_seconds",
			Help:    "Wall-clock duration of a run in seconds, pacing included",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30},
		},
	)
}

func (r *Registry) initStepMetrics() {
	r.StepsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "breachsim_steps_total",
			Help: "Total number of executed steps by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	r.StepSuccessProbability = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "breachsim_step_success_probability",
			Help:    "Success probability computed for each executed step",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
		[]string{"action"},
	)

	r.EventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "breachsim_events_total",
			Help: "Total number of security events raised during runs",
		},
		[]string{"tag"},
	)
}
