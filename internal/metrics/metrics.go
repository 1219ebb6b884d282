package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"breachsim/internal/engine"
)

// RecordStep records one executed step. Probability is skipped for
// steps that never computed one.
func (r *Registry) RecordStep(action, outcome string, probability float64) {
	r.StepsTotal.WithLabelValues(action, outcome).Inc()
	if outcome == engine.OutcomeUnknown {
		return
	}
	r.StepSuccessProbability.WithLabelValues(action).Observe(probability)
}

// RecordEvent records a security event tag
func (r *Registry) RecordEvent(tag string) {
	r.EventsTotal.WithLabelValues(tag).Inc()
}

// RecordRun records a finished run with its result label
func (r *Registry) RecordRun(result string, ticks int, duration time.Duration) {
	r.RunsTotal.WithLabelValues(result).Inc()
	r.RunTicks.Observe(float64(ticks))
	r.RunDurationSeconds.Observe(duration.Seconds())
}

// WriteTextfile writes every metric in the text exposition format, for
// node_exporter's textfile collector
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
