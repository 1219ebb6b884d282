package engine

import "time"

// Step outcomes reported to a Recorder
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeDetected   = "detected"
	OutcomeUndetected = "undetected"
	OutcomeUnknown    = "unknown"
)

// Recorder observes runs as they execute. internal/metrics.Registry is the
// production implementation.
type Recorder interface {
	RecordStep(action, outcome string, probability float64)
	RecordEvent(tag string)
	RecordRun(result string, ticks int, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordStep(string, string, float64)   {}
func (nopRecorder) RecordEvent(string)                   {}
func (nopRecorder) RecordRun(string, int, time.Duration) {}
