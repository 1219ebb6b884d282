// Package batch runs one scenario many times with different seeds and
// summarizes the outcome distribution.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"breachsim/internal/domain"
	"breachsim/internal/engine"
	"breachsim/internal/logging"
)

// ErrNoRuns is returned when a batch is asked for fewer than one run
var ErrNoRuns = errors.New("batch needs at least one run")

// ErrRunPanicked is returned when any run in a batch panicked
var ErrRunPanicked = errors.New("batch run panicked")

// Run is the outcome of one run inside a batch
type Run struct {
	Index  int           `json:"index"`
	Seed   int64         `json:"seed"`
	Ticks  int           `json:"ticks"`
	Result domain.Result `json:"result"`
}

// Batch holds every run in index order plus their summary
type Batch struct {
	Summary domain.BatchSummary `json:"summary"`
	Runs    []Run               `json:"runs"`
}

// Runner executes independent runs of a scenario on a pool of goroutines
type Runner struct {
	workers  int
	baseSeed int64
	recorder engine.Recorder
}

// Option configures a Runner
type Option func(*Runner)

// WithWorkers sets the pool size. Non-positive values use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithBaseSeed sets the seed of run 0; run i uses baseSeed+i
func WithBaseSeed(seed int64) Option {
	return func(r *Runner) {
		r.baseSeed = seed
	}
}

// WithRecorder reports every run to rec. rec must be safe for concurrent use.
func WithRecorder(rec engine.Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// NewRunner creates a batch runner
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		workers:  runtime.GOMAXPROCS(0),
		baseSeed: engine.DefaultSeed,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Workers returns the pool size used for each batch
func (r *Runner) Workers() int {
	return r.workers
}

// Run executes runs independent runs of scenario against topology. Each run
// gets its own State, seeded baseSeed+index, with pacing and live output
// disabled. Results are deterministic for a given base seed regardless of
// the worker count. Cancelling ctx stops scheduling new runs and returns
// ctx.Err().
func (r *Runner) Run(ctx context.Context, topology domain.Topology, scenario domain.Scenario, runs int) (*Batch, error) {
	if runs <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNoRuns, runs)
	}

	start := time.Now()
	logging.LogOperationStart("batch", map[string]interface{}{
		"scenario": scenario.Name,
		"runs":     runs,
		"workers":  r.workers,
	})

	interpreterOpts := []engine.Option{engine.WithoutPacing()}
	if r.recorder != nil {
		interpreterOpts = append(interpreterOpts, engine.WithRecorder(r.recorder))
	}
	interpreter := engine.NewInterpreter(interpreterOpts...)

	results := make([]Run, runs)
	pool := startRunPool(ctx, r.workers, func(i int) {
		seed := r.baseSeed + int64(i)
		st := engine.NewState(topology, engine.WithSeed(seed), engine.WithOutput(io.Discard))
		result := interpreter.Run(ctx, st, scenario)
		results[i] = Run{Index: i, Seed: seed, Ticks: st.Tick(), Result: result}
	})
	for i := 0; i < runs; i++ {
		if !pool.schedule(i) {
			break
		}
	}
	panics := pool.drain()

	if err := ctx.Err(); err != nil {
		logging.LogOperationEnd("batch", time.Since(start), false, 0, err)
		return nil, err
	}
	if panics > 0 {
		err := fmt.Errorf("%w: %d of %d runs", ErrRunPanicked, panics, runs)
		logging.LogOperationEnd("batch", time.Since(start), false, runs-int(panics), err)
		return nil, err
	}

	batch := &Batch{
		Summary: Summarize(scenario.Name, r.baseSeed, results),
		Runs:    results,
	}
	logging.LogOperationEnd("batch", time.Since(start), true, runs, nil)
	return batch, nil
}

// Summarize aggregates runs into outcome counts and rates
func Summarize(scenario string, baseSeed int64, runs []Run) domain.BatchSummary {
	summary := domain.BatchSummary{
		Scenario:     scenario,
		Runs:         len(runs),
		BaseSeed:     baseSeed,
		Outcomes:     make(map[string]int),
		OutcomeRates: make(map[string]float64),
	}
	if len(runs) == 0 {
		return summary
	}

	totalTicks := 0
	for _, run := range runs {
		summary.Outcomes[run.Result.Result]++
		summary.TotalEvents += len(run.Result.Events)
		if len(run.Result.Events) > 0 {
			summary.AlertedRuns++
		}
		totalTicks += run.Ticks
		if run.Ticks > summary.MaxTicks {
			summary.MaxTicks = run.Ticks
		}
	}

	for label, count := range summary.Outcomes {
		summary.OutcomeRates[label] = float64(count) / float64(len(runs))
	}
	summary.MeanTicks = float64(totalTicks) / float64(len(runs))
	return summary
}
