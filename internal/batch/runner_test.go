package batch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breachsim/internal/domain"
)

// ============================================================================
// Fixtures
// ============================================================================

func testTopology() domain.Topology {
	return domain.NewTopology(
		[]domain.Node{
			{ID: "web", Controls: []string{"waf"}},
			{ID: "db"},
		},
		nil,
		[]domain.Control{
			{ID: "waf", Effectiveness: map[string]float64{"sqli": 0.5}},
		},
	)
}

// coinFlip ends "breached" or "contained" with p=0.4 each run and raises an
// alert half the time on the breached branch.
func coinFlip() domain.Scenario {
	return domain.Scenario{
		Name: "coin-flip",
		Steps: []domain.Step{
			{ID: "hit", Action: domain.Exploit{
				Target: "web", Technique: "sqli", BaseSuccess: 0.8,
				OnSuccess: domain.Goto("steal"), OnFail: domain.End("contained"),
			}},
			{ID: "steal", Action: domain.Exfiltrate{
				DetectProb: 0.5,
				OnDetect:   domain.End("detected"), OnSuccess: domain.End("breached"),
			}},
		},
		Timeline: domain.Timeline{MaxSteps: 5, TickDelay: time.Hour},
	}
}

type countingRecorder struct {
	mu    sync.Mutex
	runs  int
	steps int
}

func (c *countingRecorder) RecordStep(string, string, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps++
}

func (c *countingRecorder) RecordEvent(string) {}

func (c *countingRecorder) RecordRun(string, int, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs++
}

// ============================================================================
// Runner Tests
// ============================================================================

func TestRunnerOutcomeCountsSumToRuns(t *testing.T) {
	batch, err := NewRunner(WithWorkers(4)).Run(context.Background(), testTopology(), coinFlip(), 200)
	require.NoError(t, err)

	total := 0
	for _, n := range batch.Summary.Outcomes {
		total += n
	}
	assert.Equal(t, 200, total)
	assert.Equal(t, 200, batch.Summary.Runs)
	assert.Len(t, batch.Runs, 200)

	rates := 0.0
	for _, r := range batch.Summary.OutcomeRates {
		rates += r
	}
	assert.InDelta(t, 1.0, rates, 1e-9)
	assert.Equal(t, batch.Summary.Outcomes["detected"], batch.Summary.AlertedRuns)
	assert.LessOrEqual(t, batch.Summary.MaxTicks, 2)
}

func TestRunnerDeterministicAcrossWorkerCounts(t *testing.T) {
	one, err := NewRunner(WithWorkers(1), WithBaseSeed(42)).Run(context.Background(), testTopology(), coinFlip(), 50)
	require.NoError(t, err)
	many, err := NewRunner(WithWorkers(8), WithBaseSeed(42)).Run(context.Background(), testTopology(), coinFlip(), 50)
	require.NoError(t, err)

	assert.Equal(t, one.Summary, many.Summary)
	for i := range one.Runs {
		assert.Equal(t, one.Runs[i].Result, many.Runs[i].Result, "run %d", i)
	}
}

func TestRunnerSeedsByIndex(t *testing.T) {
	batch, err := NewRunner(WithBaseSeed(100)).Run(context.Background(), testTopology(), coinFlip(), 3)
	require.NoError(t, err)

	for i, run := range batch.Runs {
		assert.Equal(t, i, run.Index)
		assert.Equal(t, int64(100+i), run.Seed)
	}
}

func TestRunnerIgnoresPacing(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := NewRunner().Run(context.Background(), testTopology(), coinFlip(), 10)
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("batch runs should not wait for the scenario tick delay")
	}
}

func TestRunnerReportsToRecorder(t *testing.T) {
	rec := &countingRecorder{}
	_, err := NewRunner(WithWorkers(3), WithRecorder(rec)).Run(context.Background(), testTopology(), coinFlip(), 25)
	require.NoError(t, err)

	assert.Equal(t, 25, rec.runs)
	assert.GreaterOrEqual(t, rec.steps, 25)
}

func TestRunnerRejectsNonPositiveRuns(t *testing.T) {
	for _, runs := range []int{0, -3} {
		_, err := NewRunner().Run(context.Background(), testTopology(), coinFlip(), runs)
		assert.ErrorIs(t, err, ErrNoRuns)
	}
}

func TestRunnerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := NewRunner().Run(ctx, testTopology(), coinFlip(), 10)
	assert.Nil(t, batch)
	assert.True(t, errors.Is(err, context.Canceled))
}

type panickingRecorder struct{ countingRecorder }

func (p *panickingRecorder) RecordRun(string, int, time.Duration) {
	panic("recorder failed")
}

func TestRunnerFailsWhenRunsPanic(t *testing.T) {
	batch, err := NewRunner(WithWorkers(2), WithRecorder(&panickingRecorder{})).Run(context.Background(), testTopology(), coinFlip(), 5)
	assert.Nil(t, batch)
	require.ErrorIs(t, err, ErrRunPanicked)
	assert.Contains(t, err.Error(), "5 of 5 runs")
}

func TestRunnerEmptyScenario(t *testing.T) {
	batch, err := NewRunner().Run(context.Background(), testTopology(), domain.Scenario{Name: "empty"}, 4)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{domain.ResultNoSteps: 4}, batch.Summary.Outcomes)
	assert.Equal(t, 0.0, batch.Summary.MeanTicks)
}

// ============================================================================
// Summarize Tests
// ============================================================================

func TestSummarize(t *testing.T) {
	runs := []Run{
		{Ticks: 2, Result: domain.Result{Result: "breached", Events: []string{}}},
		{Ticks: 4, Result: domain.Result{Result: "detected", Events: []string{domain.EventExfilAlert}}},
		{Ticks: 3, Result: domain.Result{Result: "detected", Events: []string{domain.EventExfilAlert, domain.EventExfilAlert}}},
		{Ticks: 1, Result: domain.Result{Result: "contained"}},
	}

	s := Summarize("demo", 7, runs)

	assert.Equal(t, "demo", s.Scenario)
	assert.Equal(t, int64(7), s.BaseSeed)
	assert.Equal(t, 4, s.Runs)
	assert.Equal(t, map[string]int{"breached": 1, "detected": 2, "contained": 1}, s.Outcomes)
	assert.InDelta(t, 0.5, s.OutcomeRates["detected"], 1e-9)
	assert.Equal(t, 2, s.AlertedRuns)
	assert.Equal(t, 3, s.TotalEvents)
	assert.InDelta(t, 2.5, s.MeanTicks, 1e-9)
	assert.Equal(t, 4, s.MaxTicks)
}

func TestSummarizeNoRuns(t *testing.T) {
	s := Summarize("empty", 1, nil)
	assert.Equal(t, 0, s.Runs)
	assert.Empty(t, s.Outcomes)
	assert.NotNil(t, s.OutcomeRates)
}
