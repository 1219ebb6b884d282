package engine

import (
	"context"
	"strconv"
	"strings"
	"time"

	"breachsim/internal/domain"
	"breachsim/internal/logging"
	"breachsim/internal/risk"
)

// Interpreter walks a scenario as a state machine. States are step IDs;
// transitions depend on each step's random outcome.
type Interpreter struct {
	recorder  Recorder
	pacing    bool
	tickDelay *time.Duration
}

// Option configures an Interpreter
type Option func(*Interpreter)

// WithRecorder reports step and run observations to r
func WithRecorder(r Recorder) Option {
	return func(in *Interpreter) {
		if r != nil {
			in.recorder = r
		}
	}
}

// WithoutPacing skips the per-tick delay. Outcomes are unaffected.
func WithoutPacing() Option {
	return func(in *Interpreter) {
		in.pacing = false
	}
}

// WithTickDelay overrides the scenario's tick delay. Negative values mean no delay.
func WithTickDelay(d time.Duration) Option {
	return func(in *Interpreter) {
		if d < 0 {
			d = 0
		}
		in.tickDelay = &d
	}
}

// NewInterpreter creates an interpreter that paces runs by their tick delay
func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{
		recorder: nopRecorder{},
		pacing:   true,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run executes a scenario with a default interpreter
func Run(ctx context.Context, st *State, scenario domain.Scenario) domain.Result {
	return NewInterpreter().Run(ctx, st, scenario)
}

// Run executes the scenario against st and returns the outcome label with
// the full trace. Anomalies never surface as errors: they end the run with a
// label (no_steps, unknown_action, max_steps) and a diagnostic log line.
// Cancelling ctx only cuts pacing delays short.
func (in *Interpreter) Run(ctx context.Context, st *State, scenario domain.Scenario) domain.Result {
	start := time.Now()
	result := in.run(ctx, st, scenario)
	in.recorder.RecordRun(result.Result, st.Tick(), time.Since(start))

	logging.LogDebug("Scenario run finished", map[string]interface{}{
		"scenario": scenario.Name,
		"result":   result.Result,
		"ticks":    st.Tick(),
		"events":   len(result.Events),
	})
	return result
}

func (in *Interpreter) run(ctx context.Context, st *State, scenario domain.Scenario) domain.Result {
	if len(scenario.Steps) == 0 {
		st.Log("❌ No steps found in scenario")
		return st.result(domain.ResultNoSteps)
	}

	steps := scenario.StepIndex()
	current := scenario.Steps[0].ID
	timeline := scenario.Timeline.Resolve()
	if in.tickDelay != nil {
		timeline.TickDelay = *in.tickDelay
	}

	st.Log("🚀 Running scenario: %s", scenario.Name)
	st.Log("📊 Timeline: max_steps=%d, tick_delay=%ss", timeline.MaxSteps, formatFloat(timeline.TickDelay.Seconds()))
	st.Log("🎯 Starting from step: %s", current)

	for i := 0; i < timeline.MaxSteps; i++ {
		step, ok := steps[current]
		if !ok {
			// Shares the max_steps return below.
			st.Log("❌ Step not found: %s", current)
			break
		}

		st.advance()
		st.Log("⚡ Executing step %s: %s", step.ID, actionName(step.Action))
		in.pace(ctx, timeline.TickDelay)

		var next domain.Branch
		switch action := normalize(step.Action).(type) {
		case domain.Exploit:
			next = in.exploit(st, action)
		case domain.LateralMove:
			next = in.moveLateral(st, action)
		case domain.Exfiltrate:
			next = in.exfiltrate(st, action)
		default:
			st.Log("⚠️  Unknown action: %s", actionName(step.Action))
			in.recorder.RecordStep(actionName(step.Action), OutcomeUnknown, 0)
			return st.result(domain.ResultUnknownAction)
		}

		switch next.Kind {
		case domain.BranchGoto:
			current = next.Label
			continue
		case domain.BranchEnd:
			st.Log("🏁 END: %s", strings.ToUpper(next.Label))
			return st.result(next.Label)
		}

		st.Log("❌ No valid transition found, ending scenario")
		break
	}

	st.Log("⏰ Maximum steps (%d) reached", timeline.MaxSteps)
	return st.result(domain.ResultMaxSteps)
}

func (in *Interpreter) exploit(st *State, a domain.Exploit) domain.Branch {
	p := st.model.SuccessProbability(a.Technique, a.BaseSuccess, risk.WithTarget(a.Target))
	success := st.draw() < p

	st.Log("🎯 Exploit %s via %s: p=%.2f → %s", a.Target, a.Technique, p, marker(success))
	in.recorder.RecordStep(a.Name(), outcome(success), p)

	if success {
		return a.OnSuccess
	}
	return a.OnFail
}

func (in *Interpreter) moveLateral(st *State, a domain.LateralMove) domain.Branch {
	p := st.model.SuccessProbability(a.Technique, a.BaseSuccess, risk.WithPath(a.From, a.To))
	success := st.draw() < p

	st.Log("➡️  Lateral %s→%s via %s: p=%.2f → %s", a.From, a.To, a.Technique, p, marker(success))
	in.recorder.RecordStep(a.Name(), outcome(success), p)

	if success {
		return a.OnSuccess
	}
	return a.OnFail
}

// exfiltrate only honours an end branch on detection; a goto there is
// treated as no transition.
func (in *Interpreter) exfiltrate(st *State, a domain.Exfiltrate) domain.Branch {
	detected := st.draw() < a.DetectProb
	volume := formatFloat(a.DataVolume)

	if detected {
		st.recordEvent(domain.EventExfilAlert)
		in.recorder.RecordEvent(domain.EventExfilAlert)
		in.recorder.RecordStep(a.Name(), OutcomeDetected, 1-a.DetectProb)
		st.Log("🚨 Exfiltration detected! (%s MB)", volume)

		if a.OnDetect.Kind == domain.BranchEnd {
			return a.OnDetect
		}
		return domain.Branch{}
	}

	st.Log("💾 Exfiltrating %s MB... undetected", volume)
	in.recorder.RecordStep(a.Name(), OutcomeUndetected, 1-a.DetectProb)
	return a.OnSuccess
}

func (in *Interpreter) pace(ctx context.Context, d time.Duration) {
	if !in.pacing || d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// normalize lets callers hand in pointers to the action structs. Nil
// pointers become a nil Action.
func normalize(a domain.Action) domain.Action {
	switch p := a.(type) {
	case *domain.Exploit:
		if p == nil {
			return nil
		}
		return *p
	case *domain.LateralMove:
		if p == nil {
			return nil
		}
		return *p
	case *domain.Exfiltrate:
		if p == nil {
			return nil
		}
		return *p
	case *domain.UnknownAction:
		if p == nil {
			return nil
		}
		return *p
	}
	return a
}

func actionName(a domain.Action) string {
	a = normalize(a)
	if a == nil {
		return "<none>"
	}
	return a.Name()
}

func marker(success bool) string {
	if success {
		return "✅"
	}
	return "❌"
}

func outcome(success bool) string {
	if success {
		return OutcomeSuccess
	}
	return OutcomeFailure
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
