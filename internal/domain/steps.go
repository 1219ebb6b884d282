package domain

import "time"

// BranchKind tags what a Branch does once selected
type BranchKind int

const (
	// BranchNone marks an absent branch. Selecting it ends the run early.
	BranchNone BranchKind = iota
	// BranchGoto continues the run at the step named by Label
	BranchGoto
	// BranchEnd terminates the run with Label as its result
	BranchEnd
)

// String returns the keyword used for the branch kind in scenario files
func (k BranchKind) String() string {
	switch k {
	case BranchGoto:
		return "goto"
	case BranchEnd:
		return "end"
	default:
		return "none"
	}
}

// Branch is the outcome edge of a step: either continue at a step or
// terminate with a label. The zero value is an absent branch.
type Branch struct {
	Kind  BranchKind `json:"kind"`
	Label string     `json:"label,omitempty"`
}

// Goto returns a branch that continues at the given step ID
func Goto(stepID string) Branch {
	return Branch{Kind: BranchGoto, Label: stepID}
}

// End returns a branch that terminates the run with the given label
func End(label string) Branch {
	return Branch{Kind: BranchEnd, Label: label}
}

// IsZero reports whether the branch is absent
func (b Branch) IsZero() bool {
	return b.Kind == BranchNone
}

// Action is the closed set of things a step can do. The concrete types are
// Exploit, LateralMove, Exfiltrate and UnknownAction.
type Action interface {
	// Name returns the action keyword as written in the scenario
	Name() string
	isAction()
}

// Exploit attacks a single target node with a technique
type Exploit struct {
	Target      string  `json:"target"`
	Technique   string  `json:"type"`
	BaseSuccess float64 `json:"base_success"`
	OnSuccess   Branch  `json:"on_success"`
	OnFail      Branch  `json:"on_fail"`
}

// LateralMove pivots from one node to another. Controls on both ends can block it.
type LateralMove struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	Technique   string  `json:"type"`
	BaseSuccess float64 `json:"base_success"`
	OnSuccess   Branch  `json:"on_success"`
	OnFail      Branch  `json:"on_fail"`
}

// Exfiltrate moves data out. DataVolume is in MB and only reported.
type Exfiltrate struct {
	DetectProb float64 `json:"detect_prob"`
	DataVolume float64 `json:"data_volume"`
	OnDetect   Branch  `json:"on_detect"`
	OnSuccess  Branch  `json:"on_success"`
}

// UnknownAction carries an action keyword the engine does not implement
type UnknownAction struct {
	Keyword string `json:"keyword"`
}

func (Exploit) Name() string         { return string(ActionExploit) }
func (LateralMove) Name() string     { return string(ActionMoveLateral) }
func (Exfiltrate) Name() string      { return string(ActionExfiltrate) }
func (a UnknownAction) Name() string { return a.Keyword }

func (Exploit) isAction()       {}
func (LateralMove) isAction()   {}
func (Exfiltrate) isAction()    {}
func (UnknownAction) isAction() {}

// Step is one unit of scenario execution
type Step struct {
	ID     string `json:"id"`
	Action Action `json:"action"`
}

const (
	DefaultMaxSteps  = 20
	DefaultTickDelay = 500 * time.Millisecond
)

// Timeline bounds and paces a run
type Timeline struct {
	MaxSteps  int           `json:"max_steps"`
	TickDelay time.Duration `json:"tick_delay"`
}

// DefaultTimeline returns the timeline used when a scenario does not set one
func DefaultTimeline() Timeline {
	return Timeline{MaxSteps: DefaultMaxSteps, TickDelay: DefaultTickDelay}
}

// Resolve fills in the default step budget for a non-positive MaxSteps and
// clamps a negative delay to zero. A zero TickDelay is kept as zero, so a
// Scenario built in code runs unpaced; only the YAML loader starts from
// DefaultTimeline and its 500ms delay.
func (t Timeline) Resolve() Timeline {
	if t.MaxSteps <= 0 {
		t.MaxSteps = DefaultMaxSteps
	}
	if t.TickDelay < 0 {
		t.TickDelay = 0
	}
	return t
}

// Scenario is an ordered list of steps; execution starts at the first one
type Scenario struct {
	Name     string   `json:"name"`
	Steps    []Step   `json:"steps"`
	Timeline Timeline `json:"timeline"`
}

// StepIndex maps step IDs to steps. The last occurrence of a duplicated ID wins.
func (s Scenario) StepIndex() map[string]Step {
	index := make(map[string]Step, len(s.Steps))
	for _, step := range s.Steps {
		index[step.ID] = step
	}
	return index
}
