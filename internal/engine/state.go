// Package engine runs attack scenarios step by step against a topology.
package engine

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"slices"

	"breachsim/internal/domain"
	"breachsim/internal/risk"
)

// DefaultSeed seeds every State unless WithSeed says otherwise, so two runs
// over the same inputs produce the same trace.
const DefaultSeed int64 = 1337

// State is the mutable run-time state of one scenario run. A State must not
// be shared between runs or goroutines.
type State struct {
	topology domain.Topology
	model    risk.Model
	events   []string
	logs     []string
	tick     int
	rng      *rand.Rand
	out      io.Writer
}

// StateOption configures a State
type StateOption func(*State)

// WithSeed seeds the state's random source
func WithSeed(seed int64) StateOption {
	return func(s *State) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithOutput sets the live stream every log line is mirrored to.
// Pass io.Discard to silence it.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		s.out = w
	}
}

// NewState creates the state for one run over the given topology
func NewState(topology domain.Topology, opts ...StateOption) *State {
	s := &State{
		topology: topology,
		model:    risk.NewModel(topology),
		events:   []string{},
		logs:     []string{},
		rng:      rand.New(rand.NewSource(DefaultSeed)),
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.out == nil {
		s.out = io.Discard
	}
	return s
}

// Log appends a trace line prefixed with the current tick and mirrors it to
// the live output. Write errors on the live output are ignored.
func (s *State) Log(format string, args ...any) {
	line := fmt.Sprintf("[t=%02d] %s", s.tick, fmt.Sprintf(format, args...))
	s.logs = append(s.logs, line)
	fmt.Fprintln(s.out, line)
}

// Reseed restarts the random source from the given seed
func (s *State) Reseed(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
}

// Topology returns the topology the run is evaluated against
func (s *State) Topology() domain.Topology {
	return s.topology
}

// Tick returns the number of steps executed so far
func (s *State) Tick() int {
	return s.tick
}

// Logs returns a copy of the trace
func (s *State) Logs() []string {
	return slices.Clone(s.logs)
}

// Events returns a copy of the recorded event tags
func (s *State) Events() []string {
	return slices.Clone(s.events)
}

func (s *State) advance() {
	s.tick++
}

func (s *State) draw() float64 {
	return s.rng.Float64()
}

func (s *State) recordEvent(tag string) {
	s.events = append(s.events, tag)
}

func (s *State) result(label string) domain.Result {
	return domain.Result{
		Result: label,
		Logs:   s.Logs(),
		Events: s.Events(),
	}
}
