// Package risk turns control effectiveness into blocking strength and attack
// success probabilities. Everything here is a pure function of the topology.
package risk

import (
	"math"

	"breachsim/internal/domain"
)

// Model evaluates controls against a topology snapshot
type Model struct {
	topology domain.Topology
}

// NewModel creates a model over the given topology
func NewModel(topology domain.Topology) Model {
	return Model{topology: topology}
}

// CombinedEffectiveness returns how likely the controls on a node are to block
// an attack of the given kind. Controls are independent, so the node lets the
// attack through only if every control misses: 1 - prod(1 - eff).
// Missing nodes, nodes without controls, unknown controls and unknown kinds
// all contribute nothing.
func (m Model) CombinedEffectiveness(nodeID, kind string) float64 {
	node, ok := m.topology.Node(nodeID)
	if !ok || len(node.Controls) == 0 {
		return 0.0
	}

	miss := 1.0
	for _, controlID := range node.Controls {
		control, ok := m.topology.Control(controlID)
		if !ok {
			continue
		}
		miss *= 1.0 - clamp01(control.Effectiveness[kind])
	}
	return 1.0 - miss
}

func clamp01(v float64) float64 {
	return clamp(v, 0.0, 1.0)
}

// clamp maps NaN to lo
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
