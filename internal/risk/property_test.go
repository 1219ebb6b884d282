package risk

import (
	"fmt"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"breachsim/internal/domain"
)

// stackedTopology puts one control per effectiveness value on a single node
func stackedTopology(kind string, effs []float64) domain.Topology {
	controls := make([]domain.Control, 0, len(effs))
	ids := make([]string, 0, len(effs))
	for i, eff := range effs {
		id := fmt.Sprintf("c%d", i)
		ids = append(ids, id)
		controls = append(controls, domain.Control{ID: id, Effectiveness: map[string]float64{kind: eff}})
	}
	return domain.NewTopology([]domain.Node{{ID: "n", Controls: ids}}, nil, controls)
}

// TestEffectivenessProperties checks the algebra of combining independent controls
func TestEffectivenessProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	unit := gen.Float64Range(0, 1)

	properties.Property("single control equals its effectiveness", prop.ForAll(
		func(e float64) bool {
			model := NewModel(stackedTopology("k", []float64{e}))
			return math.Abs(model.CombinedEffectiveness("n", "k")-e) < epsilon
		},
		unit,
	))

	properties.Property("two controls combine as 1-(1-e1)(1-e2) and dominate both", prop.ForAll(
		func(e1, e2 float64) bool {
			model := NewModel(stackedTopology("k", []float64{e1, e2}))
			got := model.CombinedEffectiveness("n", "k")
			want := 1 - (1-e1)*(1-e2)
			return math.Abs(got-want) < epsilon && got >= math.Max(e1, e2)-epsilon
		},
		unit, unit,
	))

	properties.Property("adding a control never lowers effectiveness", prop.ForAll(
		func(effs []float64, extra float64) bool {
			before := NewModel(stackedTopology("k", effs)).CombinedEffectiveness("n", "k")
			after := NewModel(stackedTopology("k", append(append([]float64{}, effs...), extra))).CombinedEffectiveness("n", "k")
			return after >= before-epsilon && after <= 1.0
		},
		gen.SliceOf(unit), unit,
	))

	properties.Property("other kinds are never blocked", prop.ForAll(
		func(effs []float64) bool {
			return NewModel(stackedTopology("k", effs)).CombinedEffectiveness("n", "other") == 0.0
		},
		gen.SliceOf(unit),
	))

	properties.TestingRun(t)
}

// TestSuccessProbabilityBounded checks clamping for arbitrary inputs
func TestSuccessProbabilityBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("probability stays in [0,1]", prop.ForAll(
		func(baseP, context, eff float64) bool {
			model := NewModel(stackedTopology("k", []float64{eff}))
			p := model.SuccessProbability("k", baseP, WithTarget("n"), WithContext(context))
			pathP := model.SuccessProbability("k", baseP, WithPath("n", "missing"), WithContext(context))
			return p >= 0 && p <= 1 && pathP >= 0 && pathP <= 1
		},
		gen.Float64Range(-10, 10),
		gen.Float64Range(-10, 10),
		gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}
