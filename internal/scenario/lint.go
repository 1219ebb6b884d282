package scenario

import (
	"fmt"

	"breachsim/internal/domain"
)

// Lint reports constructs that load fine but are probably mistakes: gotos
// to missing steps, action keywords the engine does not know, endpoints
// missing from the topology and detection gotos that will be ignored.
// A nil topology skips the endpoint checks.
func Lint(s domain.Scenario, topology *domain.Topology) []string {
	var warnings []string
	if len(s.Steps) == 0 {
		return append(warnings, "scenario has no steps; runs end with no_steps")
	}

	steps := s.StepIndex()
	checkGoto := func(stepID, name string, b domain.Branch) {
		if b.Kind != domain.BranchGoto {
			return
		}
		if _, ok := steps[b.Label]; !ok {
			warnings = append(warnings, fmt.Sprintf("step %s: %s goes to unknown step %q", stepID, name, b.Label))
		}
	}
	checkNode := func(stepID, role, nodeID string) {
		if topology == nil {
			return
		}
		if _, ok := topology.Node(nodeID); !ok {
			warnings = append(warnings, fmt.Sprintf("step %s: %s %q is not a topology node", stepID, role, nodeID))
		}
	}

	for _, step := range s.Steps {
		switch a := step.Action.(type) {
		case domain.Exploit:
			checkNode(step.ID, "target", a.Target)
			checkGoto(step.ID, "on_success", a.OnSuccess)
			checkGoto(step.ID, "on_fail", a.OnFail)
		case domain.LateralMove:
			checkNode(step.ID, "from", a.From)
			checkNode(step.ID, "to", a.To)
			checkGoto(step.ID, "on_success", a.OnSuccess)
			checkGoto(step.ID, "on_fail", a.OnFail)
		case domain.Exfiltrate:
			if a.OnDetect.Kind == domain.BranchGoto {
				warnings = append(warnings, fmt.Sprintf("step %s: on_detect goto %q is ignored; detection only ends a run", step.ID, a.OnDetect.Label))
			}
			checkGoto(step.ID, "on_success", a.OnSuccess)
		case domain.UnknownAction:
			warnings = append(warnings, fmt.Sprintf("step %s: unknown action %q ends the run with unknown_action", step.ID, a.Keyword))
		}
	}

	return warnings
}
