package outputter

import (
	"fmt"
	"strings"
	"time"

	"breachsim/internal/domain"
)

// FormatScenario lists a scenario's steps with their parameters and branches
func FormatScenario(s domain.Scenario) string {
	var sb strings.Builder

	timeline := s.Timeline.Resolve()
	sb.WriteString(fmt.Sprintf("📜 %s  (%d steps, max_steps=%d, tick_delay=%s)\n",
		s.Name, len(s.Steps), timeline.MaxSteps, FormatDuration(timeline.TickDelay)))

	for i, step := range s.Steps {
		sb.WriteString(fmt.Sprintf("   %2d. %s %-16s %s\n", i+1, GetActionIcon(step.Action), step.ID, FormatAction(step.Action)))
	}
	return sb.String()
}

// FormatAction renders one action's parameters and branches on a line
func FormatAction(a domain.Action) string {
	switch a := a.(type) {
	case domain.Exploit:
		return fmt.Sprintf("exploit %s via %s (base %.2f)  ✅ %s  ❌ %s",
			a.Target, a.Technique, a.BaseSuccess, FormatBranch(a.OnSuccess), FormatBranch(a.OnFail))
	case domain.LateralMove:
		return fmt.Sprintf("move %s → %s via %s (base %.2f)  ✅ %s  ❌ %s",
			a.From, a.To, a.Technique, a.BaseSuccess, FormatBranch(a.OnSuccess), FormatBranch(a.OnFail))
	case domain.Exfiltrate:
		return fmt.Sprintf("exfiltrate %g MB (detect %.2f)  🚨 %s  ✅ %s",
			a.DataVolume, a.DetectProb, FormatBranch(a.OnDetect), FormatBranch(a.OnSuccess))
	case domain.UnknownAction:
		return fmt.Sprintf("unknown action %q", a.Keyword)
	case nil:
		return "no action"
	default:
		return a.Name()
	}
}

// FormatBranch renders a branch as "→ step", "END label" or "-"
func FormatBranch(b domain.Branch) string {
	switch b.Kind {
	case domain.BranchGoto:
		return "→ " + b.Label
	case domain.BranchEnd:
		return "END " + b.Label
	default:
		return "-"
	}
}

// GetActionIcon picks an icon for an action
func GetActionIcon(a domain.Action) string {
	switch a.(type) {
	case domain.Exploit:
		return "🎯"
	case domain.LateralMove:
		return "➡️"
	case domain.Exfiltrate:
		return "💾"
	default:
		return "❓"
	}
}

// FormatDuration renders a duration for humans
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
}
