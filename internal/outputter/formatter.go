package outputter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"breachsim/internal/domain"
)

// DisplayHeader prints a section banner to w
func DisplayHeader(w io.Writer, title string) {
	fmt.Fprint(w, FormatHeader(title))
}

// FormatHeader returns a section banner
func FormatHeader(title string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString("\n" + strings.Repeat("═", 79) + "\n")
		sb.WriteString(title + "\n")
	}
	sb.WriteString(strings.Repeat("═", 79) + "\n")
	return sb.String()
}

// GetOutcomeIcon picks an icon for a result label
func GetOutcomeIcon(label string) string {
	switch label {
	case domain.ResultNoSteps, domain.ResultUnknownAction:
		return "⚠️"
	case domain.ResultMaxSteps:
		return "⏰"
	}

	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "detect"), strings.Contains(l, "contain"), strings.Contains(l, "block"):
		return "🛡️"
	case strings.Contains(l, "exfil"), strings.Contains(l, "breach"), strings.Contains(l, "compromise"):
		return "🔴"
	default:
		return "🏁"
	}
}

// FormatResult summarizes a single run
func FormatResult(scenario string, seed int64, ticks int, duration time.Duration, result domain.Result) string {
	var sb strings.Builder

	sb.WriteString(FormatHeader("📊 RUN SUMMARY"))
	sb.WriteString(fmt.Sprintf("   📜 Scenario:   %s\n", scenario))
	sb.WriteString(fmt.Sprintf("   🎲 Seed:       %d\n", seed))
	sb.WriteString(fmt.Sprintf("   ⏱️  Ticks:      %d (%s)\n", ticks, FormatDuration(duration)))
	sb.WriteString(fmt.Sprintf("   %s Result:     %s\n", GetOutcomeIcon(result.Result), strings.ToUpper(result.Result)))

	if len(result.Events) == 0 {
		sb.WriteString("   🔕 Events:     none\n")
	} else {
		sb.WriteString(fmt.Sprintf("   🚨 Events:     %s\n", strings.Join(result.Events, ", ")))
	}

	return sb.String()
}

// FormatBatchSummary renders the outcome distribution of a batch, most
// frequent label first
func FormatBatchSummary(summary domain.BatchSummary, duration time.Duration) string {
	var sb strings.Builder

	sb.WriteString(FormatHeader("📊 BATCH SUMMARY"))
	sb.WriteString(fmt.Sprintf("   📜 Scenario:        %s\n", summary.Scenario))
	sb.WriteString(fmt.Sprintf("   🔁 Runs:            %d (seeds %d..%d)\n", summary.Runs, summary.BaseSeed, summary.BaseSeed+int64(summary.Runs)-1))
	sb.WriteString(fmt.Sprintf("   ⏱️  Duration:        %s\n", FormatDuration(duration)))
	sb.WriteString(fmt.Sprintf("   📏 Ticks:           mean %.2f, max %d\n", summary.MeanTicks, summary.MaxTicks))
	sb.WriteString(fmt.Sprintf("   🚨 Alerted runs:    %d (%d events)\n", summary.AlertedRuns, summary.TotalEvents))

	sb.WriteString("\n   Outcomes:\n")
	for _, label := range sortedOutcomes(summary.Outcomes) {
		rate := summary.OutcomeRates[label]
		sb.WriteString(fmt.Sprintf("   %s %-20s %6d  %6.2f%%  %s\n",
			GetOutcomeIcon(label), label, summary.Outcomes[label], rate*100, bar(rate, 30)))
	}

	return sb.String()
}

// sortedOutcomes orders labels by count descending, then by name
func sortedOutcomes(outcomes map[string]int) []string {
	labels := make([]string, 0, len(outcomes))
	for label := range outcomes {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if outcomes[labels[i]] != outcomes[labels[j]] {
			return outcomes[labels[i]] > outcomes[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}

func bar(rate float64, width int) string {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	filled := int(rate*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// FormatWarnings lists lint warnings, or a clean bill of health
func FormatWarnings(warnings []string) string {
	if len(warnings) == 0 {
		return "✅ No warnings\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⚠️  %d warning(s):\n", len(warnings)))
	for _, w := range warnings {
		sb.WriteString(fmt.Sprintf("   • %s\n", w))
	}
	return sb.String()
}
