package stats

import (
	"fmt"
	"strings"
	"time"
)

const (
	heavyRule = "═══════════════════════════════════════════════════════════════════════════════\n"
	lightRule = "───────────────────────────────────────────────────────────────────────────────\n"
)

// SummaryConfig holds configuration for summary formatting.
type SummaryConfig struct {
	// MetricsAddr is the Prometheus metrics endpoint address
	MetricsAddr string

	// LastLines is how many trailing listener lines to show per failed
	// run. Zero hides them.
	LastLines int
}

// FormatSummary renders the end-of-sweep table: one row per candidate
// with either its latency or a TIMEOUT marker.
func FormatSummary(r *Report, cfg SummaryConfig) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(heavyRule)
	b.WriteString("                          listener-bench Summary\n")
	b.WriteString(heavyRule)
	b.WriteString("\n")

	if r == nil {
		b.WriteString("(no candidates were run)\n\n")
		b.WriteString(heavyRule)
		return b.String()
	}

	detected, failed := r.Counts()

	if r.Info.RunID != "" {
		fmt.Fprintf(&b, "Run ID:                 %s\n", r.Info.RunID)
	}
	if r.Info.Target != "" {
		fmt.Fprintf(&b, "Target:                 %s\n", r.Info.Target)
	}
	fmt.Fprintf(&b, "Sweep Duration:         %s\n", FormatDuration(r.Duration()))
	fmt.Fprintf(&b, "Detected:               %d/%d\n\n", detected, detected+failed)

	b.WriteString(lightRule)
	b.WriteString("                                 Results\n")
	b.WriteString(lightRule)
	b.WriteString("\n")

	for _, o := range r.Outcomes {
		b.WriteString(FormatRow(o))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if best, ok := r.Fastest(); ok && detected > 1 {
		fmt.Fprintf(&b, "Fastest:                %s (%s)\n\n", best.Label, FormatLatency(best.Elapsed))
	}

	if cfg.LastLines > 0 {
		b.WriteString(formatLastLines(r.Outcomes, cfg.LastLines))
	}

	if cfg.MetricsAddr != "" {
		fmt.Fprintf(&b, "Metrics endpoint was: http://%s/metrics\n", cfg.MetricsAddr)
	}

	b.WriteString(heavyRule)

	return b.String()
}

// FormatRow renders a single result line.
func FormatRow(o Outcome) string {
	if d, ok := o.Latency(); ok {
		return fmt.Sprintf("  ✓ %-30s %12.6f ms", o.Label, Milliseconds(d))
	}

	reason := o.Reason
	if o.ExitCode >= 0 && o.Result != ResultSkipped {
		if label := exitCodeLabel(o.ExitCode); label != "" {
			reason = fmt.Sprintf("%s, exit %d %s", reason, o.ExitCode, label)
		} else {
			reason = fmt.Sprintf("%s, exit %d", reason, o.ExitCode)
		}
	}
	if reason == "" {
		return fmt.Sprintf("  ✗ %-30s %12s", o.Label, "TIMEOUT")
	}
	return fmt.Sprintf("  ✗ %-30s %12s (%s)", o.Label, "TIMEOUT", reason)
}

func formatLastLines(outcomes []Outcome, n int) string {
	var b strings.Builder
	for _, o := range outcomes {
		if o.OK() || len(o.LastLines) == 0 {
			continue
		}
		if b.Len() == 0 {
			b.WriteString(lightRule)
			b.WriteString("                            Last Listener Output\n")
			b.WriteString(lightRule)
			b.WriteString("\n")
		}
		lines := o.LastLines
		if len(lines) > n {
			lines = lines[len(lines)-n:]
		}
		fmt.Fprintf(&b, "  %s:\n", o.Label)
		for _, line := range lines {
			fmt.Fprintf(&b, "    | %s\n", line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// exitCodeLabel returns a human-readable label for common exit codes.
func exitCodeLabel(code int) string {
	switch code {
	case 0:
		return "(clean)"
	case 1:
		return "(error)"
	case 137:
		return "(SIGKILL)"
	case 143:
		return "(SIGTERM)"
	default:
		return ""
	}
}

// =============================================================================
// Formatting Helper Functions (exported for reuse)
// =============================================================================

// Milliseconds converts d to fractional milliseconds.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// FormatLatency formats a latency with sub-millisecond precision.
func FormatLatency(d time.Duration) string {
	return fmt.Sprintf("%.6f ms", Milliseconds(d))
}

// FormatDuration formats a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
