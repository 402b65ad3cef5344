package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/randomizedcoder/go-listener-bench/internal/stats"
)

// =============================================================================
// Main View Rendering
// =============================================================================

func (m Model) renderView() string {
	sections := []string{
		m.renderHeader(),
		m.renderProgress(),
		m.renderCandidates(),
	}
	if m.Current() != "" {
		sections = append(sections, m.renderOutput())
	}
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// =============================================================================
// Header
// =============================================================================

func (m Model) renderHeader() string {
	header := fmt.Sprintf(
		" listener-bench │ Candidates: %d/%d │ Elapsed: %s ",
		m.Completed(),
		m.Total(),
		stats.FormatDuration(m.Elapsed()),
	)

	return headerStyle.Width(m.width).Render(header)
}

// =============================================================================
// Progress Section
// =============================================================================

func (m Model) renderProgress() string {
	barWidth := m.width - 20
	if barWidth < 20 {
		barWidth = 20
	}

	var status string
	switch current := m.Current(); {
	case m.Total() > 0 && m.Completed() == m.Total():
		status = statusOK.Render("✓ Sweep complete")
	case current != "":
		status = statusInfo.Render("Running " + current)
	default:
		status = mutedStyle.Render("Waiting")
	}

	rows := []string{
		sectionHeaderStyle.Render("Sweep"),
		RenderProgressBar(m.Completed(), m.Total(), barWidth),
		status,
	}
	if m.info.Target != "" {
		rows = append(rows,
			RenderKeyValue("Target", m.info.Target),
			RenderKeyValue("Deadline", m.info.Deadline.String()),
			RenderKeyValue("Pre-delay", m.info.PreActionDelay.String()),
			RenderKeyValue("Marker", fmt.Sprintf("%q", m.info.Marker)),
		)
	}

	return boxStyle.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// =============================================================================
// Candidate Table
// =============================================================================

func (m Model) renderCandidates() string {
	rows := []string{sectionHeaderStyle.Render("Candidates")}
	if len(m.rows) == 0 {
		rows = append(rows, dimStyle.Render("(none)"))
	}
	for _, r := range m.rows {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left,
			candidateStyle.Render(r.label),
			m.renderState(r),
		))
	}

	return boxStyle.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderState returns the status cell of one candidate row.
func (m Model) renderState(r row) string {
	switch {
	case r.outcome != nil:
		cell := ResultLabel(*r.outcome)
		if !r.outcome.OK() && r.outcome.Reason != string(r.outcome.Result) {
			cell += " " + dimStyle.Render(r.outcome.Reason)
		}
		return cell
	case r.running && !r.sentAt.IsZero():
		return m.spinner.View() + " " + statusWarning.Render("waiting for detection") +
			dimStyle.Render(fmt.Sprintf(" (sent %s ago)", since(r.sentAt)))
	case r.running:
		return m.spinner.View() + " " + statusInfo.Render("subscribing") +
			dimStyle.Render(fmt.Sprintf(" (%s)", since(r.started)))
	default:
		return dimStyle.Render("pending")
	}
}

func since(t time.Time) time.Duration {
	return time.Since(t).Truncate(100 * time.Millisecond)
}

// =============================================================================
// Output Pane
// =============================================================================

func (m Model) renderOutput() string {
	rows := []string{
		sectionHeaderStyle.Render("Output: " + m.Current()),
		dimStyle.Render(fmt.Sprintf("%s $ %s", m.dir, m.command)),
	}
	if len(m.lines) == 0 {
		rows = append(rows, dimStyle.Render("(no output yet)"))
	}
	width := m.width - 6
	for _, line := range m.lines {
		if r := []rune(line); width > 0 && len(r) > width {
			line = string(r[:width])
		}
		style := mutedStyle
		if m.info.Marker != "" && strings.Contains(line, m.info.Marker) {
			style = statusOK
		}
		rows = append(rows, style.Render(line))
	}

	return boxStyle.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// =============================================================================
// Footer
// =============================================================================

func (m Model) renderFooter() string {
	parts := []string{"q: quit (skips remaining candidates)"}
	if m.metricsAddr != "" {
		parts = append(parts, "metrics: http://"+m.metricsAddr+"/metrics")
	}
	if m.info.RunID != "" {
		parts = append(parts, "run "+m.info.RunID)
	}
	return footerStyle.Render(strings.Join(parts, " │ "))
}
