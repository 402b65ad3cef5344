package tui

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/go-listener-bench/internal/stats"
)

// Sender is the part of *tea.Program the Reporter needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Reporter forwards sweep progress to a running program as messages.
// It implements progress.Reporter; Send is safe for concurrent use.
type Reporter struct {
	program Sender
}

// NewReporter creates a Reporter for p.
func NewReporter(p Sender) *Reporter {
	return &Reporter{program: p}
}

func (r *Reporter) send(msg tea.Msg) {
	if r.program != nil {
		r.program.Send(msg)
	}
}

func (r *Reporter) Banner(info stats.RunInfo, labels []string) {
	r.send(BannerMsg{Info: info, Labels: slices.Clone(labels)})
}

func (r *Reporter) CandidateStarting(index, total int, label, dir, command string) {
	r.send(CandidateStartingMsg{Index: index, Total: total, Label: label, Dir: dir, Command: command})
}

func (r *Reporter) Line(label, line string) {
	r.send(LineMsg{Label: label, Line: line})
}

func (r *Reporter) ActionSent(label string, at time.Time) {
	r.send(ActionSentMsg{Label: label, At: at})
}

func (r *Reporter) CandidateFinished(o stats.Outcome) {
	o.LastLines = slices.Clone(o.LastLines)
	r.send(CandidateFinishedMsg{Outcome: o})
}

// Close tells the program the sweep is over.
func (r *Reporter) Close() {
	r.send(DoneMsg{})
}
