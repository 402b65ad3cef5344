// Package progress renders operator-facing output while a sweep runs.
package progress

import (
	"time"

	"github.com/randomizedcoder/go-listener-bench/internal/stats"
)

// Reporter receives sweep progress. Implementations must be safe for
// concurrent use: Line is called from the output watcher goroutine.
type Reporter interface {
	// Banner is called once before the first candidate.
	Banner(info stats.RunInfo, labels []string)

	// CandidateStarting is called before a candidate is spawned.
	// index is zero based.
	CandidateStarting(index, total int, label, dir, command string)

	// Line is called for every line a listener prints.
	Line(label, line string)

	// ActionSent is called when the action for label was dispatched.
	ActionSent(label string, at time.Time)

	// CandidateFinished is called with each outcome, in order.
	CandidateFinished(o stats.Outcome)

	// Close is called once after the last candidate.
	Close()
}

// Nop is a Reporter that discards everything.
type Nop struct{}

func (Nop) Banner(stats.RunInfo, []string) {}
func (Nop) CandidateStarting(int, int, string, string, string) {}
func (Nop) Line(string, string) {}
func (Nop) ActionSent(string, time.Time) {}
func (Nop) CandidateFinished(stats.Outcome) {}
func (Nop) Close() {}
