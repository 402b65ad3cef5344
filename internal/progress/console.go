package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/randomizedcoder/go-listener-bench/internal/stats"
)

// Console writes plain progress lines, colored when w is a terminal.
type Console struct {
	w  io.Writer
	mu sync.Mutex

	header *color.Color
	dim    *color.Color
	good   *color.Color
	bad    *color.Color
	note   *color.Color
}

// NewConsole creates a console reporter. Color is used only if noColor
// is false and w is a terminal.
func NewConsole(w io.Writer, noColor bool) *Console {
	c := &Console{
		w:      w,
		header: color.New(color.Bold, color.FgCyan),
		dim:    color.New(color.Faint),
		good:   color.New(color.FgGreen),
		bad:    color.New(color.FgRed),
		note:   color.New(color.FgYellow),
	}

	enable := !noColor && isTerminal(w)
	for _, col := range []*color.Color{c.header, c.dim, c.good, c.bad, c.note} {
		if enable {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format, args...)
}

// Banner prints the sweep configuration.
func (c *Console) Banner(info stats.RunInfo, labels []string) {
	c.printf("%s\n", c.header.Sprintf("listener-bench: %d candidates", len(labels)))
	if info.RunID != "" {
		c.printf("  run id:    %s\n", info.RunID)
	}
	c.printf("  target:    %s\n", info.Target)
	c.printf("  deadline:  %s   pre-delay: %s   marker: %q\n", info.Deadline, info.PreActionDelay, info.Marker)
	c.printf("  project:   %s\n\n", info.ProjectRoot)
}

// CandidateStarting prints the candidate header.
func (c *Console) CandidateStarting(index, total int, label, dir, command string) {
	c.printf("%s\n", c.header.Sprintf("=== [%d/%d] %s ===", index+1, total, label))
	c.printf("  dir: %s\n", dir)
	c.printf("  cmd: %s\n", command)
}

// Line echoes one listener line.
func (c *Console) Line(label, line string) {
	c.printf("  %s %s\n", c.dim.Sprint("|"), line)
}

// ActionSent notes the dispatch.
func (c *Console) ActionSent(label string, at time.Time) {
	c.printf("  %s\n", c.note.Sprintf("→ action sent at %s", at.Format("15:04:05.000")))
}

// CandidateFinished prints the outcome line.
func (c *Console) CandidateFinished(o stats.Outcome) {
	if d, ok := o.Latency(); ok {
		c.printf("  %s\n\n", c.good.Sprintf("✓ %s", stats.FormatLatency(d)))
		return
	}
	c.printf("  %s\n\n", c.bad.Sprintf("✗ TIMEOUT (%s)", o.Reason))
}

// Close is a no-op.
func (c *Console) Close() {}
