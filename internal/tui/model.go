package tui

import (
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/go-listener-bench/internal/stats"
)

// DefaultOutputLines is how many listener lines the output pane shows.
const DefaultOutputLines = 8

// =============================================================================
// Messages
// =============================================================================

// TickMsg is sent periodically to update the elapsed times.
type TickMsg time.Time

// BannerMsg announces the sweep.
type BannerMsg struct {
	Info   stats.RunInfo
	Labels []string
}

// CandidateStartingMsg is sent before a candidate is spawned.
type CandidateStartingMsg struct {
	Index   int
	Total   int
	Label   string
	Dir     string
	Command string
}

// LineMsg carries one listener output line.
type LineMsg struct {
	Label string
	Line  string
}

// ActionSentMsg is sent when a candidate's action was dispatched.
type ActionSentMsg struct {
	Label string
	At    time.Time
}

// CandidateFinishedMsg carries a candidate's outcome.
type CandidateFinishedMsg struct {
	Outcome stats.Outcome
}

// DoneMsg signals the sweep is over; the TUI exits.
type DoneMsg struct{}

// =============================================================================
// Model
// =============================================================================

// row is the display state of one candidate.
type row struct {
	label   string
	running bool
	started time.Time
	sentAt  time.Time
	outcome *stats.Outcome
}

// Model represents the TUI state.
type Model struct {
	// Configuration
	metricsAddr string
	outputLines int
	onQuit      func()

	// Current state
	info      stats.RunInfo
	rows      []row
	current   int
	command   string
	dir       string
	lines     []string
	startTime time.Time
	spinner   spinner.Model

	// Display options
	width  int
	height int

	done     bool
	quitting bool
}

// Config holds TUI configuration.
type Config struct {
	MetricsAddr string

	// OutputLines defaults to DefaultOutputLines.
	OutputLines int

	// OnQuit is called when the user quits before the sweep is done.
	OnQuit func()
}

// New creates a new TUI model.
func New(cfg Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	lines := cfg.OutputLines
	if lines <= 0 {
		lines = DefaultOutputLines
	}

	return Model{
		metricsAddr: cfg.MetricsAddr,
		outputLines: lines,
		onQuit:      cfg.OnQuit,
		current:     -1,
		startTime:   time.Now(),
		spinner:     sp,
		width:       80,
		height:      24,
	}
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			if !m.done && m.onQuit != nil {
				m.onQuit()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case BannerMsg:
		m.info = msg.Info
		m.rows = make([]row, len(msg.Labels))
		for i, label := range msg.Labels {
			m.rows[i] = row{label: label}
		}
		m.startTime = time.Now()
		return m, nil

	case CandidateStartingMsg:
		for len(m.rows) <= msg.Index {
			m.rows = append(m.rows, row{})
		}
		m.rows[msg.Index] = row{label: msg.Label, running: true, started: time.Now()}
		m.current = msg.Index
		m.command = msg.Command
		m.dir = msg.Dir
		m.lines = nil
		return m, nil

	case LineMsg:
		m.lines = append(m.lines, msg.Line)
		if over := len(m.lines) - m.outputLines; over > 0 {
			m.lines = slices.Delete(m.lines, 0, over)
		}
		return m, nil

	case ActionSentMsg:
		if i := m.findRow(msg.Label); i >= 0 {
			m.rows[i].sentAt = msg.At
		}
		return m, nil

	case CandidateFinishedMsg:
		o := msg.Outcome
		i := m.findRow(o.Label)
		if i < 0 {
			m.rows = append(m.rows, row{label: o.Label})
			i = len(m.rows) - 1
		}
		m.rows[i].running = false
		m.rows[i].outcome = &o
		return m, nil

	case DoneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting || m.done {
		return ""
	}
	return m.renderView()
}

// findRow returns the index of the first unfinished row for label, or
// of the last row with that label, or -1.
func (m Model) findRow(label string) int {
	last := -1
	for i, r := range m.rows {
		if r.label != label {
			continue
		}
		if r.outcome == nil {
			return i
		}
		last = i
	}
	return last
}

// =============================================================================
// Commands
// =============================================================================

// tickCmd returns a command that sends a tick after 250ms.
func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// =============================================================================
// Accessors
// =============================================================================

// Elapsed returns the time since the sweep started.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// Total returns the number of candidates in the sweep.
func (m Model) Total() int {
	return len(m.rows)
}

// Completed returns how many candidates have an outcome.
func (m Model) Completed() int {
	n := 0
	for _, r := range m.rows {
		if r.outcome != nil {
			n++
		}
	}
	return n
}

// Current returns the label of the running candidate, or "".
func (m Model) Current() string {
	if m.current < 0 || m.current >= len(m.rows) || !m.rows[m.current].running {
		return ""
	}
	return m.rows[m.current].label
}

// Done reports whether the sweep has finished.
func (m Model) Done() bool {
	return m.done
}
