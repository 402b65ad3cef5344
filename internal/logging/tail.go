package logging

import (
	"sync"
	"unicode/utf8"
)

const (
	// MaxLineLength is the maximum length of a single retained line before truncation.
	MaxLineLength = 4096

	// DefaultTailLines is the number of lines retained when NewTail is given n <= 0.
	DefaultTailLines = 20
)

// Tail keeps the most recent lines of a listener's output so a timed-out
// run can show what the listener last said.
type Tail struct {
	buffer []string
	next   int
	count  int
	mu     sync.Mutex
}

// NewTail creates a ring buffer holding up to n lines.
func NewTail(n int) *Tail {
	if n <= 0 {
		n = DefaultTailLines
	}
	return &Tail{buffer: make([]string, n)}
}

// Add stores a line, evicting the oldest one when full.
func (t *Tail) Add(line string) {
	if len(line) > MaxLineLength {
		cut := MaxLineLength
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		line = line[:cut] + "...(truncated)"
	}

	t.mu.Lock()
	t.buffer[t.next] = line
	t.next = (t.next + 1) % len(t.buffer)
	if t.count < len(t.buffer) {
		t.count++
	}
	t.mu.Unlock()
}

// Lines returns up to n of the most recent lines, oldest first.
func (t *Tail) Lines(n int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n > t.count {
		n = t.count
	}
	if n <= 0 {
		return nil
	}

	size := len(t.buffer)
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		idx := (t.next - n + i + size) % size
		lines = append(lines, t.buffer[idx])
	}
	return lines
}

// Last returns the most recent line, or "" if none was added.
func (t *Tail) Last() string {
	lines := t.Lines(1)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// Len returns the number of retained lines.
func (t *Tail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}
