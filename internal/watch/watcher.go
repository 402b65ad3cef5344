package watch

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/randomizedcoder/go-listener-bench/internal/event"
	"github.com/randomizedcoder/go-listener-bench/internal/logging"
)

// Watcher scans a listener's output for the detection marker.
//
// Every decoded line is handed to Echo (if set) and retained in Tail
// (if set). The first line containing Marker publishes a ChangeDetected
// timestamp and ends the watch; no further lines are read.
type Watcher struct {
	Marker string

	// Echo receives every line for operator visibility.
	Echo func(line string)

	// Tail retains recent lines for diagnostics.
	Tail *logging.Tail

	// Clock defaults to time.Now.
	Clock func() time.Time

	// MaxLineSize bounds a single line (default DefaultMaxLineSize).
	MaxLineSize int

	Logger *slog.Logger
}

// Result summarizes one watch.
type Result struct {
	// Matched is true if the marker was seen and a timestamp published.
	Matched bool

	// At is the instant the matching line was read (zero if !Matched).
	At time.Time

	LinesRead    int64
	LinesSkipped int64

	// Err is a read error other than EOF or a closed pipe.
	Err error
}

// Run blocks until the marker is seen or r is exhausted.
// It is meant to run on its own goroutine.
func (w *Watcher) Run(r io.Reader, detected *event.Slot) Result {
	clock := w.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := w.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	var res Result
	reader := NewPipeReader(r, w.MaxLineSize)

	res.Err = reader.Run(func(line string) bool {
		// Take the instant before any echo I/O so console speed does not
		// inflate the measured latency.
		now := clock()
		matched := w.Marker != "" && strings.Contains(line, w.Marker)
		if matched {
			res.Matched = true
			res.At = now
			detected.Publish(now)
		}

		if w.Tail != nil {
			w.Tail.Add(line)
		}
		if w.Echo != nil {
			w.Echo(line)
		}
		return matched
	})

	_, res.LinesRead, res.LinesSkipped = reader.Stats()

	if res.Err != nil {
		logger.Debug("watch_read_error", "error", res.Err)
	}
	if res.LinesSkipped > 0 {
		logger.Debug("watch_lines_skipped", "skipped", res.LinesSkipped)
	}

	return res
}
