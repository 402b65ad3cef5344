package process

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/randomizedcoder/go-listener-bench/internal/logging"
)

// DefaultGrace is how long a child gets between the polite and the
// forceful signal.
const DefaultGrace = 500 * time.Millisecond

// Terminator ends a Managed process and everything it spawned.
//
// Terminate blocks until the child has been reaped. It is idempotent and
// safe to call on a process that already exited.
type Terminator interface {
	Terminate(m *Managed) error
}

// NewTerminator returns the platform terminator. On unix it signals the
// whole process group; elsewhere it kills the direct child.
func NewTerminator(grace time.Duration, logger *slog.Logger) Terminator {
	if grace <= 0 {
		grace = DefaultGrace
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return newPlatformTerminator(grace, logger)
}

// directTerminator kills only the direct child. Used where process
// groups are unavailable.
type directTerminator struct {
	logger *slog.Logger
}

func (d directTerminator) Terminate(m *Managed) error {
	if m == nil {
		return nil
	}
	if m.terminated.CompareAndSwap(false, true) && !m.Exited() {
		if err := m.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			d.logger.Debug("process_kill_failed", "pid", m.pid, "error", err)
		}
	}
	<-m.done
	return nil
}
