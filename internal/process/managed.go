package process

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
)

// Managed is a running child started by Spawner.
//
// A background goroutine reaps the child as soon as it exits, so Done is
// closed even if nobody calls Terminate. Stdout stays readable after the
// child exits until Close is called.
type Managed struct {
	cmd    *exec.Cmd
	stdout *os.File

	pid  int
	pgid int // 0 when group signaling is not available

	done     chan struct{}
	waitErr  error
	exitCode int

	terminated atomic.Bool
	closeOnce  sync.Once
}

// Pid returns the child's process id.
func (m *Managed) Pid() int {
	return m.pid
}

// Pgid returns the process group id, or 0 if the platform has none.
func (m *Managed) Pgid() int {
	return m.pgid
}

// Stdout returns the read end of the child's stdout pipe.
func (m *Managed) Stdout() io.Reader {
	return m.stdout
}

// Done is closed once the child has exited and been reaped.
func (m *Managed) Done() <-chan struct{} {
	return m.done
}

// Exited reports whether the child has been reaped.
func (m *Managed) Exited() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the exit code once the child has been reaped, or -1
// while it is still running. Signal deaths report 128+signal.
func (m *Managed) ExitCode() int {
	if !m.Exited() {
		return -1
	}
	return m.exitCode
}

// Close releases the stdout pipe. Any goroutine blocked reading it
// returns. Safe to call multiple times.
func (m *Managed) Close() error {
	var err error
	m.closeOnce.Do(func() {
		err = m.stdout.Close()
	})
	return err
}

func (m *Managed) reap(tracker *Tracker) {
	m.waitErr = m.cmd.Wait()
	m.exitCode = extractExitCode(m.waitErr)
	tracker.released()
	close(m.done)
}

// extractExitCode extracts the exit code from a Wait() error.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				// Signal exit: 128 + signal number
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
		return exitErr.ExitCode()
	}

	// Unknown error, assume exit code 1
	return 1
}
