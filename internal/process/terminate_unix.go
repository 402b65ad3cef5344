//go:build !windows

package process

import (
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sys/unix"
)

func newPlatformTerminator(grace time.Duration, logger *slog.Logger) Terminator {
	return &groupTerminator{grace: grace, logger: logger}
}

// groupTerminator sends SIGTERM to the process group, waits up to grace
// for the child to exit, then sends SIGKILL to the group.
type groupTerminator struct {
	grace  time.Duration
	logger *slog.Logger
}

func (g *groupTerminator) Terminate(m *Managed) error {
	if m == nil {
		return nil
	}
	if !m.terminated.CompareAndSwap(false, true) {
		<-m.done
		return nil
	}
	if m.pgid <= 0 {
		m.terminated.Store(false)
		return directTerminator{logger: g.logger}.Terminate(m)
	}

	// The group may outlive its leader, so signal even if the child has
	// already been reaped.
	if err := g.signal(m, unix.SIGTERM); err != nil {
		return err
	}

	timer := time.NewTimer(g.grace)
	select {
	case <-m.done:
		timer.Stop()
	case <-timer.C:
		g.logger.Debug("process_grace_expired", "pid", m.pid, "grace", g.grace)
	}

	if err := g.signal(m, unix.SIGKILL); err != nil {
		return err
	}

	<-m.done

	g.logger.Debug("process_terminated",
		"pid", m.pid,
		"pgid", m.pgid,
		"exit_code", m.exitCode,
	)
	return nil
}

func (g *groupTerminator) signal(m *Managed, sig unix.Signal) error {
	err := unix.Kill(-m.pgid, sig)
	if err == nil || errors.Is(err, unix.ESRCH) {
		return nil
	}
	// EPERM can happen when the group leader is gone and the id was
	// reused; fall back to the direct child.
	g.logger.Debug("process_group_signal_failed",
		"pgid", m.pgid,
		"signal", sig.String(),
		"error", err,
	)
	if !m.Exited() {
		if perr := m.cmd.Process.Signal(sig); perr != nil && !m.Exited() {
			g.logger.Debug("process_signal_failed", "pid", m.pid, "error", perr)
		}
	}
	return nil
}
