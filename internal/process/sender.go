package process

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/randomizedcoder/go-listener-bench/internal/logging"
)

// DefaultSenderTimeout bounds a single sender run.
const DefaultSenderTimeout = 2 * time.Minute

// TargetEnv is the environment variable carrying the watched address to
// the sender and to every listener.
const TargetEnv = "TARGET"

// Sender runs the external command that submits the on-chain action.
type Sender struct {
	Command Command

	// Timeout defaults to DefaultSenderTimeout.
	Timeout time.Duration

	// Stdout and Stderr default to the parent's.
	Stdout io.Writer
	Stderr io.Writer

	Logger *slog.Logger
}

// Send runs the sender to completion. A cancelled ctx or an expired
// timeout kills the sender's whole process group.
func (s *Sender) Send(ctx context.Context, target string) error {
	logger := s.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultSenderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	path, err := resolveProgram(s.Command)
	if err != nil {
		return &SpawnError{Op: "lookup", Command: s.Command, Err: err}
	}

	cmd := exec.CommandContext(ctx, path, s.Command.Args...)
	cmd.Dir = s.Command.Dir
	cmd.Env = append(os.Environ(), s.Command.Env...)
	if target != "" {
		cmd.Env = append(cmd.Env, TargetEnv+"="+target)
	}
	cmd.Stdin = nil
	cmd.Stdout = s.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = s.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	configureProcAttr(cmd)
	cmd.Cancel = func() error { return killGroup(cmd) }
	cmd.WaitDelay = DefaultWaitDelay

	start := time.Now()
	err = cmd.Run()
	logger.Debug("sender_finished",
		"command", s.Command.String(),
		"duration", time.Since(start),
		"exit_code", extractExitCode(err),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("sender %q: %w", s.Command.String(), ctxErr)
		}
		return fmt.Errorf("sender %q: %w", s.Command.String(), err)
	}
	return nil
}
