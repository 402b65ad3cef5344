package process

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/randomizedcoder/go-listener-bench/internal/logging"
)

// DefaultWaitDelay bounds how long reaping waits for stderr copying after
// the child has exited.
const DefaultWaitDelay = 2 * time.Second

// Spawner starts commands with stdin closed, stdout on a pipe and stderr
// passed through, each in its own process group where supported.
type Spawner struct {
	// Stderr receives the child's stderr (default os.Stderr).
	Stderr io.Writer

	// Tracker, if set, counts live children.
	Tracker *Tracker

	// WaitDelay defaults to DefaultWaitDelay.
	WaitDelay time.Duration

	Logger *slog.Logger
}

// Spawn starts c. Failures are returned as *SpawnError.
func (s *Spawner) Spawn(c Command) (*Managed, error) {
	logger := s.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	info, err := os.Stat(c.Dir)
	if err != nil {
		return nil, &SpawnError{Op: "chdir", Command: c, Err: err}
	}
	if !info.IsDir() {
		return nil, &SpawnError{Op: "chdir", Command: c, Err: fmt.Errorf("not a directory")}
	}

	path, err := resolveProgram(c)
	if err != nil {
		return nil, &SpawnError{Op: "lookup", Command: c, Err: err}
	}

	// A plain os.Pipe instead of cmd.StdoutPipe: Wait must not close the
	// read end, because reaping runs concurrently with reading.
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, &SpawnError{Op: "pipe", Command: c, Err: err}
	}

	cmd := exec.Command(path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdin = nil // null device
	cmd.Stdout = pw
	cmd.Stderr = s.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	cmd.WaitDelay = s.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}
	configureProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, &SpawnError{Op: "start", Command: c, Err: err}
	}

	// Close parent's write-end after Start() so EOF is seen when every
	// writer in the child's tree is gone.
	pw.Close()

	m := &Managed{
		cmd:    cmd,
		stdout: pr,
		pid:    cmd.Process.Pid,
		pgid:   groupID(cmd.Process.Pid),
		done:   make(chan struct{}),
	}

	s.Tracker.started()
	go m.reap(s.Tracker)

	logger.Debug("process_started",
		"pid", m.pid,
		"pgid", m.pgid,
		"dir", c.Dir,
		"command", c.String(),
	)

	return m, nil
}

// resolveProgram finds the executable for c. Bare names are searched on
// PATH; relative paths are taken relative to c.Dir.
func resolveProgram(c Command) (string, error) {
	if c.Program == "" {
		return "", errors.New("empty command")
	}

	if filepath.Base(c.Program) == c.Program {
		return exec.LookPath(c.Program)
	}

	path := c.Program
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.Dir, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	return path, nil
}

// Resolve reports the executable path c would run, without starting it.
func Resolve(c Command) (string, error) {
	return resolveProgram(c)
}
