// Package process starts, tracks and terminates external commands.
package process

import (
	"fmt"
	"strings"
)

// Command describes an external program to run.
type Command struct {
	// Program is a bare executable name (resolved on PATH), an absolute
	// path, or a path relative to Dir.
	Program string
	Args    []string

	// Dir is the working directory of the child.
	Dir string

	// Env entries ("KEY=value") are appended to the inherited environment.
	Env []string
}

// NewCommand splits argv into program and arguments.
func NewCommand(dir string, argv []string, env ...string) Command {
	c := Command{Dir: dir, Env: env}
	if len(argv) > 0 {
		c.Program = argv[0]
		c.Args = append([]string(nil), argv[1:]...)
	}
	return c
}

// Argv returns the program followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Program}, c.Args...)
}

// String returns the command line (for display).
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// SpawnError reports that a command could not be started.
type SpawnError struct {
	// Op is one of "chdir", "lookup", "pipe" or "start".
	Op      string
	Command Command
	Err     error
}

func (e *SpawnError) Error() string {
	switch e.Op {
	case "chdir":
		return fmt.Sprintf("spawn %q: working directory %s: %v", e.Command.Program, e.Command.Dir, e.Err)
	default:
		return fmt.Sprintf("spawn %q (%s): %v", e.Command.Program, e.Op, e.Err)
	}
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
