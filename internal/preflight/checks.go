// Package preflight provides startup validation checks.
package preflight

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/go-listener-bench/internal/process"
)

// maxParallel bounds concurrent checks.
const maxParallel = 4

// Check represents the result of a single preflight check.
type Check struct {
	Name    string // Name of the check
	Passed  bool   // Whether the check passed
	Warning bool   // True if it's a warning (non-fatal)
	Message string // Additional context
	Fix     string // Suggested fix when the check did not pass cleanly
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// Target is a named command to check.
type Target struct {
	Name    string
	Command process.Command
}

// Input lists what RunAll inspects.
type Input struct {
	ProjectRoot string
	Sender      process.Command
	Candidates  []Target
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// RunAll executes all preflight checks concurrently. The project root
// and the sender are required; a broken candidate is only a warning
// because the sweep records it as a failed run and continues.
func RunAll(ctx context.Context, in Input) (*Result, error) {
	checks := make([]Check, 2+len(in.Candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	g.Go(func() error {
		checks[0] = checkProjectRoot(in.ProjectRoot)
		return ctx.Err()
	})
	g.Go(func() error {
		checks[1] = checkCommand("sender", in.Sender, false)
		return ctx.Err()
	})
	for i, c := range in.Candidates {
		g.Go(func() error {
			checks[2+i] = checkCommand("candidate "+c.Name, c.Command, true)
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Checks: checks, Passed: true}
	for _, c := range checks {
		if !c.Passed {
			result.Passed = false
		}
	}
	return result, nil
}

// Warnings returns the checks that passed with a warning.
func (r *Result) Warnings() []Check {
	var out []Check
	for _, c := range r.Checks {
		if c.Passed && c.Warning {
			out = append(out, c)
		}
	}
	return out
}

// checkProjectRoot verifies the project root is an existing directory.
func checkProjectRoot(root string) Check {
	info, err := os.Stat(root)
	if err != nil {
		return Check{
			Name:    "project_root",
			Message: fmt.Sprintf("%s: %v", root, err),
			Fix:     "set PROJECT_ROOT or --project-root to the repository containing the listeners",
		}
	}
	if !info.IsDir() {
		return Check{
			Name:    "project_root",
			Message: fmt.Sprintf("%s is not a directory", root),
			Fix:     "set PROJECT_ROOT or --project-root to a directory",
		}
	}
	return Check{Name: "project_root", Passed: true, Message: root}
}

// checkCommand verifies the working directory exists and the program
// resolves. With soft set, problems are reported as warnings.
func checkCommand(name string, c process.Command, soft bool) Check {
	fail := func(msg, fix string) Check {
		return Check{Name: name, Passed: soft, Warning: soft, Message: msg, Fix: fix}
	}

	info, err := os.Stat(c.Dir)
	if err != nil {
		return fail(fmt.Sprintf("working directory %s: %v", c.Dir, err), "create the directory or fix the candidate's dir")
	}
	if !info.IsDir() {
		return fail(fmt.Sprintf("working directory %s is not a directory", c.Dir), "fix the candidate's dir")
	}

	path, err := process.Resolve(c)
	if err != nil {
		return fail(fmt.Sprintf("%s: %v", c.Program, err), suggestFix(c.Program))
	}

	return Check{Name: name, Passed: true, Message: fmt.Sprintf("%s (in %s)", path, c.Dir)}
}

// PrintResults prints the preflight check results.
func PrintResults(w io.Writer, result *Result) {
	fmt.Fprintln(w, "Preflight checks:")
	for _, check := range result.Checks {
		fmt.Fprintln(w, check.String())
		if (!check.Passed || check.Warning) && check.Fix != "" {
			fmt.Fprintf(w, "    Fix: %s\n", check.Fix)
		}
	}
	fmt.Fprintln(w)
}

// suggestFix returns a suggestion for a program that could not be found.
func suggestFix(program string) string {
	switch program {
	case "npm", "node", "npx":
		return "install Node.js and run npm install in the TypeScript directory"
	case "cargo":
		return "install the Rust toolchain (rustup)"
	case "":
		return "set a command for this entry"
	default:
		return "build the binary (cargo build) or check PATH"
	}
}
