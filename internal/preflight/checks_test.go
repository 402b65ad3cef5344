package preflight

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/randomizedcoder/go-listener-bench/internal/process"
)

func TestCheck_String(t *testing.T) {
	tests := []struct {
		name  string
		check Check
		want  string
	}{
		{"passed", Check{Name: "sender", Passed: true, Message: "ok"}, "  ✓ sender: ok"},
		{"warning", Check{Name: "candidate x", Passed: true, Warning: true, Message: "missing"}, "  ⚠ candidate x: missing"},
		{"failed", Check{Name: "project_root", Message: "gone"}, "  ✗ project_root: gone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunAll(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "ts"), 0o755); err != nil {
		t.Fatal(err)
	}
	shell := "sh"
	if _, err := process.Resolve(process.Command{Program: shell}); err != nil {
		t.Skipf("no %s on PATH", shell)
	}

	tests := []struct {
		name         string
		in           Input
		wantPassed   bool
		wantWarnings int
	}{
		{
			name: "all good",
			in: Input{
				ProjectRoot: root,
				Sender:      process.NewCommand(filepath.Join(root, "ts"), []string{shell}),
				Candidates: []Target{
					{Name: "a", Command: process.NewCommand(filepath.Join(root, "ts"), []string{shell})},
				},
			},
			wantPassed: true,
		},
		{
			name: "broken candidate is a warning",
			in: Input{
				ProjectRoot: root,
				Sender:      process.NewCommand(filepath.Join(root, "ts"), []string{shell}),
				Candidates: []Target{
					{Name: "rust", Command: process.NewCommand(filepath.Join(root, "rust"), []string{"target/debug/native"})},
					{Name: "bin", Command: process.NewCommand(filepath.Join(root, "ts"), []string{"no-such-program-xyz"})},
				},
			},
			wantPassed:   true,
			wantWarnings: 2,
		},
		{
			name: "missing sender fails",
			in: Input{
				ProjectRoot: root,
				Sender:      process.NewCommand(filepath.Join(root, "ts"), []string{"no-such-sender-xyz"}),
			},
			wantPassed: false,
		},
		{
			name: "missing project root fails",
			in: Input{
				ProjectRoot: filepath.Join(root, "missing"),
				Sender:      process.NewCommand(filepath.Join(root, "ts"), []string{shell}),
			},
			wantPassed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := RunAll(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("RunAll() error = %v", err)
			}
			if res.Passed != tt.wantPassed {
				t.Errorf("Passed = %v, want %v: %+v", res.Passed, tt.wantPassed, res.Checks)
			}
			if got := len(res.Warnings()); got != tt.wantWarnings {
				t.Errorf("Warnings() = %d, want %d", got, tt.wantWarnings)
			}
			if len(res.Checks) != 2+len(tt.in.Candidates) {
				t.Errorf("got %d checks, want %d", len(res.Checks), 2+len(tt.in.Candidates))
			}
		})
	}
}

func TestRunAll_PreservesOrder(t *testing.T) {
	root := t.TempDir()
	var targets []Target
	for _, name := range []string{"one", "two", "three", "four", "five", "six"} {
		targets = append(targets, Target{Name: name, Command: process.NewCommand(root, []string{"./" + name})})
	}

	res, err := RunAll(context.Background(), Input{ProjectRoot: root, Candidates: targets})
	if err != nil {
		t.Fatal(err)
	}
	for i, target := range targets {
		if got := res.Checks[2+i].Name; got != "candidate "+target.Name {
			t.Errorf("check[%d] = %q, want candidate %s", 2+i, got, target.Name)
		}
	}
}

func TestRunAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RunAll(ctx, Input{ProjectRoot: t.TempDir()}); err == nil {
		t.Error("RunAll() with cancelled context error = nil")
	}
}

func TestPrintResults(t *testing.T) {
	res := &Result{Checks: []Check{
		{Name: "project_root", Passed: true, Message: "/repo"},
		{Name: "candidate rust", Passed: true, Warning: true, Message: "missing", Fix: "build the binary"},
		{Name: "sender", Message: "npm: not found", Fix: "install Node.js"},
	}}

	var buf bytes.Buffer
	PrintResults(&buf, res)
	out := buf.String()

	for _, want := range []string{"Preflight checks:", "✓ project_root", "⚠ candidate rust", "Fix: build the binary", "✗ sender", "Fix: install Node.js"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestSuggestFix(t *testing.T) {
	if !strings.Contains(suggestFix("npm"), "Node.js") {
		t.Error("npm fix should mention Node.js")
	}
	if !strings.Contains(suggestFix("target/debug/helius"), "cargo build") {
		t.Error("binary fix should mention cargo build")
	}
}
