// Package main provides the listener-bench CLI entry point.
//
// listener-bench runs a set of notification listener implementations one
// after another against the same target, fires a state-changing action
// during each run, and reports how long each listener took to notice it.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/randomizedcoder/go-listener-bench/internal/config"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/listener-bench
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// .env fills in variables that are not already set, before the
	// environment is read.
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(stderr, "Error loading .env: %v\n", err)
		return 1
	}

	root := newRootCommand(os.LookupEnv, stdout, stderr)
	root.SetArgs(args)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
