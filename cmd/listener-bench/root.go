package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randomizedcoder/go-listener-bench/internal/config"
	"github.com/randomizedcoder/go-listener-bench/internal/logging"
)

// app carries the configuration shared by all subcommands.
type app struct {
	cfg    *config.Config
	envErr error
	stdout io.Writer
	stderr io.Writer
}

// newRootCommand creates the root command. Environment values (read
// through lookup) become the flag defaults; an invalid environment value
// is reported when a command runs.
func newRootCommand(lookup func(string) (string, bool), stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	a.cfg, a.envErr = config.Load(lookup)

	cmd := &cobra.Command{
		Use:   "listener-bench",
		Short: "Benchmark the notification latency of listener implementations",
		Long: `listener-bench starts each configured listener in turn, waits a
pre-action delay, runs the action sender against the target address and
measures the time until the listener prints the detection marker.

Candidates run strictly one at a time. Runs that never detect the change
within the deadline are reported as TIMEOUT.

Configuration is read from defaults, a .env file, the environment
(DURATION_MS, PRE_TX_DELAY_MS, PROJECT_ROOT, LISTEN_ADDRESS,
DETECTION_MARKER) and flags, in increasing order of precedence.`,
		Version: version,
		Args:    cobra.NoArgs,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runSweep,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	config.BindFlags(cmd.PersistentFlags(), a.cfg)

	cmd.AddCommand(a.newRunCommand())
	cmd.AddCommand(a.newListCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// prepare finishes the configuration once flags are parsed: candidate
// file, derived paths and validation.
func (a *app) prepare() (*config.Config, error) {
	if a.envErr != nil {
		return nil, fmt.Errorf("configuration error:\n%w", a.envErr)
	}
	cfg := a.cfg

	if cfg.CandidatesFile != "" {
		f, err := config.LoadCandidateFile(cfg.CandidatesFile)
		if err != nil {
			return nil, err
		}
		cfg.ApplyCandidateFile(f)
	}

	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration error:\n%w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. When TUI is enabled, logs are
// suppressed to avoid interfering with TUI rendering.
func (a *app) newLogger(cfg *config.Config) *slog.Logger {
	var logger *slog.Logger
	switch {
	case cfg.TUI:
		logger = logging.NewLoggerWithWriter(io.Discard, logging.FormatJSON, "info")
	case cfg.Verbose:
		logger = logging.NewLogger(cfg.LogFormat, cfg.LogLevel, true)
	default:
		logger = logging.NewLoggerWithWriter(a.stderr, cfg.LogFormat, cfg.LogLevel)
	}
	logging.SetDefault(logger)
	return logger
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "listener-bench %s\n", version)
		},
	}
}
