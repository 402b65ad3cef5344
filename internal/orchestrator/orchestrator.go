// Package orchestrator runs a candidate sweep end to end: lock, preflight,
// metrics, the sequential candidate loop and the final report.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/randomizedcoder/go-listener-bench/internal/config"
	"github.com/randomizedcoder/go-listener-bench/internal/lock"
	"github.com/randomizedcoder/go-listener-bench/internal/logging"
	"github.com/randomizedcoder/go-listener-bench/internal/metrics"
	"github.com/randomizedcoder/go-listener-bench/internal/preflight"
	"github.com/randomizedcoder/go-listener-bench/internal/process"
	"github.com/randomizedcoder/go-listener-bench/internal/progress"
	"github.com/randomizedcoder/go-listener-bench/internal/stats"
	"github.com/randomizedcoder/go-listener-bench/internal/supervisor"
)

var (
	// ErrPreflight is returned when a required preflight check failed.
	ErrPreflight = errors.New("preflight checks failed (use --skip-preflight to override)")

	// ErrInterrupted is returned when the sweep was cut short by a
	// signal or a cancelled context. The report is still returned.
	ErrInterrupted = errors.New("sweep interrupted")
)

// shutdownTimeout bounds the metrics server shutdown.
const shutdownTimeout = 5 * time.Second

// Options holds the optional collaborators of an Orchestrator.
type Options struct {
	Logger   *slog.Logger
	Reporter progress.Reporter
	Version  string

	// Stdout receives preflight results and the final report
	// (default os.Stdout).
	Stdout io.Writer

	// Stderr receives listener and sender stderr (default os.Stderr).
	Stderr io.Writer
}

// Orchestrator coordinates all components for a sweep.
type Orchestrator struct {
	config   *config.Config
	logger   *slog.Logger
	reporter progress.Reporter
	version  string
	stdout   io.Writer
	stderr   io.Writer

	runID    string
	registry *prometheus.Registry
	metrics  *metrics.Collector
	tracker  *process.Tracker
	sender   *process.Sender
}

// New creates an Orchestrator. cfg must be resolved and validated.
func New(cfg *config.Config, opts Options) *Orchestrator {
	o := &Orchestrator{
		config:   cfg,
		logger:   opts.Logger,
		reporter: opts.Reporter,
		version:  opts.Version,
		stdout:   opts.Stdout,
		stderr:   opts.Stderr,
		runID:    uuid.NewString(),
		registry: prometheus.NewRegistry(),
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}
	if o.reporter == nil {
		o.reporter = progress.Nop{}
	}
	if o.stdout == nil {
		o.stdout = os.Stdout
	}
	if o.stderr == nil {
		o.stderr = os.Stderr
	}
	o.logger = o.logger.With("run_id", o.runID)

	o.metrics = metrics.NewCollectorWithRegistry(metrics.CollectorConfig{
		Version:    o.version,
		RunID:      o.runID,
		Target:     cfg.TargetAddress,
		Candidates: len(cfg.Selected()),
	}, o.registry)
	o.tracker = process.NewTracker(o.metrics.SetProcesses)
	o.sender = &process.Sender{
		Command: cfg.SenderCommand(),
		Timeout: cfg.SenderTimeout,
		Stdout:  o.stderr,
		Stderr:  o.stderr,
		Logger:  o.logger,
	}

	return o
}

// Run executes the sweep. It blocks until every candidate has an outcome
// or ctx is cancelled (or SIGINT/SIGTERM arrives). Harness-level
// failures (lock, preflight, metrics server) abort before any candidate
// runs. An interrupted sweep returns its partial report with
// ErrInterrupted.
func (o *Orchestrator) Run(ctx context.Context) (*stats.Report, error) {
	cfg := o.config
	candidates := o.candidates()

	sweepLock, err := lock.Acquire(cfg.LockFile)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sweepLock.Release(); err != nil {
			o.logger.Warn("lock_release_failed", "path", sweepLock.Path(), "error", err)
		}
	}()

	if !cfg.SkipPreflight {
		if err := o.preflight(ctx, candidates); err != nil {
			return nil, err
		}
	}

	if cfg.MetricsAddr != "" {
		server := metrics.NewServer(cfg.MetricsAddr, o.registry, o.logger)
		if err := server.Start(); err != nil {
			return nil, fmt.Errorf("failed to start metrics server: %w", err)
		}
		server.SetReady(true)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				o.logger.Warn("metrics_server_shutdown_error", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	o.logger.Info("sweep_starting",
		"candidates", len(candidates),
		"target", cfg.TargetAddress,
		"deadline", cfg.Deadline.String(),
		"pre_delay", cfg.PreActionDelay.String(),
	)

	report := o.sweep(ctx, candidates)
	interrupted := ctx.Err() != nil

	detected, failed := report.Counts()
	o.logger.Info("sweep_complete",
		"detected", detected,
		"failed", failed,
		"duration", report.Duration().String(),
		"peak_live_processes", o.tracker.Peak(),
	)

	if err := o.writeReport(report); err != nil {
		return report, err
	}
	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile, o.registry); err != nil {
			o.logger.Warn("metrics_file_failed", "path", cfg.MetricsFile, "error", err)
		}
	}

	if interrupted {
		return report, ErrInterrupted
	}
	return report, nil
}

// preflight runs the startup checks and prints them.
func (o *Orchestrator) preflight(ctx context.Context, candidates []supervisor.Candidate) error {
	in := preflight.Input{
		ProjectRoot: o.config.ProjectRoot,
		Sender:      o.sender.Command,
	}
	for _, c := range candidates {
		in.Candidates = append(in.Candidates, preflight.Target{Name: c.Label, Command: c.Command})
	}

	result, err := preflight.RunAll(ctx, in)
	if err != nil {
		return fmt.Errorf("preflight: %w", err)
	}
	preflight.PrintResults(o.stdout, result)

	for _, w := range result.Warnings() {
		o.logger.Warn("preflight_warning", "check", w.Name, "message", w.Message)
	}
	if !result.Passed {
		return ErrPreflight
	}
	return nil
}

// writeReport prints the summary table or the JSON report.
func (o *Orchestrator) writeReport(report *stats.Report) error {
	if o.config.JSON {
		if err := stats.WriteJSON(o.stdout, report); err != nil {
			return fmt.Errorf("writing JSON report: %w", err)
		}
		return nil
	}

	_, err := io.WriteString(o.stdout, stats.FormatSummary(report, stats.SummaryConfig{
		MetricsAddr: o.config.MetricsAddr,
		LastLines:   o.config.TailLines,
	}))
	return err
}

// RunID returns the sweep's unique id.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Metrics returns the metrics collector for external access.
func (o *Orchestrator) Metrics() *metrics.Collector {
	return o.metrics
}

// Tracker returns the listener process tracker.
func (o *Orchestrator) Tracker() *process.Tracker {
	return o.tracker
}

// Registry returns the sweep's Prometheus registry.
func (o *Orchestrator) Registry() *prometheus.Registry {
	return o.registry
}
