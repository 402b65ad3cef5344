package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/randomizedcoder/go-listener-bench/internal/config"
	"github.com/randomizedcoder/go-listener-bench/internal/orchestrator"
	"github.com/randomizedcoder/go-listener-bench/internal/progress"
	"github.com/randomizedcoder/go-listener-bench/internal/tui"
)

func (a *app) newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the candidate sweep (default command)",
		Args:  cobra.NoArgs,
		RunE:  a.runSweep,
	}
}

func (a *app) runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := a.prepare()
	if err != nil {
		return err
	}

	logger := a.newLogger(cfg)
	logger.Info("starting",
		"version", version,
		"candidates", len(cfg.Selected()),
		"project_root", cfg.ProjectRoot,
		"target", cfg.TargetAddress,
		"metrics_addr", cfg.MetricsAddr,
	)

	if cfg.TUI {
		return a.runWithTUI(cmd.Context(), cfg, logger)
	}

	var reporter progress.Reporter = progress.Nop{}
	if !cfg.JSON {
		reporter = progress.NewConsole(a.stdout, cfg.NoColor)
	}

	orch := orchestrator.New(cfg, orchestrator.Options{
		Logger:   logger,
		Reporter: reporter,
		Version:  version,
		Stdout:   a.stdout,
		Stderr:   a.stderr,
	})
	if _, err := orch.Run(cmd.Context()); err != nil {
		return err
	}
	return nil
}

// runWithTUI runs the sweep behind the dashboard. Listener stderr is
// dropped and the report is printed once the dashboard has closed.
func (a *app) runWithTUI(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.New(tui.Config{
		MetricsAddr: cfg.MetricsAddr,
		OutputLines: cfg.TailLines,
		OnQuit:      cancel,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(a.stdout))

	var report bytes.Buffer
	orch := orchestrator.New(cfg, orchestrator.Options{
		Logger:   logger,
		Reporter: tui.NewReporter(p),
		Version:  version,
		Stdout:   &report,
		Stderr:   io.Discard,
	})

	errc := make(chan error, 1)
	go func() {
		_, err := orch.Run(ctx)
		errc <- err
		// Harness failures end the sweep before the dashboard is told.
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errc
		return fmt.Errorf("tui: %w", err)
	}

	err := <-errc
	if _, werr := a.stdout.Write(report.Bytes()); werr != nil && err == nil {
		err = werr
	}
	return err
}
