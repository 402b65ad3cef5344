package orchestrator

import (
	"context"
	"time"

	"github.com/randomizedcoder/go-listener-bench/internal/process"
	"github.com/randomizedcoder/go-listener-bench/internal/stats"
	"github.com/randomizedcoder/go-listener-bench/internal/supervisor"
)

// candidates builds the selected candidates in configured order.
func (o *Orchestrator) candidates() []supervisor.Candidate {
	selected := o.config.Selected()
	out := make([]supervisor.Candidate, 0, len(selected))
	for _, cc := range selected {
		out = append(out, supervisor.Candidate{
			Label:   cc.Label,
			Command: o.config.CandidateCommand(cc),
		})
	}
	return out
}

func (o *Orchestrator) runInfo() stats.RunInfo {
	cfg := o.config
	return stats.RunInfo{
		RunID:          o.runID,
		Target:         cfg.TargetAddress,
		Marker:         cfg.Marker,
		ProjectRoot:    cfg.ProjectRoot,
		Deadline:       cfg.Deadline,
		PreActionDelay: cfg.PreActionDelay,
	}
}

func (o *Orchestrator) runConfig() supervisor.RunConfig {
	cfg := o.config
	return supervisor.RunConfig{
		Deadline:       cfg.Deadline,
		PreActionDelay: cfg.PreActionDelay,
		PollInterval:   cfg.PollInterval,
		Marker:         cfg.Marker,
		TargetAddress:  cfg.TargetAddress,
		TailLines:      cfg.TailLines,
	}
}

// sweep runs candidates strictly one after another. A candidate's
// listener is reaped before the next one is spawned. Once ctx is done
// the remaining candidates are recorded as skipped.
func (o *Orchestrator) sweep(ctx context.Context, candidates []supervisor.Candidate) *stats.Report {
	report := stats.NewReport(o.runInfo(), time.Now())

	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = c.Label
	}
	o.reporter.Banner(report.Info, labels)

	runCfg := o.runConfig()
	for i, c := range candidates {
		if ctx.Err() != nil {
			o.record(report, stats.Failed(c.Label, stats.ResultSkipped, ""))
			continue
		}

		o.reporter.CandidateStarting(i, len(candidates), c.Label, c.Command.Dir, c.Command.String())
		o.record(report, o.rendezvous(runCfg, c).Run(ctx))
	}

	report.Finish(time.Now())
	o.reporter.Close()
	return report
}

func (o *Orchestrator) record(report *stats.Report, out stats.Outcome) {
	report.Add(out)
	o.metrics.RecordOutcome(out)
	o.reporter.CandidateFinished(out)
}

// rendezvous wires one candidate run to the shared tracker, sender,
// reporter and metrics.
func (o *Orchestrator) rendezvous(runCfg supervisor.RunConfig, c supervisor.Candidate) *supervisor.Rendezvous {
	return &supervisor.Rendezvous{
		Config:    runCfg,
		Candidate: c,
		Spawner: &process.Spawner{
			Stderr:  o.stderr,
			Tracker: o.tracker,
			Logger:  o.logger,
		},
		Terminator: process.NewTerminator(o.config.Grace, o.logger),
		Sender:     o.sender,
		Callbacks: supervisor.Callbacks{
			OnStateChange: o.onStateChange,
			OnStart:       o.onStart,
			OnLine:        o.onLine,
			OnActionSent:  o.reporter.ActionSent,
			OnSenderDone:  o.onSenderDone,
		},
		Logger: o.logger,
	}
}

// Callback handlers

func (o *Orchestrator) onStateChange(label string, oldState, newState supervisor.State) {
	if o.config.Verbose {
		o.logger.Debug("run_state_change", "candidate", label, "from", oldState.String(), "to", newState.String())
	}
}

func (o *Orchestrator) onStart(label string, pid int) {
	o.logger.Debug("listener_started", "candidate", label, "pid", pid)
}

func (o *Orchestrator) onLine(label, line string) {
	o.metrics.OutputLine(label)
	o.reporter.Line(label, line)
}

func (o *Orchestrator) onSenderDone(label string, err error) {
	o.metrics.SenderFinished(err)
	if err != nil {
		o.logger.Debug("sender_error_recorded", "candidate", label, "error", err)
	}
}
