package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/randomizedcoder/go-listener-bench/internal/event"
	"github.com/randomizedcoder/go-listener-bench/internal/logging"
	"github.com/randomizedcoder/go-listener-bench/internal/process"
	"github.com/randomizedcoder/go-listener-bench/internal/stats"
	"github.com/randomizedcoder/go-listener-bench/internal/watch"
)

// exitWait bounds the wait for a listener to exit after its output closed.
const exitWait = 250 * time.Millisecond

// Spawner starts listener processes.
type Spawner interface {
	Spawn(c process.Command) (*process.Managed, error)
}

// Callbacks contains optional callback functions for run events.
type Callbacks struct {
	// OnStateChange is called when the run state changes.
	OnStateChange func(label string, oldState, newState State)

	// OnStart is called when the listener process starts.
	OnStart func(label string, pid int)

	// OnLine is called for every line the listener prints.
	OnLine func(label string, line string)

	// OnActionSent is called when the sent timestamp is received.
	OnActionSent func(label string, at time.Time)

	// OnSenderDone is called after the sender finished, with its error.
	OnSenderDone func(label string, err error)
}

// Rendezvous runs one candidate to an outcome.
//
// A Rendezvous is single use. The listener it starts is always terminated
// and reaped before Run returns.
type Rendezvous struct {
	Config     RunConfig
	Candidate  Candidate
	Spawner    Spawner
	Terminator process.Terminator
	Sender     ActionSender
	Callbacks  Callbacks

	// Clock defaults to time.Now.
	Clock func() time.Time

	Logger *slog.Logger

	stateMu sync.Mutex
	state   State
}

// State returns the current state.
func (r *Rendezvous) State() State {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.state
}

func (r *Rendezvous) setState(newState State) {
	r.stateMu.Lock()
	oldState := r.state
	r.state = newState
	r.stateMu.Unlock()

	if oldState != newState && r.Callbacks.OnStateChange != nil {
		r.Callbacks.OnStateChange(r.Candidate.Label, oldState, newState)
	}
}

// waitResult is what the wait loop concluded.
type waitResult struct {
	result     stats.Result
	reason     string
	sentAt     time.Time
	detectedAt time.Time
	watch      *watch.Result
}

// Run executes the candidate. It never returns an error: every failure
// becomes an outcome without latency.
func (r *Rendezvous) Run(ctx context.Context) stats.Outcome {
	cfg := r.Config.withDefaults()
	clock := r.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("candidate", r.Candidate.Label)

	terminator := r.Terminator
	if terminator == nil {
		terminator = process.NewTerminator(process.DefaultGrace, logger)
	}
	spawner := r.Spawner
	if spawner == nil {
		spawner = &process.Spawner{Logger: logger}
	}
	sender := r.Sender
	if sender == nil {
		sender = SenderFunc(func(context.Context, string) error { return nil })
	}

	label := r.Candidate.Label
	start := clock()
	deadline := start.Add(cfg.Deadline)

	r.setState(StateStarting)

	cmd := r.Candidate.Command
	cmd.Env = slices.Clone(cmd.Env)
	if cfg.TargetAddress != "" {
		cmd.Env = append(cmd.Env, process.TargetEnv+"="+cfg.TargetAddress)
	}

	logger.Info("candidate_starting", "dir", cmd.Dir, "command", cmd.String())

	proc, err := spawner.Spawn(cmd)
	if err != nil {
		r.setState(StateFailed)
		logger.Warn("spawn_failed", "error", err)
		o := stats.Failed(label, stats.ResultSpawnFailed, "spawn failed: "+err.Error())
		o.Duration = clock().Sub(start)
		return o
	}

	if r.Callbacks.OnStart != nil {
		r.Callbacks.OnStart(label, proc.Pid())
	}

	sent := event.NewSlot(event.ActionSent)
	detected := event.NewSlot(event.ChangeDetected)
	tail := logging.NewTail(cfg.TailLines)

	watcher := &watch.Watcher{
		Marker: cfg.Marker,
		Tail:   tail,
		Clock:  clock,
		Logger: logger,
	}
	if r.Callbacks.OnLine != nil {
		watcher.Echo = func(line string) { r.Callbacks.OnLine(label, line) }
	}
	watchDone := make(chan watch.Result, 1)
	go func() {
		watchDone <- watcher.Run(proc.Stdout(), detected)
	}()

	// The delay context ends with the run. The send context outlives the
	// run by SenderGrace so a dispatched action can finish, but no longer.
	delayCtx, cancelDelay := context.WithCancel(ctx)
	defer cancelDelay()
	sendCtx, cancelSend := context.WithDeadline(ctx, deadline.Add(cfg.SenderGrace))
	defer cancelSend()

	trigger := &Trigger{
		Sender: sender,
		Target: cfg.TargetAddress,
		Delay:  cfg.PreActionDelay,
		Clock:  clock,
		Logger: logger,
	}
	triggerDone := make(chan TriggerResult, 1)
	go func() {
		triggerDone <- trigger.Run(delayCtx, sendCtx, sent)
	}()

	r.setState(StateAwaiting)
	w := r.wait(ctx, cfg, clock, deadline, sent, detected, watchDone)

	// Cleanup runs on every path from here on.
	cancelDelay()
	if w.result == stats.ResultOutputClosed {
		// A listener that closed its output is usually exiting; let it
		// finish so its own exit code is recorded.
		select {
		case <-proc.Done():
		case <-time.After(exitWait):
		}
	}
	exitedEarly := proc.Exited()
	if err := terminator.Terminate(proc); err != nil {
		logger.Debug("terminate_signal_failed", "pid", proc.Pid(), "error", err)
	}
	proc.Close()

	var wres watch.Result
	if w.watch != nil {
		wres = *w.watch
	} else {
		select {
		case wres = <-watchDone:
		case <-time.After(cfg.DrainTimeout):
			logger.Debug("watch_drain_timeout", "timeout", cfg.DrainTimeout)
		}
	}

	tres, joined := joinTrigger(sendCtx, triggerDone, cfg.DrainTimeout)
	if !joined {
		logger.Warn("sender_abandoned", "grace", cfg.SenderGrace)
	}
	if tres.Fired && r.Callbacks.OnSenderDone != nil {
		r.Callbacks.OnSenderDone(label, tres.Err)
	}

	var o stats.Outcome
	switch w.result {
	case stats.ResultDetected:
		o = stats.Detected(label, w.detectedAt.Sub(w.sentAt))
		r.setState(StateResolved)
		logger.Info("run_resolved", "latency", o.Elapsed)
	case stats.ResultCancelled:
		o = stats.Failed(label, w.result, w.reason)
		r.setState(StateFailed)
		logger.Info("run_cancelled")
	default:
		o = stats.Failed(label, w.result, w.reason)
		r.setState(StateTimedOut)
		logger.Info("run_timed_out", "reason", w.reason)
	}

	if !o.OK() {
		o.LastLines = tail.Lines(cfg.TailLines)
		if exitedEarly {
			o.ExitCode = proc.ExitCode()
		}
	}
	if tres.Err != nil {
		o.SenderErr = tres.Err.Error()
	}
	o.LinesRead = wres.LinesRead
	o.Duration = clock().Sub(start)

	return o
}

// joinTrigger waits for the trigger until sendCtx ends, then at most
// drain longer for a sender reacting to the cancellation. A sender that
// ignores its context is left behind and joined is false.
func joinTrigger(sendCtx context.Context, done <-chan TriggerResult, drain time.Duration) (res TriggerResult, joined bool) {
	select {
	case res = <-done:
		return res, true
	case <-sendCtx.Done():
	}

	timer := time.NewTimer(drain)
	defer timer.Stop()
	select {
	case res = <-done:
		return res, true
	case <-timer.C:
		return TriggerResult{}, false
	}
}

// wait blocks until both timestamps arrived, the deadline passed, the
// watcher ended without a match, or ctx is done.
func (r *Rendezvous) wait(
	ctx context.Context,
	cfg RunConfig,
	clock func() time.Time,
	deadline time.Time,
	sent, detected *event.Slot,
	watchDone <-chan watch.Result,
) waitResult {
	label := r.Candidate.Label
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	var (
		w            waitResult
		haveSent     bool
		haveDetected bool
	)

	sentC := sent.C()
	detectedC := detected.C()

	onSent := func(ts event.Timestamp) {
		haveSent, w.sentAt, sentC = true, ts.At, nil
		logger.Debug("action_sent", "candidate", label)
		if r.Callbacks.OnActionSent != nil {
			r.Callbacks.OnActionSent(label, ts.At)
		}
	}
	onDetected := func(ts event.Timestamp) {
		haveDetected, w.detectedAt, detectedC = true, ts.At, nil
		logger.Debug("change_detected", "candidate", label)
	}

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for !(haveSent && haveDetected) {
		if !clock().Before(deadline) {
			w.result = stats.ResultTimeout
			w.reason = timeoutReason(cfg.Deadline, haveSent, haveDetected)
			return w
		}

		select {
		case ts := <-sentC:
			onSent(ts)

		case ts := <-detectedC:
			onDetected(ts)

		case res := <-watchDone:
			w.watch = &res
			watchDone = nil
			if !haveDetected {
				if ts, ok := detected.TryReceive(); ok {
					onDetected(ts)
					continue
				}
				w.result = stats.ResultOutputClosed
				w.reason = "listener output closed"
				return w
			}

		case <-ctx.Done():
			w.result = stats.ResultCancelled
			w.reason = "cancelled"
			return w

		case <-ticker.C:
		}
	}

	w.result = stats.ResultDetected
	return w
}

func timeoutReason(deadline time.Duration, haveSent, haveDetected bool) string {
	switch {
	case !haveSent && !haveDetected:
		return fmt.Sprintf("deadline %s elapsed before the action was sent", deadline)
	case !haveSent:
		return fmt.Sprintf("deadline %s elapsed before the action was sent (change already seen)", deadline)
	default:
		return fmt.Sprintf("deadline %s elapsed without detection", deadline)
	}
}
