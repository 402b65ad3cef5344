package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/randomizedcoder/go-listener-bench/internal/event"
	"github.com/randomizedcoder/go-listener-bench/internal/logging"
)

// ActionSender performs the state-changing action against target.
type ActionSender interface {
	Send(ctx context.Context, target string) error
}

// SenderFunc adapts a function to ActionSender.
type SenderFunc func(ctx context.Context, target string) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, target string) error {
	return f(ctx, target)
}

// Trigger waits out the pre-action delay, then publishes an ActionSent
// timestamp and invokes the sender.
type Trigger struct {
	Sender ActionSender
	Target string
	Delay  time.Duration

	// Clock defaults to time.Now.
	Clock func() time.Time

	Logger *slog.Logger
}

// TriggerResult summarizes one trigger.
type TriggerResult struct {
	// Fired is false if the delay was abandoned.
	Fired bool

	// At is the instant taken immediately before the sender was invoked.
	At time.Time

	// Err is the sender's failure, if any.
	Err error
}

// Run blocks for Delay, then fires. If delayCtx ends during the delay the
// trigger gives up without publishing. Once fired, the sender runs under
// sendCtx until it finishes.
//
// The timestamp is published before the sender is invoked and regardless
// of whether it fails.
func (t *Trigger) Run(delayCtx, sendCtx context.Context, sent *event.Slot) TriggerResult {
	clock := t.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := t.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	if t.Delay > 0 {
		timer := time.NewTimer(t.Delay)
		select {
		case <-timer.C:
		case <-delayCtx.Done():
			timer.Stop()
			logger.Debug("trigger_abandoned", "delay", t.Delay)
			return TriggerResult{}
		}
	} else if delayCtx.Err() != nil {
		return TriggerResult{}
	}

	at := clock()
	sent.Publish(at)

	err := t.Sender.Send(sendCtx, t.Target)
	if err != nil {
		logger.Warn("sender_failed", "target", t.Target, "error", err)
	}

	return TriggerResult{Fired: true, At: at, Err: err}
}
