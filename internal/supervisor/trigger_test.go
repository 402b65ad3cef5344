package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/randomizedcoder/go-listener-bench/internal/event"
)

func TestTrigger_PublishesBeforeSend(t *testing.T) {
	sent := event.NewSlot(event.ActionSent)
	var publishedFirst atomic.Bool
	var gotTarget string

	trig := &Trigger{
		Target: "Addr1111",
		Delay:  10 * time.Millisecond,
		Sender: SenderFunc(func(ctx context.Context, target string) error {
			gotTarget = target
			select {
			case ts := <-sent.C():
				publishedFirst.Store(true)
				sent.Publish(ts.At) // put it back for the assertions below
			default:
			}
			return nil
		}),
	}

	before := time.Now()
	res := trig.Run(context.Background(), context.Background(), sent)

	if !res.Fired || res.Err != nil {
		t.Fatalf("Run() = %+v, want fired without error", res)
	}
	if !publishedFirst.Load() {
		t.Error("timestamp was not published before the sender ran")
	}
	if gotTarget != "Addr1111" {
		t.Errorf("sender target = %q", gotTarget)
	}
	if res.At.Sub(before) < 10*time.Millisecond {
		t.Errorf("fired %v after start, want >= delay", res.At.Sub(before))
	}

	ts, ok := sent.TryReceive()
	if !ok || !ts.At.Equal(res.At) {
		t.Errorf("slot timestamp = %v, %v, want %v", ts.At, ok, res.At)
	}
}

func TestTrigger_SenderFailureStillPublishes(t *testing.T) {
	sent := event.NewSlot(event.ActionSent)
	boom := errors.New("rpc unavailable")

	trig := &Trigger{
		Sender: SenderFunc(func(context.Context, string) error { return boom }),
	}
	res := trig.Run(context.Background(), context.Background(), sent)

	if !errors.Is(res.Err, boom) {
		t.Errorf("Err = %v, want %v", res.Err, boom)
	}
	if _, ok := sent.TryReceive(); !ok {
		t.Error("no timestamp published after sender failure")
	}
}

func TestTrigger_AbandonsDelay(t *testing.T) {
	sent := event.NewSlot(event.ActionSent)
	var calls atomic.Int32

	trig := &Trigger{
		Delay: 10 * time.Second,
		Sender: SenderFunc(func(context.Context, string) error {
			calls.Add(1)
			return nil
		}),
	}

	delayCtx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res := trig.Run(delayCtx, context.Background(), sent)

	if res.Fired {
		t.Error("Fired = true after the delay was abandoned")
	}
	if calls.Load() != 0 {
		t.Errorf("sender called %d times", calls.Load())
	}
	if _, ok := sent.TryReceive(); ok {
		t.Error("timestamp published after abandon")
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("abandon took %v", time.Since(start))
	}
}

func TestTrigger_AlreadyDoneWithoutDelay(t *testing.T) {
	delayCtx, cancel := context.WithCancel(context.Background())
	cancel()

	sent := event.NewSlot(event.ActionSent)
	trig := &Trigger{Sender: SenderFunc(func(context.Context, string) error {
		t.Error("sender called with a done delay context")
		return nil
	})}

	if res := trig.Run(delayCtx, context.Background(), sent); res.Fired {
		t.Error("Fired = true")
	}
}
