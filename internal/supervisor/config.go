package supervisor

import (
	"time"

	"github.com/randomizedcoder/go-listener-bench/internal/process"
)

// Defaults for RunConfig fields left zero.
const (
	DefaultPollInterval = 10 * time.Millisecond
	DefaultTailLines    = 10
	DefaultDrainTimeout = time.Second
	DefaultSenderGrace  = 500 * time.Millisecond
)

// RunConfig is the timing and matching configuration shared by every
// candidate in a sweep.
type RunConfig struct {
	// Deadline bounds a whole run, measured from before the spawn.
	Deadline time.Duration

	// PreActionDelay is how long the listener gets to subscribe before
	// the action is sent.
	PreActionDelay time.Duration

	// PollInterval is how often the wait loop re-checks the deadline.
	PollInterval time.Duration

	// Marker is the substring a listener prints on detection.
	Marker string

	// TargetAddress is handed to the sender and exported to listeners.
	TargetAddress string

	// TailLines is how many trailing listener lines failed runs keep.
	TailLines int

	// DrainTimeout bounds the wait for the output watcher after the
	// listener has been terminated.
	DrainTimeout time.Duration

	// SenderGrace is how long past the deadline a dispatched action may
	// keep running before its context is cancelled.
	SenderGrace time.Duration
}

func (c RunConfig) withDefaults() RunConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.TailLines <= 0 {
		c.TailLines = DefaultTailLines
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = DefaultDrainTimeout
	}
	if c.SenderGrace <= 0 {
		c.SenderGrace = DefaultSenderGrace
	}
	return c
}

// Candidate is one listener implementation under benchmark.
type Candidate struct {
	Label   string
	Command process.Command
}
