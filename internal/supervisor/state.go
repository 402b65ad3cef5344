// Package supervisor runs a single benchmark candidate: it starts the
// listener, fires the action and times the rendezvous of both events.
package supervisor

// State represents the current state of a candidate run.
type State int

const (
	// StateCreated is the initial state before the run has started.
	StateCreated State = iota

	// StateStarting indicates the listener process is being spawned.
	StateStarting

	// StateAwaiting indicates the run is waiting for the sent and
	// detected events.
	StateAwaiting

	// StateResolved indicates both events arrived before the deadline.
	StateResolved

	// StateTimedOut indicates the deadline passed, or the listener's
	// output closed, without both events.
	StateTimedOut

	// StateFailed indicates the listener could not be started or the run
	// was cancelled.
	StateFailed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateAwaiting:
		return "awaiting"
	case StateResolved:
		return "resolved"
	case StateTimedOut:
		return "timed_out"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsActive returns true while the listener may be running.
func (s State) IsActive() bool {
	return s == StateStarting || s == StateAwaiting
}

// IsTerminal returns true once the run has an outcome.
func (s State) IsTerminal() bool {
	return s == StateResolved || s == StateTimedOut || s == StateFailed
}
