// Package event carries the two timestamps a benchmark run waits for.
package event

import "time"

// Kind identifies which side of a run produced a timestamp.
type Kind int

const (
	// ActionSent is published by the trigger immediately before the
	// action-sending collaborator is invoked.
	ActionSent Kind = iota

	// ChangeDetected is published by the watcher on the first output
	// line containing the detection marker.
	ChangeDetected
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case ActionSent:
		return "action_sent"
	case ChangeDetected:
		return "change_detected"
	default:
		return "unknown"
	}
}

// Timestamp is a single tagged instant.
type Timestamp struct {
	Kind Kind
	At   time.Time
}

// Slot is a capacity-one delivery channel where the first published
// timestamp wins. Later publishes are dropped, never blocked.
//
// A Slot has one producer and one consumer. Publishing after the consumer
// has stopped listening is a no-op.
type Slot struct {
	kind Kind
	ch   chan Timestamp
}

// NewSlot creates an empty slot for the given kind.
func NewSlot(kind Kind) *Slot {
	return &Slot{
		kind: kind,
		ch:   make(chan Timestamp, 1),
	}
}

// Kind returns the kind of timestamp carried by this slot.
func (s *Slot) Kind() Kind {
	return s.kind
}

// Publish offers the instant to the slot.
// Returns false if a timestamp was already published.
func (s *Slot) Publish(at time.Time) bool {
	select {
	case s.ch <- Timestamp{Kind: s.kind, At: at}:
		return true
	default:
		return false
	}
}

// C returns the receive side of the slot.
func (s *Slot) C() <-chan Timestamp {
	return s.ch
}

// TryReceive returns the published timestamp without blocking.
func (s *Slot) TryReceive() (Timestamp, bool) {
	select {
	case ts := <-s.ch:
		return ts, true
	default:
		return Timestamp{}, false
	}
}
