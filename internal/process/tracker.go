package process

import "sync/atomic"

// Tracker counts spawned processes that have not been reaped yet.
type Tracker struct {
	live atomic.Int64
	peak atomic.Int64

	onChange func(live, peak int64)
}

// NewTracker creates a tracker. onChange, if non-nil, is called after
// every start and reap with the updated counts.
func NewTracker(onChange func(live, peak int64)) *Tracker {
	return &Tracker{onChange: onChange}
}

func (t *Tracker) started() {
	if t == nil {
		return
	}
	live := t.live.Add(1)
	for {
		peak := t.peak.Load()
		if live <= peak || t.peak.CompareAndSwap(peak, live) {
			break
		}
	}
	t.notify()
}

func (t *Tracker) released() {
	if t == nil {
		return
	}
	t.live.Add(-1)
	t.notify()
}

func (t *Tracker) notify() {
	if t.onChange != nil {
		t.onChange(t.live.Load(), t.peak.Load())
	}
}

// Live returns the number of processes currently alive.
func (t *Tracker) Live() int64 {
	if t == nil {
		return 0
	}
	return t.live.Load()
}

// Peak returns the highest Live value observed.
func (t *Tracker) Peak() int64 {
	if t == nil {
		return 0
	}
	return t.peak.Load()
}
