package event

import (
	"sync"
	"testing"
	"time"
)

func TestSlotFirstPublishWins(t *testing.T) {
	s := NewSlot(ChangeDetected)

	first := time.Now()
	second := first.Add(time.Second)

	if !s.Publish(first) {
		t.Fatal("first Publish() = false, want true")
	}
	if s.Publish(second) {
		t.Error("second Publish() = true, want false")
	}

	ts, ok := s.TryReceive()
	if !ok {
		t.Fatal("TryReceive() found nothing")
	}
	if !ts.At.Equal(first) {
		t.Errorf("At = %v, want %v", ts.At, first)
	}
	if ts.Kind != ChangeDetected {
		t.Errorf("Kind = %v, want %v", ts.Kind, ChangeDetected)
	}

	if _, ok := s.TryReceive(); ok {
		t.Error("TryReceive() on drained slot returned a value")
	}
}

func TestSlotConcurrentPublishers(t *testing.T) {
	s := NewSlot(ActionSent)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Publish(time.Now()) {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if accepted != 1 {
		t.Errorf("accepted publishes = %d, want 1", accepted)
	}
}

func TestSlotReceiveViaChannel(t *testing.T) {
	s := NewSlot(ActionSent)
	at := time.Now()

	go s.Publish(at)

	select {
	case ts := <-s.C():
		if ts.Kind != ActionSent {
			t.Errorf("Kind = %v, want %v", ts.Kind, ActionSent)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for timestamp")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{ActionSent, "action_sent"},
		{ChangeDetected, "change_detected"},
		{Kind(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
