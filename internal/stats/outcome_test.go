package stats

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestDetected_ClampsNegative(t *testing.T) {
	o := Detected("x", -5*time.Millisecond)
	d, ok := o.Latency()
	if !ok {
		t.Fatal("Latency() ok = false for a detected outcome")
	}
	if d != 0 {
		t.Errorf("Latency() = %v, want 0", d)
	}
}

func TestFailed_HasNoLatency(t *testing.T) {
	for _, r := range []Result{ResultTimeout, ResultOutputClosed, ResultSpawnFailed, ResultCancelled, ResultSkipped} {
		o := Failed("x", r, "")
		if _, ok := o.Latency(); ok {
			t.Errorf("%s: Latency() ok = true", r)
		}
		if o.Reason != string(r) {
			t.Errorf("%s: Reason = %q, want default %q", r, o.Reason, r)
		}
		if o.ExitCode != -1 {
			t.Errorf("%s: ExitCode = %d, want -1", r, o.ExitCode)
		}
	}
}

func TestReport_CountsAndFastest(t *testing.T) {
	r := NewReport(RunInfo{}, time.Now())
	if _, ok := r.Fastest(); ok {
		t.Error("Fastest() on empty report ok = true")
	}

	r.Add(Failed("a", ResultTimeout, ""))
	r.Add(Detected("b", 30*time.Millisecond))
	r.Add(Detected("c", 10*time.Millisecond))

	detected, failed := r.Counts()
	if detected != 2 || failed != 1 {
		t.Errorf("Counts() = %d, %d, want 2, 1", detected, failed)
	}
	best, ok := r.Fastest()
	if !ok || best.Label != "c" {
		t.Errorf("Fastest() = %q, %v, want c", best.Label, ok)
	}
}

func TestReport_DurationBeforeFinish(t *testing.T) {
	r := NewReport(RunInfo{}, time.Now())
	if d := r.Duration(); d != 0 {
		t.Errorf("Duration() = %v before Finish, want 0", d)
	}
}

func TestWriteJSON(t *testing.T) {
	r := sampleReport()
	r.Info.Deadline = 30 * time.Second
	r.Outcomes[1].ExitCode = 143

	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var doc struct {
		RunID    string `json:"run_id"`
		Detected int    `json:"detected"`
		Failed   int    `json:"failed"`
		Config   struct {
			DeadlineMs float64 `json:"deadline_ms"`
		} `json:"config"`
		Outcomes []struct {
			Label     string   `json:"label"`
			Result    string   `json:"result"`
			LatencyMs *float64 `json:"latency_ms"`
			Reason    string   `json:"reason"`
			ExitCode  *int     `json:"exit_code"`
			LastLines []string `json:"last_lines"`
		} `json:"outcomes"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if doc.RunID != "run-1" || doc.Detected != 2 || doc.Failed != 1 {
		t.Errorf("header = %+v", doc)
	}
	if doc.Config.DeadlineMs != 30000 {
		t.Errorf("deadline_ms = %v, want 30000", doc.Config.DeadlineMs)
	}
	if len(doc.Outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(doc.Outcomes))
	}

	if o := doc.Outcomes[0]; o.LatencyMs == nil || *o.LatencyMs != 250 {
		t.Errorf("outcome[0].latency_ms = %v, want 250", o.LatencyMs)
	}
	if o := doc.Outcomes[0]; o.ExitCode != nil {
		t.Errorf("outcome[0].exit_code = %v, want omitted", *o.ExitCode)
	}
	if o := doc.Outcomes[1]; o.ExitCode == nil || *o.ExitCode != 143 {
		t.Errorf("outcome[1].exit_code = %v, want 143", o.ExitCode)
	}
	if o := doc.Outcomes[2]; o.LatencyMs != nil || o.Result != "timeout" || len(o.LastLines) != 3 {
		t.Errorf("outcome[2] = %+v", o)
	}
}
