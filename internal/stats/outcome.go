// Package stats holds per-candidate run outcomes and renders the sweep report.
package stats

import "time"

// Result classifies how a run ended.
type Result string

const (
	ResultDetected     Result = "detected"
	ResultTimeout      Result = "timeout"
	ResultOutputClosed Result = "output_closed"
	ResultSpawnFailed  Result = "spawn_failed"
	ResultCancelled    Result = "cancelled"
	ResultSkipped      Result = "skipped"
)

// Outcome is the result of one candidate run. Only ResultDetected carries
// a latency; every other result is reported as a timeout row.
type Outcome struct {
	Label  string
	Result Result

	// Elapsed is detected minus sent, never negative.
	Elapsed time.Duration

	// Reason is a short human explanation for non-detected results.
	Reason string

	// ExitCode of the listener when known, -1 otherwise.
	ExitCode int

	// Duration is the wall time of the whole run, setup included.
	Duration time.Duration

	// SenderErr is the action sender's failure, if any. The run still
	// counts the action as attempted.
	SenderErr string

	LinesRead int64
	LastLines []string
}

// Detected returns an outcome with a measured latency. Negative values
// are clamped to zero.
func Detected(label string, elapsed time.Duration) Outcome {
	if elapsed < 0 {
		elapsed = 0
	}
	return Outcome{Label: label, Result: ResultDetected, Reason: string(ResultDetected), Elapsed: elapsed, ExitCode: -1}
}

// Failed returns an outcome without latency.
func Failed(label string, result Result, reason string) Outcome {
	if reason == "" {
		reason = string(result)
	}
	return Outcome{Label: label, Result: result, Reason: reason, ExitCode: -1}
}

// Latency returns the measured latency and whether one exists.
func (o Outcome) Latency() (time.Duration, bool) {
	if o.Result != ResultDetected {
		return 0, false
	}
	return o.Elapsed, true
}

// OK reports whether the run measured a latency.
func (o Outcome) OK() bool {
	return o.Result == ResultDetected
}
