package stats

import "time"

// RunInfo describes the sweep a report belongs to.
type RunInfo struct {
	RunID          string
	Target         string
	Marker         string
	ProjectRoot    string
	Deadline       time.Duration
	PreActionDelay time.Duration
}

// Report collects outcomes in execution order.
type Report struct {
	Info     RunInfo
	Started  time.Time
	Finished time.Time
	Outcomes []Outcome
}

// NewReport starts a report at the given instant.
func NewReport(info RunInfo, started time.Time) *Report {
	return &Report{Info: info, Started: started}
}

// Add appends an outcome.
func (r *Report) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Finish stamps the end of the sweep.
func (r *Report) Finish(at time.Time) {
	r.Finished = at
}

// Duration returns the wall time of the sweep so far.
func (r *Report) Duration() time.Duration {
	if r.Finished.IsZero() || r.Finished.Before(r.Started) {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Counts returns how many runs measured a latency and how many did not.
func (r *Report) Counts() (detected, failed int) {
	for _, o := range r.Outcomes {
		if o.OK() {
			detected++
		} else {
			failed++
		}
	}
	return detected, failed
}

// Fastest returns the detected outcome with the lowest latency.
func (r *Report) Fastest() (Outcome, bool) {
	var best Outcome
	found := false
	for _, o := range r.Outcomes {
		if !o.OK() {
			continue
		}
		if !found || o.Elapsed < best.Elapsed {
			best, found = o, true
		}
	}
	return best, found
}
