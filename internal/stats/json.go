package stats

import (
	"encoding/json"
	"io"
	"time"
)

type jsonReport struct {
	RunID      string        `json:"run_id"`
	Started    time.Time     `json:"started"`
	Finished   time.Time     `json:"finished"`
	DurationMs float64       `json:"duration_ms"`
	Config     jsonConfig    `json:"config"`
	Detected   int           `json:"detected"`
	Failed     int           `json:"failed"`
	Outcomes   []jsonOutcome `json:"outcomes"`
}

type jsonConfig struct {
	Target           string  `json:"target"`
	Marker           string  `json:"marker"`
	ProjectRoot      string  `json:"project_root"`
	DeadlineMs       float64 `json:"deadline_ms"`
	PreActionDelayMs float64 `json:"pre_action_delay_ms"`
}

type jsonOutcome struct {
	Label      string   `json:"label"`
	Result     Result   `json:"result"`
	LatencyMs  *float64 `json:"latency_ms"`
	Reason     string   `json:"reason,omitempty"`
	ExitCode   *int     `json:"exit_code,omitempty"`
	DurationMs float64  `json:"duration_ms"`
	SenderErr  string   `json:"sender_error,omitempty"`
	LinesRead  int64    `json:"lines_read"`
	LastLines  []string `json:"last_lines,omitempty"`
}

// WriteJSON writes r as an indented JSON document. Runs without a
// detection have a null latency_ms.
func WriteJSON(w io.Writer, r *Report) error {
	detected, failed := r.Counts()
	doc := jsonReport{
		RunID:      r.Info.RunID,
		Started:    r.Started,
		Finished:   r.Finished,
		DurationMs: Milliseconds(r.Duration()),
		Config: jsonConfig{
			Target:           r.Info.Target,
			Marker:           r.Info.Marker,
			ProjectRoot:      r.Info.ProjectRoot,
			DeadlineMs:       Milliseconds(r.Info.Deadline),
			PreActionDelayMs: Milliseconds(r.Info.PreActionDelay),
		},
		Detected: detected,
		Failed:   failed,
		Outcomes: make([]jsonOutcome, 0, len(r.Outcomes)),
	}

	for _, o := range r.Outcomes {
		jo := jsonOutcome{
			Label:      o.Label,
			Result:     o.Result,
			DurationMs: Milliseconds(o.Duration),
			SenderErr:  o.SenderErr,
			LinesRead:  o.LinesRead,
		}
		if d, ok := o.Latency(); ok {
			ms := Milliseconds(d)
			jo.LatencyMs = &ms
		} else {
			jo.Reason = o.Reason
			jo.LastLines = o.LastLines
		}
		if o.ExitCode >= 0 {
			code := o.ExitCode
			jo.ExitCode = &code
		}
		doc.Outcomes = append(doc.Outcomes, jo)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
