// Package metrics provides Prometheus metrics for listener-bench.
//
// Every collector owns its metric vectors and registers them on the
// registerer it is given, so tests can use an isolated registry.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/randomizedcoder/go-listener-bench/internal/stats"
)

const namespace = "listener_bench"

// Latency buckets span 5ms to ~20s.
var latencyBuckets = prometheus.ExponentialBuckets(0.005, 2, 13)

// Run duration buckets span 250ms to ~4m.
var runDurationBuckets = prometheus.ExponentialBuckets(0.25, 2, 11)

// Collector manages all Prometheus metrics for a sweep.
type Collector struct {
	info             *prometheus.GaugeVec
	candidates       prometheus.Gauge
	runsTotal        *prometheus.CounterVec
	detectionLatency *prometheus.HistogramVec
	runDuration      *prometheus.HistogramVec
	senderRunsTotal  prometheus.Counter
	senderFailures   prometheus.Counter
	outputLines      *prometheus.CounterVec
	listenerExits    *prometheus.CounterVec
	liveProcesses    prometheus.Gauge
	peakProcesses    prometheus.Gauge

	mu        sync.Mutex
	results   map[stats.Result]int
	peakLive  int64
	startTime time.Time
}

// CollectorConfig holds configuration for the collector.
type CollectorConfig struct {
	Version    string
	RunID      string
	Target     string
	Candidates int
}

// NewCollector creates a new metrics collector on the default registry.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector with a custom registry.
// Useful for testing.
func NewCollectorWithRegistry(cfg CollectorConfig, registry prometheus.Registerer) *Collector {
	c := &Collector{
		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "info",
				Help:      "Information about the sweep (value always 1)",
			},
			[]string{"version", "run_id", "target"},
		),
		candidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "candidates",
			Help:      "Number of candidates in the sweep",
		}),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Completed candidate runs by result",
			},
			[]string{"result"},
		),
		detectionLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "detection_latency_seconds",
				Help:      "Time from action sent to change detected",
				Buckets:   latencyBuckets,
			},
			[]string{"candidate"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of a candidate run including setup and teardown",
				Buckets:   runDurationBuckets,
			},
			[]string{"candidate"},
		),
		senderRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sender_runs_total",
			Help:      "Action sender invocations",
		}),
		senderFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sender_failures_total",
			Help:      "Action sender invocations that failed",
		}),
		outputLines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "output_lines_total",
				Help:      "Lines read from listener stdout",
			},
			[]string{"candidate"},
		),
		listenerExits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "listener_exits_total",
				Help:      "Listeners that exited on their own, by category",
			},
			[]string{"category"},
		),
		liveProcesses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_processes",
			Help:      "Listener processes currently alive",
		}),
		peakProcesses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peak_live_processes",
			Help:      "Highest number of listener processes alive at once",
		}),
		results:   make(map[stats.Result]int),
		startTime: time.Now(),
	}

	registry.MustRegister(
		c.info,
		c.candidates,
		c.runsTotal,
		c.detectionLatency,
		c.runDuration,
		c.senderRunsTotal,
		c.senderFailures,
		c.outputLines,
		c.listenerExits,
		c.liveProcesses,
		c.peakProcesses,
	)

	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	c.info.WithLabelValues(version, cfg.RunID, cfg.Target).Set(1)
	c.candidates.Set(float64(cfg.Candidates))

	return c
}

// =============================================================================
// Event Recording Methods
// =============================================================================

// RecordOutcome records a finished candidate run.
func (c *Collector) RecordOutcome(o stats.Outcome) {
	c.runsTotal.WithLabelValues(string(o.Result)).Inc()
	if d, ok := o.Latency(); ok {
		c.detectionLatency.WithLabelValues(o.Label).Observe(d.Seconds())
	}
	if o.Result != stats.ResultSkipped {
		c.runDuration.WithLabelValues(o.Label).Observe(o.Duration.Seconds())
	}
	if o.ExitCode >= 0 {
		c.RecordExit(o.ExitCode)
	}

	c.mu.Lock()
	c.results[o.Result]++
	c.mu.Unlock()
}

// RecordExit records a listener that exited before being terminated.
func (c *Collector) RecordExit(exitCode int) {
	// Categorize exit code
	category := "error"
	if exitCode == 0 {
		category = "success"
	} else if exitCode > 128 {
		category = "signal"
	}
	c.listenerExits.WithLabelValues(category).Inc()
}

// SenderFinished records one action sender invocation.
func (c *Collector) SenderFinished(err error) {
	c.senderRunsTotal.Inc()
	if err != nil {
		c.senderFailures.Inc()
	}
}

// OutputLine counts one listener output line.
func (c *Collector) OutputLine(candidate string) {
	c.outputLines.WithLabelValues(candidate).Inc()
}

// SetProcesses updates the live and peak listener process gauges.
func (c *Collector) SetProcesses(live, peak int64) {
	c.liveProcesses.Set(float64(live))

	c.mu.Lock()
	if peak > c.peakLive {
		c.peakLive = peak
	}
	c.peakProcesses.Set(float64(c.peakLive))
	c.mu.Unlock()
}

// =============================================================================
// Summary Accessors
// =============================================================================

// Results returns a copy of the per-result run counts.
func (c *Collector) Results() map[stats.Result]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[stats.Result]int, len(c.results))
	for r, n := range c.results {
		out[r] = n
	}
	return out
}

// PeakProcesses returns the peak live listener count.
func (c *Collector) PeakProcesses() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peakLive
}

// Uptime returns the time since the collector was created.
func (c *Collector) Uptime() time.Duration {
	return time.Since(c.startTime)
}
