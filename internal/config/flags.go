package config

import (
	"github.com/spf13/pflag"
)

// BindFlags registers the sweep flags on fs. Defaults are taken from cfg,
// so environment overrides applied beforehand show up as flag defaults
// and flags given on the command line win.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	// Timing
	fs.DurationVar(&cfg.Deadline, "deadline", cfg.Deadline, "Upper bound for one candidate run (env "+EnvDeadline+" in ms)")
	fs.DurationVar(&cfg.PreActionDelay, "pre-delay", cfg.PreActionDelay, "Wait after starting a listener before sending the action (env "+EnvPreDelay+" in ms)")
	fs.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "Deadline re-check interval")
	fs.DurationVar(&cfg.Grace, "grace", cfg.Grace, "Time between SIGTERM and SIGKILL when stopping a listener")
	fs.DurationVar(&cfg.SenderTimeout, "sender-timeout", cfg.SenderTimeout, "Kill the action sender after this long")

	// Target
	fs.StringVar(&cfg.ProjectRoot, "project-root", cfg.ProjectRoot, "Directory candidate dirs are relative to (env "+EnvProjectRoot+"; default parent of the working directory)")
	fs.StringVar(&cfg.TargetAddress, "target", cfg.TargetAddress, "Address the action is sent to and listeners watch (env "+EnvTarget+")")
	fs.StringVar(&cfg.Marker, "marker", cfg.Marker, "Substring a listener prints on detection (env "+EnvMarker+")")

	// Candidates
	fs.StringVar(&cfg.CandidatesFile, "candidates", cfg.CandidatesFile, "YAML or TOML file with sender and candidates (default built-in list)")
	fs.StringSliceVar(&cfg.Only, "only", cfg.Only, "Run only the candidates with these labels (repeatable)")
	fs.IntVar(&cfg.TailLines, "tail", cfg.TailLines, "Listener lines to keep for failed runs")

	// Observability
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Serve Prometheus metrics on this address (default disabled)")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write metrics in text format to this file after the sweep")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose logging (debug level with source)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json", "text" or "pretty"`)
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, `Log level: "debug", "info", "warn" or "error"`)

	// Output
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "Print the report as JSON instead of a table")
	fs.BoolVar(&cfg.TUI, "tui", cfg.TUI, "Show a live terminal dashboard")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored output")

	// Safety
	fs.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "Skip preflight checks")
	fs.StringVar(&cfg.LockFile, "lock-file", cfg.LockFile, "Sweep lock file (default <project root>/"+DefaultLockName+")")
}
