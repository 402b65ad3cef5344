// Package config provides configuration management for listener-bench.
package config

import (
	"path/filepath"
	"time"

	"github.com/randomizedcoder/go-listener-bench/internal/process"
)

// DefaultTargetAddress is the account the bundled sender touches and the
// bundled listeners subscribe to.
const DefaultTargetAddress = "CSg4fcG4WqaVgTE33gzquXYGKAuZpikNWKQ4P4y71kke"

// DefaultMarker is the substring a listener prints on detection.
const DefaultMarker = "RECEIVED"

// DefaultLockName is the lock file created under the project root.
const DefaultLockName = ".listener-bench.lock"

// CandidateConfig describes one listener to benchmark.
type CandidateConfig struct {
	Label   string   `json:"label" yaml:"label" toml:"label"`
	Dir     string   `json:"dir" yaml:"dir" toml:"dir"`
	Command []string `json:"command" yaml:"command" toml:"command"`
	Env     []string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`
}

// SenderConfig describes the action-sender command.
type SenderConfig struct {
	Dir     string   `json:"dir" yaml:"dir" toml:"dir"`
	Command []string `json:"command" yaml:"command" toml:"command"`
	Env     []string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`
}

// Config holds all configuration options for a sweep.
type Config struct {
	// Timing
	Deadline       time.Duration `json:"deadline"`
	PreActionDelay time.Duration `json:"pre_action_delay"`
	PollInterval   time.Duration `json:"poll_interval"`
	Grace          time.Duration `json:"grace"`
	SenderTimeout  time.Duration `json:"sender_timeout"`

	// Target
	ProjectRoot   string `json:"project_root"` // "" = parent of the working directory
	TargetAddress string `json:"target_address"`
	Marker        string `json:"marker"`

	// Candidates
	CandidatesFile string            `json:"candidates_file"`
	Only           []string          `json:"only"`
	Candidates     []CandidateConfig `json:"candidates"`
	Sender         SenderConfig      `json:"sender"`
	TailLines      int               `json:"tail_lines"`

	// Observability
	MetricsAddr string `json:"metrics_addr"` // "" = disabled
	MetricsFile string `json:"metrics_file"`
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text, pretty
	LogLevel    string `json:"log_level"`

	// Output
	JSON    bool `json:"json"`
	TUI     bool `json:"tui"`
	NoColor bool `json:"no_color"`

	// Safety
	SkipPreflight bool   `json:"skip_preflight"`
	LockFile      string `json:"lock_file"` // "" = <project root>/.listener-bench.lock
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		// Timing
		Deadline:       30 * time.Second,
		PreActionDelay: 5 * time.Second,
		PollInterval:   10 * time.Millisecond,
		Grace:          process.DefaultGrace,
		SenderTimeout:  process.DefaultSenderTimeout,

		// Target
		TargetAddress: DefaultTargetAddress,
		Marker:        DefaultMarker,

		// Candidates
		Candidates: DefaultCandidates(),
		Sender:     DefaultSender(),
		TailLines:  10,

		// Observability
		LogFormat: "text",
		LogLevel:  "info",
	}
}

// DefaultCandidates returns the built-in candidate list, in execution
// order. Directories are relative to the project root.
func DefaultCandidates() []CandidateConfig {
	return []CandidateConfig{
		{Label: "TypeScript (Helius HTTP)", Dir: "ts", Command: []string{"npm", "run", "helius:http"}},
		{Label: "TypeScript (Helius WSS)", Dir: "ts", Command: []string{"npm", "run", "helius:wss"}},
		{Label: "TypeScript (Native)", Dir: "ts", Command: []string{"npm", "run", "native"}},
		{Label: "Rust (Helius)", Dir: "rust", Command: []string{"target/debug/helius"}},
		{Label: "Rust (Native)", Dir: "rust", Command: []string{"target/debug/native"}},
	}
}

// DefaultSender returns the built-in action sender.
func DefaultSender() SenderConfig {
	return SenderConfig{Dir: "ts", Command: []string{"npm", "run", "send"}}
}

// Dir resolves a candidate or sender directory against the project root.
func (c *Config) Dir(dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(c.ProjectRoot, dir)
}

// CandidateCommand builds the process command for cc.
func (c *Config) CandidateCommand(cc CandidateConfig) process.Command {
	return process.NewCommand(c.Dir(cc.Dir), cc.Command, cc.Env...)
}

// SenderCommand builds the process command for the sender.
func (c *Config) SenderCommand() process.Command {
	return process.NewCommand(c.Dir(c.Sender.Dir), c.Sender.Command, c.Sender.Env...)
}
