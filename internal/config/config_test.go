package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Deadline != 30*time.Second {
		t.Errorf("Deadline = %v, want 30s", cfg.Deadline)
	}
	if cfg.PreActionDelay != 5*time.Second {
		t.Errorf("PreActionDelay = %v, want 5s", cfg.PreActionDelay)
	}
	if cfg.Marker != "RECEIVED" {
		t.Errorf("Marker = %q", cfg.Marker)
	}
	if cfg.TargetAddress != DefaultTargetAddress {
		t.Errorf("TargetAddress = %q", cfg.TargetAddress)
	}
	if cfg.PollInterval != 10*time.Millisecond || cfg.Grace != 500*time.Millisecond {
		t.Errorf("PollInterval, Grace = %v, %v", cfg.PollInterval, cfg.Grace)
	}

	wantLabels := []string{
		"TypeScript (Helius HTTP)",
		"TypeScript (Helius WSS)",
		"TypeScript (Native)",
		"Rust (Helius)",
		"Rust (Native)",
	}
	if len(cfg.Candidates) != len(wantLabels) {
		t.Fatalf("got %d candidates, want %d", len(cfg.Candidates), len(wantLabels))
	}
	for i, want := range wantLabels {
		if cfg.Candidates[i].Label != want {
			t.Errorf("candidate[%d] = %q, want %q", i, cfg.Candidates[i].Label, want)
		}
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(DefaultConfig()) = %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	err := ApplyEnv(cfg, envMap(map[string]string{
		EnvDeadline:    "1500",
		EnvPreDelay:    " 250 ",
		EnvProjectRoot: "/srv/bench",
		EnvTarget:      "Addr2222",
		EnvMarker:      "CHANGED",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Deadline != 1500*time.Millisecond {
		t.Errorf("Deadline = %v", cfg.Deadline)
	}
	if cfg.PreActionDelay != 250*time.Millisecond {
		t.Errorf("PreActionDelay = %v", cfg.PreActionDelay)
	}
	if cfg.ProjectRoot != "/srv/bench" || cfg.TargetAddress != "Addr2222" || cfg.Marker != "CHANGED" {
		t.Errorf("string overrides not applied: %+v", cfg)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{"non-numeric deadline", map[string]string{EnvDeadline: "30s"}, EnvDeadline},
		{"negative delay", map[string]string{EnvPreDelay: "-1"}, EnvPreDelay},
		{"float deadline", map[string]string{EnvDeadline: "1.5"}, EnvDeadline},
		{"overflowing deadline", map[string]string{EnvDeadline: "18446744073710"}, EnvDeadline},
		{"overflowing delay", map[string]string{EnvPreDelay: "9223372036855"}, EnvPreDelay},
		{"beyond int64", map[string]string{EnvDeadline: "99999999999999999999"}, EnvDeadline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := ApplyEnv(cfg, envMap(tt.env))
			if err == nil {
				t.Fatal("ApplyEnv() error = nil")
			}
			var ve ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("error = %v, want ValidationError on %s", err, tt.field)
			}
			if cfg.Deadline != 30*time.Second || cfg.PreActionDelay != 5*time.Second {
				t.Error("invalid value was applied")
			}
		})
	}
}

func TestApplyEnv_LargestMillis(t *testing.T) {
	cfg := DefaultConfig()
	raw := strconv.FormatInt(maxMillis, 10)
	if err := ApplyEnv(cfg, envMap(map[string]string{EnvDeadline: raw})); err != nil {
		t.Fatalf("ApplyEnv(%s) error = %v", raw, err)
	}
	if cfg.Deadline <= 0 || cfg.Deadline != time.Duration(maxMillis)*time.Millisecond {
		t.Errorf("Deadline = %v", cfg.Deadline)
	}
}

func TestApplyEnv_EmptyIgnored(t *testing.T) {
	cfg := DefaultConfig()
	if err := ApplyEnv(cfg, envMap(map[string]string{EnvDeadline: "", EnvTarget: "  "})); err != nil {
		t.Fatal(err)
	}
	if cfg.Deadline != 30*time.Second || cfg.TargetAddress != DefaultTargetAddress {
		t.Errorf("empty values overrode defaults: %v %q", cfg.Deadline, cfg.TargetAddress)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	if err := LoadDotEnv(filepath.Join(dir, ".env")); err != nil {
		t.Errorf("missing .env error = %v, want nil", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("LB_TEST_FROM_FILE=file\nLB_TEST_PRESET=file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LB_TEST_PRESET", "env")
	t.Setenv("LB_TEST_FROM_FILE", "")
	os.Unsetenv("LB_TEST_FROM_FILE")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("LB_TEST_FROM_FILE"); got != "file" {
		t.Errorf("LB_TEST_FROM_FILE = %q, want file", got)
	}
	if got := os.Getenv("LB_TEST_PRESET"); got != "env" {
		t.Errorf("LB_TEST_PRESET = %q, want env (process env wins)", got)
	}
}

func TestBindFlags_Precedence(t *testing.T) {
	cfg, err := Load(envMap(map[string]string{EnvDeadline: "2000", EnvMarker: "FROM_ENV"}))
	if err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, cfg)
	if err := fs.Parse([]string{"--marker", "FROM_FLAG", "--only", "Rust (Native)", "--only", "Rust (Helius)", "-v"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Deadline != 2*time.Second {
		t.Errorf("Deadline = %v, want env value 2s", cfg.Deadline)
	}
	if cfg.Marker != "FROM_FLAG" {
		t.Errorf("Marker = %q, want flag value", cfg.Marker)
	}
	if len(cfg.Only) != 2 || !cfg.Verbose {
		t.Errorf("Only = %v, Verbose = %v", cfg.Only, cfg.Verbose)
	}
	if def := fs.Lookup("deadline").DefValue; def != "2s" {
		t.Errorf("deadline flag default = %q, want the env value", def)
	}
}

func TestResolve(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Resolve(); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if cfg.ProjectRoot != filepath.Dir(wd) {
		t.Errorf("ProjectRoot = %q, want parent of %q", cfg.ProjectRoot, wd)
	}
	if cfg.LockFile != filepath.Join(cfg.ProjectRoot, DefaultLockName) {
		t.Errorf("LockFile = %q", cfg.LockFile)
	}

	cfg = DefaultConfig()
	cfg.ProjectRoot = "relative/root"
	cfg.LockFile = "/tmp/x.lock"
	if err := cfg.Resolve(); err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(cfg.ProjectRoot) {
		t.Errorf("ProjectRoot = %q, want absolute", cfg.ProjectRoot)
	}
	if cfg.LockFile != "/tmp/x.lock" {
		t.Errorf("explicit LockFile overridden: %q", cfg.LockFile)
	}
}

func TestCommands(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProjectRoot = "/repo"

	c := cfg.CandidateCommand(cfg.Candidates[3])
	if c.Dir != filepath.Join("/repo", "rust") || c.Program != "target/debug/helius" {
		t.Errorf("candidate command = %+v", c)
	}

	s := cfg.SenderCommand()
	if s.Dir != filepath.Join("/repo", "ts") || s.String() != "npm run send" {
		t.Errorf("sender command = %+v", s)
	}

	abs := CandidateConfig{Label: "x", Dir: "/elsewhere", Command: []string{"x"}, Env: []string{"A=1"}}
	if c := cfg.CandidateCommand(abs); c.Dir != "/elsewhere" || len(c.Env) != 1 {
		t.Errorf("absolute dir command = %+v", c)
	}
}

func TestSelected(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Selected(); len(got) != 5 {
		t.Errorf("Selected() without Only = %d candidates", len(got))
	}

	// Only order does not matter; configured order is kept.
	cfg.Only = []string{"Rust (Native)", "TypeScript (Native)"}
	got := cfg.Selected()
	if len(got) != 2 || got[0].Label != "TypeScript (Native)" || got[1].Label != "Rust (Native)" {
		t.Errorf("Selected() = %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		fields []string
	}{
		{"zero deadline", func(c *Config) { c.Deadline = 0 }, []string{"deadline"}},
		{"negative delay", func(c *Config) { c.PreActionDelay = -time.Second }, []string{"pre_action_delay"}},
		{"delay past deadline", func(c *Config) { c.PreActionDelay = c.Deadline }, []string{"pre_action_delay"}},
		{"empty marker", func(c *Config) { c.Marker = "" }, []string{"marker"}},
		{"empty target", func(c *Config) { c.TargetAddress = " " }, []string{"target_address"}},
		{"no candidates", func(c *Config) { c.Candidates = nil }, []string{"candidates"}},
		{"duplicate label", func(c *Config) { c.Candidates[1].Label = c.Candidates[0].Label }, []string{"candidates[1].label"}},
		{"empty command", func(c *Config) { c.Candidates[2].Command = nil }, []string{"candidates[2].command"}},
		{"empty sender", func(c *Config) { c.Sender.Command = nil }, []string{"sender.command"}},
		{"unknown only", func(c *Config) { c.Only = []string{"Go (Native)", "Rust (Native)"} }, []string{"only"}},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, []string{"log_format"}},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, []string{"log_level"}},
		{"json and tui", func(c *Config) { c.JSON, c.TUI = true, true }, []string{"json"}},
		{
			"several at once",
			func(c *Config) { c.Deadline = 0; c.Marker = ""; c.Grace = 0 },
			[]string{"deadline", "marker", "grace"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			for _, field := range tt.fields {
				if !strings.Contains(err.Error(), field+":") {
					t.Errorf("error %q does not mention %s", err, field)
				}
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := ValidationError{Field: "deadline", Message: "must be positive"}
	if err.Error() != "deadline: must be positive" {
		t.Errorf("Error() = %q", err.Error())
	}
}
