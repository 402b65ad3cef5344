package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvDeadline    = "DURATION_MS"
	EnvPreDelay    = "PRE_TX_DELAY_MS"
	EnvProjectRoot = "PROJECT_ROOT"
	EnvTarget      = "LISTEN_ADDRESS"
	EnvMarker      = "DETECTION_MARKER"
)

// LoadDotEnv loads KEY=value pairs from path into the process
// environment. Variables already set are not overridden. A missing file
// is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load returns the defaults with environment overrides applied.
// lookup is usually os.LookupEnv.
func Load(lookup func(string) (string, bool)) (*Config, error) {
	cfg := DefaultConfig()
	return cfg, ApplyEnv(cfg, lookup)
}

// ApplyEnv overrides cfg from the environment. Invalid values are
// reported as joined ValidationErrors; valid ones are still applied.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	if d, ok, err := envMillis(lookup, EnvDeadline); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.Deadline = d
	}

	if d, ok, err := envMillis(lookup, EnvPreDelay); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.PreActionDelay = d
	}

	if v, ok := lookup(EnvProjectRoot); ok && strings.TrimSpace(v) != "" {
		cfg.ProjectRoot = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvTarget); ok && strings.TrimSpace(v) != "" {
		cfg.TargetAddress = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvMarker); ok && v != "" {
		cfg.Marker = v
	}

	return errors.Join(errs...)
}

// maxMillis is the largest millisecond count a time.Duration can hold.
const maxMillis = math.MaxInt64 / int64(time.Millisecond)

// envMillis parses a non-negative integer millisecond value.
func envMillis(lookup func(string) (string, bool), key string) (time.Duration, bool, error) {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, false, nil
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false, ValidationError{Field: key, Message: fmt.Sprintf("must be an integer number of milliseconds (got %q)", raw)}
	}
	if ms < 0 {
		return 0, false, ValidationError{Field: key, Message: fmt.Sprintf("must not be negative (got %d)", ms)}
	}
	if ms > maxMillis {
		return 0, false, ValidationError{Field: key, Message: fmt.Sprintf("must be at most %d (got %d)", maxMillis, ms)}
	}
	return time.Duration(ms) * time.Millisecond, true, nil
}

// Resolve fills in derived paths: an absolute project root (the parent
// of the working directory when unset) and the lock file location.
func (c *Config) Resolve() error {
	if c.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determining working directory: %w", err)
		}
		c.ProjectRoot = filepath.Dir(wd)
	}

	root, err := filepath.Abs(c.ProjectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root %q: %w", c.ProjectRoot, err)
	}
	c.ProjectRoot = root

	if c.LockFile == "" {
		c.LockFile = filepath.Join(c.ProjectRoot, DefaultLockName)
	}
	return nil
}
