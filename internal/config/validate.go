package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/randomizedcoder/go-listener-bench/internal/logging"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or every problem found joined together.
func Validate(cfg *Config) error {
	var errs []error

	// Timing
	if cfg.Deadline <= 0 {
		errs = append(errs, ValidationError{Field: "deadline", Message: "must be positive"})
	}
	if cfg.PreActionDelay < 0 {
		errs = append(errs, ValidationError{Field: "pre_action_delay", Message: "must not be negative"})
	}
	if cfg.Deadline > 0 && cfg.PreActionDelay >= cfg.Deadline {
		errs = append(errs, ValidationError{
			Field:   "pre_action_delay",
			Message: fmt.Sprintf("must be shorter than the deadline (%v >= %v)", cfg.PreActionDelay, cfg.Deadline),
		})
	}
	if cfg.PollInterval <= 0 {
		errs = append(errs, ValidationError{Field: "poll_interval", Message: "must be positive"})
	}
	if cfg.Grace <= 0 {
		errs = append(errs, ValidationError{Field: "grace", Message: "must be positive"})
	}
	if cfg.SenderTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "sender_timeout", Message: "must be positive"})
	}

	// Target
	if strings.TrimSpace(cfg.TargetAddress) == "" {
		errs = append(errs, ValidationError{Field: "target_address", Message: "must not be empty"})
	}
	if cfg.Marker == "" {
		errs = append(errs, ValidationError{Field: "marker", Message: "must not be empty"})
	}

	// Candidates
	errs = append(errs, validateCandidates(cfg)...)

	if len(cfg.Sender.Command) == 0 || cfg.Sender.Command[0] == "" {
		errs = append(errs, ValidationError{Field: "sender.command", Message: "must not be empty"})
	}
	if cfg.TailLines < 0 {
		errs = append(errs, ValidationError{Field: "tail_lines", Message: "must not be negative"})
	}

	// Observability
	if !logging.ValidFormat(cfg.LogFormat) {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json', 'text' or 'pretty' (got %q)", cfg.LogFormat),
		})
	}
	if !logging.ValidLevel(cfg.LogLevel) {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be 'debug', 'info', 'warn' or 'error' (got %q)", cfg.LogLevel),
		})
	}

	// Output
	if cfg.JSON && cfg.TUI {
		errs = append(errs, ValidationError{Field: "json", Message: "cannot be combined with --tui"})
	}

	// Return combined errors
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func validateCandidates(cfg *Config) []error {
	var errs []error

	if len(cfg.Candidates) == 0 {
		return append(errs, ValidationError{Field: "candidates", Message: "at least one candidate is required"})
	}

	labels := mapset.NewSet[string]()
	for i, cc := range cfg.Candidates {
		field := fmt.Sprintf("candidates[%d]", i)
		if strings.TrimSpace(cc.Label) == "" {
			errs = append(errs, ValidationError{Field: field + ".label", Message: "must not be empty"})
		} else if !labels.Add(cc.Label) {
			errs = append(errs, ValidationError{Field: field + ".label", Message: fmt.Sprintf("duplicate label %q", cc.Label)})
		}
		if len(cc.Command) == 0 || cc.Command[0] == "" {
			errs = append(errs, ValidationError{Field: field + ".command", Message: "must not be empty"})
		}
	}

	if len(cfg.Only) > 0 {
		unknown := mapset.NewSet(cfg.Only...).Difference(labels)
		if unknown.Cardinality() > 0 {
			names := unknown.ToSlice()
			slices.Sort(names)
			errs = append(errs, ValidationError{
				Field:   "only",
				Message: fmt.Sprintf("unknown candidate labels: %s", strings.Join(names, ", ")),
			})
		}
	}

	return errs
}
