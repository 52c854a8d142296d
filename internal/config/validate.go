package config

import (
	"errors"
	"fmt"
)

// ValidationError describes one invalid config field, in the style of
// the teacher's config.ValidationError.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// validateConfig checks all fields for validity, joining every
// violation found rather than stopping at the first.
func validateConfig(cfg *Config) error {
	var errs []error

	if cfg.Parallelism < 1 {
		errs = append(errs, &ValidationError{
			Field:   "parallelism",
			Value:   cfg.Parallelism,
			Message: "must be at least 1",
		})
	}

	if cfg.BuildFile == "" {
		errs = append(errs, &ValidationError{
			Field:   "build_file",
			Value:   cfg.BuildFile,
			Message: "must not be empty",
		})
	}

	if cfg.HistoryDB == "" {
		errs = append(errs, &ValidationError{
			Field:   "history_db",
			Value:   cfg.HistoryDB,
			Message: "must not be empty",
		})
	}

	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, &ValidationError{
			Field:   "log_level",
			Value:   cfg.LogLevel,
			Message: "must be one of debug, info, warn, error",
		})
	}

	for name, limit := range cfg.Resources {
		if limit < 1 {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("resources.%s", name),
				Value:   limit,
				Message: "must be at least 1",
			})
		}
	}

	return errors.Join(errs...)
}
