package config

import (
	"fmt"
	"time"
)

// Validate validates the configuration
func Validate(cfg *Config) error {
	// Version check
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (only version 1 is supported)", cfg.Version)
	}

	// Validate fetch settings
	if cfg.Fetch != nil {
		if cfg.Fetch.MaxAttempts < 1 {
			return fmt.Errorf("invalid max_attempts: %d (must be at least 1)", cfg.Fetch.MaxAttempts)
		}
		if err := validateDuration("backoff_base", cfg.Fetch.BackoffBase); err != nil {
			return err
		}
		if err := validateDuration("timeout", cfg.Fetch.Timeout); err != nil {
			return err
		}
	}

	// Validate lock settings
	if cfg.Locks != nil && cfg.Locks.MinAge != "" {
		if err := validateDuration("min_age", cfg.Locks.MinAge); err != nil {
			return err
		}
	}

	// Validate output format
	if cfg.Output != nil && cfg.Output.Format != "" {
		switch cfg.Output.Format {
		case "text", "json":
			// valid
		default:
			return fmt.Errorf("invalid output format: %s (must be 'text' or 'json')", cfg.Output.Format)
		}
	}

	// Validate output color
	if cfg.Output != nil && cfg.Output.Color != "" {
		switch cfg.Output.Color {
		case "auto", "always", "never":
			// valid
		default:
			return fmt.Errorf("invalid color mode: %s (must be 'auto', 'always', or 'never')", cfg.Output.Color)
		}
	}

	return nil
}

func validateDuration(name, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s duration: %q", name, value)
	}
	if d < 0 {
		return fmt.Errorf("invalid %s duration: %q (must not be negative)", name, value)
	}
	return nil
}
