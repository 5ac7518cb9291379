package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// validate is the shared validator instance. validator.Validate caches
// struct metadata, so a single instance is reused for all checks.
var validate = validator.New()

// Validate checks the configuration against the struct-tag rules plus the
// cross-field rules tags cannot express.
//
// Validation does not mutate the configuration; normalization (such as
// uppercasing the log level) happens in ApplyDefaults.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry is enabled but no endpoint is configured")
	}

	if err := validateDirectory(&cfg.Directory); err != nil {
		return err
	}

	if err := validateAgent(&cfg.Agent, &cfg.Roster); err != nil {
		return err
	}

	return nil
}

// validateDirectory checks backend-specific directory settings.
func validateDirectory(cfg *DirectoryConfig) error {
	switch cfg.Backend {
	case BackendBadger:
		if cfg.Badger.Path == "" {
			return fmt.Errorf("directory backend %q requires badger.path", cfg.Backend)
		}
	case BackendSQL:
		if err := cfg.SQL.Validate(); err != nil {
			return fmt.Errorf("directory sql config: %w", err)
		}
	}
	return nil
}

// validateAgent checks the sweep schedule and watch settings.
func validateAgent(cfg *AgentConfig, roster *RosterConfig) error {
	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			return fmt.Errorf("invalid agent schedule %q: %w", cfg.Schedule, err)
		}
	}

	if cfg.Watch && roster.Path == "" {
		return fmt.Errorf("agent watch is enabled but no roster path is configured")
	}

	if cfg.Debounce < 0 {
		return fmt.Errorf("agent debounce must not be negative, got %v", cfg.Debounce)
	}

	return nil
}
