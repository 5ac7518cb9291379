package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultConfigTemplate is the sample configuration written by 'muster init'.
// It must stay loadable: Load on the generated file has to succeed.
const defaultConfigTemplate = `# Muster Configuration File
#
# Generated by 'muster init'. Any value here can be overridden with a
# MUSTER_* environment variable, e.g. MUSTER_LOGGING_LEVEL=DEBUG.

logging:
  # Log level: DEBUG, INFO, WARN, ERROR
  level: "INFO"
  # Log format: text, json
  format: "text"
  # Log output: stdout, stderr, or a file path
  output: "stdout"

# Machine identity. Bare account references ("alice") are qualified with
# this name, and directory records are created under it. Defaults to the
# operating system hostname when unset.
# machine:
#   name: "WORKSTATION"

# Account directory backend: memory, badger, or sql.
directory:
  backend: "badger"
  # badger:
  #   path: "/var/lib/muster/directory"
  # sql:
  #   type: "sqlite"            # sqlite or postgres
  #   sqlite:
  #     path: "/var/lib/muster/directory.db"
  #   postgres:
  #     host: "localhost"
  #     port: 5432
  #     database: "muster"
  #     user: "muster"
  #     password: ""
  #     sslmode: "disable"

# Reconciliation journal. Kept in memory unless a path is configured.
# journal:
#   path: "/var/lib/muster/journal"

# Desired-state rosters: a single file or a directory of *.yaml files.
# roster:
#   path: "/etc/muster/roster.d"

# Reconciliation agent.
agent:
  # Cron schedule for periodic sweeps: "@every 1h", "0 * * * *", "@hourly".
  # Empty disables scheduled sweeps.
  # schedule: "@every 1h"
  # Rerun reconciliation when roster files change on disk.
  watch: false
  # Collapse bursts of roster file events into a single sweep.
  debounce: 2s
  # Compute and journal plans without applying them.
  dry_run: false

# REST API server.
api:
  port: 8540

# Prometheus metrics endpoint (opt-in).
metrics:
  enabled: false
  # port: 9090

# OpenTelemetry tracing (opt-in).
# telemetry:
#   enabled: true
#   endpoint: "localhost:4317"
#   insecure: true
`

// InitConfig creates a sample configuration file at the default location.
//
// Parameters:
//   - force: Overwrite an existing config file
//
// Returns:
//   - string: Path of the created config file
//   - error: If the file exists (without force) or writing fails
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath creates a sample configuration file at the given path,
// creating parent directories as needed.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
