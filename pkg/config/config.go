package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/musterio/muster/pkg/api"
	"github.com/musterio/muster/pkg/directory/sqldir"
)

// Config represents the Muster configuration.
//
// This structure captures the static configuration of the muster daemon:
//   - Logging configuration
//   - Telemetry/tracing configuration
//   - Machine identity (the local domain accounts are qualified with)
//   - Directory backend (where accounts and memberships live)
//   - Journal (reconciliation audit trail)
//   - Roster loading and the reconciliation agent
//   - Metrics and API server settings
//
// Accounts, groups, and memberships themselves are dynamic state managed
// through the REST API and the roster files, not through this file.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (MUSTER_*)
//  3. Configuration file (YAML or TOML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Machine sets the identity of the computer whose groups are managed.
	Machine MachineConfig `mapstructure:"machine" yaml:"machine"`

	// Directory configures the account directory backend (memory, badger,
	// or sql). This is the store reconciliation reads from and writes to.
	Directory DirectoryConfig `mapstructure:"directory" yaml:"directory"`

	// Journal configures the reconciliation audit trail.
	Journal JournalConfig `mapstructure:"journal" yaml:"journal"`

	// Roster configures desired-state roster loading.
	Roster RosterConfig `mapstructure:"roster" yaml:"roster"`

	// Agent configures the reconciliation agent (scheduled sweeps,
	// roster watching, debounce).
	Agent AgentConfig `mapstructure:"agent" yaml:"agent"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// API contains REST API server configuration
	API api.Config `mapstructure:"api" yaml:"api"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
// When enabled, trace data is exported to an OTLP-compatible collector
// (e.g., Jaeger, Tempo, or any OTLP receiver).
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false (opt-in for telemetry)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317" (standard OTLP gRPC port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use insecure (non-TLS) connection
	// Default: true (for local development)
	// Set to false in production with a TLS-enabled collector
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// 1.0 = sample all traces, 0.5 = sample 50%, 0.0 = no sampling
	// Default: 1.0 (sample all)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
// When enabled, CPU and memory profiles are continuously sent to a Pyroscope
// server for flame graph visualization and performance analysis.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	// Default: false (opt-in for profiling)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL)
	// Default: "http://localhost:4040" (standard Pyroscope port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	// Valid values: cpu, alloc_objects, alloc_space, inuse_objects, inuse_space,
	//               goroutines, mutex_count, mutex_duration, block_count, block_duration
	// Default: ["cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"]
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MachineConfig sets the identity of the computer muster manages.
//
// Bare account references in rosters and API requests are qualified with
// the machine name, and directory stores use it as the local domain of
// the records they create.
type MachineConfig struct {
	// Name overrides the machine name. Empty means use the operating
	// system hostname. Set this when the hostname is not the name
	// accounts should be qualified with (containers, test fixtures).
	Name string `mapstructure:"name" yaml:"name,omitempty"`
}

// ResolveName returns the configured machine name, falling back to the
// operating system hostname when no override is set.
func (c MachineConfig) ResolveName() (string, error) {
	if c.Name != "" {
		return c.Name, nil
	}
	name, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to determine machine name: %w", err)
	}
	return name, nil
}

// Directory backend names accepted by DirectoryConfig.Backend.
const (
	// BackendMemory keeps the directory in process memory. State is lost
	// on restart; intended for tests and throwaway runs.
	BackendMemory = "memory"

	// BackendBadger stores the directory in an embedded BadgerDB.
	// Single-node default.
	BackendBadger = "badger"

	// BackendSQL stores the directory in SQLite or PostgreSQL via GORM.
	BackendSQL = "sql"
)

// DirectoryConfig configures the account directory backend.
type DirectoryConfig struct {
	// Backend selects the directory store implementation.
	// Valid values: memory, badger, sql
	// Default: badger
	Backend string `mapstructure:"backend" validate:"required,oneof=memory badger sql" yaml:"backend"`

	// Badger configures the badger backend.
	Badger BadgerConfig `mapstructure:"badger" yaml:"badger,omitempty"`

	// SQL configures the sql backend (SQLite or PostgreSQL).
	SQL sqldir.Config `mapstructure:"sql" yaml:"sql,omitempty"`
}

// BadgerConfig configures the embedded BadgerDB directory backend.
type BadgerConfig struct {
	// Path is the directory holding the database files.
	// Default: $XDG_CONFIG_HOME/muster/directory
	Path string `mapstructure:"path" yaml:"path"`
}

// JournalConfig configures the reconciliation audit trail.
//
// Every applied plan is journaled regardless of this setting; the journal
// lives in process memory unless a path is configured, in which case it
// is persisted to an embedded BadgerDB and survives restarts.
type JournalConfig struct {
	// Path is the directory holding the journal database.
	// Empty keeps the journal in memory only.
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

// RosterConfig configures desired-state roster loading.
type RosterConfig struct {
	// Path points at a roster file or a directory of roster files
	// (*.yaml, *.yml). Empty means no roster: the agent idles and
	// reconciliation happens only through the API.
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

// AgentConfig configures the reconciliation agent.
type AgentConfig struct {
	// Schedule is a cron expression for periodic sweeps, in the standard
	// five-field syntax or a descriptor like "@every 1h". Empty disables
	// scheduled sweeps; the agent still sweeps once at startup and on
	// roster changes when watching is enabled.
	Schedule string `mapstructure:"schedule" yaml:"schedule,omitempty"`

	// Watch reruns reconciliation when roster files change on disk.
	// Default: false
	Watch bool `mapstructure:"watch" yaml:"watch"`

	// Debounce delays watcher-triggered sweeps so a burst of file events
	// (editor save, rsync) collapses into a single run.
	// Default: 2s
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce,omitempty"`

	// DryRun computes and journals plans without applying them.
	// Default: false
	DryRun bool `mapstructure:"dry_run" yaml:"dry_run"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP server are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Load loads configuration from the given path, environment variables,
// and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default locations)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If loading, parsing, or validation fails
//
// When no config file is found, a default configuration is returned so the
// daemon can run without one.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		return GetDefaultConfig(), nil
	}

	// Unmarshal into config struct with custom decode hooks
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
// It checks if the config file exists and provides user-friendly instructions if not.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: User-friendly error with instructions if config not found
func MustLoad(configPath string) (*Config, error) {
	// Determine config path
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  muster init\n\n"+
				"Or specify a custom config file:\n"+
				"  muster <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  muster init --config %s",
				configPath, configPath)
		}
	}

	// Load configuration
	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path.
// The configuration is saved in YAML format using proper yaml tags.
func SaveConfig(cfg *Config, path string) error {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Use yaml.Marshal directly to respect yaml tags
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file with restricted permissions (0600 = owner read/write only).
	// Config files may carry database credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Set up environment variable support
	// Environment variables use MUSTER_ prefix and underscores
	// Example: MUSTER_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("MUSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Configure config file search
	if configPath != "" {
		// Use explicitly specified config file
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/muster/config.{yaml,toml}
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml") // Primary format
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		// Check if error is "config file not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is acceptable - use defaults
			return false, nil
		}
		// Also check for os.PathError when explicit config file doesn't exist
		if os.IsNotExist(err) {
			// Config file not found is acceptable - use defaults
			return false, nil
		}
		// Other errors are problems
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
// This includes time.Duration parsing and comma-separated lists from
// environment variables.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to time.Duration
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse duration string like "30s", "5m", "1h"
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	// Check XDG_CONFIG_HOME
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "muster")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, use current directory as last resort
		return "."
	}

	return filepath.Join(home, ".config", "muster")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
