package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_ShutdownTimeout(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
}

func TestApplyDefaults_Directory(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Directory.Backend != BackendBadger {
		t.Errorf("Expected default backend %q, got %q", BackendBadger, cfg.Directory.Backend)
	}
	if cfg.Directory.Badger.Path == "" {
		t.Error("Expected default badger path to be set")
	}

	// The sql backend gets its own defaults applied.
	cfg = &Config{Directory: DirectoryConfig{Backend: BackendSQL}}
	ApplyDefaults(cfg)
	if cfg.Directory.SQL.SQLite.Path == "" {
		t.Error("Expected default sqlite path for sql backend")
	}
}

func TestApplyDefaults_Agent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Agent.Debounce != 2*time.Second {
		t.Errorf("Expected default debounce 2s, got %v", cfg.Agent.Debounce)
	}
	if cfg.Agent.Schedule != "" {
		t.Errorf("Expected no default schedule, got %q", cfg.Agent.Schedule)
	}
}

func TestApplyDefaults_API(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.API.Port != 8540 {
		t.Errorf("Expected default API port 8540, got %d", cfg.API.Port)
	}
	if cfg.API.ReadTimeout != 10*time.Second {
		t.Errorf("Expected default read timeout 10s, got %v", cfg.API.ReadTimeout)
	}
	if cfg.API.WriteTimeout != 10*time.Second {
		t.Errorf("Expected default write timeout 10s, got %v", cfg.API.WriteTimeout)
	}
	if cfg.API.IdleTimeout != 60*time.Second {
		t.Errorf("Expected default idle timeout 60s, got %v", cfg.API.IdleTimeout)
	}
}

func TestApplyDefaults_Metrics(t *testing.T) {
	// Disabled metrics get no port.
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 0 {
		t.Errorf("Expected no metrics port while disabled, got %d", cfg.Metrics.Port)
	}

	// Enabled metrics default to port 9090.
	cfg = &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(cfg)
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/muster.log",
		},
		ShutdownTimeout: 60 * time.Second,
		Machine: MachineConfig{
			Name: "BUILDBOX",
		},
		Directory: DirectoryConfig{
			Backend: BackendMemory,
		},
		Agent: AgentConfig{
			Schedule: "@every 15m",
			Debounce: 5 * time.Second,
		},
	}

	ApplyDefaults(cfg)

	// Verify explicit values were preserved
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected explicit format 'json' to be preserved, got %q", cfg.Logging.Format)
	}
	if cfg.ShutdownTimeout != 60*time.Second {
		t.Errorf("Expected explicit shutdown timeout 60s to be preserved, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Machine.Name != "BUILDBOX" {
		t.Errorf("Expected explicit machine name to be preserved, got %q", cfg.Machine.Name)
	}
	if cfg.Directory.Backend != BackendMemory {
		t.Errorf("Expected explicit backend to be preserved, got %q", cfg.Directory.Backend)
	}
	if cfg.Agent.Schedule != "@every 15m" {
		t.Errorf("Expected explicit schedule to be preserved, got %q", cfg.Agent.Schedule)
	}
	if cfg.Agent.Debounce != 5*time.Second {
		t.Errorf("Expected explicit debounce to be preserved, got %v", cfg.Agent.Debounce)
	}

	// Memory backend needs no badger path.
	if cfg.Directory.Badger.Path != "" {
		t.Errorf("Expected no badger path for memory backend, got %q", cfg.Directory.Badger.Path)
	}
}

func TestApplyDefaults_LogLevelNormalization(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected ApplyDefaults to normalize 'info' to 'INFO', got %q", cfg.Logging.Level)
	}
}
