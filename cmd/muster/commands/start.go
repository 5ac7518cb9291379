package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/musterio/muster/internal/agent"
	"github.com/musterio/muster/internal/logger"
	"github.com/musterio/muster/internal/telemetry"
	"github.com/musterio/muster/pkg/api"
	"github.com/musterio/muster/pkg/config"
	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/metrics"
	promimpl "github.com/musterio/muster/pkg/metrics/prometheus"
)

var (
	startDryRun bool
	pidFile     string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the muster daemon",
	Long: `Start the muster daemon with the specified configuration.

The daemon opens the configured directory store, serves the management
REST API, and runs the reconciliation agent: an initial sweep of every
roster target, scheduled sweeps per the agent schedule, and sweeps on
roster file changes when watching is enabled.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/muster/config.yaml.

Examples:
  # Start with default config location
  muster start

  # Start with custom config file
  muster start --config /etc/muster/config.yaml

  # Compute and journal plans without applying them
  muster start --dry-run

  # Start with environment variable overrides
  MUSTER_LOGGING_LEVEL=DEBUG muster start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVar(&startDryRun, "dry-run", false, "Compute and journal plans without applying them")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (none by default)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry (if enabled)
	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "muster",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	// Initialize Pyroscope profiling (if enabled)
	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "muster",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	// Initialize metrics FIRST (before creating components that report into them)
	metricsResult := config.InitializeMetrics(cfg)

	// Resolve the machine name once; every component qualifies accounts with it
	machine, err := cfg.Machine.ResolveName()
	if err != nil {
		return err
	}
	logger.Info("Machine name resolved", "machine", machine)

	// Open the directory store
	store, err := config.OpenDirectory(cfg.Directory, machine)
	if err != nil {
		return fmt.Errorf("failed to open directory store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("directory store close error", "error", err)
		}
	}()
	logger.Info("Directory store opened", "backend", cfg.Directory.Backend)

	// Open the reconciliation journal
	jrnl, err := config.OpenJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() {
		if err := jrnl.Close(); err != nil {
			logger.Error("journal close error", "error", err)
		}
	}()

	var reconcileMetrics metrics.ReconcileMetrics
	if m := promimpl.NewReconcileMetrics(); m != nil {
		reconcileMetrics = m
	}

	// Create the reconciliation agent
	ag := agent.New(store, jrnl, reconcileMetrics, agent.Options{
		RosterPath: cfg.Roster.Path,
		Schedule:   cfg.Agent.Schedule,
		Watch:      cfg.Agent.Watch,
		Debounce:   cfg.Agent.Debounce,
		DryRun:     cfg.Agent.DryRun || startDryRun,
	})
	if cfg.Roster.Path != "" {
		logger.Info("Roster configured", "path", cfg.Roster.Path, "watch", cfg.Agent.Watch, "schedule", cfg.Agent.Schedule)
	} else {
		logger.Info("No roster configured; reconciliation available through the API only")
	}

	// The profiles endpoint is only mounted when the backend can enumerate
	// local user profiles.
	profiles, _ := store.(directory.ProfileLister)

	// Create the API server
	apiServer := api.NewServer(cfg.API, api.Deps{
		Store:      store,
		Journal:    jrnl,
		Reconciler: ag,
		Profiles:   profiles,
		Machine:    machine,
	})
	logger.Info("API server configured", "port", apiServer.Port())

	// Write PID file if specified
	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	// Start everything in the background
	serverDone := make(chan error, 2)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()
	go func() {
		serverDone <- ag.Start(ctx)
	}()

	if metricsResult.Server != nil {
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
		go func() {
			// The metrics endpoint is best-effort; its failure is logged
			// but does not take the daemon down.
			if err := metricsResult.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancelShutdown()
			if err := metricsResult.Server.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown error", "error", err)
			}
		}()
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Wait for interrupt signal or component error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Muster is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		// Wait for the API server and agent to wind down gracefully
		if err := <-serverDone; err != nil {
			logger.Error("Shutdown error", "error", err)
			return err
		}
		if err := <-serverDone; err != nil {
			logger.Error("Shutdown error", "error", err)
			return err
		}
		logger.Info("Muster stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		cancel()
		if err != nil {
			logger.Error("Daemon error", "error", err)
			return err
		}
		logger.Info("Muster stopped")
	}

	return nil
}
