// Package api exposes the muster daemon over HTTP: directory CRUD,
// membership reconciliation, dry-run plans, sweeps, the journal, and
// health probes.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/musterio/muster/internal/logger"
	"github.com/musterio/muster/pkg/api/handlers"
	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/journal"
)

// Deps are the collaborators the API serves from. Store, Journal, and
// Reconciler are required; Profiles is optional and gates the profiles
// endpoint.
type Deps struct {
	// Store backs the user, group, and membership endpoints.
	Store directory.Store

	// Journal serves the reconciliation history endpoint.
	Journal journal.Reader

	// Reconciler runs reconciliations and plans requested over the API.
	Reconciler handlers.Reconciler

	// Profiles enumerates local user profiles. May be nil; the profiles
	// endpoint is only mounted when a lister is available.
	Profiles directory.ProfileLister

	// Machine is the local machine name reported by health probes.
	Machine string
}

// Server provides an HTTP server for the REST API.
//
// Endpoints:
//   - GET /health: Liveness probe
//   - GET /health/ready: Readiness probe
//   - /api/v1/users/*: User management
//   - /api/v1/groups/*: Group and membership management
//   - POST /api/v1/plans: Dry-run membership plans
//   - POST /api/v1/sweep: Reconcile every roster target now
//   - GET /api/v1/journal: Reconciliation history
//   - GET /api/v1/profiles: Local user profiles (when available)
//
// The server supports graceful shutdown with configurable timeout.
type Server struct {
	server       *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer creates a new API HTTP server.
//
// The server is created in a stopped state. Call Start() to begin serving
// requests.
func NewServer(config Config, deps Deps) *Server {
	config.applyDefaults()

	router := NewRouter(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		server: server,
		config: config,
	}
}

// Start starts the API HTTP server and blocks until the context is
// cancelled or an error occurs.
//
// When the context is cancelled, Start initiates graceful shutdown and
// returns nil on success.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "port", s.config.Port)
		logger.Debug("API endpoints available",
			"health", fmt.Sprintf("http://localhost:%d/health", s.config.Port),
			"ready", fmt.Sprintf("http://localhost:%d/health/ready", s.config.Port),
			"api", fmt.Sprintf("http://localhost:%d/api/v1", s.config.Port),
		)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
				// Context was cancelled, error is not needed
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received")
		// Don't use the cancelled ctx; it would abort the shutdown
		// immediately instead of draining in-flight requests.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop initiates graceful shutdown of the API server.
//
// Stop is safe to call multiple times and safe to call concurrently with
// Start().
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("API server shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", "error", err)
		} else {
			logger.Info("API server stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server is listening on.
func (s *Server) Port() int {
	return s.config.Port
}
