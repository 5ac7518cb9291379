package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/musterio/muster/internal/logger"
	"github.com/musterio/muster/pkg/api/handlers"
)

// NewRouter creates and configures the chi router with all middleware and
// routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe
//   - /api/v1/users/* - User management
//   - /api/v1/groups/* - Group management
//   - GET /api/v1/groups/{name}/members - Current membership
//   - PUT /api/v1/groups/{name}/members - Reconcile membership
//   - POST /api/v1/groups/{name}/members - Add a single member
//   - DELETE /api/v1/groups/{name}/members/{member} - Remove a member
//   - POST /api/v1/plans - Compute a plan without applying it
//   - POST /api/v1/sweep - Reconcile every roster target now
//   - GET /api/v1/journal - Reconciliation history
//   - GET /api/v1/profiles - Local user profiles (only when a profile
//     lister is configured)
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health routes
	healthHandler := handlers.NewHealthHandler(deps.Store, deps.Machine)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		userHandler := handlers.NewUserHandler(deps.Store)
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Create)
			r.Get("/", userHandler.List)
			r.Get("/{name}", userHandler.Get)
			r.Put("/{name}", userHandler.Update)
			r.Delete("/{name}", userHandler.Delete)
		})

		groupHandler := handlers.NewGroupHandler(deps.Store)
		memberHandler := handlers.NewMemberHandler(deps.Store, deps.Reconciler)
		r.Route("/groups", func(r chi.Router) {
			r.Post("/", groupHandler.Create)
			r.Get("/", groupHandler.List)
			r.Get("/{name}", groupHandler.Get)
			r.Delete("/{name}", groupHandler.Delete)

			// Group membership
			r.Route("/{name}/members", func(r chi.Router) {
				r.Get("/", memberHandler.List)
				r.Put("/", memberHandler.Reconcile)
				r.Post("/", memberHandler.Add)
				r.Delete("/{member}", memberHandler.Remove)
			})
		})

		planHandler := handlers.NewPlanHandler(deps.Reconciler)
		r.Post("/plans", planHandler.Compute)

		sweepHandler := handlers.NewSweepHandler(deps.Reconciler)
		r.Post("/sweep", sweepHandler.Run)

		journalHandler := handlers.NewJournalHandler(deps.Journal)
		r.Get("/journal", journalHandler.List)

		// Profiles - requires a ProfileLister (only some platforms and
		// backends can enumerate profiles)
		if deps.Profiles != nil {
			profileHandler := handlers.NewProfileHandler(deps.Profiles)
			r.Get("/profiles", profileHandler.List)
		}
	})

	return r
}

// isHealthPath returns true if the request path is a healthcheck endpoint.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// requestLogger is a custom middleware that logs requests using the
// internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
//   - Healthcheck requests are logged at DEBUG level to reduce noise
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}

		// Log healthcheck requests at DEBUG to avoid polluting logs
		if isHealthPath(r.URL.Path) {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
