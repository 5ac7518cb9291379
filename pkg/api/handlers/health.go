package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/musterio/muster/pkg/directory"
)

// HealthCheckTimeout is the maximum time allowed for health check
// operations. It bounds the directory reads behind the readiness probe so
// a slow backend cannot block probes indefinitely.
const HealthCheckTimeout = 5 * time.Second

// HealthHandler handles health check endpoints.
//
// Health endpoints provide:
//   - Liveness probe: Is the server process running?
//   - Readiness probe: Is the directory store answering reads?
type HealthHandler struct {
	store     directory.Store
	machine   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
//
// The store parameter may be nil, in which case the readiness probe
// reports unhealthy.
func NewHealthHandler(store directory.Store, machine string) *HealthHandler {
	return &HealthHandler{
		store:     store,
		machine:   machine,
		startTime: time.Now(),
	}
}

// Liveness handles GET /health - simple liveness probe.
//
// Returns 200 OK if the server process is running. This endpoint should
// always succeed as long as the HTTP server is responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	WriteJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"service":    "muster",
		"machine":    h.machine,
		"started_at": h.startTime.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// Readiness handles GET /health/ready - readiness probe.
//
// Returns 200 OK if the directory store answers reads, 503 Service
// Unavailable otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse("directory store not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	users, err := h.store.ListUsers(ctx)
	if err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse("directory store unavailable: "+err.Error()))
		return
	}
	groups, err := h.store.ListGroups(ctx)
	if err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse("directory store unavailable: "+err.Error()))
		return
	}

	WriteJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"machine": h.machine,
		"users":   len(users),
		"groups":  len(groups),
	}))
}
