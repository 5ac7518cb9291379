package handlers

import (
	"errors"
	"net/http"

	"github.com/musterio/muster/pkg/journal"
	"github.com/musterio/muster/pkg/roster"
)

// SweepHandler triggers a full roster reconciliation on demand.
type SweepHandler struct {
	reconciler Reconciler
}

// NewSweepHandler creates a new SweepHandler.
func NewSweepHandler(reconciler Reconciler) *SweepHandler {
	return &SweepHandler{reconciler: reconciler}
}

// Run handles POST /api/v1/sweep.
//
// Every roster target is reconciled, the same work a scheduled sweep
// does, and the resulting journal entries are returned. Targets whose
// resolution fails produce an entry reporting the failure without any
// mutation; the sweep continues with the remaining targets.
func (h *SweepHandler) Run(w http.ResponseWriter, r *http.Request) {
	entries, err := h.reconciler.Sweep(r.Context(), journal.TriggerAPI)
	if err != nil {
		if errors.Is(err, roster.ErrNoRoster) {
			Conflict(w, "No roster configured")
			return
		}
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Sweep failed")
		return
	}

	if entries == nil {
		entries = []journal.Entry{}
	}
	WriteJSONOK(w, entries)
}
