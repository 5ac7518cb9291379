package handlers

import (
	"net/http"
	"strconv"

	"github.com/musterio/muster/pkg/journal"
)

// JournalHandler serves the reconciliation history.
type JournalHandler struct {
	journal journal.Reader
}

// NewJournalHandler creates a new JournalHandler.
func NewJournalHandler(reader journal.Reader) *JournalHandler {
	return &JournalHandler{journal: reader}
}

// List handles GET /api/v1/journal.
//
// Entries are returned newest first. The optional limit query parameter
// caps the count; it defaults to the journal's standard limit.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			BadRequest(w, "Invalid limit parameter")
			return
		}
		limit = n
	}

	entries, err := h.journal.List(r.Context(), limit)
	if err != nil {
		InternalServerError(w, "Failed to list journal entries")
		return
	}

	if entries == nil {
		entries = []journal.Entry{}
	}
	WriteJSONOK(w, entries)
}
