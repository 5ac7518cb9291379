package handlers

import (
	"net/http"

	"github.com/musterio/muster/pkg/directory"
)

// ProfileHandler handles the local user profile listing.
type ProfileHandler struct {
	lister directory.ProfileLister
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(lister directory.ProfileLister) *ProfileHandler {
	return &ProfileHandler{lister: lister}
}

// List handles GET /api/v1/profiles.
//
// Profiles are observed, never mutated; the endpoint exists so operators
// can see which accounts left a profile behind.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.lister.Profiles(r.Context())
	if err != nil {
		InternalServerError(w, "Failed to list profiles")
		return
	}

	if profiles == nil {
		profiles = []directory.Profile{}
	}
	WriteJSONOK(w, profiles)
}
