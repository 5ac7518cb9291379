package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/principal"
	"github.com/musterio/muster/pkg/reconcile"
)

// decodeJSONBody decodes a JSON request body into the provided pointer.
// Returns true if successful, false if decoding fails (error response is
// written automatically).
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// urlParam returns a path parameter, percent-decoded. Group names carry
// spaces and member references carry backslashes, so the raw segment
// arrives encoded.
func urlParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(value); err == nil {
		return decoded
	}
	return value
}

// writeDomainError maps directory, principal, and reconcile errors to
// problem responses. Returns true if it recognized and wrote the error;
// the caller handles anything left over.
//
// The mapping:
//   - malformed references and invalid SIDs: 400
//   - unknown users, groups, members: 404
//   - duplicate users, groups, members: 409
//   - references that resolve to no principal: 422
func writeDomainError(w http.ResponseWriter, err error) bool {
	var unresolved *reconcile.UnresolvedIdentityError

	switch {
	case errors.Is(err, principal.ErrMalformedReference),
		errors.Is(err, principal.ErrInvalidSID):
		BadRequest(w, err.Error())
	case errors.As(err, &unresolved):
		UnprocessableEntity(w, unresolved.Error())
	case errors.Is(err, directory.ErrPrincipalNotFound):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, directory.ErrUserNotFound),
		errors.Is(err, directory.ErrGroupNotFound),
		errors.Is(err, directory.ErrMemberNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, directory.ErrDuplicateUser),
		errors.Is(err, directory.ErrDuplicateGroup),
		errors.Is(err, directory.ErrDuplicateMember):
		Conflict(w, err.Error())
	default:
		return false
	}
	return true
}
