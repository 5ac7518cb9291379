package apiclient

import "net/http"

// APIError is a problem-details error response from the API.
type APIError struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// IsNotFound returns true if the resource does not exist.
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsConflict returns true if the request collided with existing state,
// such as creating an account under a taken name.
func (e *APIError) IsConflict() bool {
	return e.Status == http.StatusConflict
}

// IsInvalid returns true if the request itself was rejected, such as a
// malformed member reference.
func (e *APIError) IsInvalid() bool {
	return e.Status == http.StatusBadRequest
}

// IsUnresolved returns true if a member reference resolved to no
// principal.
func (e *APIError) IsUnresolved() bool {
	return e.Status == http.StatusUnprocessableEntity
}
