package handlers

import (
	"net/http"
	"time"

	"github.com/musterio/muster/pkg/directory"
)

// UserHandler handles user management API endpoints.
type UserHandler struct {
	store directory.Store
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store directory.Store) *UserHandler {
	return &UserHandler{store: store}
}

// CreateUserRequest is the request body for POST /api/v1/users.
type CreateUserRequest struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name,omitempty"`
	Description string `json:"description,omitempty"`
	Disabled    bool   `json:"disabled,omitempty"`
}

// UpdateUserRequest is the request body for PUT /api/v1/users/{name}.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	Description *string `json:"description,omitempty"`
	Disabled    *bool   `json:"disabled,omitempty"`
}

// UserResponse is the response body for user endpoints.
type UserResponse struct {
	SID         string    `json:"sid"`
	Name        string    `json:"name"`
	Domain      string    `json:"domain"`
	FullName    string    `json:"full_name,omitempty"`
	Description string    `json:"description,omitempty"`
	Disabled    bool      `json:"disabled,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user := &directory.User{
		Name:        req.Name,
		FullName:    req.FullName,
		Description: req.Description,
		Disabled:    req.Disabled,
	}
	if err := user.Validate(); err != nil {
		BadRequest(w, err.Error())
		return
	}

	created, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Failed to create user")
		return
	}

	WriteJSONCreated(w, userToResponse(created))
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		InternalServerError(w, "Failed to list users")
		return
	}

	response := make([]UserResponse, len(users))
	for i, u := range users {
		response[i] = userToResponse(u)
	}

	WriteJSONOK(w, response)
}

// Get handles GET /api/v1/users/{name}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")

	user, err := h.store.GetUser(r.Context(), name)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Failed to get user")
		return
	}

	WriteJSONOK(w, userToResponse(user))
}

// Update handles PUT /api/v1/users/{name}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")

	var req UpdateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.store.GetUser(r.Context(), name)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Failed to get user")
		return
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Description != nil {
		user.Description = *req.Description
	}
	if req.Disabled != nil {
		user.Disabled = *req.Disabled
	}

	updated, err := h.store.UpdateUser(r.Context(), user)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Failed to update user")
		return
	}

	WriteJSONOK(w, userToResponse(updated))
}

// Delete handles DELETE /api/v1/users/{name}.
//
// Deleting a user also removes its group memberships; the account's
// profile, if any, is left on disk.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")

	if err := h.store.DeleteUser(r.Context(), name); err != nil {
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Failed to delete user")
		return
	}

	WriteNoContent(w)
}

// userToResponse converts a directory user to the API response format.
func userToResponse(u *directory.User) UserResponse {
	resp := UserResponse{
		Name:        u.Name,
		Domain:      u.Domain,
		FullName:    u.FullName,
		Description: u.Description,
		Disabled:    u.Disabled,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.SID != nil {
		resp.SID = u.SID.String()
	}
	return resp
}
