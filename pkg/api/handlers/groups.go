package handlers

import (
	"net/http"
	"time"

	"github.com/musterio/muster/pkg/directory"
)

// GroupHandler handles group management API endpoints.
type GroupHandler struct {
	store directory.Store
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(store directory.Store) *GroupHandler {
	return &GroupHandler{store: store}
}

// CreateGroupRequest is the request body for POST /api/v1/groups.
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// GroupResponse is the response body for group endpoints.
type GroupResponse struct {
	SID         string    `json:"sid"`
	Name        string    `json:"name"`
	Domain      string    `json:"domain"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Create handles POST /api/v1/groups.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	group := &directory.Group{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := group.Validate(); err != nil {
		BadRequest(w, err.Error())
		return
	}

	created, err := h.store.CreateGroup(r.Context(), group)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Failed to create group")
		return
	}

	WriteJSONCreated(w, groupToResponse(created))
}

// List handles GET /api/v1/groups.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.ListGroups(r.Context())
	if err != nil {
		InternalServerError(w, "Failed to list groups")
		return
	}

	response := make([]GroupResponse, len(groups))
	for i, g := range groups {
		response[i] = groupToResponse(g)
	}

	WriteJSONOK(w, response)
}

// Get handles GET /api/v1/groups/{name}.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")

	group, err := h.store.GetGroup(r.Context(), name)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Failed to get group")
		return
	}

	WriteJSONOK(w, groupToResponse(group))
}

// Delete handles DELETE /api/v1/groups/{name}.
//
// Deleting a group discards its membership entries; the member accounts
// themselves are untouched.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")

	if err := h.store.DeleteGroup(r.Context(), name); err != nil {
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Failed to delete group")
		return
	}

	WriteNoContent(w)
}

// groupToResponse converts a directory group to the API response format.
func groupToResponse(g *directory.Group) GroupResponse {
	resp := GroupResponse{
		Name:        g.Name,
		Domain:      g.Domain,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
	if g.SID != nil {
		resp.SID = g.SID.String()
	}
	return resp
}
