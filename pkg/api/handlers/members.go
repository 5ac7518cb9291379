package handlers

import (
	"net/http"

	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/journal"
	"github.com/musterio/muster/pkg/principal"
	"github.com/musterio/muster/pkg/reconcile"
	"github.com/musterio/muster/pkg/roster"
)

// MemberHandler handles group membership API endpoints: listing current
// members, reconciling a group to a desired member list, and single-member
// surgery.
type MemberHandler struct {
	store      directory.Store
	reconciler Reconciler
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(store directory.Store, reconciler Reconciler) *MemberHandler {
	return &MemberHandler{store: store, reconciler: reconciler}
}

// ReconcileMembersRequest is the request body for
// PUT /api/v1/groups/{name}/members.
type ReconcileMembersRequest struct {
	// Members are the desired member references, bare ("alice") or
	// domain-qualified ("CORP\\ops-team").
	Members []string `json:"members"`

	// Policy is "exact" or "merge". Empty defaults to exact: a PUT sets
	// the membership.
	Policy string `json:"policy,omitempty"`
}

// MemberResponse is the response body for membership listings.
type MemberResponse struct {
	SID     string `json:"sid,omitempty"`
	Domain  string `json:"domain,omitempty"`
	Name    string `json:"name,omitempty"`
	Display string `json:"display"`
}

// List handles GET /api/v1/groups/{name}/members.
//
// Members are returned in the store's enumeration order, the same order
// removals are applied in. An orphaned member (account deleted behind the
// group's back) carries a SID but no name.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")

	members, err := h.store.GroupMembers(r.Context(), name)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Failed to list members")
		return
	}

	response := make([]MemberResponse, len(members))
	for i, m := range members {
		response[i] = memberToResponse(m)
	}

	WriteJSONOK(w, response)
}

// Reconcile handles PUT /api/v1/groups/{name}/members.
//
// The group's membership is reconciled to the requested member list and
// the outcome journaled. Resolution is all-or-nothing: a malformed or
// unresolvable reference fails the request with no mutation. Apply
// failures do not fail the request; they are reported in the returned
// journal entry, alongside whatever mutations did land.
func (h *MemberHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")

	var req ReconcileMembersRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Policy != "" {
		if _, err := reconcile.ParsePolicy(req.Policy); err != nil {
			BadRequest(w, err.Error())
			return
		}
	}

	target := roster.Target{
		Group:   name,
		Members: req.Members,
		Policy:  req.Policy,
	}

	entry, err := h.reconciler.ReconcileGroup(r.Context(), target, journal.TriggerAPI)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Failed to reconcile group")
		return
	}

	WriteJSONOK(w, entry)
}

// AddMemberRequest is the request body for
// POST /api/v1/groups/{name}/members.
type AddMemberRequest struct {
	// Member is a member reference, bare or domain-qualified.
	Member string `json:"member"`
}

// Add handles POST /api/v1/groups/{name}/members.
//
// A single member is resolved and added without touching the rest of the
// membership, equivalent to a merge reconciliation of one. The addition
// bypasses the journal; use PUT for audited changes.
func (h *MemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")

	var req AddMemberRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	resolver := directory.NewStoreResolver(h.store, h.store.MachineName())
	id, err := resolver.Resolve(r.Context(), req.Member)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Failed to resolve member")
		return
	}

	if err := h.store.AddGroupMember(r.Context(), name, id); err != nil {
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Failed to add member")
		return
	}

	WriteJSONCreated(w, MemberResponse{
		Domain:  id.Domain(),
		Name:    id.Account(),
		Display: id.String(),
	})
}

// Remove handles DELETE /api/v1/groups/{name}/members/{member}.
//
// The member segment is a reference ("alice", "CORP%5Cbob") or, for
// orphaned members that no longer resolve to an account, the SID string
// they enumerate under.
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	ref := urlParam(r, "member")

	var id principal.Identity
	if sid, err := principal.ParseSID(ref); err == nil {
		// Orphans are listed and addressed by SID string.
		id = principal.NewIdentity("", sid.String())
	} else {
		resolver := directory.NewStoreResolver(h.store, h.store.MachineName())
		id, err = resolver.Resolve(r.Context(), ref)
		if err != nil {
			if writeDomainError(w, err) {
				return
			}
			InternalServerError(w, "Failed to resolve member")
			return
		}
	}

	if err := h.store.RemoveGroupMember(r.Context(), name, id); err != nil {
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Failed to remove member")
		return
	}

	WriteNoContent(w)
}

// memberToResponse converts a membership entry to the API response format.
func memberToResponse(m directory.Member) MemberResponse {
	resp := MemberResponse{
		Domain:  m.Domain,
		Name:    m.Name,
		Display: m.Identity().String(),
	}
	if m.SID != nil {
		resp.SID = m.SID.String()
	}
	return resp
}
