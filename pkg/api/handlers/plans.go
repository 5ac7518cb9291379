package handlers

import (
	"net/http"

	"github.com/musterio/muster/pkg/reconcile"
	"github.com/musterio/muster/pkg/roster"
)

// PlanHandler handles dry-run plan computation.
type PlanHandler struct {
	reconciler Reconciler
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(reconciler Reconciler) *PlanHandler {
	return &PlanHandler{reconciler: reconciler}
}

// PlanRequest is the request body for POST /api/v1/plans.
type PlanRequest struct {
	Group   string   `json:"group"`
	Members []string `json:"members"`

	// Policy is "exact" or "merge"; empty defaults to exact.
	Policy string `json:"policy,omitempty"`
}

// PlanResponse is the response body for POST /api/v1/plans. Add and
// Remove carry identity display forms ("DOMAIN\account").
type PlanResponse struct {
	Group  string   `json:"group"`
	Policy string   `json:"policy"`
	Add    []string `json:"add,omitempty"`
	Remove []string `json:"remove,omitempty"`
}

// Compute handles POST /api/v1/plans.
//
// The plan is computed exactly as a reconciliation would, including
// all-or-nothing reference resolution, but nothing is mutated and no
// journal entry is recorded.
func (h *PlanHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Group == "" {
		BadRequest(w, "Group name is required")
		return
	}
	if req.Policy != "" {
		if _, err := reconcile.ParsePolicy(req.Policy); err != nil {
			BadRequest(w, err.Error())
			return
		}
	}

	target := roster.Target{
		Group:   req.Group,
		Members: req.Members,
		Policy:  req.Policy,
	}

	plan, err := h.reconciler.PlanGroup(r.Context(), target)
	if err != nil {
		if writeDomainError(w, err) {
			return
		}
		InternalServerError(w, "Failed to compute plan")
		return
	}

	WriteJSONOK(w, planToResponse(target, plan))
}

// planToResponse converts a computed plan to the API response format.
func planToResponse(target roster.Target, plan reconcile.Plan) PlanResponse {
	resp := PlanResponse{
		Group:  target.Group,
		Policy: target.ReconcilePolicy().String(),
	}
	for _, id := range plan.Add {
		resp.Add = append(resp.Add, id.String())
	}
	for _, id := range plan.Remove {
		resp.Remove = append(resp.Remove, id.String())
	}
	return resp
}
