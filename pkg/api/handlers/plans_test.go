package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/musterio/muster/pkg/principal"
	"github.com/musterio/muster/pkg/reconcile"
)

func TestPlanHandler_Compute(t *testing.T) {
	fake := &fakeReconciler{
		plan: reconcile.Plan{
			Add: []principal.Identity{
				principal.NewIdentity(testMachine, "alice"),
			},
			Remove: []principal.Identity{
				principal.NewIdentity("CORP", "stale-svc"),
			},
		},
	}
	handler := NewPlanHandler(fake)

	body, _ := json.Marshal(PlanRequest{
		Group:   "ops",
		Members: []string{"alice"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Compute(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Compute() status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp PlanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.Group != "ops" {
		t.Errorf("Compute() group = %s, want ops", resp.Group)
	}
	// A plan without an explicit policy is computed as exact
	if resp.Policy != "exact" {
		t.Errorf("Compute() policy = %s, want exact", resp.Policy)
	}
	if len(resp.Add) != 1 || resp.Add[0] != `TESTBOX\alice` {
		t.Errorf("Compute() add = %v, want [TESTBOX\\alice]", resp.Add)
	}
	if len(resp.Remove) != 1 || resp.Remove[0] != `CORP\stale-svc` {
		t.Errorf("Compute() remove = %v, want [CORP\\stale-svc]", resp.Remove)
	}

	if fake.lastTarget.Group != "ops" {
		t.Errorf("reconciler got group %q, want ops", fake.lastTarget.Group)
	}
}

func TestPlanHandler_Compute_Validation(t *testing.T) {
	tests := []struct {
		name string
		body PlanRequest
	}{
		{
			name: "missing group",
			body: PlanRequest{Members: []string{"alice"}},
		},
		{
			name: "invalid policy",
			body: PlanRequest{Group: "ops", Policy: "purge"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeReconciler{}
			handler := NewPlanHandler(fake)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", bytes.NewReader(body))
			w := httptest.NewRecorder()

			handler.Compute(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Compute() status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if fake.lastTarget.Group != "" {
				t.Error("reconciler was called despite invalid request")
			}
		})
	}
}

func TestPlanHandler_Compute_UnresolvedMember(t *testing.T) {
	fake := &fakeReconciler{
		err: &reconcile.UnresolvedIdentityError{Name: "ghost"},
	}
	handler := NewPlanHandler(fake)

	body, _ := json.Marshal(PlanRequest{Group: "ops", Members: []string{"ghost"}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Compute(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Compute() status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
}
