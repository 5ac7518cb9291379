package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/journal"
	"github.com/musterio/muster/pkg/principal"
	"github.com/musterio/muster/pkg/reconcile"
)

func TestMemberHandler_List(t *testing.T) {
	store := newTestStore(t, []string{"alice"}, []string{"ops"})
	handler := NewMemberHandler(store, &fakeReconciler{})

	if err := store.AddGroupMember(t.Context(), "ops", mustIdentity(t, store, "alice")); err != nil {
		t.Fatalf("AddGroupMember() error = %v", err)
	}
	if err := store.AddGroupMember(t.Context(), "ops", principal.NewIdentity("CORP", "fileserver")); err != nil {
		t.Fatalf("AddGroupMember() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups/ops/members", nil)
	req = withURLParams(req, "name", "ops")
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("List() status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []MemberResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("List() returned %d members, want 2", len(resp))
	}

	// Local members carry their SID, foreign members do not
	if resp[0].Name != "alice" || resp[0].SID == "" {
		t.Errorf("local member = %+v, want name alice with SID", resp[0])
	}
	if resp[1].SID != "" {
		t.Errorf("foreign member carries SID %q, want none", resp[1].SID)
	}
	if resp[1].Display != `CORP\fileserver` {
		t.Errorf("foreign member display = %q, want %q", resp[1].Display, `CORP\fileserver`)
	}
}

func TestMemberHandler_List_GroupNotFound(t *testing.T) {
	store := newTestStore(t, nil, nil)
	handler := NewMemberHandler(store, &fakeReconciler{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups/ghosts/members", nil)
	req = withURLParams(req, "name", "ghosts")
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("List() status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestMemberHandler_Reconcile(t *testing.T) {
	store := newTestStore(t, []string{"alice"}, []string{"ops"})
	fake := &fakeReconciler{
		entry: journal.Entry{
			ID:      "e1",
			Group:   "ops",
			Policy:  "exact",
			Trigger: journal.TriggerAPI,
			Added:   []string{`TESTBOX\alice`},
		},
	}
	handler := NewMemberHandler(store, fake)

	body, _ := json.Marshal(ReconcileMembersRequest{
		Members: []string{"alice"},
		Policy:  "exact",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/groups/ops/members", bytes.NewReader(body))
	req = withURLParams(req, "name", "ops")
	w := httptest.NewRecorder()

	handler.Reconcile(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Reconcile() status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var entry journal.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if entry.ID != "e1" {
		t.Errorf("Reconcile() entry ID = %s, want e1", entry.ID)
	}

	// The reconciler receives the target and the API trigger
	if fake.lastTarget.Group != "ops" {
		t.Errorf("reconciler got group %q, want ops", fake.lastTarget.Group)
	}
	if fake.lastTrigger != journal.TriggerAPI {
		t.Errorf("reconciler got trigger %q, want %q", fake.lastTrigger, journal.TriggerAPI)
	}
}

func TestMemberHandler_Reconcile_InvalidPolicy(t *testing.T) {
	store := newTestStore(t, nil, []string{"ops"})
	fake := &fakeReconciler{}
	handler := NewMemberHandler(store, fake)

	body, _ := json.Marshal(ReconcileMembersRequest{
		Members: []string{"alice"},
		Policy:  "purge",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/groups/ops/members", bytes.NewReader(body))
	req = withURLParams(req, "name", "ops")
	w := httptest.NewRecorder()

	handler.Reconcile(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Reconcile() status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if fake.lastTarget.Group != "" {
		t.Error("reconciler was called despite invalid policy")
	}
}

func TestMemberHandler_Reconcile_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "unresolved member",
			err:        &reconcile.UnresolvedIdentityError{Name: "ghost"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "malformed member reference",
			err:        fmt.Errorf("%w: %q", principal.ErrMalformedReference, "a/b"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "group not found",
			err:        fmt.Errorf("list current members: %w", directory.ErrGroupNotFound),
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, nil, []string{"ops"})
			handler := NewMemberHandler(store, &fakeReconciler{err: tt.err})

			body, _ := json.Marshal(ReconcileMembersRequest{Members: []string{"ghost"}})
			req := httptest.NewRequest(http.MethodPut, "/api/v1/groups/ops/members", bytes.NewReader(body))
			req = withURLParams(req, "name", "ops")
			w := httptest.NewRecorder()

			handler.Reconcile(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Reconcile() status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestMemberHandler_Add(t *testing.T) {
	store := newTestStore(t, []string{"alice"}, []string{"ops"})
	handler := NewMemberHandler(store, &fakeReconciler{})

	tests := []struct {
		name       string
		member     string
		wantStatus int
	}{
		{
			name:       "local user",
			member:     "alice",
			wantStatus: http.StatusCreated,
		},
		{
			name:       "duplicate member",
			member:     "ALICE",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "foreign principal",
			member:     `CORP\svc-backup`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unknown local principal",
			member:     "ghost",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "malformed reference",
			member:     "corp/alice",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(AddMemberRequest{Member: tt.member})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/ops/members", bytes.NewReader(body))
			req = withURLParams(req, "name", "ops")
			w := httptest.NewRecorder()

			handler.Add(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Add(%q) status = %d, want %d; body: %s", tt.member, w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestMemberHandler_Remove(t *testing.T) {
	store := newTestStore(t, []string{"alice"}, []string{"ops"})
	handler := NewMemberHandler(store, &fakeReconciler{})

	if err := store.AddGroupMember(t.Context(), "ops", mustIdentity(t, store, "alice")); err != nil {
		t.Fatalf("AddGroupMember() error = %v", err)
	}

	// Case-folded reference removes the member
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/groups/ops/members/Alice", nil)
	req = withURLParams(req, "name", "ops", "member", "Alice")
	w := httptest.NewRecorder()

	handler.Remove(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Remove() status = %d, want %d; body: %s", w.Code, http.StatusNoContent, w.Body.String())
	}

	members, err := store.GroupMembers(t.Context(), "ops")
	if err != nil {
		t.Fatalf("GroupMembers() error = %v", err)
	}
	if len(members) != 0 {
		t.Errorf("group still has %d members", len(members))
	}

	// Removing again reports the member missing
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/groups/ops/members/alice", nil)
	req = withURLParams(req, "name", "ops", "member", "alice")
	w = httptest.NewRecorder()

	handler.Remove(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Remove() status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestMemberHandler_Remove_BySIDString(t *testing.T) {
	store := newTestStore(t, nil, []string{"ops"})
	handler := NewMemberHandler(store, &fakeReconciler{})

	// A SID-form segment skips name resolution and targets the orphan
	// identity directly; here nothing matches it.
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/groups/ops/members/S-1-5-32-544", nil)
	req = withURLParams(req, "name", "ops", "member", "S-1-5-32-544")
	w := httptest.NewRecorder()

	handler.Remove(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Remove() status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
