package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGroupHandler_Create(t *testing.T) {
	store := newTestStore(t, []string{"alice"}, nil)
	handler := NewGroupHandler(store)

	tests := []struct {
		name       string
		body       CreateGroupRequest
		wantStatus int
	}{
		{
			name: "valid group",
			body: CreateGroupRequest{
				Name:        "Remote Desktop Users",
				Description: "Members can log on remotely",
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing name",
			body:       CreateGroupRequest{Description: "no name"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate group",
			body:       CreateGroupRequest{Name: "remote desktop users"},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "name taken by a user",
			body:       CreateGroupRequest{Name: "alice"},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/groups", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Create(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Create() status = %d, want %d", w.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusCreated {
				var resp GroupResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("Failed to unmarshal response: %v", err)
				}
				if resp.SID == "" {
					t.Error("Create() returned empty SID")
				}
				if resp.Domain != testMachine {
					t.Errorf("Create() domain = %s, want %s", resp.Domain, testMachine)
				}
			}
		})
	}
}

func TestGroupHandler_Get(t *testing.T) {
	store := newTestStore(t, nil, []string{"ops"})
	handler := NewGroupHandler(store)

	tests := []struct {
		name       string
		groupName  string
		wantStatus int
	}{
		{
			name:       "existing group",
			groupName:  "ops",
			wantStatus: http.StatusOK,
		},
		{
			name:       "case-insensitive lookup",
			groupName:  "OPS",
			wantStatus: http.StatusOK,
		},
		{
			name:       "non-existing group",
			groupName:  "ghosts",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/groups/"+tt.groupName, nil)
			req = withURLParams(req, "name", tt.groupName)
			w := httptest.NewRecorder()

			handler.Get(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Get() status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestGroupHandler_List(t *testing.T) {
	store := newTestStore(t, nil, []string{"ops", "dev", "qa"})
	handler := NewGroupHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("List() status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []GroupResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(resp) != 3 {
		t.Errorf("List() returned %d groups, want 3", len(resp))
	}
}

func TestGroupHandler_Delete(t *testing.T) {
	store := newTestStore(t, []string{"alice"}, []string{"ops"})
	handler := NewGroupHandler(store)

	if err := store.AddGroupMember(t.Context(), "ops", mustIdentity(t, store, "alice")); err != nil {
		t.Fatalf("AddGroupMember() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/groups/ops", nil)
	req = withURLParams(req, "name", "ops")
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Delete() status = %d, want %d", w.Code, http.StatusNoContent)
	}

	// The member account survives its group
	if _, err := store.GetUser(t.Context(), "alice"); err != nil {
		t.Errorf("member user gone after group deletion: %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/groups/ops", nil)
	req = withURLParams(req, "name", "ops")
	w = httptest.NewRecorder()

	handler.Delete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Delete() status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
