package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler_Liveness(t *testing.T) {
	handler := NewHealthHandler(nil, testMachine)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.Liveness(w, req)

	// Liveness succeeds even without a store
	if w.Code != http.StatusOK {
		t.Fatalf("Liveness() status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Liveness() status = %s, want healthy", resp.Status)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	store := newTestStore(t, []string{"alice", "bob"}, []string{"ops"})
	handler := NewHealthHandler(store, testMachine)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Readiness() status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("Readiness() data type = %T, want object", resp.Data)
	}
	if data["users"] != float64(2) {
		t.Errorf("Readiness() users = %v, want 2", data["users"])
	}
	if data["groups"] != float64(1) {
		t.Errorf("Readiness() groups = %v, want 1", data["groups"])
	}
	if data["machine"] != testMachine {
		t.Errorf("Readiness() machine = %v, want %s", data["machine"], testMachine)
	}
}

func TestHealthHandler_Readiness_NoStore(t *testing.T) {
	handler := NewHealthHandler(nil, testMachine)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Readiness() status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}
