package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/musterio/muster/pkg/journal"
	"github.com/musterio/muster/pkg/roster"
)

func TestSweepHandler_Run(t *testing.T) {
	fake := &fakeReconciler{
		entries: []journal.Entry{
			{ID: "e1", Group: "ops", Trigger: journal.TriggerAPI},
			{ID: "e2", Group: "dev", Trigger: journal.TriggerAPI},
		},
	}
	handler := NewSweepHandler(fake)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sweep", nil)
	w := httptest.NewRecorder()

	handler.Run(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Run() status = %d, want %d", w.Code, http.StatusOK)
	}

	var entries []journal.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Run() returned %d entries, want 2", len(entries))
	}
	if fake.lastTrigger != journal.TriggerAPI {
		t.Errorf("reconciler got trigger %q, want %q", fake.lastTrigger, journal.TriggerAPI)
	}
}

func TestSweepHandler_Run_NoRoster(t *testing.T) {
	handler := NewSweepHandler(&fakeReconciler{err: roster.ErrNoRoster})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sweep", nil)
	w := httptest.NewRecorder()

	handler.Run(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Run() status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestSweepHandler_Run_EmptyRoster(t *testing.T) {
	handler := NewSweepHandler(&fakeReconciler{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sweep", nil)
	w := httptest.NewRecorder()

	handler.Run(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Run() status = %d, want %d", w.Code, http.StatusOK)
	}
	// An empty sweep still returns a JSON array
	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("Run() body = %q, want empty JSON array", body)
	}
}
