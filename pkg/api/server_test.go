package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/musterio/muster/pkg/directory/memdir"
	"github.com/musterio/muster/pkg/journal"
	"github.com/musterio/muster/pkg/reconcile"
	"github.com/musterio/muster/pkg/roster"
)

// nopReconciler satisfies handlers.Reconciler for wiring tests.
type nopReconciler struct{}

func (nopReconciler) ReconcileGroup(_ context.Context, target roster.Target, trigger journal.Trigger) (journal.Entry, error) {
	return journal.Entry{Group: target.Group, Trigger: trigger}, nil
}

func (nopReconciler) PlanGroup(context.Context, roster.Target) (reconcile.Plan, error) {
	return reconcile.Plan{}, nil
}

func (nopReconciler) Sweep(context.Context, journal.Trigger) ([]journal.Entry, error) {
	return nil, nil
}

// testDeps builds API deps over an in-memory directory and journal.
func testDeps(t *testing.T) Deps {
	t.Helper()

	store := memdir.New("TESTBOX")
	t.Cleanup(func() { _ = store.Close() })

	return Deps{
		Store:      store,
		Journal:    journal.NewMemory(),
		Reconciler: nopReconciler{},
		Machine:    "TESTBOX",
	}
}

func TestServer_Lifecycle(t *testing.T) {
	cfg := Config{
		Port:         18540,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
	}
	server := NewServer(cfg, testDeps(t))

	ctx, cancel := context.WithCancel(context.Background())

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	// Give the listener time to come up
	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/health", cfg.Port))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
	}

	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Expected nil on graceful shutdown, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shutdown in time")
	}
}

func TestServer_Port(t *testing.T) {
	server := NewServer(Config{Port: 9999}, testDeps(t))

	if server.Port() != 9999 {
		t.Errorf("Expected port 9999, got %d", server.Port())
	}
}

func TestServer_DefaultConfig(t *testing.T) {
	// Zero config picks up defaults
	server := NewServer(Config{}, testDeps(t))

	if server.Port() != 8540 {
		t.Errorf("Expected default port 8540, got %d", server.Port())
	}
}

func TestRouter_Routes(t *testing.T) {
	deps := testDeps(t)
	router := NewRouter(deps)

	do := func(method, path string, body []byte) *httptest.ResponseRecorder {
		t.Helper()
		var req *http.Request
		if body != nil {
			req = httptest.NewRequest(method, path, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// Health probes
	if w := do(http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want %d", w.Code, http.StatusOK)
	}
	if w := do(http.MethodGet, "/health/ready", nil); w.Code != http.StatusOK {
		t.Errorf("GET /health/ready = %d, want %d", w.Code, http.StatusOK)
	}

	// Root redirects to health
	if w := do(http.MethodGet, "/", nil); w.Code != http.StatusTemporaryRedirect {
		t.Errorf("GET / = %d, want %d", w.Code, http.StatusTemporaryRedirect)
	}

	// User CRUD round trip through the full middleware stack
	body, _ := json.Marshal(map[string]string{"name": "alice"})
	if w := do(http.MethodPost, "/api/v1/users", body); w.Code != http.StatusCreated {
		t.Errorf("POST /api/v1/users = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if w := do(http.MethodGet, "/api/v1/users/alice", nil); w.Code != http.StatusOK {
		t.Errorf("GET /api/v1/users/alice = %d, want %d", w.Code, http.StatusOK)
	}

	// Group and membership routes
	body, _ = json.Marshal(map[string]string{"name": "ops"})
	if w := do(http.MethodPost, "/api/v1/groups", body); w.Code != http.StatusCreated {
		t.Errorf("POST /api/v1/groups = %d, want %d", w.Code, http.StatusCreated)
	}
	body, _ = json.Marshal(map[string]any{"members": []string{"alice"}})
	if w := do(http.MethodPut, "/api/v1/groups/ops/members", body); w.Code != http.StatusOK {
		t.Errorf("PUT /api/v1/groups/ops/members = %d, want %d", w.Code, http.StatusOK)
	}

	// Journal and sweep
	if w := do(http.MethodGet, "/api/v1/journal", nil); w.Code != http.StatusOK {
		t.Errorf("GET /api/v1/journal = %d, want %d", w.Code, http.StatusOK)
	}
	if w := do(http.MethodPost, "/api/v1/sweep", nil); w.Code != http.StatusOK {
		t.Errorf("POST /api/v1/sweep = %d, want %d", w.Code, http.StatusOK)
	}

	// No profile lister configured: the route is not mounted
	if w := do(http.MethodGet, "/api/v1/profiles", nil); w.Code != http.StatusNotFound {
		t.Errorf("GET /api/v1/profiles = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRouter_ProfilesMountedWithLister(t *testing.T) {
	store := memdir.New("TESTBOX")
	t.Cleanup(func() { _ = store.Close() })

	deps := Deps{
		Store:      store,
		Journal:    journal.NewMemory(),
		Reconciler: nopReconciler{},
		Profiles:   store,
		Machine:    "TESTBOX",
	}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /api/v1/profiles = %d, want %d", w.Code, http.StatusOK)
	}
}
