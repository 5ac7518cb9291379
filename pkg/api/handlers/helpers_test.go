package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/directory/memdir"
	"github.com/musterio/muster/pkg/journal"
	"github.com/musterio/muster/pkg/principal"
	"github.com/musterio/muster/pkg/reconcile"
	"github.com/musterio/muster/pkg/roster"
)

const testMachine = "TESTBOX"

// newTestStore builds an in-memory directory seeded with the named users
// and groups.
func newTestStore(t *testing.T, users, groups []string) directory.Store {
	t.Helper()

	store := memdir.New(testMachine)
	t.Cleanup(func() { _ = store.Close() })

	for _, name := range users {
		if _, err := store.CreateUser(t.Context(), &directory.User{Name: name}); err != nil {
			t.Fatalf("Failed to create test user %s: %v", name, err)
		}
	}
	for _, name := range groups {
		if _, err := store.CreateGroup(t.Context(), &directory.Group{Name: name}); err != nil {
			t.Fatalf("Failed to create test group %s: %v", name, err)
		}
	}
	return store
}

// mustIdentity returns the canonical identity of an existing user.
func mustIdentity(t *testing.T, store directory.Store, name string) principal.Identity {
	t.Helper()
	user, err := store.GetUser(t.Context(), name)
	if err != nil {
		t.Fatalf("GetUser(%s) error = %v", name, err)
	}
	return user.Identity()
}

// fakeReconciler implements Reconciler with canned results and records the
// last call it saw.
type fakeReconciler struct {
	entry   journal.Entry
	plan    reconcile.Plan
	entries []journal.Entry
	err     error

	lastTarget  roster.Target
	lastTrigger journal.Trigger
}

func (f *fakeReconciler) ReconcileGroup(_ context.Context, target roster.Target, trigger journal.Trigger) (journal.Entry, error) {
	f.lastTarget = target
	f.lastTrigger = trigger
	return f.entry, f.err
}

func (f *fakeReconciler) PlanGroup(_ context.Context, target roster.Target) (reconcile.Plan, error) {
	f.lastTarget = target
	return f.plan, f.err
}

func (f *fakeReconciler) Sweep(_ context.Context, trigger journal.Trigger) ([]journal.Entry, error) {
	f.lastTrigger = trigger
	return f.entries, f.err
}

// withURLParams attaches chi URL parameters (key, value pairs) to the
// request, the way the router would when dispatching it.
func withURLParams(r *http.Request, pairs ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		rctx.URLParams.Add(pairs[i], pairs[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "malformed reference",
			err:        fmt.Errorf("wrap: %w", principal.ErrMalformedReference),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid sid",
			err:        fmt.Errorf("%w: must start with S-", principal.ErrInvalidSID),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unresolved identity",
			err:        &reconcile.UnresolvedIdentityError{Name: "ghost"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "principal not found",
			err:        fmt.Errorf("%w: %q", directory.ErrPrincipalNotFound, "ghost"),
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "user not found",
			err:        directory.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "group not found",
			err:        directory.ErrGroupNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "member not found",
			err:        directory.ErrMemberNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "duplicate user",
			err:        directory.ErrDuplicateUser,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "duplicate member",
			err:        directory.ErrDuplicateMember,
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			if !writeDomainError(w, tt.err) {
				t.Fatal("writeDomainError() = false, want true")
			}
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != ContentTypeProblemJSON {
				t.Errorf("Content-Type = %s, want %s", ct, ContentTypeProblemJSON)
			}
		})
	}
}

func TestWriteDomainError_UnknownError(t *testing.T) {
	w := httptest.NewRecorder()
	if writeDomainError(w, errors.New("boom")) {
		t.Error("writeDomainError() = true for unknown error, want false")
	}
}
