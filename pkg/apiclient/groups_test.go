package apiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetMembers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/groups/Remote%20Desktop%20Users/members", r.URL.EscapedPath())

		var req SetMembersRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"alice", `CORP\ops-team`}, req.Members)
		assert.Equal(t, "exact", req.Policy)

		_ = json.NewEncoder(w).Encode(JournalEntry{
			ID:      "e1",
			Group:   "Remote Desktop Users",
			Policy:  "exact",
			Trigger: "api",
			Added:   []string{`TESTBOX\alice`, `CORP\ops-team`},
		})
	}))
	defer server.Close()

	client := New(server.URL)
	entry, err := client.SetMembers("Remote Desktop Users", &SetMembersRequest{
		Members: []string{"alice", `CORP\ops-team`},
		Policy:  "exact",
	})
	require.NoError(t, err)
	assert.Equal(t, "e1", entry.ID)
	assert.Len(t, entry.Added, 2)
	assert.Empty(t, entry.Removed)
}

func TestSetMembersUnresolved(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"title":  "Unprocessable Entity",
			"status": 422,
			"detail": `unresolved identity "ghost"`,
		})
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.SetMembers("ops", &SetMembersRequest{Members: []string{"ghost"}})
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsUnresolved())
}

func TestAddMember(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/groups/ops/members", r.URL.EscapedPath())

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, `CORP\svc-backup`, req["member"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Member{
			Domain:  "CORP",
			Name:    "svc-backup",
			Display: `CORP\svc-backup`,
		})
	}))
	defer server.Close()

	client := New(server.URL)
	member, err := client.AddMember("ops", `CORP\svc-backup`)
	require.NoError(t, err)
	assert.Equal(t, `CORP\svc-backup`, member.Display)
}

func TestRemoveMemberEscapesReference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/groups/ops/members/CORP%5Cstale-svc", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(server.URL)
	require.NoError(t, client.RemoveMember("ops", `CORP\stale-svc`))
}

func TestJournalLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/journal", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode([]JournalEntry{{ID: "e1"}})
	}))
	defer server.Close()

	client := New(server.URL)
	entries, err := client.Journal(5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)
}
