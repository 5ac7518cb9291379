package badger_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musterio/muster/pkg/journal"
	badgerjournal "github.com/musterio/muster/pkg/journal/badger"
	"github.com/musterio/muster/pkg/principal"
	"github.com/musterio/muster/pkg/reconcile"
)

func openTestJournal(t *testing.T) *badgerjournal.Journal {
	t.Helper()
	j, err := badgerjournal.Open(filepath.Join(t.TempDir(), "journal"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRecordAndList(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	groups := []string{"alpha", "beta", "gamma"}
	for i, group := range groups {
		plan := reconcile.Plan{
			Add: []principal.Identity{principal.NewIdentity("TESTBOX", "alice")},
		}
		entry := journal.NewEntry(group, reconcile.PolicyExact, journal.TriggerSchedule, plan, nil)
		// Keys order by timestamp; spread the entries out.
		entry.Time = time.Date(2024, 3, 1, 12, 0, i, 0, time.UTC)
		require.NoError(t, j.Record(ctx, entry))
	}

	entries, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "gamma", entries[0].Group, "newest first")
	assert.Equal(t, "beta", entries[1].Group)
	assert.Equal(t, "alpha", entries[2].Group)
	assert.Equal(t, []string{`TESTBOX\alice`}, entries[0].Added)
	assert.Equal(t, "exact", entries[0].Policy)

	limited, err := j.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "gamma", limited[0].Group)
}

func TestListEmpty(t *testing.T) {
	j := openTestJournal(t)

	entries, err := j.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntriesSurviveReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")
	ctx := context.Background()

	j, err := badgerjournal.Open(dir)
	require.NoError(t, err)

	entry := journal.NewEntry("staff", reconcile.PolicyMerge, journal.TriggerAPI, reconcile.Plan{}, nil)
	require.NoError(t, j.Record(ctx, entry))
	require.NoError(t, j.Close())

	reopened, err := badgerjournal.Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, journal.TriggerAPI, entries[0].Trigger)
}
