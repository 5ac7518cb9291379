package journal

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/musterio/muster/pkg/principal"
	"github.com/musterio/muster/pkg/reconcile"
)

func TestNewEntry(t *testing.T) {
	plan := reconcile.Plan{
		Add: []principal.Identity{
			principal.NewIdentity("DOMAIN2", "user3"),
		},
		Remove: []principal.Identity{
			principal.NewIdentity("DOMAIN", "user1"),
		},
	}

	applyErr := errors.Join(
		fmt.Errorf("remove member DOMAIN\\user1: access denied"),
		fmt.Errorf("add member DOMAIN2\\user3: no such member"),
	)

	entry := NewEntry("staff", reconcile.PolicyExact, TriggerSchedule, plan, applyErr)

	if entry.ID == "" {
		t.Error("NewEntry() left ID empty")
	}
	if entry.Time.IsZero() {
		t.Error("NewEntry() left Time zero")
	}
	if entry.Group != "staff" || entry.Policy != "exact" || entry.Trigger != TriggerSchedule {
		t.Errorf("NewEntry() header = %q/%q/%q", entry.Group, entry.Policy, entry.Trigger)
	}
	if len(entry.Added) != 1 || entry.Added[0] != `DOMAIN2\user3` {
		t.Errorf("Added = %v", entry.Added)
	}
	if len(entry.Removed) != 1 || entry.Removed[0] != `DOMAIN\user1` {
		t.Errorf("Removed = %v", entry.Removed)
	}
	if len(entry.Errors) != 2 {
		t.Fatalf("Errors = %v, want two messages", entry.Errors)
	}

	clean := NewEntry("staff", reconcile.PolicyMerge, TriggerAPI, reconcile.Plan{}, nil)
	if len(clean.Added) != 0 || len(clean.Removed) != 0 || len(clean.Errors) != 0 {
		t.Errorf("clean entry carries data: %+v", clean)
	}
}

func TestMemoryNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		entry := NewEntry(fmt.Sprintf("group%d", i), reconcile.PolicyExact, TriggerRoster, reconcile.Plan{}, nil)
		if err := m.Record(ctx, entry); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	entries, err := m.List(ctx, 3)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("List(3) returned %d entries", len(entries))
	}
	for i, want := range []string{"group4", "group3", "group2"} {
		if entries[i].Group != want {
			t.Errorf("entries[%d].Group = %q, want %q", i, entries[i].Group, want)
		}
	}

	all, err := m.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 5 {
		t.Errorf("List(0) returned %d entries, want all 5", len(all))
	}
}
