// Package journal records applied reconciliation plans: which group was
// reconciled, what was added and removed, and what failed. The journal is
// an audit trail only; nothing replays it and it never influences what a
// later reconciliation computes.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/musterio/muster/pkg/reconcile"
)

// Trigger says what initiated a reconciliation.
type Trigger string

const (
	// TriggerRoster marks runs caused by a roster file change.
	TriggerRoster Trigger = "roster"

	// TriggerSchedule marks periodic sweep runs.
	TriggerSchedule Trigger = "schedule"

	// TriggerAPI marks runs requested through the API.
	TriggerAPI Trigger = "api"
)

// Entry is one applied reconciliation plan. Added and Removed carry the
// identities' display forms ("DOMAIN\account"); Errors carries the
// messages of apply failures, one per failed mutation. Entries from
// dry runs describe mutations that were computed but never applied.
type Entry struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Group   string    `json:"group"`
	Policy  string    `json:"policy"`
	Trigger Trigger   `json:"trigger"`
	DryRun  bool      `json:"dry_run,omitempty"`
	Added   []string  `json:"added,omitempty"`
	Removed []string  `json:"removed,omitempty"`
	Errors  []string  `json:"errors,omitempty"`
}

// NewEntry stamps an entry for an applied plan. applyErr may be nil, a
// single error, or a joined set of per-mutation errors; each leaf becomes
// one message.
func NewEntry(group string, policy reconcile.Policy, trigger Trigger, plan reconcile.Plan, applyErr error) Entry {
	entry := Entry{
		ID:      uuid.New().String(),
		Time:    time.Now().UTC(),
		Group:   group,
		Policy:  policy.String(),
		Trigger: trigger,
	}
	for _, id := range plan.Add {
		entry.Added = append(entry.Added, id.String())
	}
	for _, id := range plan.Remove {
		entry.Removed = append(entry.Removed, id.String())
	}
	entry.Errors = errorMessages(applyErr)
	return entry
}

func errorMessages(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs := joined.Unwrap()
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}

// Recorder persists journal entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Reader lists recorded entries, newest first. A limit <= 0 applies
// DefaultListLimit.
type Reader interface {
	List(ctx context.Context, limit int) ([]Entry, error)
}

// Log is the full journal surface: record, read back, release.
type Log interface {
	Recorder
	Reader
	Close() error
}

// DefaultListLimit bounds List calls that pass no explicit limit.
const DefaultListLimit = 100
