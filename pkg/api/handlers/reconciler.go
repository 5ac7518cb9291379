package handlers

import (
	"context"

	"github.com/musterio/muster/pkg/journal"
	"github.com/musterio/muster/pkg/reconcile"
	"github.com/musterio/muster/pkg/roster"
)

// Reconciler runs membership reconciliations on behalf of the API. The
// agent implements it; it serializes runs per group and records every
// applied plan in the journal.
type Reconciler interface {
	// ReconcileGroup converges one group to the target's desired members
	// and records the outcome. Validation and resolution failures are
	// returned and nothing is recorded or mutated; apply failures are
	// carried inside the returned entry.
	ReconcileGroup(ctx context.Context, target roster.Target, trigger journal.Trigger) (journal.Entry, error)

	// PlanGroup computes the plan for one group without mutating the
	// directory and without recording a journal entry.
	PlanGroup(ctx context.Context, target roster.Target) (reconcile.Plan, error)

	// Sweep reconciles every target of the configured roster now.
	// Returns roster.ErrNoRoster when no roster is configured.
	Sweep(ctx context.Context, trigger journal.Trigger) ([]journal.Entry, error)
}
