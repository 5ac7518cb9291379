package metrics

import (
	"time"
)

// Run outcomes recorded by ReconcileMetrics.RecordRun.
const (
	// OutcomeNoop means the plan was empty; nothing was touched.
	OutcomeNoop = "noop"

	// OutcomeApplied means every mutation landed.
	OutcomeApplied = "applied"

	// OutcomePartial means some mutations failed; the rest were applied
	// and not rolled back.
	OutcomePartial = "partial"

	// OutcomeFailed means validation or resolution failed; nothing was
	// touched.
	OutcomeFailed = "failed"

	// OutcomeDryRun means a non-empty plan was computed but not applied
	// because the daemon runs dry.
	OutcomeDryRun = "dry-run"
)

// ReconcileMetrics provides observability for reconciliation runs.
//
// This interface is optional - pass nil to disable metrics collection with
// zero overhead. The prometheus subpackage provides the production
// implementation.
type ReconcileMetrics interface {
	// RecordRun records one finished reconciliation: the group, what
	// triggered it ("roster", "schedule", "api"), how long the run took,
	// and its outcome (one of the Outcome constants).
	RecordRun(group string, trigger string, duration time.Duration, outcome string)

	// RecordMutations records how many members a run added and removed.
	RecordMutations(group string, added int, removed int)

	// SetRosterTargets updates the number of groups the loaded roster
	// manages.
	SetRosterTargets(count int)

	// RecordRosterReload records a roster load, successful or not.
	RecordRosterReload(outcome string)
}
