// Package agent runs membership reconciliation for the muster daemon: an
// initial convergence at startup, scheduled sweeps, roster-change sweeps,
// and runs requested over the API. Every applied plan is recorded in the
// journal, and runs of the same group are serialized.
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/musterio/muster/internal/logger"
	"github.com/musterio/muster/internal/telemetry"
	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/journal"
	"github.com/musterio/muster/pkg/metrics"
	"github.com/musterio/muster/pkg/reconcile"
	"github.com/musterio/muster/pkg/roster"
)

// Options configure the agent.
type Options struct {
	// RosterPath is the desired-state document: a roster file or a
	// directory of roster files. Empty disables sweeps; the agent then
	// only serves API-requested reconciliations.
	RosterPath string

	// Schedule is a cron expression for periodic sweeps ("@every 1h",
	// "0 * * * *"). Empty disables scheduled sweeps.
	Schedule string

	// Watch reconciles on roster file changes.
	Watch bool

	// Debounce is the quiet period between a roster change and the sweep
	// it triggers, batching editor save storms into one run.
	Debounce time.Duration

	// DryRun computes and journals plans without applying them.
	DryRun bool
}

// defaultDebounce spaces roster-triggered sweeps when no debounce is
// configured.
const defaultDebounce = 2 * time.Second

// Agent reconciles group membership against the roster and on demand.
//
// ReconcileGroup, PlanGroup, and Sweep are safe for concurrent use; runs
// of the same group are serialized internally, which the reconciliation
// engine requires.
type Agent struct {
	store    directory.Store
	journal  journal.Recorder
	resolver reconcile.Resolver
	metrics  metrics.ReconcileMetrics
	opts     Options

	mu     sync.Mutex
	groups map[string]*sync.Mutex
}

// New creates an agent over the directory store. rec receives one journal
// entry per run that changed, or would have changed, something. m may be
// nil to disable metrics.
func New(store directory.Store, rec journal.Recorder, m metrics.ReconcileMetrics, opts Options) *Agent {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	return &Agent{
		store:    store,
		journal:  rec,
		resolver: directory.NewStoreResolver(store, store.MachineName()),
		metrics:  m,
		opts:     opts,
		groups:   make(map[string]*sync.Mutex),
	}
}

// lockGroup serializes reconciliation per group; group names are folded
// the way the directory folds them.
func (a *Agent) lockGroup(group string) func() {
	key := strings.ToLower(group)

	a.mu.Lock()
	m, ok := a.groups[key]
	if !ok {
		m = &sync.Mutex{}
		a.groups[key] = m
	}
	a.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// ReconcileGroup converges one group to the target's desired members and
// records the outcome in the journal.
//
// Validation and resolution failures are returned with nothing mutated
// and nothing recorded. Apply failures do not fail the run; they are
// carried in the returned entry. Runs that change nothing return an entry
// but are not recorded. In dry-run mode the plan is computed and recorded
// with the DryRun flag, and no mutation happens.
func (a *Agent) ReconcileGroup(ctx context.Context, target roster.Target, trigger journal.Trigger) (journal.Entry, error) {
	start := time.Now()
	policy := target.ReconcilePolicy()
	coll := directory.NewGroupCollection(a.store, target.Group)

	ctx, span := telemetry.StartReconcileSpan(ctx, "group", target.Group,
		telemetry.Policy(policy.String()),
		telemetry.Trigger(string(trigger)),
		telemetry.DryRun(a.opts.DryRun))
	defer span.End()

	unlock := a.lockGroup(target.Group)
	defer unlock()

	plan, err := reconcile.ComputePlan(ctx, a.resolver, coll, target.Members, policy)
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.Warn("reconciliation failed before apply",
			"group", target.Group,
			"trigger", trigger,
			"error", err,
		)
		a.recordRun(target.Group, trigger, time.Since(start), metrics.OutcomeFailed)
		return journal.Entry{}, err
	}

	if plan.Empty() {
		logger.Debug("group already converged", "group", target.Group, "trigger", trigger)
		a.recordRun(target.Group, trigger, time.Since(start), metrics.OutcomeNoop)
		entry := journal.NewEntry(target.Group, policy, trigger, plan, nil)
		entry.DryRun = a.opts.DryRun
		return entry, nil
	}

	var applyErr error
	outcome := metrics.OutcomeDryRun
	if !a.opts.DryRun {
		applyErr = reconcile.Apply(ctx, coll, plan)
		outcome = metrics.OutcomeApplied
		if applyErr != nil {
			telemetry.RecordError(ctx, applyErr)
			outcome = metrics.OutcomePartial
		}
	}

	entry := journal.NewEntry(target.Group, policy, trigger, plan, applyErr)
	entry.DryRun = a.opts.DryRun
	a.record(ctx, entry)

	telemetry.SetAttributes(ctx,
		telemetry.PlanAdds(len(plan.Add)),
		telemetry.PlanRemoves(len(plan.Remove)),
		telemetry.Failures(len(entry.Errors)),
		telemetry.Outcome(outcome))

	logger.Info("group reconciled",
		"group", target.Group,
		"policy", policy.String(),
		"trigger", trigger,
		"added", len(plan.Add),
		"removed", len(plan.Remove),
		"failures", len(entry.Errors),
		"dry_run", a.opts.DryRun,
	)

	a.recordRun(target.Group, trigger, time.Since(start), outcome)
	if !a.opts.DryRun && a.metrics != nil {
		a.metrics.RecordMutations(target.Group, len(plan.Add)-applyFailures(entry, reconcile.OpAdd), len(plan.Remove)-applyFailures(entry, reconcile.OpRemove))
	}

	return entry, nil
}

// PlanGroup computes the plan for one group without mutating the
// directory and without recording a journal entry.
func (a *Agent) PlanGroup(ctx context.Context, target roster.Target) (reconcile.Plan, error) {
	coll := directory.NewGroupCollection(a.store, target.Group)
	return reconcile.ComputePlan(ctx, a.resolver, coll, target.Members, target.ReconcilePolicy())
}

// Sweep loads the roster and reconciles every target in document order.
//
// A target that fails before apply gets a journal entry carrying the
// failure, and the sweep continues with the remaining targets; only a
// missing or unloadable roster fails the sweep itself.
func (a *Agent) Sweep(ctx context.Context, trigger journal.Trigger) ([]journal.Entry, error) {
	if a.opts.RosterPath == "" {
		return nil, roster.ErrNoRoster
	}

	ctx, span := telemetry.StartReconcileSpan(ctx, "sweep", "",
		telemetry.Trigger(string(trigger)),
		telemetry.RosterPath(a.opts.RosterPath))
	defer span.End()

	r, err := roster.LoadPath(a.opts.RosterPath)
	if err != nil {
		telemetry.RecordError(ctx, err)
		if a.metrics != nil {
			a.metrics.RecordRosterReload("error")
		}
		return nil, fmt.Errorf("sweep aborted: %w", err)
	}
	if a.metrics != nil {
		a.metrics.RecordRosterReload("ok")
		a.metrics.SetRosterTargets(len(r.Targets))
	}
	telemetry.SetAttributes(ctx, telemetry.Targets(len(r.Targets)))

	logger.Debug("sweep started", "targets", len(r.Targets), "trigger", trigger, "dry_run", a.opts.DryRun)

	entries := make([]journal.Entry, 0, len(r.Targets))
	for _, target := range r.Targets {
		if ctx.Err() != nil {
			return entries, ctx.Err()
		}

		entry, err := a.ReconcileGroup(ctx, target, trigger)
		if err != nil {
			// Keep the failure visible in the journal and move on.
			entry = journal.NewEntry(target.Group, target.ReconcilePolicy(), trigger, reconcile.Plan{}, err)
			entry.DryRun = a.opts.DryRun
			a.record(ctx, entry)
		}
		entries = append(entries, entry)
	}

	logger.Info("sweep finished", "targets", len(r.Targets), "trigger", trigger)
	return entries, nil
}

// record persists a journal entry. Journal failures are logged, not
// propagated: losing an audit record must not undo or fail the run it
// describes.
func (a *Agent) record(ctx context.Context, entry journal.Entry) {
	if err := a.journal.Record(ctx, entry); err != nil {
		logger.Error("failed to record journal entry",
			"group", entry.Group,
			"entry_id", entry.ID,
			"error", err,
		)
	}
}

func (a *Agent) recordRun(group string, trigger journal.Trigger, d time.Duration, outcome string) {
	if a.metrics != nil {
		a.metrics.RecordRun(group, string(trigger), d, outcome)
	}
}

// applyFailures counts apply errors of one operation in an entry.
func applyFailures(entry journal.Entry, op reconcile.Op) int {
	prefix := string(op) + " member "
	count := 0
	for _, msg := range entry.Errors {
		if strings.HasPrefix(msg, prefix) {
			count++
		}
	}
	return count
}

// Start runs the agent until the context is cancelled: an initial sweep,
// scheduled sweeps per Options.Schedule, and roster watching per
// Options.Watch. Without a roster the agent idles and only serves
// API-requested work.
func (a *Agent) Start(ctx context.Context) error {
	if a.opts.RosterPath == "" {
		logger.Info("agent idle: no roster configured")
		<-ctx.Done()
		return nil
	}

	// Converge once at startup; a broken roster is logged, not fatal,
	// so the daemon comes up and the watcher catches the fix.
	if _, err := a.Sweep(ctx, journal.TriggerRoster); err != nil {
		logger.Error("initial sweep failed", "error", err)
	}

	if a.opts.Schedule != "" {
		c := cron.New()
		_, err := c.AddFunc(a.opts.Schedule, func() {
			if _, err := a.Sweep(ctx, journal.TriggerSchedule); err != nil {
				logger.Error("scheduled sweep failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid agent schedule %q: %w", a.opts.Schedule, err)
		}
		c.Start()
		defer func() {
			stopCtx := c.Stop()
			<-stopCtx.Done()
		}()
		logger.Info("scheduled sweeps enabled", "schedule", a.opts.Schedule)
	}

	errChan := make(chan error, 1)
	if a.opts.Watch {
		go func() {
			if err := a.watchRoster(ctx); err != nil {
				select {
				case errChan <- err:
				default:
				}
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("agent shutdown signal received")
		return nil
	case err := <-errChan:
		return fmt.Errorf("agent failed: %w", err)
	}
}
