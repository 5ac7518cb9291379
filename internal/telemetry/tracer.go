package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for reconciliation operations.
// These follow OpenTelemetry semantic conventions where applicable.
// Domain keys use component prefixes: "reconcile.", "account.", "directory.".
const (
	// ========================================================================
	// Client attributes (API callers)
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	// ========================================================================
	// Reconciliation attributes
	// ========================================================================
	AttrGroup       = "reconcile.group"        // Group under reconciliation
	AttrPolicy      = "reconcile.policy"       // exact or merge
	AttrTrigger     = "reconcile.trigger"      // api, schedule, roster
	AttrDryRun      = "reconcile.dry_run"      // Plan computed but not applied
	AttrPlanAdds    = "reconcile.plan_adds"    // Additions the plan calls for
	AttrPlanRemoves = "reconcile.plan_removes" // Removals the plan calls for
	AttrAdded       = "reconcile.added"        // Memberships actually granted
	AttrRemoved     = "reconcile.removed"      // Memberships actually revoked
	AttrFailures    = "reconcile.failures"     // Mutations that failed mid-apply
	AttrOutcome     = "reconcile.outcome"      // applied, partial, noop, failed, dry-run
	AttrTargets     = "reconcile.targets"      // Targets in a sweep

	// ========================================================================
	// Account attributes
	// ========================================================================
	AttrAccount   = "account.name"
	AttrDomain    = "account.domain"
	AttrSID       = "account.sid"
	AttrMemberRef = "member.reference" // Raw reference as written in a roster or request

	// ========================================================================
	// Directory backend attributes
	// ========================================================================
	AttrBackend = "directory.backend" // memory, badger, sql
	AttrMachine = "directory.machine" // Machine name used for local references

	// ========================================================================
	// Roster attributes
	// ========================================================================
	AttrRosterPath = "roster.path"

	// ========================================================================
	// Journal attributes
	// ========================================================================
	AttrEntryID = "journal.entry_id"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	// ========================================================================
	// Reconciliation spans
	// ========================================================================
	SpanReconcileGroup = "reconcile.group"
	SpanReconcilePlan  = "reconcile.plan"
	SpanReconcileApply = "reconcile.apply"
	SpanReconcileSweep = "reconcile.sweep"

	// ========================================================================
	// Directory spans
	// ========================================================================
	SpanDirectoryLookup       = "directory.lookup"
	SpanDirectoryMembers      = "directory.members"
	SpanDirectoryAddMember    = "directory.add_member"
	SpanDirectoryRemoveMember = "directory.remove_member"

	// ========================================================================
	// Roster and journal spans
	// ========================================================================
	SpanRosterLoad    = "roster.load"
	SpanJournalRecord = "journal.record"
	SpanJournalTail   = "journal.tail"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// Group returns an attribute for the group under reconciliation
func Group(name string) attribute.KeyValue {
	return attribute.String(AttrGroup, name)
}

// Policy returns an attribute for the reconciliation policy
func Policy(policy string) attribute.KeyValue {
	return attribute.String(AttrPolicy, policy)
}

// Trigger returns an attribute for what initiated a run
func Trigger(trigger string) attribute.KeyValue {
	return attribute.String(AttrTrigger, trigger)
}

// DryRun returns an attribute marking a run that computed but did not apply
func DryRun(dry bool) attribute.KeyValue {
	return attribute.Bool(AttrDryRun, dry)
}

// PlanAdds returns an attribute for the number of planned additions
func PlanAdds(n int) attribute.KeyValue {
	return attribute.Int(AttrPlanAdds, n)
}

// PlanRemoves returns an attribute for the number of planned removals
func PlanRemoves(n int) attribute.KeyValue {
	return attribute.Int(AttrPlanRemoves, n)
}

// Added returns an attribute for memberships granted
func Added(n int) attribute.KeyValue {
	return attribute.Int(AttrAdded, n)
}

// Removed returns an attribute for memberships revoked
func Removed(n int) attribute.KeyValue {
	return attribute.Int(AttrRemoved, n)
}

// Failures returns an attribute for mutations that failed mid-apply
func Failures(n int) attribute.KeyValue {
	return attribute.Int(AttrFailures, n)
}

// Outcome returns an attribute for the run outcome
func Outcome(outcome string) attribute.KeyValue {
	return attribute.String(AttrOutcome, outcome)
}

// Targets returns an attribute for the number of targets in a sweep
func Targets(n int) attribute.KeyValue {
	return attribute.Int(AttrTargets, n)
}

// Account returns an attribute for an account name
func Account(name string) attribute.KeyValue {
	return attribute.String(AttrAccount, name)
}

// Domain returns an attribute for an account domain
func Domain(name string) attribute.KeyValue {
	return attribute.String(AttrDomain, name)
}

// SID returns an attribute for a security identifier in string form
func SID(sid string) attribute.KeyValue {
	return attribute.String(AttrSID, sid)
}

// MemberRef returns an attribute for a raw member reference
func MemberRef(ref string) attribute.KeyValue {
	return attribute.String(AttrMemberRef, ref)
}

// Backend returns an attribute for the directory backend in use
func Backend(name string) attribute.KeyValue {
	return attribute.String(AttrBackend, name)
}

// Machine returns an attribute for the machine name
func Machine(name string) attribute.KeyValue {
	return attribute.String(AttrMachine, name)
}

// RosterPath returns an attribute for the roster file path
func RosterPath(path string) attribute.KeyValue {
	return attribute.String(AttrRosterPath, path)
}

// EntryID returns an attribute for a journal entry ID
func EntryID(id string) attribute.KeyValue {
	return attribute.String(AttrEntryID, id)
}

// StartReconcileSpan starts a span for a reconciliation operation.
// This is a convenience function that sets common attributes.
func StartReconcileSpan(ctx context.Context, operation string, group string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{}
	if group != "" {
		allAttrs = append(allAttrs, Group(group))
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "reconcile."+operation, trace.WithAttributes(allAttrs...))
}

// StartDirectorySpan starts a span for a directory backend operation.
func StartDirectorySpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "directory."+operation, trace.WithAttributes(attrs...))
}

// StartRosterSpan starts a span for a roster operation.
func StartRosterSpan(ctx context.Context, operation string, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		RosterPath(path),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "roster."+operation, trace.WithAttributes(allAttrs...))
}

// StartJournalSpan starts a span for a journal operation.
func StartJournalSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "journal."+operation, trace.WithAttributes(attrs...))
}
