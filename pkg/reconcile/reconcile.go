// Package reconcile computes and applies group-membership changes: given a
// desired list of member references and the observed membership of a
// collection, it derives the minimal ordered set of additions and removals
// and pushes them through the collection's mutators.
//
// The package is deliberately free of any directory binding. Name
// resolution and membership access are injected through the Resolver and
// Collection interfaces, so the same algorithm drives in-memory stores,
// database-backed stores, and OS directory adapters.
//
// Two policies are supported. PolicyExact converges the collection to
// exactly the desired set, removing members not listed. PolicyMerge only
// ever adds: the result is a superset of the desired set and nothing is
// removed. Under either policy a member that is both desired and present
// is never touched.
//
// Resolution is all-or-nothing: every desired reference is validated and
// resolved before the first mutation. A malformed reference or a
// resolution failure aborts the call with zero side effects. The apply
// phase has no such guarantee — mutations are applied remove-first then
// add, each failure is collected and the remaining mutations are still
// attempted, and nothing is rolled back. Callers that need atomicity must
// provide it around the call.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/musterio/muster/pkg/principal"
)

// Policy selects how far reconciliation converges a collection toward the
// desired member list.
type Policy int

const (
	// PolicyMerge treats the desired list as a minimum: missing members
	// are added, surplus members are left in place.
	PolicyMerge Policy = iota

	// PolicyExact treats the desired list as exhaustive: missing members
	// are added and members not on the list are removed.
	PolicyExact
)

// String returns the policy name used in rosters, the API, and logs.
func (p Policy) String() string {
	switch p {
	case PolicyMerge:
		return "merge"
	case PolicyExact:
		return "exact"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy parses a policy name as used in rosters and the API.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "merge":
		return PolicyMerge, nil
	case "exact":
		return PolicyExact, nil
	default:
		return PolicyMerge, fmt.Errorf("unknown membership policy %q (want merge or exact)", s)
	}
}

// Resolver maps member references to canonical identities.
//
// Resolve receives the reference exactly as the caller supplied it, bare
// or domain-qualified. It returns the canonical Identity of the matching
// principal, or an error when no principal matches. Resolvers do not need
// to wrap their errors; the reconciler attaches the offending reference.
type Resolver interface {
	Resolve(ctx context.Context, name string) (principal.Identity, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, name string) (principal.Identity, error)

func (f ResolverFunc) Resolve(ctx context.Context, name string) (principal.Identity, error) {
	return f(ctx, name)
}

// Collection is a group-like set of members that reconciliation reads and
// mutates. M is the collection's opaque member token (a raw SID, a
// database row, an in-memory record); the reconciler never inspects it
// beyond asking for its identity.
//
// Members returns a snapshot of current membership in the collection's
// enumeration order. AddMember and RemoveMember block until the underlying
// operation completes; idempotency of redundant calls is the collection's
// concern, though the reconciler never issues one for a member that is
// already in the desired state.
//
// The reconciler does not serialize concurrent calls. Two reconciliations
// of the same collection race on the membership snapshot; callers run one
// at a time per collection.
type Collection[M any] interface {
	Members(ctx context.Context) ([]M, error)
	IdentityOf(member M) (principal.Identity, error)
	AddMember(ctx context.Context, id principal.Identity) error
	RemoveMember(ctx context.Context, id principal.Identity) error
}

// Plan is the computed set of mutations: identities to remove and
// identities to add, each deduplicated and ordered. Remove preserves the
// collection's enumeration order; Add preserves first-seen order of the
// desired list. No identity appears in both.
type Plan struct {
	Remove []principal.Identity
	Add    []principal.Identity
}

// Empty reports whether the plan contains no mutations.
func (p Plan) Empty() bool {
	return len(p.Remove) == 0 && len(p.Add) == 0
}

// ComputePlan resolves the desired references and diffs them against the
// collection's current membership. It performs no mutation; Members is
// the only Collection method called.
//
// Every desired reference is validated first: any reference containing a
// '/' fails the whole call with principal.ErrMalformedReference before a
// single Resolve call is made. Resolution is likewise all-or-nothing — the
// first failure aborts with an *UnresolvedIdentityError naming the
// reference, and the membership snapshot is never taken.
func ComputePlan[M any](ctx context.Context, res Resolver, coll Collection[M], desired []string, policy Policy) (Plan, error) {
	// Validate every reference before resolving any.
	for _, ref := range desired {
		if _, err := principal.ParseReference(ref); err != nil {
			return Plan{}, err
		}
	}

	wanted := make([]principal.Identity, 0, len(desired))
	wantedKeys := make(map[string]struct{}, len(desired))
	for _, ref := range desired {
		id, err := res.Resolve(ctx, ref)
		if err != nil {
			var unresolved *UnresolvedIdentityError
			if errors.As(err, &unresolved) {
				return Plan{}, err
			}
			return Plan{}, &UnresolvedIdentityError{Name: ref, Err: err}
		}
		if _, dup := wantedKeys[id.Key()]; dup {
			continue
		}
		wantedKeys[id.Key()] = struct{}{}
		wanted = append(wanted, id)
	}

	members, err := coll.Members(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("list current members: %w", err)
	}

	current := make([]principal.Identity, 0, len(members))
	currentKeys := make(map[string]struct{}, len(members))
	for _, m := range members {
		id, err := coll.IdentityOf(m)
		if err != nil {
			return Plan{}, fmt.Errorf("derive member identity: %w", err)
		}
		if _, dup := currentKeys[id.Key()]; dup {
			continue
		}
		currentKeys[id.Key()] = struct{}{}
		current = append(current, id)
	}

	var plan Plan
	for _, id := range wanted {
		if _, present := currentKeys[id.Key()]; !present {
			plan.Add = append(plan.Add, id)
		}
	}
	if policy == PolicyExact {
		for _, id := range current {
			if _, keep := wantedKeys[id.Key()]; !keep {
				plan.Remove = append(plan.Remove, id)
			}
		}
	}
	return plan, nil
}

// Apply pushes a plan through the collection's mutators: removals first,
// then additions, each in plan order. A failed mutation does not stop the
// remaining ones and applied mutations are not rolled back; all failures
// are returned joined, each as an *ApplyError naming the identity and
// operation that failed.
func Apply[M any](ctx context.Context, coll Collection[M], plan Plan) error {
	var errs []error
	for _, id := range plan.Remove {
		if err := coll.RemoveMember(ctx, id); err != nil {
			errs = append(errs, &ApplyError{Op: OpRemove, Identity: id, Err: err})
		}
	}
	for _, id := range plan.Add {
		if err := coll.AddMember(ctx, id); err != nil {
			errs = append(errs, &ApplyError{Op: OpAdd, Identity: id, Err: err})
		}
	}
	return errors.Join(errs...)
}

// Reconcile computes the plan for the desired references and applies it.
// The returned plan reflects what was attempted; when err is non-nil and
// the plan is empty, the failure happened during validation or resolution
// and the collection was not touched.
func Reconcile[M any](ctx context.Context, res Resolver, coll Collection[M], desired []string, policy Policy) (Plan, error) {
	plan, err := ComputePlan(ctx, res, coll, desired, policy)
	if err != nil {
		return Plan{}, err
	}
	if plan.Empty() {
		return plan, nil
	}
	return plan, Apply(ctx, coll, plan)
}
