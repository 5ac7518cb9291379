package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/musterio/muster/pkg/principal"
)

// StoreResolver resolves member references against a directory store.
//
// Bare names and names qualified with the resolver's machine name must
// exist in the store as a user or a group; anything else fails with
// ErrPrincipalNotFound. References qualified with a foreign domain are
// accepted at face value: a standalone directory has no channel to the
// foreign domain to verify them, the same way a machine off the domain
// network records domain principals by SID history.
//
// The machine name is injected at construction; the resolver keeps no
// hidden process-wide state.
type StoreResolver struct {
	store   Store
	machine string
}

// NewStoreResolver builds a resolver over store. machine is the local
// machine name used to qualify bare references; it normally matches
// store.MachineName().
func NewStoreResolver(store Store, machine string) *StoreResolver {
	return &StoreResolver{store: store, machine: machine}
}

// Resolve maps a member reference to the canonical identity of the
// matching principal.
func (r *StoreResolver) Resolve(ctx context.Context, name string) (principal.Identity, error) {
	ref, err := principal.ParseReference(name)
	if err != nil {
		return principal.Identity{}, err
	}

	if ref.Qualified() && !strings.EqualFold(ref.Domain, r.machine) {
		return principal.NewIdentity(ref.Domain, ref.Account), nil
	}

	if user, err := r.store.GetUser(ctx, ref.Account); err == nil {
		return user.Identity(), nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return principal.Identity{}, fmt.Errorf("resolve %q: %w", name, err)
	}

	if group, err := r.store.GetGroup(ctx, ref.Account); err == nil {
		return group.Identity(), nil
	} else if !errors.Is(err, ErrGroupNotFound) {
		return principal.Identity{}, fmt.Errorf("resolve %q: %w", name, err)
	}

	return principal.Identity{}, fmt.Errorf("%w: %q", ErrPrincipalNotFound, name)
}
