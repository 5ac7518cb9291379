package directory

import (
	"context"

	"github.com/musterio/muster/pkg/principal"
)

// GroupCollection exposes one group of a Store as a reconcilable member
// collection (reconcile.Collection[Member]). The group does not need to
// exist at construction time; missing groups surface as ErrGroupNotFound
// from the first call.
type GroupCollection struct {
	store Store
	group string
}

// NewGroupCollection binds the named group of store.
func NewGroupCollection(store Store, group string) *GroupCollection {
	return &GroupCollection{store: store, group: group}
}

// Group returns the bound group name.
func (c *GroupCollection) Group() string { return c.group }

// Members returns the group's current membership snapshot.
func (c *GroupCollection) Members(ctx context.Context) ([]Member, error) {
	return c.store.GroupMembers(ctx, c.group)
}

// IdentityOf derives the canonical identity from a member token.
func (c *GroupCollection) IdentityOf(m Member) (principal.Identity, error) {
	return m.Identity(), nil
}

// AddMember adds the principal to the bound group.
func (c *GroupCollection) AddMember(ctx context.Context, id principal.Identity) error {
	return c.store.AddGroupMember(ctx, c.group, id)
}

// RemoveMember removes the principal from the bound group.
func (c *GroupCollection) RemoveMember(ctx context.Context, id principal.Identity) error {
	return c.store.RemoveGroupMember(ctx, c.group, id)
}
