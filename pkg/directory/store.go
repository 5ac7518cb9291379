package directory

import (
	"context"
	"errors"

	"github.com/musterio/muster/pkg/principal"
)

// Common errors for Store operations.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrGroupNotFound     = errors.New("group not found")
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrDuplicateUser     = errors.New("user already exists")
	ErrDuplicateGroup    = errors.New("group already exists")
	ErrMemberNotFound    = errors.New("member not found in group")
	ErrDuplicateMember   = errors.New("member already in group")
)

// Store provides account-directory operations: user and group CRUD plus
// group-membership queries and mutations.
//
// Implementations must be safe for concurrent use; reconciliation of a
// single group is serialized by callers, but different groups and plain
// reads may be accessed from multiple goroutines.
//
// Name lookups are case-insensitive, matching Windows account semantics.
// Enumeration order of GroupMembers is stable per store and is the order
// reconciliation removals are applied in.
type Store interface {
	// MachineName returns the machine (local domain) name records are
	// qualified with. Injected at store construction.
	MachineName() string

	// User operations

	// CreateUser creates a user and assigns it a SID under the store's
	// machine SID. Returns ErrDuplicateUser if the name is taken by a
	// user, or ErrDuplicateGroup if taken by a group.
	CreateUser(ctx context.Context, user *User) (*User, error)

	// GetUser returns a user by name.
	// Returns ErrUserNotFound if the user doesn't exist.
	GetUser(ctx context.Context, name string) (*User, error)

	// ListUsers returns all users sorted by name.
	ListUsers(ctx context.Context) ([]*User, error)

	// UpdateUser updates FullName, Description, and Disabled of the named
	// user. Returns ErrUserNotFound if the user doesn't exist.
	UpdateUser(ctx context.Context, user *User) (*User, error)

	// DeleteUser removes a user and its group memberships.
	// Returns ErrUserNotFound if the user doesn't exist.
	DeleteUser(ctx context.Context, name string) error

	// Group operations

	// CreateGroup creates a group and assigns it a SID.
	// Returns ErrDuplicateGroup if the name is taken by a group, or
	// ErrDuplicateUser if taken by a user.
	CreateGroup(ctx context.Context, group *Group) (*Group, error)

	// GetGroup returns a group by name.
	// Returns ErrGroupNotFound if the group doesn't exist.
	GetGroup(ctx context.Context, name string) (*Group, error)

	// ListGroups returns all groups sorted by name.
	ListGroups(ctx context.Context) ([]*Group, error)

	// DeleteGroup removes a group and its membership entries. Members
	// themselves are untouched.
	// Returns ErrGroupNotFound if the group doesn't exist.
	DeleteGroup(ctx context.Context, name string) error

	// Membership operations

	// GroupMembers returns the group's members in the store's stable
	// enumeration order.
	// Returns ErrGroupNotFound if the group doesn't exist.
	GroupMembers(ctx context.Context, group string) ([]Member, error)

	// AddGroupMember adds the principal to the group. Local principals
	// must exist in the directory; principals of a foreign domain are
	// recorded as supplied. Returns ErrDuplicateMember if already a
	// member.
	AddGroupMember(ctx context.Context, group string, id principal.Identity) error

	// RemoveGroupMember removes the principal from the group.
	// Returns ErrMemberNotFound if it is not a member.
	RemoveGroupMember(ctx context.Context, group string, id principal.Identity) error

	// Close releases store resources.
	Close() error
}

// ProfileLister is implemented by directories that can enumerate local
// user profiles. Optional: backends without profile data simply do not
// implement it.
type ProfileLister interface {
	Profiles(ctx context.Context) ([]Profile, error)
}
