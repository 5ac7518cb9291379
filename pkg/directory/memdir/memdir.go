// Package memdir implements an in-memory account directory. It backs unit
// tests and ephemeral daemon runs; nothing survives process exit.
package memdir

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/principal"
)

// firstRID is the first relative identifier handed to created accounts,
// matching where SAM starts non-builtin accounts.
const firstRID = 1000

// Store is an in-memory directory. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	machine    string
	machineSID *principal.SID
	nextRID    uint32

	// users and groups indexed by folded name; the two share one
	// account namespace.
	users  map[string]*directory.User
	groups map[string]*directory.Group

	// members holds per-group membership in insertion order, indexed by
	// folded group name.
	members map[string][]directory.Member

	profiles []directory.Profile
}

var _ directory.Store = (*Store)(nil)
var _ directory.ProfileLister = (*Store)(nil)

// New creates an empty directory for the given machine name. The machine
// SID is generated at random, the way a fresh SAM database gets one.
func New(machine string) *Store {
	return &Store{
		machine:    machine,
		machineSID: principal.NewMachineSID(),
		nextRID:    firstRID,
		users:      make(map[string]*directory.User),
		groups:     make(map[string]*directory.Group),
		members:    make(map[string][]directory.Member),
	}
}

// MachineName returns the machine name records are qualified with.
func (s *Store) MachineName() string { return s.machine }

// MachineSID returns the store's machine SID.
func (s *Store) MachineSID() *principal.SID { return s.machineSID }

func fold(name string) string { return strings.ToLower(name) }

// allocateSID mints the next account SID under the machine SID.
// Caller holds s.mu.
func (s *Store) allocateSID() *principal.SID {
	rid := s.nextRID
	s.nextRID++
	return s.machineSID.WithRID(rid)
}

// nameTaken reports whether the folded name is used by a user or group.
// Users and groups share the account namespace. Caller holds s.mu.
func (s *Store) nameTaken(key string) error {
	if _, ok := s.users[key]; ok {
		return directory.ErrDuplicateUser
	}
	if _, ok := s.groups[key]; ok {
		return directory.ErrDuplicateGroup
	}
	return nil
}

// CreateUser creates a user and assigns it a SID.
func (s *Store) CreateUser(_ context.Context, user *directory.User) (*directory.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := fold(user.Name)
	if err := s.nameTaken(key); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := &directory.User{
		SID:         s.allocateSID(),
		Name:        user.Name,
		Domain:      s.machine,
		FullName:    user.FullName,
		Description: user.Description,
		Disabled:    user.Disabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.users[key] = created

	out := *created
	return &out, nil
}

// GetUser returns a user by name.
func (s *Store) GetUser(_ context.Context, name string) (*directory.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[fold(name)]
	if !ok {
		return nil, directory.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

// ListUsers returns all users sorted by name.
func (s *Store) ListUsers(_ context.Context) ([]*directory.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*directory.User, 0, len(s.users))
	for _, u := range s.users {
		out := *u
		users = append(users, &out)
	}
	slices.SortFunc(users, func(a, b *directory.User) int {
		return strings.Compare(fold(a.Name), fold(b.Name))
	})
	return users, nil
}

// UpdateUser updates the mutable fields of the named user.
func (s *Store) UpdateUser(_ context.Context, user *directory.User) (*directory.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[fold(user.Name)]
	if !ok {
		return nil, directory.ErrUserNotFound
	}

	existing.FullName = user.FullName
	existing.Description = user.Description
	existing.Disabled = user.Disabled
	existing.UpdatedAt = time.Now().UTC()

	out := *existing
	return &out, nil
}

// DeleteUser removes a user and every membership it holds.
func (s *Store) DeleteUser(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fold(name)
	user, ok := s.users[key]
	if !ok {
		return directory.ErrUserNotFound
	}
	delete(s.users, key)
	s.dropMemberEverywhere(user.Identity())
	return nil
}

// CreateGroup creates a group and assigns it a SID.
func (s *Store) CreateGroup(_ context.Context, group *directory.Group) (*directory.Group, error) {
	if err := group.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := fold(group.Name)
	if err := s.nameTaken(key); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := &directory.Group{
		SID:         s.allocateSID(),
		Name:        group.Name,
		Domain:      s.machine,
		Description: group.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.groups[key] = created
	s.members[key] = nil

	out := *created
	return &out, nil
}

// GetGroup returns a group by name.
func (s *Store) GetGroup(_ context.Context, name string) (*directory.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[fold(name)]
	if !ok {
		return nil, directory.ErrGroupNotFound
	}
	out := *group
	return &out, nil
}

// ListGroups returns all groups sorted by name.
func (s *Store) ListGroups(_ context.Context) ([]*directory.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*directory.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out := *g
		groups = append(groups, &out)
	}
	slices.SortFunc(groups, func(a, b *directory.Group) int {
		return strings.Compare(fold(a.Name), fold(b.Name))
	})
	return groups, nil
}

// DeleteGroup removes a group and its membership entries.
func (s *Store) DeleteGroup(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fold(name)
	group, ok := s.groups[key]
	if !ok {
		return directory.ErrGroupNotFound
	}
	delete(s.groups, key)
	delete(s.members, key)
	s.dropMemberEverywhere(group.Identity())
	return nil
}

// GroupMembers returns the group's members in insertion order.
func (s *Store) GroupMembers(_ context.Context, group string) ([]directory.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := fold(group)
	if _, ok := s.groups[key]; !ok {
		return nil, directory.ErrGroupNotFound
	}
	return slices.Clone(s.members[key]), nil
}

// AddGroupMember adds the principal to the group.
func (s *Store) AddGroupMember(_ context.Context, group string, id principal.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fold(group)
	if _, ok := s.groups[key]; !ok {
		return directory.ErrGroupNotFound
	}

	for _, m := range s.members[key] {
		if m.Identity().Equal(id) {
			return directory.ErrDuplicateMember
		}
	}

	member, err := s.memberFor(id)
	if err != nil {
		return err
	}
	s.members[key] = append(s.members[key], member)
	return nil
}

// memberFor builds the membership record for an identity. Local
// principals must exist and contribute their SID; foreign principals are
// recorded as supplied, without one. Caller holds s.mu.
func (s *Store) memberFor(id principal.Identity) (directory.Member, error) {
	if !strings.EqualFold(id.Domain(), s.machine) {
		return directory.Member{Domain: id.Domain(), Name: id.Account()}, nil
	}

	key := fold(id.Account())
	if u, ok := s.users[key]; ok {
		return directory.Member{SID: u.SID, Domain: u.Domain, Name: u.Name}, nil
	}
	if g, ok := s.groups[key]; ok {
		return directory.Member{SID: g.SID, Domain: g.Domain, Name: g.Name}, nil
	}
	return directory.Member{}, fmt.Errorf("%w: %s", directory.ErrPrincipalNotFound, id)
}

// RemoveGroupMember removes the principal from the group.
func (s *Store) RemoveGroupMember(_ context.Context, group string, id principal.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fold(group)
	if _, ok := s.groups[key]; !ok {
		return directory.ErrGroupNotFound
	}

	before := len(s.members[key])
	s.members[key] = slices.DeleteFunc(s.members[key], func(m directory.Member) bool {
		return m.Identity().Equal(id)
	})
	if len(s.members[key]) == before {
		return directory.ErrMemberNotFound
	}
	return nil
}

// dropMemberEverywhere removes the identity from every group's member
// list. Caller holds s.mu.
func (s *Store) dropMemberEverywhere(id principal.Identity) {
	for key := range s.members {
		s.members[key] = slices.DeleteFunc(s.members[key], func(m directory.Member) bool {
			return m.Identity().Equal(id)
		})
	}
}

// AddProfile seeds a profile record for Profiles to report.
func (s *Store) AddProfile(p directory.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append(s.profiles, p)
}

// Profiles returns the seeded profile records.
func (s *Store) Profiles(_ context.Context) ([]directory.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.profiles), nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
