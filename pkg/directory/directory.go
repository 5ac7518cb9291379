// Package directory defines the account-directory domain: local users,
// groups, group membership, and user profiles, together with the Store
// contract implemented by the in-memory, Badger, and SQL backends and the
// adapters that bind a store into the reconciliation engine.
package directory

import (
	"fmt"
	"strings"
	"time"

	"github.com/musterio/muster/pkg/principal"
)

// User is a local account record.
type User struct {
	// SID uniquely identifies the account. Assigned by the store on
	// creation from its machine SID; never supplied by callers.
	SID *principal.SID `json:"sid"`

	// Name is the account name, unique within the directory.
	Name string `json:"name"`

	// Domain is the owning machine or domain name. Stores fill it with
	// their configured machine name.
	Domain string `json:"domain"`

	// FullName is the display name, if any.
	FullName string `json:"full_name,omitempty"`

	// Description is free-form, if any.
	Description string `json:"description,omitempty"`

	// Disabled marks the account as disabled. Disabled accounts keep
	// their SID and group memberships.
	Disabled bool `json:"disabled,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity returns the user's canonical identity.
func (u *User) Identity() principal.Identity {
	return principal.NewIdentity(u.Domain, u.Name)
}

// Group is a local group record.
type Group struct {
	// SID uniquely identifies the group. Assigned by the store.
	SID *principal.SID `json:"sid"`

	// Name is the group name, unique within the directory.
	Name string `json:"name"`

	// Domain is the owning machine or domain name.
	Domain string `json:"domain"`

	// Description is free-form, if any.
	Description string `json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity returns the group's canonical identity.
func (g *Group) Identity() principal.Identity {
	return principal.NewIdentity(g.Domain, g.Name)
}

// Member is one entry of a group's membership: the opaque identity token
// (the member's SID) plus the resolved domain and account name when the
// directory still knows them. Foreign principals whose account has since
// been deleted may enumerate with a SID only.
type Member struct {
	SID    *principal.SID `json:"sid,omitempty"`
	Domain string         `json:"domain,omitempty"`
	Name   string         `json:"name,omitempty"`
}

// Identity derives the member's canonical identity. An orphaned member
// (SID no longer resolvable to a name) is identified by its SID string so
// that reconciliation can still match and remove it.
func (m Member) Identity() principal.Identity {
	if m.Name == "" && m.SID != nil {
		return principal.NewIdentity("", m.SID.String())
	}
	return principal.NewIdentity(m.Domain, m.Name)
}

// Profile is a local user-profile record, as enumerated from the profile
// list of a machine. Profile deletion is out of scope; profiles are
// observed, never mutated.
type Profile struct {
	// SID identifies the account owning the profile.
	SID *principal.SID `json:"sid"`

	// LocalPath is the on-disk profile directory.
	LocalPath string `json:"local_path"`

	// Loaded reports whether the profile is currently loaded.
	Loaded bool `json:"loaded"`

	// Special marks service profiles (SYSTEM, LocalService, ...).
	Special bool `json:"special,omitempty"`

	// LastUse is the last profile load time, when known.
	LastUse time.Time `json:"last_use,omitzero"`
}

// maxAccountNameLen bounds account and group names; matches the SAM limit
// for group names.
const maxAccountNameLen = 256

// ValidateAccountName checks a bare account or group name: non-empty, at
// most 256 characters, and free of path and domain separators.
func ValidateAccountName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", principal.ErrMalformedReference)
	}
	if len(name) > maxAccountNameLen {
		return fmt.Errorf("%w: name longer than %d characters", principal.ErrMalformedReference, maxAccountNameLen)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q: name must not contain separators", principal.ErrMalformedReference, name)
	}
	return nil
}

// Validate checks the fields callers supply when creating a user.
func (u *User) Validate() error {
	return ValidateAccountName(u.Name)
}

// Validate checks the fields callers supply when creating a group.
func (g *Group) Validate() error {
	return ValidateAccountName(g.Name)
}
