//go:build windows

package winnt

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/principal"
	"github.com/musterio/muster/pkg/reconcile"
)

// Group is a local security group on this machine, exposed as a
// reconciliation collection. Member tokens are raw SIDs, the way the
// local-group API reports them at level 0; names are only derived when
// an identity is actually needed.
type Group struct {
	name string
}

var _ reconcile.Collection[*principal.SID] = (*Group)(nil)

// NewGroup binds the named local group. The group is looked up lazily;
// a missing group surfaces as directory.ErrGroupNotFound on first use.
func NewGroup(name string) *Group {
	return &Group{name: name}
}

// Name returns the bound group name.
func (g *Group) Name() string { return g.name }

// Members snapshots current membership as SID tokens.
func (g *Group) Members(ctx context.Context) ([]*principal.SID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groupName, err := windows.UTF16PtrFromString(g.name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrincipal, g.name)
	}

	var (
		buf          *byte
		entriesRead  uint32
		totalEntries uint32
	)
	if err := netLocalGroupGetMembers(groupName, &buf, &entriesRead, &totalEntries); err != nil {
		if errors.Is(err, NERR_GroupNotFound) {
			return nil, directory.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to enumerate members of %q: %w", g.name, err)
	}
	defer windows.NetApiBufferFree(buf)

	if entriesRead == 0 {
		return nil, nil
	}

	// The records live in the API buffer; copy each SID out before the
	// deferred free.
	records := unsafe.Slice((*LOCALGROUP_MEMBERS_INFO_0)(unsafe.Pointer(buf)), entriesRead)
	members := make([]*principal.SID, 0, entriesRead)
	for _, rec := range records {
		sid, err := principal.ParseSID(rec.Lgrmi0_sid.String())
		if err != nil {
			return nil, fmt.Errorf("failed to decode member SID of %q: %w", g.name, err)
		}
		members = append(members, sid)
	}
	return members, nil
}

// IdentityOf derives the canonical identity for a member token. A SID
// that no longer maps to an account is identified by its string form so
// reconciliation can still match and remove it.
func (g *Group) IdentityOf(sid *principal.SID) (principal.Identity, error) {
	winSID, err := windows.StringToSid(sid.String())
	if err != nil {
		return principal.Identity{}, fmt.Errorf("%w: %s", ErrInvalidPrincipal, sid)
	}

	account, domain, _, err := winSID.LookupAccount("")
	if err != nil {
		if errors.Is(err, ERROR_NONE_MAPPED) {
			return principal.NewIdentity("", sid.String()), nil
		}
		return principal.Identity{}, fmt.Errorf("failed to look up SID %s: %w", sid, err)
	}
	return principal.NewIdentity(domain, account), nil
}

// AddMember adds the principal to the group by domain-qualified name.
func (g *Group) AddMember(ctx context.Context, id principal.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id.Domain() == "" {
		// Adds always come from resolved references, never from orphaned
		// SID tokens.
		return fmt.Errorf("%w: %q", ErrInvalidPrincipal, id.Account())
	}

	groupName, err := windows.UTF16PtrFromString(g.name)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPrincipal, g.name)
	}
	memberName, err := windows.UTF16PtrFromString(id.String())
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPrincipal, id)
	}

	rec := LOCALGROUP_MEMBERS_INFO_3{Lgrmi3_domainandname: memberName}
	if err := netLocalGroupAddMemberByName(groupName, &rec); err != nil {
		return g.mapMemberError(err, id)
	}
	return nil
}

// RemoveMember removes the principal from the group. Named members are
// removed by name; orphaned members (empty domain, SID-string account)
// by SID.
func (g *Group) RemoveMember(ctx context.Context, id principal.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	groupName, err := windows.UTF16PtrFromString(g.name)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPrincipal, g.name)
	}

	if id.Domain() == "" {
		winSID, err := windows.StringToSid(id.Account())
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidPrincipal, id.Account())
		}
		rec := LOCALGROUP_MEMBERS_INFO_0{Lgrmi0_sid: winSID}
		if err := netLocalGroupDelMemberBySID(groupName, &rec); err != nil {
			return g.mapMemberError(err, id)
		}
		return nil
	}

	memberName, err := windows.UTF16PtrFromString(id.String())
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPrincipal, id)
	}
	rec := LOCALGROUP_MEMBERS_INFO_3{Lgrmi3_domainandname: memberName}
	if err := netLocalGroupDelMemberByName(groupName, &rec); err != nil {
		return g.mapMemberError(err, id)
	}
	return nil
}

// mapMemberError converts the handful of documented membership error
// codes to their directory sentinels; everything else passes through
// wrapped, uninterpreted.
func (g *Group) mapMemberError(err error, id principal.Identity) error {
	switch {
	case errors.Is(err, NERR_GroupNotFound):
		return directory.ErrGroupNotFound
	case errors.Is(err, ERROR_MEMBER_IN_ALIAS):
		return directory.ErrDuplicateMember
	case errors.Is(err, ERROR_MEMBER_NOT_IN_ALIAS):
		return directory.ErrMemberNotFound
	case errors.Is(err, ERROR_NO_SUCH_MEMBER), errors.Is(err, ERROR_NONE_MAPPED), errors.Is(err, ERROR_INVALID_MEMBER):
		return fmt.Errorf("%w: %s", directory.ErrPrincipalNotFound, id)
	default:
		return fmt.Errorf("group %q: member %s: %w", g.name, id, err)
	}
}

// Resolver resolves member references against the Windows account
// database. Unlike the store-backed resolver it is authoritative for
// foreign domains too: the OS consults domain trusts, and an account it
// cannot map does not exist anywhere this machine can see.
type Resolver struct {
	machine string
}

var _ reconcile.Resolver = (*Resolver)(nil)

// NewResolver creates a resolver that qualifies bare names with the
// given machine name.
func NewResolver(machine string) *Resolver {
	return &Resolver{machine: machine}
}

// Resolve maps a bare or domain-qualified reference to the canonical
// identity the OS reports for it, with the account database's casing.
func (r *Resolver) Resolve(ctx context.Context, name string) (principal.Identity, error) {
	if err := ctx.Err(); err != nil {
		return principal.Identity{}, err
	}

	ref, err := principal.ParseReference(name)
	if err != nil {
		return principal.Identity{}, err
	}

	lookup := ref.Account
	if ref.Qualified() {
		lookup = ref.Domain + `\` + ref.Account
	} else if r.machine != "" {
		lookup = r.machine + `\` + ref.Account
	}

	sid, _, _, err := windows.LookupSID("", lookup)
	if err != nil {
		if errors.Is(err, ERROR_NONE_MAPPED) {
			return principal.Identity{}, fmt.Errorf("%q: %w", name, directory.ErrPrincipalNotFound)
		}
		return principal.Identity{}, fmt.Errorf("failed to resolve %q: %w", name, err)
	}

	// Round-trip through the SID for the canonical account and domain
	// spelling.
	account, domain, _, err := sid.LookupAccount("")
	if err != nil {
		return principal.Identity{}, fmt.Errorf("failed to canonicalize %q: %w", name, err)
	}
	return principal.NewIdentity(domain, account), nil
}

// LocalComputerName returns this machine's NetBIOS name, the value to
// inject wherever a machine name parameter is expected.
func LocalComputerName() (string, error) {
	name, err := windows.ComputerName()
	if err != nil {
		return "", fmt.Errorf("failed to read computer name: %w", err)
	}
	return name, nil
}
