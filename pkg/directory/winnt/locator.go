// Package winnt binds the directory domain to the Windows local account
// database. It renders WinNT provider locator strings for principals and,
// on Windows builds, implements group membership through the netapi32
// local-group APIs and profile enumeration through WMI.
//
// The locator functions are pure string rendering and build on every
// platform; only the adapters are Windows-specific.
package winnt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/musterio/muster/pkg/principal"
)

// Scheme is the ADSI WinNT provider scheme. The casing is significant to
// the provider.
const Scheme = "WinNT"

// ErrInvalidPrincipal indicates a value that is not a renderable identity
// or security identifier. Locators never coerce malformed input into a
// path; they fail with this error instead.
var ErrInvalidPrincipal = errors.New("invalid principal")

// Each object kind gets its own locator function over its own input
// type. There is deliberately no single entry point that inspects the
// input's shape to decide what it is.

// UserLocator renders the locator for a user account:
//
//	WinNT://DOMAIN/account,user
func UserLocator(id principal.Identity) (string, error) {
	if err := checkIdentity(id); err != nil {
		return "", err
	}
	return Scheme + "://" + id.Domain() + "/" + id.Account() + ",user", nil
}

// GroupLocator renders the locator for a group:
//
//	WinNT://DOMAIN/account,group
func GroupLocator(id principal.Identity) (string, error) {
	if err := checkIdentity(id); err != nil {
		return "", err
	}
	return Scheme + "://" + id.Domain() + "/" + id.Account() + ",group", nil
}

// ComputerLocator renders the locator for a machine object:
//
//	WinNT://name,computer
//
// The machine name is supplied by the caller; nothing here consults the
// process environment.
func ComputerLocator(name string) (string, error) {
	if err := checkPart(name); err != nil {
		return "", err
	}
	return Scheme + "://" + name + ",computer", nil
}

// SIDLocator renders the locator for a principal addressed by security
// identifier, the form used for well-known principals that have no
// stable domain/account rendering:
//
//	WinNT://S-1-5-32-544
func SIDLocator(sid *principal.SID) (string, error) {
	if sid == nil || sid.Revision != 1 || sid.SubAuthorityCount == 0 {
		return "", fmt.Errorf("%w: not a security identifier", ErrInvalidPrincipal)
	}
	return Scheme + "://" + sid.String(), nil
}

func checkIdentity(id principal.Identity) error {
	if id.IsZero() {
		return fmt.Errorf("%w: zero identity", ErrInvalidPrincipal)
	}
	if id.Domain() == "" || id.Account() == "" {
		return fmt.Errorf("%w: %q: identity must carry domain and account", ErrInvalidPrincipal, id)
	}
	if err := checkPart(id.Domain()); err != nil {
		return err
	}
	return checkPart(id.Account())
}

func checkPart(part string) error {
	if part == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPrincipal)
	}
	if strings.ContainsAny(part, `/\,`) {
		return fmt.Errorf("%w: %q: name must not contain separators", ErrInvalidPrincipal, part)
	}
	return nil
}
