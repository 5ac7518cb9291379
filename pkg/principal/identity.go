package principal

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by reference parsing and SID decoding.
//
// Both are input-syntax violations: non-retryable, detected before any
// directory lookup is attempted.
var (
	// ErrMalformedReference indicates a member reference that violates the
	// accepted syntax (for example, it contains a '/' separator).
	ErrMalformedReference = errors.New("malformed member reference")

	// ErrInvalidSID indicates a byte sequence or string that is not a valid
	// security identifier.
	ErrInvalidSID = errors.New("invalid security identifier")
)

// Identity is the canonical representation of a resolved security principal:
// an account name and the domain (or machine name) that owns it.
//
// Identities are immutable and comparable: two identities are equal iff
// their canonical keys match. Comparison folds case on both parts, matching
// Windows account-name semantics; the display form preserves the case the
// principal was resolved with.
//
// The zero Identity is not a valid principal; construct one with
// NewIdentity or ParseIdentity.
type Identity struct {
	domain  string
	account string
}

// NewIdentity builds an Identity from an owning domain and account name.
// Both parts are kept verbatim for display; comparison is case-insensitive.
func NewIdentity(domain, account string) Identity {
	return Identity{domain: domain, account: account}
}

// Domain returns the owning domain or machine name.
func (id Identity) Domain() string { return id.domain }

// Account returns the account name.
func (id Identity) Account() string { return id.account }

// IsZero reports whether the identity is the zero value.
func (id Identity) IsZero() bool { return id.domain == "" && id.account == "" }

// String renders the canonical display form "DOMAIN\account".
func (id Identity) String() string {
	return id.domain + `\` + id.account
}

// Key returns the canonical comparison key: the display form with case
// folded. Two identities denote the same principal iff their keys are equal.
func (id Identity) Key() string {
	return strings.ToLower(id.domain) + `\` + strings.ToLower(id.account)
}

// Equal reports whether two identities denote the same principal.
func (id Identity) Equal(other Identity) bool {
	return strings.EqualFold(id.domain, other.domain) &&
		strings.EqualFold(id.account, other.account)
}

// ParseIdentity parses a canonical "DOMAIN\account" string back into an
// Identity. Unlike ParseReference it requires the domain part: this is the
// inverse of Identity.String, used when identities round-trip through
// journals and API payloads.
func ParseIdentity(s string) (Identity, error) {
	ref, err := ParseReference(s)
	if err != nil {
		return Identity{}, err
	}
	if !ref.Qualified() {
		return Identity{}, fmt.Errorf("%w: %q: missing domain qualifier", ErrMalformedReference, s)
	}
	return NewIdentity(ref.Domain, ref.Account), nil
}

// Reference is a caller-supplied, not-yet-resolved name for a principal:
// either a bare account name (owning domain implied to be the local
// machine) or a domain-qualified "DOMAIN\name".
//
// A Reference carries no guarantee that the principal exists; resolving it
// to an Identity is the directory's job.
type Reference struct {
	// Domain is the explicit domain qualifier, or "" for a bare name.
	Domain string

	// Account is the account name.
	Account string
}

// Qualified reports whether the reference carries an explicit domain.
func (r Reference) Qualified() bool { return r.Domain != "" }

// String renders the reference in the form it was parsed from.
func (r Reference) String() string {
	if r.Domain == "" {
		return r.Account
	}
	return r.Domain + `\` + r.Account
}

// ParseReference parses a member reference as supplied by callers and
// roster documents.
//
// Accepted forms:
//
//	name         bare account name, local machine implied
//	DOMAIN\name  domain-qualified account name
//
// A '/' anywhere in the reference is rejected with ErrMalformedReference:
// the slash-separated locator syntax belongs to directory URIs, never to
// member references. Empty names, empty parts around a '\', and more than
// one '\' are rejected the same way. Validation happens here, before any
// resolution is attempted.
func ParseReference(ref string) (Reference, error) {
	if ref == "" {
		return Reference{}, fmt.Errorf("%w: empty reference", ErrMalformedReference)
	}
	if strings.Contains(ref, "/") {
		return Reference{}, fmt.Errorf("%w: %q: '/' is not a valid separator", ErrMalformedReference, ref)
	}

	switch parts := strings.Split(ref, `\`); len(parts) {
	case 1:
		return Reference{Account: parts[0]}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return Reference{}, fmt.Errorf("%w: %q: empty domain or account", ErrMalformedReference, ref)
		}
		return Reference{Domain: parts[0], Account: parts[1]}, nil
	default:
		return Reference{}, fmt.Errorf("%w: %q: more than one '\\' separator", ErrMalformedReference, ref)
	}
}
