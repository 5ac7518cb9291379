package reconcile

import (
	"errors"
	"fmt"

	"github.com/musterio/muster/pkg/principal"
)

// ErrUnresolvedIdentity indicates that a desired member reference could not
// be mapped to any principal. Match with errors.Is; the concrete
// *UnresolvedIdentityError carries the offending reference.
var ErrUnresolvedIdentity = errors.New("unresolved identity")

// UnresolvedIdentityError reports the member reference that failed to
// resolve. Resolution is all-or-nothing: when this error is returned, no
// membership mutation has been attempted.
type UnresolvedIdentityError struct {
	// Name is the reference as supplied by the caller.
	Name string

	// Err is the underlying resolver error, if any.
	Err error
}

func (e *UnresolvedIdentityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unresolved identity %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("unresolved identity %q", e.Name)
}

func (e *UnresolvedIdentityError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnresolvedIdentity, e.Err}
	}
	return []error{ErrUnresolvedIdentity}
}

// Op names a membership mutation.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// ApplyError reports a single failed mutation during the apply phase.
// Mutations already applied are not rolled back; the remaining mutations
// are still attempted. Callers receive all apply failures joined together.
type ApplyError struct {
	Op       Op
	Identity principal.Identity
	Err      error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("%s member %s: %v", e.Op, e.Identity, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }
