package resolver

import (
	"fmt"
	"strings"
)

// Role identifies which of the two input revisions an error refers to.
// An old tag missing usually means pipeline misconfiguration; a new tag
// missing may mean the release is not yet tagged. Callers act
// differently on each, so the two are never conflated.
type Role int

const (
	// RoleOld is the base revision of the comparison.
	RoleOld Role = iota
	// RoleNew is the target revision of the comparison.
	RoleNew
)

// String returns the role name.
func (r Role) String() string {
	if r == RoleNew {
		return "new"
	}
	return "old"
}

// ErrMissingInput is returned when a required revision argument is
// empty. This is a precondition failure, distinct from a revision that
// exists as input but cannot be resolved.
type ErrMissingInput struct {
	// Roles lists the empty inputs; both are reported when both are empty.
	Roles []Role
}

func (e *ErrMissingInput) Error() string {
	names := make([]string, len(e.Roles))
	for i, r := range e.Roles {
		names[i] = r.String() + " revision"
	}
	return fmt.Sprintf("missing required input: %s", strings.Join(names, ", "))
}

// ErrRevisionNotFound is returned when a revision still fails to
// resolve after a successful bulk fetch and a targeted fetch fallback.
type ErrRevisionNotFound struct {
	// Rev is the revision string that could not be resolved.
	Rev string

	// Role distinguishes the old revision from the new one.
	Role Role

	// Cause is the underlying resolution failure.
	Cause error
}

func (e *ErrRevisionNotFound) Error() string {
	return fmt.Sprintf("%s revision '%s' not found after fetch", e.Role, e.Rev)
}

func (e *ErrRevisionNotFound) Unwrap() error {
	return e.Cause
}

// ErrDiffOperation is returned when the diff itself fails even though
// both revisions resolved.
type ErrDiffOperation struct {
	OldRev string
	NewRev string
	Cause  error
}

func (e *ErrDiffOperation) Error() string {
	return fmt.Sprintf("diff of '%s'..'%s' failed: %v", e.OldRev, e.NewRev, e.Cause)
}

func (e *ErrDiffOperation) Unwrap() error {
	return e.Cause
}
