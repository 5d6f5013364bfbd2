package cli

import (
	"errors"

	"github.com/okvist/refsolve/internal/fetch"
	"github.com/okvist/refsolve/internal/resolver"
)

// Exit codes consumed by the invoking pipeline. Each failure kind maps
// to its own code so the caller can distinguish "retry later" from
// "fix your configuration" without parsing error text.
const (
	ExitSuccess             = 0  // Success, diff printed
	ExitError               = 1  // General error (bad arguments, not a repository, git missing)
	ExitMissingInput        = 50 // Required revision argument empty or absent
	ExitDiffOperation       = 51 // Diff computation failed with resolvable inputs
	ExitFetchExhausted      = 53 // Fetch failed after exhausting retries
	ExitOldRevisionNotFound = 54 // Old revision unresolvable after fetch and targeted fetch
	ExitNewRevisionNotFound = 55 // New revision unresolvable after fetch and targeted fetch
)

// ExitCode maps an error to its process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var missing *resolver.ErrMissingInput
	if errors.As(err, &missing) {
		return ExitMissingInput
	}

	var notFound *resolver.ErrRevisionNotFound
	if errors.As(err, &notFound) {
		// When both revisions are missing the old one is reported
		// first, keeping the code deterministic.
		if notFound.Role == resolver.RoleOld {
			return ExitOldRevisionNotFound
		}
		return ExitNewRevisionNotFound
	}

	var exhausted *fetch.ErrFetchExhausted
	if errors.As(err, &exhausted) {
		return ExitFetchExhausted
	}

	var diffErr *resolver.ErrDiffOperation
	if errors.As(err, &diffErr) {
		return ExitDiffOperation
	}

	return ExitError
}
