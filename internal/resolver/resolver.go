// Package resolver turns two possibly-unresolvable revision strings
// into a concrete diff, self-healing transient repository-lock and
// fetch problems along the way.
//
// The original failure mode this defends against is an ambiguous
// upstream error that conflated lock contention with genuinely absent
// tags. Every failure surfaced here carries a distinct type and names
// the offending revision, so the invoking pipeline can tell "retry
// later" apart from "fix your configuration".
package resolver

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"

	"github.com/okvist/refsolve/internal/diff"
	"github.com/okvist/refsolve/internal/fetch"
	"github.com/okvist/refsolve/internal/git"
	"github.com/okvist/refsolve/internal/lockfile"
)

// Result is the outcome of a successful resolve. It is constructed
// once per run and never mutated.
type Result struct {
	RepoPath string        `json:"repo_path"`
	OldRev   string        `json:"old_rev"`
	NewRev   string        `json:"new_rev"`
	OldSHA   string        `json:"old_sha"`
	NewSHA   string        `json:"new_sha"`
	Changes  []diff.Change `json:"changes"`

	// Attempts is the fetch retry history, kept for observability.
	Attempts []fetch.Attempt `json:"fetch_attempts,omitempty"`

	// RemovedLocks lists stale lock files deleted during the run.
	RemovedLocks []string `json:"removed_locks,omitempty"`
}

// Resolver resolves two revisions and computes the diff between them.
type Resolver struct {
	fetcher *fetch.Fetcher
	cleaner *lockfile.Cleaner
	logger  hclog.Logger

	// skipFetch disables the network fetch entirely (offline mode);
	// revisions must already be resolvable locally.
	skipFetch bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFetcher sets the fetcher used for bulk and targeted fetches.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(r *Resolver) { r.fetcher = f }
}

// WithCleaner sets the lock file cleaner.
func WithCleaner(c *lockfile.Cleaner) Option {
	return func(r *Resolver) { r.cleaner = c }
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithoutFetch disables the fetch step. Lock cleanup and local
// resolution still run.
func WithoutFetch() Option {
	return func(r *Resolver) { r.skipFetch = true }
}

// New creates a Resolver fetching from the given remote.
func New(remote string, opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = hclog.NewNullLogger()
	}
	if r.fetcher == nil {
		r.fetcher = fetch.New(remote)
	}
	if r.cleaner == nil {
		r.cleaner = lockfile.NewCleaner(nil, r.logger.Named("locks"))
	}
	return r
}

// ResolveDiff guarantees that no stale lock files block ref updates,
// that both revisions are fetched and resolvable, and that the diff
// between them restricted to the given kinds is produced.
//
// Order of operations: lock cleanup, bulk fetch with retry (each retry
// preceded by another cleanup pass), per-revision validation with a
// targeted fetch fallback, then the diff. The operation is not
// resumable; a fresh invocation always restarts from cleanup.
func (r *Resolver) ResolveDiff(ctx context.Context, repoPath, oldRev, newRev string, kinds diff.KindSet) (*Result, error) {
	// Preconditions: empty inputs are fatal and never retried, and are
	// distinct from revisions that exist but cannot be resolved.
	var missing []Role
	if oldRev == "" {
		missing = append(missing, RoleOld)
	}
	if newRev == "" {
		missing = append(missing, RoleNew)
	}
	if len(missing) > 0 {
		return nil, &ErrMissingInput{Roles: missing}
	}

	gitDir, err := git.GitDir(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RepoPath: repoPath,
		OldRev:   oldRev,
		NewRev:   newRev,
	}

	// Step 1: lock cleanup. Best-effort; a cleanup failure is logged
	// and never aborts the run.
	result.RemovedLocks = r.cleanLocks(gitDir)

	// Step 2: fetch with retry. A failed fetch may itself leave a lock
	// behind, so cleanup repeats before every attempt.
	if !r.skipFetch {
		preAttempt := r.fetcher.PreAttempt
		r.fetcher.PreAttempt = func(ctx context.Context) {
			result.RemovedLocks = append(result.RemovedLocks, r.cleanLocks(gitDir)...)
			if preAttempt != nil {
				preAttempt(ctx)
			}
		}
		defer func() { r.fetcher.PreAttempt = preAttempt }()

		attempts, err := r.fetcher.FetchAll(ctx, repoPath)
		result.Attempts = attempts
		if err != nil {
			return nil, err
		}
	}

	// Step 3: per-revision validation, old and new independently, so
	// the failure names exactly which inputs are missing.
	oldSHA, oldErr := r.resolveRev(ctx, repoPath, oldRev)
	newSHA, newErr := r.resolveRev(ctx, repoPath, newRev)
	if oldErr != nil {
		if newErr != nil {
			// Both missing: report both, keyed on the old revision so
			// the exit code stays deterministic.
			return nil, errors.Join(
				&ErrRevisionNotFound{Rev: oldRev, Role: RoleOld, Cause: oldErr},
				&ErrRevisionNotFound{Rev: newRev, Role: RoleNew, Cause: newErr},
			)
		}
		return nil, &ErrRevisionNotFound{Rev: oldRev, Role: RoleOld, Cause: oldErr}
	}
	if newErr != nil {
		return nil, &ErrRevisionNotFound{Rev: newRev, Role: RoleNew, Cause: newErr}
	}
	result.OldSHA = oldSHA
	result.NewSHA = newSHA

	// Step 4: diff, only once both revisions resolve.
	changes, err := diff.Compute(ctx, repoPath, oldRev, newRev, kinds)
	if err != nil {
		return nil, &ErrDiffOperation{OldRev: oldRev, NewRev: newRev, Cause: err}
	}
	result.Changes = changes

	return result, nil
}

// resolveRev resolves a revision, falling back to one targeted fetch
// of that exact ref. Partial fetch success (the bulk fetch updated
// some refs but not this one) lands here the same way a missing ref
// does.
func (r *Resolver) resolveRev(ctx context.Context, repoPath, rev string) (string, error) {
	sha, err := git.ResolveRef(ctx, repoPath, rev)
	if err == nil {
		return sha, nil
	}
	if !git.IsNotFound(err) {
		return "", err
	}

	if r.skipFetch {
		return "", err
	}

	r.logger.Debug("revision not resolvable after bulk fetch, trying targeted fetch", "rev", rev)
	if fetchErr := r.fetcher.FetchRef(ctx, repoPath, rev); fetchErr != nil {
		r.logger.Debug("targeted fetch failed", "rev", rev, "error", fetchErr)
		return "", err
	}

	return git.ResolveRef(ctx, repoPath, rev)
}

func (r *Resolver) cleanLocks(gitDir string) []string {
	removed, err := r.cleaner.Clean(gitDir)
	if err != nil {
		r.logger.Warn("lock cleanup failed", "git_dir", gitDir, "error", err)
		return nil
	}
	return removed
}
