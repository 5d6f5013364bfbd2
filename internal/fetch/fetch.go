// Package fetch retrieves refs from a remote with retry and backoff.
//
// A fetch can fail transiently (network blips, lock contention from a
// concurrent git process) without the target refs being absent, so
// failures are retried with exponential backoff before being reported.
// Exhausting retries is a distinct outcome from a missing ref: the
// caller must be able to tell "the network is down" apart from "the
// tag was never pushed".
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/okvist/refsolve/internal/git"
)

// Defaults for retry configuration. These are configuration inputs,
// not constants baked into the retry loop; tests run with a zero base
// delay.
const (
	DefaultMaxAttempts = 4
	DefaultBackoffBase = 2 * time.Second
	DefaultTimeout     = 2 * time.Minute
)

// Attempt records one try of a fetch operation.
type Attempt struct {
	// Number is the 1-based attempt number.
	Number int `json:"number"`

	// Err holds the failure text, empty on success.
	Err string `json:"error,omitempty"`

	// Duration is how long the attempt took.
	Duration time.Duration `json:"duration"`
}

// OK returns true if the attempt succeeded.
func (a Attempt) OK() bool {
	return a.Err == ""
}

// ErrFetchExhausted is returned when every fetch attempt failed.
type ErrFetchExhausted struct {
	Remote   string
	Attempts int
	Last     error
}

func (e *ErrFetchExhausted) Error() string {
	return fmt.Sprintf("fetch from '%s' failed after %d attempts: %v", e.Remote, e.Attempts, e.Last)
}

func (e *ErrFetchExhausted) Unwrap() error {
	return e.Last
}

// Fetcher fetches refs from a remote with bounded retries.
type Fetcher struct {
	// Remote is the remote name to fetch from (usually "origin").
	Remote string

	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BackoffBase is the base delay between attempts. The wait before
	// attempt n+1 is BackoffBase multiplied by n.
	BackoffBase time.Duration

	// Timeout bounds each individual attempt so a hung network call
	// cannot stall the retry loop.
	Timeout time.Duration

	// PreAttempt, if set, runs before every attempt. The resolver
	// hooks lock cleanup here, since a failed fetch may itself leave
	// a lock behind.
	PreAttempt func(ctx context.Context)

	// Logger for attempt-level diagnostics. Nil discards output.
	Logger hclog.Logger
}

// New creates a Fetcher for the given remote with default retry settings.
func New(remote string) *Fetcher {
	return &Fetcher{
		Remote:      remote,
		MaxAttempts: DefaultMaxAttempts,
		BackoffBase: DefaultBackoffBase,
		Timeout:     DefaultTimeout,
	}
}

func (f *Fetcher) logger() hclog.Logger {
	if f.Logger == nil {
		return hclog.NewNullLogger()
	}
	return f.Logger
}

// FetchAll fetches all branch refs and tags from the remote, retrying
// on failure. The returned attempts form the complete retry history
// regardless of outcome. On exhaustion the error is *ErrFetchExhausted
// wrapping the last attempt's failure.
func (f *Fetcher) FetchAll(ctx context.Context, repoDir string) ([]Attempt, error) {
	maxAttempts := f.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	args := []string{"fetch", f.Remote, "--tags"}

	var attempts []Attempt
	var lastErr error
	for n := 1; n <= maxAttempts; n++ {
		if f.PreAttempt != nil {
			f.PreAttempt(ctx)
		}

		start := time.Now()
		err := git.RunSilent(ctx, args, &git.RunOptions{Dir: repoDir, Timeout: f.Timeout})
		attempt := Attempt{Number: n, Duration: time.Since(start)}
		if err != nil {
			attempt.Err = err.Error()
		}
		attempts = append(attempts, attempt)

		if err == nil {
			f.logger().Debug("fetch succeeded", "remote", f.Remote, "attempt", n)
			return attempts, nil
		}
		lastErr = err
		f.logger().Warn("fetch attempt failed", "remote", f.Remote, "attempt", n, "max", maxAttempts, "error", err)

		if n == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return attempts, ctx.Err()
		case <-time.After(f.BackoffBase * time.Duration(n)):
		}
	}

	return attempts, &ErrFetchExhausted{Remote: f.Remote, Attempts: len(attempts), Last: lastErr}
}

// FetchRef performs a single targeted fetch of one ref by name. This
// covers remotes that omit a given tag from the bulk tag fetch. It is
// a one-shot fallback after a successful bulk fetch, not a retry loop.
func (f *Fetcher) FetchRef(ctx context.Context, repoDir, rev string) error {
	opts := &git.RunOptions{Dir: repoDir, Timeout: f.Timeout}

	// Try as a tag first so the local tag ref is created, then as any
	// ref the remote can resolve (branch name, fully qualified ref).
	tagSpec := fmt.Sprintf("refs/tags/%s:refs/tags/%s", rev, rev)
	if err := git.RunSilent(ctx, []string{"fetch", f.Remote, tagSpec}, opts); err == nil {
		return nil
	}

	if err := git.RunSilent(ctx, []string{"fetch", f.Remote, rev}, opts); err != nil {
		return fmt.Errorf("targeted fetch of %q from '%s' failed: %w", rev, f.Remote, err)
	}
	return nil
}
