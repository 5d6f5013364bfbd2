package lockfile

import "time"

// DefaultMinAge is the default minimum age before a lock file is
// considered abandoned. Legitimate git operations hold their locks for
// seconds; a lock this old almost certainly belongs to a dead process.
const DefaultMinAge = 10 * time.Minute

// Policy decides whether a lock artifact is stale and safe to delete.
// Staleness is inherently heuristic, so the strategy is injectable
// rather than hard-coded.
type Policy interface {
	Stale(a Artifact) bool
}

// AgePolicy treats a lock as stale once it exceeds a minimum age.
type AgePolicy struct {
	// MinAge is the minimum age before a lock is considered stale.
	MinAge time.Duration

	// Now returns the current time. Defaults to time.Now; tests
	// substitute a fake clock.
	Now func() time.Time
}

// NewAgePolicy creates an AgePolicy. A nil now function uses time.Now.
func NewAgePolicy(minAge time.Duration, now func() time.Time) *AgePolicy {
	if now == nil {
		now = time.Now
	}
	return &AgePolicy{MinAge: minAge, Now: now}
}

// Stale reports whether the artifact is older than MinAge.
func (p *AgePolicy) Stale(a Artifact) bool {
	return a.Age(p.Now()) >= p.MinAge
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(a Artifact) bool

// Stale implements Policy.
func (f PolicyFunc) Stale(a Artifact) bool {
	return f(a)
}
