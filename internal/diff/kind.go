package diff

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ChangeKind classifies how a path changed between two revisions.
type ChangeKind int

const (
	// KindAdded means the path exists only in the new revision.
	KindAdded ChangeKind = iota
	// KindModified means the path exists in both revisions with different content.
	KindModified
	// KindDeleted means the path exists only in the old revision.
	KindDeleted
	// KindRenamed means the path was moved; the new path is reported.
	KindRenamed
	// KindCopied means the path was copied from another path.
	KindCopied
)

// String returns the string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case KindAdded:
		return "added"
	case KindModified:
		return "modified"
	case KindDeleted:
		return "deleted"
	case KindRenamed:
		return "renamed"
	case KindCopied:
		return "copied"
	default:
		return "unknown"
	}
}

// Letter returns the git status letter for the change kind.
func (k ChangeKind) Letter() string {
	switch k {
	case KindAdded:
		return "A"
	case KindModified:
		return "M"
	case KindDeleted:
		return "D"
	case KindRenamed:
		return "R"
	case KindCopied:
		return "C"
	default:
		return "?"
	}
}

// MarshalJSON implements json.Marshaler
func (k ChangeKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (k *ChangeKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseKind(str)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses a change kind from either its name ("added") or its
// git status letter ("A").
func ParseKind(s string) (ChangeKind, error) {
	switch strings.ToUpper(s) {
	case "A", "ADDED":
		return KindAdded, nil
	case "M", "MODIFIED":
		return KindModified, nil
	case "D", "DELETED":
		return KindDeleted, nil
	case "R", "RENAMED":
		return KindRenamed, nil
	case "C", "COPIED":
		return KindCopied, nil
	default:
		return KindAdded, fmt.Errorf("unknown change kind: %s", s)
	}
}

// parseStatusLetter maps a git --name-status status field to a kind.
// Rename and copy statuses carry a similarity score ("R100", "C75").
func parseStatusLetter(status string) (ChangeKind, bool) {
	if status == "" {
		return 0, false
	}
	switch status[0] {
	case 'A':
		return KindAdded, true
	case 'M':
		return KindModified, true
	case 'D':
		return KindDeleted, true
	case 'R':
		return KindRenamed, true
	case 'C':
		return KindCopied, true
	default:
		// T (type change), U (unmerged), X: out of scope for filtering.
		return 0, false
	}
}

// KindSet is a set of change kinds used to filter a diff.
type KindSet map[ChangeKind]bool

// NewKindSet creates a set from the given kinds.
func NewKindSet(kinds ...ChangeKind) KindSet {
	s := make(KindSet, len(kinds))
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

// ParseKindSet parses a comma-separated list of kind names or letters,
// e.g. "A,M" or "added,modified". An empty string yields an empty set.
func ParseKindSet(s string) (KindSet, error) {
	set := make(KindSet)
	if strings.TrimSpace(s) == "" {
		return set, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := ParseKind(part)
		if err != nil {
			return nil, err
		}
		set[k] = true
	}
	return set, nil
}

// Has returns true if the set contains the kind.
func (s KindSet) Has(k ChangeKind) bool {
	return s[k]
}

// String returns the set as a comma-separated list of status letters,
// in a stable order.
func (s KindSet) String() string {
	letters := make([]string, 0, len(s))
	for k := range s {
		letters = append(letters, k.Letter())
	}
	sort.Strings(letters)
	return strings.Join(letters, ",")
}
