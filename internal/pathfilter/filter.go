// Package pathfilter provides glob-based path filtering using doublestar patterns.
package pathfilter

import (
	"github.com/bmatcuk/doublestar/v4"
)

// Filter holds the include and exclude patterns for path filtering
type Filter struct {
	include []string
	exclude []string
}

// New creates a new Filter with the given include and exclude patterns.
// Empty include patterns match everything.
func New(include, exclude []string) *Filter {
	return &Filter{
		include: include,
		exclude: exclude,
	}
}

// Match checks if a single path matches the filter criteria
func (f *Filter) Match(path string) (bool, error) {
	// Check if it matches any include pattern
	included := len(f.include) == 0
	for _, pattern := range f.include {
		match, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, err
		}
		if match {
			included = true
			break
		}
	}

	if !included {
		return false, nil
	}

	// Check if it matches any exclude pattern
	for _, pattern := range f.exclude {
		match, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, err
		}
		if match {
			return false, nil
		}
	}

	return true, nil
}

// Apply returns the subset of paths matching the filter, preserving order.
func (f *Filter) Apply(paths []string) ([]string, error) {
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		ok, err := f.Match(p)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// DefaultFilter returns a filter that passes every path
func DefaultFilter() *Filter {
	return New([]string{"**"}, nil)
}
