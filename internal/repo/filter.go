package repo

import (
	"fmt"
	"path"
	"strings"
)

// Filter selects a subset of descriptors. Categories combine with AND;
// multiple patterns within one category combine with OR. Matching is
// case-sensitive. An empty filter selects everything in the original order.
type Filter struct {
	// Names are glob patterns matched against the descriptor name.
	Names []string
	// Paths are glob patterns matched against the absolute working copy path.
	Paths []string
	// URLs are substrings matched against any configured remote URL.
	URLs []string
}

// Empty reports whether the filter has no predicates.
func (f Filter) Empty() bool {
	return len(f.Names) == 0 && len(f.Paths) == 0 && len(f.URLs) == 0
}

// Apply returns the descriptors matching every supplied predicate category,
// preserving the input order. A selection with no matches is not an error.
func (f Filter) Apply(ds []Descriptor) ([]Descriptor, error) {
	if f.Empty() {
		return ds, nil
	}
	out := make([]Descriptor, 0, len(ds))
	for _, d := range ds {
		ok, err := f.matches(d)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f Filter) matches(d Descriptor) (bool, error) {
	if len(f.Names) > 0 {
		ok, err := matchAnyGlob(f.Names, d.Name)
		if err != nil || !ok {
			return false, err
		}
	}
	if len(f.Paths) > 0 {
		ok, err := matchAnyGlob(f.Paths, d.Path)
		if err != nil || !ok {
			return false, err
		}
	}
	if len(f.URLs) > 0 && !matchAnyURL(f.URLs, d.Remotes) {
		return false, nil
	}
	return true, nil
}

func matchAnyGlob(patterns []string, s string) (bool, error) {
	for _, p := range patterns {
		ok, err := path.Match(p, s)
		if err != nil {
			return false, fmt.Errorf("invalid filter pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func matchAnyURL(subs []string, remotes []Remote) bool {
	for _, sub := range subs {
		for _, r := range remotes {
			if strings.Contains(r.URL, sub) {
				return true
			}
		}
	}
	return false
}
