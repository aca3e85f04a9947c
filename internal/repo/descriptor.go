package repo

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Kind identifies the version control system of a working copy.
type Kind string

const (
	KindGit Kind = "git"
	KindHg  Kind = "hg"
	KindSvn Kind = "svn"
)

// KnownKind reports whether k is one of the supported VCS kinds.
func KnownKind(k Kind) bool {
	switch k {
	case KindGit, KindHg, KindSvn:
		return true
	}
	return false
}

// Remote is a named upstream URL.
type Remote struct {
	Name string
	URL  string
}

// Descriptor is the normalized, validated configuration unit for one
// repository. It is constructed once from configuration at process start and
// immutable for the duration of a sync run.
type Descriptor struct {
	// Name is the repository's display name, the last segment of Path.
	Name string
	// Path is the absolute directory the working copy must occupy.
	Path string
	Kind Kind
	// Remotes is ordered; the first entry is the primary remote used for
	// cloning.
	Remotes []Remote
	// Hooks are shell commands run after a successful clone or update, with
	// the working copy as the current directory.
	Hooks []string
}

// Primary returns the clone source remote.
func (d Descriptor) Primary() Remote {
	if len(d.Remotes) == 0 {
		return Remote{}
	}
	return d.Remotes[0]
}

// ErrInvalid marks configuration contract violations. Callers handed an
// invalid descriptor set fail fast before any sync unit starts.
var ErrInvalid = errors.New("invalid repository configuration")

// ValidateSet checks the input contract for a configured descriptor set:
// non-empty, absolute unique paths, known VCS kind, at least one remote.
func ValidateSet(ds []Descriptor) error {
	if len(ds) == 0 {
		return fmt.Errorf("%w: empty descriptor set", ErrInvalid)
	}
	seen := make(map[string]string, len(ds))
	for _, d := range ds {
		if err := validateOne(d); err != nil {
			return err
		}
		if other, ok := seen[d.Path]; ok {
			return fmt.Errorf("%w: %s and %s target the same path %s", ErrInvalid, other, d.Name, d.Path)
		}
		seen[d.Path] = d.Name
	}
	return nil
}

func validateOne(d Descriptor) error {
	if d.Path == "" || !filepath.IsAbs(d.Path) {
		return fmt.Errorf("%w: %s: path %q is not absolute", ErrInvalid, d.Name, d.Path)
	}
	if !KnownKind(d.Kind) {
		return fmt.Errorf("%w: %s: unsupported vcs kind %q", ErrInvalid, d.Name, d.Kind)
	}
	if len(d.Remotes) == 0 {
		return fmt.Errorf("%w: %s: no remotes configured", ErrInvalid, d.Name)
	}
	for _, r := range d.Remotes {
		if r.Name == "" || r.URL == "" {
			return fmt.Errorf("%w: %s: remote with empty name or url", ErrInvalid, d.Name)
		}
	}
	return nil
}
