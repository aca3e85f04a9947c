// Package vcs adapts git, hg and svn command line tools behind a uniform
// capability set. Callers never branch on the VCS kind outside this package.
package vcs

import (
	"context"
	"fmt"

	"github.com/vcs-python/vcspull-sub001/internal/repo"
)

// State is the result of inspecting a local path without mutating it.
type State int

const (
	// StateAbsent: the path does not exist or is an empty directory.
	StateAbsent State = iota
	// StateSame: the path holds a working copy of the expected kind.
	StateSame
	// StateOther: the path is occupied by something else (a foreign working
	// copy or a plain directory with contents).
	StateOther
	// StateCorrupt: the expected control directory exists but cannot be read.
	StateCorrupt
)

// Reason classifies a failed unit of work. Unmatched tool output falls into
// ReasonUnknown with the raw message preserved in the outcome detail.
type Reason string

const (
	ReasonNetworkUnreachable   Reason = "network-unreachable"
	ReasonAuthenticationFailed Reason = "authentication-failed"
	ReasonPathConflict         Reason = "path-conflict"
	ReasonDivergentHistory     Reason = "divergent-history"
	ReasonToolMissing          Reason = "tool-missing"
	ReasonHookFailed           Reason = "hook-failed"
	ReasonUnknown              Reason = "unknown"
)

// Error is a classified adapter failure.
type Error struct {
	Reason Reason
	Msg    string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Msg)
}

// ReasonOf extracts the classification from err, defaulting to ReasonUnknown.
func ReasonOf(err error) Reason {
	if ce, ok := err.(*Error); ok {
		return ce.Reason
	}
	return ReasonUnknown
}

// UpdateStatus distinguishes an integration that changed the working copy
// from one that found it already current.
type UpdateStatus int

const (
	Updated UpdateStatus = iota
	AlreadyCurrent
)

// ReconcileStatus reports whether a recorded remote URL had to be corrected.
type ReconcileStatus int

const (
	RemoteUnchanged ReconcileStatus = iota
	RemoteUpdated
)

// Adapter is the per-kind capability set. Clone, Update and ReconcileRemote
// spawn external processes and honor ctx cancellation; Detect and
// CurrentRemoteURL only read local state.
type Adapter interface {
	Kind() repo.Kind
	// Tool is the executable the adapter shells out to.
	Tool() string
	Detect(path string) State
	// CurrentRemoteURL reads the locally recorded URL for the named remote.
	// ok is false when no such remote is configured.
	CurrentRemoteURL(path, name string) (url string, ok bool, err error)
	// Clone creates a new working copy from the primary remote, creating
	// parent directories as needed.
	Clone(ctx context.Context, d repo.Descriptor) error
	// Update fetches and integrates upstream changes conservatively
	// (fast-forward or equivalent); it fails rather than discarding local
	// work on conflict.
	Update(ctx context.Context, d repo.Descriptor) (UpdateStatus, error)
	// ReconcileRemote makes the locally recorded URL for the named remote
	// match the configured one without re-cloning.
	ReconcileRemote(ctx context.Context, path, name, url string) (ReconcileStatus, error)
}

// ForKind returns the adapter for a supported VCS kind.
func ForKind(k repo.Kind) (Adapter, error) {
	switch k {
	case repo.KindGit:
		return gitAdapter{}, nil
	case repo.KindHg:
		return hgAdapter{}, nil
	case repo.KindSvn:
		return svnAdapter{}, nil
	}
	return nil, fmt.Errorf("unsupported vcs kind %q", k)
}
