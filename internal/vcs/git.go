package vcs

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"

	"github.com/vcs-python/vcspull-sub001/internal/repo"
)

type gitAdapter struct{}

func (gitAdapter) Kind() repo.Kind { return repo.KindGit }
func (gitAdapter) Tool() string    { return "git" }

func (gitAdapter) Detect(path string) State {
	state, hasControl := inspectDir(path, ".git")
	if !hasControl {
		return state
	}
	// The control directory is there; make sure the repository is readable
	// before treating it as ours.
	if _, err := gogit.PlainOpen(path); err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return StateOther
		}
		return StateCorrupt
	}
	return StateSame
}

func (gitAdapter) CurrentRemoteURL(path, name string) (string, bool, error) {
	r, err := gogit.PlainOpen(path)
	if err != nil {
		return "", false, err
	}
	remote, err := r.Remote(name)
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", false, nil
	}
	return urls[0], true, nil
}

func (a gitAdapter) Clone(ctx context.Context, d repo.Descriptor) error {
	if err := ensureParent(d.Path); err != nil {
		return &Error{Reason: ReasonUnknown, Msg: err.Error()}
	}
	primary := d.Primary()
	res, err := runCommand(ctx, filepath.Dir(d.Path), "git", "clone", "--origin", primary.Name, primary.URL, d.Path)
	if cerr := Classify(res, err); cerr != nil {
		return cerr
	}
	// Secondary remotes are recorded but not fetched at clone time.
	for _, r := range d.Remotes[1:] {
		res, err := runCommand(ctx, d.Path, "git", "remote", "add", r.Name, r.URL)
		if cerr := Classify(res, err); cerr != nil {
			return cerr
		}
	}
	return nil
}

func (a gitAdapter) Update(ctx context.Context, d repo.Descriptor) (UpdateStatus, error) {
	before, hadHead := gitHead(d.Path)
	res, err := runCommand(ctx, d.Path, "git", "pull", "--ff-only", d.Primary().Name)
	if cerr := Classify(res, err); cerr != nil {
		return Updated, cerr
	}
	after, hasHead := gitHead(d.Path)
	if hadHead && hasHead && before == after {
		return AlreadyCurrent, nil
	}
	return Updated, nil
}

func (a gitAdapter) ReconcileRemote(ctx context.Context, path, name, url string) (ReconcileStatus, error) {
	current, ok, err := a.CurrentRemoteURL(path, name)
	if err != nil {
		return RemoteUnchanged, &Error{Reason: ReasonUnknown, Msg: err.Error()}
	}
	if ok && current == url {
		return RemoteUnchanged, nil
	}
	sub := "set-url"
	if !ok {
		sub = "add"
	}
	res, err := runCommand(ctx, path, "git", "remote", sub, name, url)
	if cerr := Classify(res, err); cerr != nil {
		return RemoteUnchanged, cerr
	}
	return RemoteUpdated, nil
}

// gitHead resolves HEAD without spawning a process. ok is false for a freshly
// initialized repository with no commits.
func gitHead(path string) (string, bool) {
	r, err := gogit.PlainOpen(path)
	if err != nil {
		return "", false
	}
	ref, err := r.Head()
	if err != nil {
		return "", false
	}
	return ref.Hash().String(), true
}

// inspectDir handles the kind-independent part of detection: existence,
// emptiness and foreign control directories. hasControl reports whether the
// expected control entry is present for kind-specific verification.
func inspectDir(path, controlName string) (State, bool) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return StateAbsent, false
		}
		return StateCorrupt, false
	}
	if len(entries) == 0 {
		return StateAbsent, false
	}
	for _, e := range entries {
		if e.Name() == controlName {
			return StateSame, true
		}
	}
	return StateOther, false
}

func ensureParent(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
