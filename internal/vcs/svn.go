package vcs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/vcs-python/vcspull-sub001/internal/repo"
)

type svnAdapter struct{}

func (svnAdapter) Kind() repo.Kind { return repo.KindSvn }
func (svnAdapter) Tool() string    { return "svn" }

func (svnAdapter) Detect(path string) State {
	state, hasControl := inspectDir(path, ".svn")
	if !hasControl {
		return state
	}
	info, err := os.Stat(filepath.Join(path, ".svn"))
	if err != nil || !info.IsDir() {
		return StateCorrupt
	}
	return StateSame
}

// Subversion working copies have exactly one upstream; the remote name is
// ignored when reading.
func (svnAdapter) CurrentRemoteURL(path, _ string) (string, bool, error) {
	res, err := runCommand(context.Background(), path, "svn", "info", "--show-item", "url")
	if err != nil {
		return "", false, err
	}
	if res.ExitCode != 0 {
		return "", false, nil
	}
	url := strings.TrimSpace(res.Stdout)
	return url, url != "", nil
}

func (svnAdapter) Clone(ctx context.Context, d repo.Descriptor) error {
	if err := ensureParent(d.Path); err != nil {
		return &Error{Reason: ReasonUnknown, Msg: err.Error()}
	}
	res, err := runCommand(ctx, filepath.Dir(d.Path), "svn", "checkout", d.Primary().URL, d.Path)
	return Classify(res, err)
}

func (a svnAdapter) Update(ctx context.Context, d repo.Descriptor) (UpdateStatus, error) {
	before := a.revision(ctx, d.Path)
	res, err := runCommand(ctx, d.Path, "svn", "update")
	if cerr := Classify(res, err); cerr != nil {
		return Updated, cerr
	}
	if before != "" && before == a.revision(ctx, d.Path) {
		return AlreadyCurrent, nil
	}
	return Updated, nil
}

func (a svnAdapter) ReconcileRemote(ctx context.Context, path, name, url string) (ReconcileStatus, error) {
	current, ok, err := a.CurrentRemoteURL(path, name)
	if err != nil {
		return RemoteUnchanged, Classify(CommandResult{ExitCode: -1}, err)
	}
	if ok && current == url {
		return RemoteUnchanged, nil
	}
	res, err := runCommand(ctx, path, "svn", "relocate", url)
	if cerr := Classify(res, err); cerr != nil {
		return RemoteUnchanged, cerr
	}
	return RemoteUpdated, nil
}

func (svnAdapter) revision(ctx context.Context, path string) string {
	res, err := runCommand(ctx, path, "svn", "info", "--show-item", "revision")
	if err != nil || res.ExitCode != 0 {
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}
