package vcs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/vcs-python/vcspull-sub001/internal/repo"
)

type hgAdapter struct{}

func (hgAdapter) Kind() repo.Kind { return repo.KindHg }
func (hgAdapter) Tool() string    { return "hg" }

func (hgAdapter) Detect(path string) State {
	state, hasControl := inspectDir(path, ".hg")
	if !hasControl {
		return state
	}
	info, err := os.Stat(filepath.Join(path, ".hg"))
	if err != nil || !info.IsDir() {
		return StateCorrupt
	}
	return StateSame
}

func (hgAdapter) CurrentRemoteURL(path, name string) (string, bool, error) {
	url, ok := hgrcPath(filepath.Join(path, ".hg", "hgrc"), name)
	return url, ok, nil
}

func (hgAdapter) Clone(ctx context.Context, d repo.Descriptor) error {
	if err := ensureParent(d.Path); err != nil {
		return &Error{Reason: ReasonUnknown, Msg: err.Error()}
	}
	res, err := runCommand(ctx, filepath.Dir(d.Path), "hg", "clone", d.Primary().URL, d.Path)
	return Classify(res, err)
}

func (a hgAdapter) Update(ctx context.Context, d repo.Descriptor) (UpdateStatus, error) {
	before := hgIdentity(ctx, d.Path)
	res, err := runCommand(ctx, d.Path, "hg", "pull")
	if cerr := Classify(res, err); cerr != nil {
		return Updated, cerr
	}
	// --check refuses to update across uncommitted changes instead of
	// discarding them.
	res, err = runCommand(ctx, d.Path, "hg", "update", "--check")
	if cerr := Classify(res, err); cerr != nil {
		return Updated, cerr
	}
	if before != "" && before == hgIdentity(ctx, d.Path) {
		return AlreadyCurrent, nil
	}
	return Updated, nil
}

func (a hgAdapter) ReconcileRemote(_ context.Context, path, name, url string) (ReconcileStatus, error) {
	rcPath := filepath.Join(path, ".hg", "hgrc")
	current, ok := hgrcPath(rcPath, name)
	if ok && current == url {
		return RemoteUnchanged, nil
	}
	// Mercurial has no set-url command; remotes live in .hg/hgrc [paths].
	if err := writeHgrcPath(rcPath, name, url); err != nil {
		return RemoteUnchanged, &Error{Reason: ReasonUnknown, Msg: err.Error()}
	}
	return RemoteUpdated, nil
}

func hgIdentity(ctx context.Context, path string) string {
	res, err := runCommand(ctx, path, "hg", "identify", "-i")
	if err != nil || res.ExitCode != 0 {
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}

// hgrcPath reads the URL recorded for name in the [paths] section of an hgrc
// file.
func hgrcPath(rcPath, name string) (string, bool) {
	data, err := os.ReadFile(rcPath)
	if err != nil {
		return "", false
	}
	inPaths := false
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inPaths = trimmed == "[paths]"
			continue
		}
		if !inPaths || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		k, v, found := strings.Cut(trimmed, "=")
		if found && strings.TrimSpace(k) == name {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// writeHgrcPath sets name = url in the [paths] section, creating the file or
// section as needed and leaving all other lines untouched.
func writeHgrcPath(rcPath, name, url string) error {
	var lines []string
	if data, err := os.ReadFile(rcPath); err == nil {
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) == 1 && lines[0] == "" {
			lines = nil
		}
	}

	out := make([]string, 0, len(lines)+2)
	inPaths := false
	replaced := false
	sectionSeen := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			if inPaths && !replaced {
				out = append(out, name+" = "+url)
				replaced = true
			}
			inPaths = trimmed == "[paths]"
			if inPaths {
				sectionSeen = true
			}
			out = append(out, line)
			continue
		}
		if inPaths {
			if k, _, found := strings.Cut(trimmed, "="); found && strings.TrimSpace(k) == name {
				out = append(out, name+" = "+url)
				replaced = true
				continue
			}
		}
		out = append(out, line)
	}
	if !replaced {
		if !sectionSeen {
			out = append(out, "[paths]")
		}
		out = append(out, name+" = "+url)
	}
	return os.WriteFile(rcPath, []byte(strings.Join(out, "\n")+"\n"), 0o644)
}
