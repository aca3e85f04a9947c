package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vcs-python/vcspull-sub001/internal/repo"
)

// Resolve turns the merged raw configuration into a validated, stable-ordered
// descriptor set. Base directories get `~` and environment variable
// expansion; URL scheme prefixes (git+, hg+, svn+) select the VCS kind.
func Resolve(cfg Config) ([]repo.Descriptor, error) {
	var out []repo.Descriptor
	for base, repos := range cfg {
		dir, err := expandDir(base)
		if err != nil {
			return nil, fmt.Errorf("%w: base directory %q: %v", repo.ErrInvalid, base, err)
		}
		for name, entry := range repos {
			d, err := resolveOne(dir, name, entry)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no repositories configured", repo.ErrInvalid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	if err := repo.ValidateSet(out); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveOne(dir, name string, entry Entry) (repo.Descriptor, error) {
	kind, url, err := splitVCSURL(entry.URL)
	if err != nil {
		return repo.Descriptor{}, fmt.Errorf("%w: %s: %v", repo.ErrInvalid, name, err)
	}
	d := repo.Descriptor{
		Name:    name,
		Path:    filepath.Join(dir, name),
		Kind:    kind,
		Remotes: []repo.Remote{{Name: primaryRemoteName(kind), URL: url}},
		Hooks:   entry.Hooks,
	}
	if len(entry.Remotes) > 0 {
		if kind != repo.KindGit {
			return repo.Descriptor{}, fmt.Errorf("%w: %s: extra remotes are only supported for git", repo.ErrInvalid, name)
		}
		names := make([]string, 0, len(entry.Remotes))
		for rn := range entry.Remotes {
			names = append(names, rn)
		}
		sort.Strings(names)
		for _, rn := range names {
			rkind, rurl, err := splitVCSURL(entry.Remotes[rn])
			if err != nil {
				return repo.Descriptor{}, fmt.Errorf("%w: %s: remote %s: %v", repo.ErrInvalid, name, rn, err)
			}
			if rkind != kind {
				return repo.Descriptor{}, fmt.Errorf("%w: %s: remote %s has vcs kind %s, expected %s", repo.ErrInvalid, name, rn, rkind, kind)
			}
			if rn == d.Remotes[0].Name {
				d.Remotes[0].URL = rurl
				continue
			}
			d.Remotes = append(d.Remotes, repo.Remote{Name: rn, URL: rurl})
		}
	}
	return d, nil
}

func primaryRemoteName(kind repo.Kind) string {
	if kind == repo.KindGit {
		return "origin"
	}
	return "default"
}

// splitVCSURL maps "git+https://..." to (git, "https://...") and infers git
// for the common unprefixed spellings.
func splitVCSURL(raw string) (repo.Kind, string, error) {
	if raw == "" {
		return "", "", fmt.Errorf("missing repository url")
	}
	if prefix, rest, found := strings.Cut(raw, "+"); found {
		kind := repo.Kind(prefix)
		if repo.KnownKind(kind) {
			if rest == "" {
				return "", "", fmt.Errorf("missing url after %s+", prefix)
			}
			return kind, rest, nil
		}
	}
	if strings.HasPrefix(raw, "git@") || strings.HasPrefix(raw, "git://") || strings.HasSuffix(raw, ".git") {
		return repo.KindGit, raw, nil
	}
	return "", "", fmt.Errorf("cannot determine vcs kind of %q (use git+, hg+ or svn+ prefix)", raw)
}

// expandDir expands ~ and $VARs and requires the result to be absolute.
func expandDir(base string) (string, error) {
	dir := os.ExpandEnv(base)
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	dir = filepath.Clean(dir)
	if !filepath.IsAbs(dir) {
		return "", fmt.Errorf("not an absolute path after expansion: %s", dir)
	}
	return dir, nil
}
