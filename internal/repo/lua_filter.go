package repo

import (
	"errors"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

var errLuaTimeout = errors.New(sandboxTimeoutError)

// LuaPredicate is an inline Lua expression evaluated once per descriptor with
// the globals `name`, `path`, `vcs` and `remotes` (a table of name -> url).
// The descriptor is kept when the expression yields true.
type LuaPredicate struct {
	code string
}

// CompileLua validates the expression and returns a predicate. Expressions
// without an explicit return are wrapped, so both
// `vcs == "git"` and `return vcs == "git"` are accepted.
func CompileLua(code string) (*LuaPredicate, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, errors.New("empty lua filter")
	}
	if !strings.HasPrefix(trimmed, "return") {
		code = "return (" + trimmed + ")"
	}
	L := newSandboxState()
	defer L.Close()
	if _, err := L.LoadString(code); err != nil {
		return nil, fmt.Errorf("invalid lua filter: %w", err)
	}
	return &LuaPredicate{code: code}, nil
}

// Apply keeps the descriptors for which the predicate yields true, preserving
// order. Evaluation errors abort the selection: a broken predicate must not
// silently sync an unintended subset.
func (p *LuaPredicate) Apply(ds []Descriptor) ([]Descriptor, error) {
	if p == nil {
		return ds, nil
	}
	out := make([]Descriptor, 0, len(ds))
	for _, d := range ds {
		keep, err := p.eval(d)
		if err != nil {
			return nil, fmt.Errorf("lua filter on %s: %w", d.Name, err)
		}
		if keep {
			out = append(out, d)
		}
	}
	return out, nil
}

func (p *LuaPredicate) eval(d Descriptor) (bool, error) {
	remotes := make(map[string]string, len(d.Remotes))
	for _, r := range d.Remotes {
		remotes[r.Name] = r.URL
	}
	ret, err := runSandboxed(p.code, map[string]any{
		"name":    d.Name,
		"path":    d.Path,
		"vcs":     string(d.Kind),
		"remotes": remotes,
	})
	if err != nil {
		return false, err
	}
	return lua.LVAsBool(ret), nil
}
