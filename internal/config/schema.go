package config

import (
	"fmt"

	"cuelang.org/go/cue/cuecontext"
)

// schema constrains the raw configuration tree before any typed decoding:
// base directories map repository names to either a `vcs+url` string or a
// mapping with repo/url, remotes and shell_command_after.
const schema = `
#Repo: string | {
	repo?: string
	url?:  string
	remotes?: {[string]: string}
	shell_command_after?: [...string]
}

{[string]: {[string]: #Repo}}
`

// validateRaw checks a decoded YAML tree against the CUE schema.
func validateRaw(path string, raw any) error {
	ctx := cuecontext.New()
	sv := ctx.CompileString(schema)
	if err := sv.Err(); err != nil {
		return fmt.Errorf("internal schema error: %v", err)
	}
	v := ctx.Encode(raw)
	if err := v.Err(); err != nil {
		return fmt.Errorf("%s: invalid config: %v", path, err)
	}
	if err := sv.Unify(v).Validate(); err != nil {
		return fmt.Errorf("%s: invalid config: %v", path, err)
	}
	return nil
}
