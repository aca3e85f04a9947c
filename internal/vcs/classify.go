package vcs

import (
	"errors"
	"strings"
)

// Stderr pattern tables mapping tool output to the failure taxonomy. The
// tables are matched case-insensitively, in order; the first hit wins and
// anything unmatched is ReasonUnknown.
var reasonPatterns = []struct {
	reason   Reason
	patterns []string
}{
	{ReasonAuthenticationFailed, []string{
		"authentication failed",
		"permission denied (publickey)",
		"could not read username",
		"could not read password",
		"invalid username or password",
		"http error 401",
		"http error 403",
		"403 forbidden",
		// svn
		"authorization failed",
	}},
	{ReasonNetworkUnreachable, []string{
		"could not resolve host",
		"could not resolve hostname",
		"unable to access",
		"connection refused",
		"connection timed out",
		"network is unreachable",
		"no route to host",
		"operation timed out",
		"failed to connect",
		// hg and svn spellings
		"error running ssh",
		"unable to connect to a repository",
	}},
	{ReasonDivergentHistory, []string{
		"not possible to fast-forward",
		"divergent branches",
		"refusing to merge unrelated histories",
		"your local changes to the following files would be overwritten",
		"needs merge",
		// hg update --check and svn merge conflicts
		"crosses branches",
		"uncommitted changes",
		"conflicting local changes",
		"local edit, incoming delete",
	}},
	{ReasonPathConflict, []string{
		"already exists and is not an empty directory",
		"destination is not empty",
		"is already a working copy for a different url",
		"not a git repository",
		"not a working copy",
		"no repository found",
	}},
}

// Classify maps one external invocation's result to a classified error, or
// nil for exit status zero.
func Classify(res CommandResult, err error) error {
	if err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return &Error{Reason: ReasonToolMissing, Msg: err.Error()}
		}
		return &Error{Reason: ReasonUnknown, Msg: err.Error()}
	}
	if res.ExitCode == 0 {
		return nil
	}
	return &Error{Reason: classifyOutput(res.Stderr + "\n" + res.Stdout), Msg: excerpt(res)}
}

func classifyOutput(out string) Reason {
	lower := strings.ToLower(out)
	for _, group := range reasonPatterns {
		for _, p := range group.patterns {
			if strings.Contains(lower, p) {
				return group.reason
			}
		}
	}
	return ReasonUnknown
}
