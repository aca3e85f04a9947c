package sync

import (
	"fmt"

	"github.com/vcs-python/vcspull-sub001/internal/syncer"
)

const (
	exitCodeSuccess = 0
	exitCodeFailed  = 1
	exitCodeNoMatch = 2
)

type syncExitError struct {
	code int
	msg  string
}

func (e syncExitError) Error() string { return e.msg }
func (e syncExitError) ExitCode() int { return e.code }

// evaluateSyncExit maps the run report to the process exit code: 0 when every
// outcome is cloned/updated/skipped, 1 when any outcome failed, 2 when the
// selection matched no repositories at all.
func evaluateSyncExit(report syncer.Report) error {
	if report.Empty() {
		return syncExitError{code: exitCodeNoMatch, msg: "no repositories matched the selection"}
	}
	if report.HasFailures() {
		s := report.Summary()
		if s.Failed == 1 {
			return syncExitError{code: exitCodeFailed, msg: "1 repository failed"}
		}
		return syncExitError{code: exitCodeFailed, msg: fmt.Sprintf("%d repositories failed", s.Failed)}
	}
	return nil
}
