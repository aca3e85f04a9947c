package syncer

import (
	"fmt"
	"io"
	"time"

	"github.com/vcs-python/vcspull-sub001/internal/repo"
	"github.com/vcs-python/vcspull-sub001/internal/vcs"
)

// Action is the final disposition of one descriptor's unit of work.
type Action string

const (
	ActionCloned  Action = "cloned"
	ActionUpdated Action = "updated"
	ActionSkipped Action = "skipped"
	ActionFailed  Action = "failed"
)

// Outcome is the finalized result of one sync unit. It is created when the
// orchestrator begins processing a descriptor and written exactly once.
type Outcome struct {
	Repo   repo.Descriptor
	Action Action
	// Reason is set only for failed outcomes.
	Reason   vcs.Reason
	Detail   string
	Duration time.Duration
}

// Summary partitions a report's outcomes; every outcome contributes to
// exactly one count.
type Summary struct {
	Cloned  int
	Updated int
	Skipped int
	Failed  int
}

// Report holds one outcome per selected descriptor, in selection order
// regardless of completion order.
type Report struct {
	Outcomes []Outcome
}

// Empty reports a zero-outcome run (the selection matched nothing), which is
// distinct from failure.
func (r Report) Empty() bool { return len(r.Outcomes) == 0 }

func (r Report) Summary() Summary {
	var s Summary
	for _, o := range r.Outcomes {
		switch o.Action {
		case ActionCloned:
			s.Cloned++
		case ActionUpdated:
			s.Updated++
		case ActionSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}

// HasFailures drives the non-zero exit code.
func (r Report) HasFailures() bool {
	for _, o := range r.Outcomes {
		if o.Action == ActionFailed {
			return true
		}
	}
	return false
}

// Render writes the human-readable run report: every descriptor with its
// outcome, classified reason and raw tool message for failures, then the
// summary line.
func (r Report) Render(w io.Writer) {
	for _, o := range r.Outcomes {
		switch o.Action {
		case ActionFailed:
			fmt.Fprintf(w, "%-8s %s (%s)", o.Action, o.Repo.Path, o.Reason)
			if o.Detail != "" {
				fmt.Fprintf(w, ": %s", o.Detail)
			}
			fmt.Fprintln(w)
		default:
			fmt.Fprintf(w, "%-8s %s", o.Action, o.Repo.Path)
			if o.Detail != "" {
				fmt.Fprintf(w, " (%s)", o.Detail)
			}
			fmt.Fprintln(w)
		}
	}
	s := r.Summary()
	fmt.Fprintf(w, "cloned=%d updated=%d skipped=%d failed=%d\n", s.Cloned, s.Updated, s.Skipped, s.Failed)
}
