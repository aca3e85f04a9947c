// Package syncer is the synchronization engine: it walks a selected set of
// repository descriptors, decides per descriptor whether to clone, update or
// skip, dispatches to the matching VCS adapter on a bounded worker pool, and
// aggregates one outcome per descriptor into a deterministic run report.
package syncer

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/vcs-python/vcspull-sub001/internal/repo"
	"github.com/vcs-python/vcspull-sub001/internal/vcs"
)

// Options configures a run.
type Options struct {
	// Workers bounds concurrent sync units; zero means DefaultWorkers.
	Workers int
	// OnOutcome, when set, is called as each unit finishes, in completion
	// order. The final report is still in selection order.
	OnOutcome func(Outcome)
}

// Syncer orchestrates one run. The adapter factory and tool lookup are
// injectable so the state machine is testable without spawning processes.
type Syncer struct {
	opts     Options
	adapters func(repo.Kind) (vcs.Adapter, error)
	lookPath func(string) (string, error)
	runHooks func(context.Context, string, []string) error
}

func New(opts Options) *Syncer {
	return &Syncer{
		opts:     opts,
		adapters: vcs.ForKind,
		lookPath: exec.LookPath,
		runHooks: runHooks,
	}
}

// Sync processes every selected descriptor and returns a report with exactly
// one outcome per descriptor, in selection order. An empty selection yields
// an empty report, not an error; an invalid descriptor set is the only error
// returned, before any unit starts.
func (s *Syncer) Sync(ctx context.Context, selected []repo.Descriptor) (Report, error) {
	if len(selected) == 0 {
		return Report{}, nil
	}
	if err := repo.ValidateSet(selected); err != nil {
		return Report{}, err
	}

	// Probe each involved tool once. A missing executable fails every
	// descriptor of that kind without attempting identical units.
	missing := s.missingTools(selected)

	workers := clampWorkers(s.opts.Workers)
	outcomes := runIndexedParallel(ctx, len(selected), workers,
		func(idx int) indexedOutcome {
			d := selected[idx]
			var o Outcome
			if msg, ok := missing[d.Kind]; ok {
				o = Outcome{Repo: d, Action: ActionFailed, Reason: vcs.ReasonToolMissing, Detail: msg}
			} else {
				o = s.processOne(ctx, d)
			}
			s.emit(o)
			return indexedOutcome{idx: idx, outcome: o}
		},
		func(idx int) indexedOutcome {
			o := Outcome{Repo: selected[idx], Action: ActionFailed, Reason: vcs.ReasonUnknown, Detail: "canceled before start"}
			s.emit(o)
			return indexedOutcome{idx: idx, outcome: o}
		})

	// Completion order differs from selection order under concurrency;
	// restore it once after the pool drains.
	report := Report{Outcomes: make([]Outcome, len(selected))}
	for _, res := range outcomes {
		report.Outcomes[res.idx] = res.outcome
	}
	return report, nil
}

type indexedOutcome struct {
	idx     int
	outcome Outcome
}

func (s *Syncer) emit(o Outcome) {
	if s.opts.OnOutcome != nil {
		s.opts.OnOutcome(o)
	}
}

func (s *Syncer) missingTools(selected []repo.Descriptor) map[repo.Kind]string {
	missing := map[repo.Kind]string{}
	probed := map[repo.Kind]bool{}
	for _, d := range selected {
		if probed[d.Kind] {
			continue
		}
		probed[d.Kind] = true
		ad, err := s.adapters(d.Kind)
		if err != nil {
			missing[d.Kind] = err.Error()
			continue
		}
		if _, err := s.lookPath(ad.Tool()); err != nil {
			missing[d.Kind] = fmt.Sprintf("%s executable not found", ad.Tool())
		}
	}
	return missing
}

// processOne runs the per-descriptor state machine to a terminal outcome.
// Nothing escapes a unit of work: adapter failures and panics become failed
// outcomes and never abort sibling units.
func (s *Syncer) processOne(ctx context.Context, d repo.Descriptor) (out Outcome) {
	start := time.Now()
	out = Outcome{Repo: d}
	defer func() {
		if r := recover(); r != nil {
			out.Action = ActionFailed
			out.Reason = vcs.ReasonUnknown
			out.Detail = fmt.Sprintf("panic: %v", r)
		}
		out.Duration = time.Since(start)
	}()

	ad, err := s.adapters(d.Kind)
	if err != nil {
		return s.failed(out, err)
	}

	switch ad.Detect(d.Path) {
	case vcs.StateAbsent:
		if err := ad.Clone(ctx, d); err != nil {
			return s.failed(out, err)
		}
		out.Action = ActionCloned
	case vcs.StateSame:
		status, detail, err := s.updateExisting(ctx, ad, d)
		if err != nil {
			return s.failed(out, err)
		}
		if status == vcs.AlreadyCurrent {
			// Nothing changed: hooks are side effects of change, not of
			// every run.
			out.Action = ActionSkipped
			out.Detail = detail
			return out
		}
		out.Action = ActionUpdated
		out.Detail = detail
	case vcs.StateOther:
		out.Action = ActionFailed
		out.Reason = vcs.ReasonPathConflict
		out.Detail = fmt.Sprintf("%s exists and is not a %s working copy", d.Path, d.Kind)
		return out
	case vcs.StateCorrupt:
		out.Action = ActionFailed
		out.Reason = vcs.ReasonPathConflict
		out.Detail = fmt.Sprintf("%s holds an unreadable %s working copy", d.Path, d.Kind)
		return out
	}

	if err := s.runHooks(ctx, d.Path, d.Hooks); err != nil {
		// The sync itself succeeded and is not rolled back, but a hook
		// failure is not swallowed either.
		out.Action = ActionFailed
		out.Reason = vcs.ReasonHookFailed
		out.Detail = err.Error()
	}
	return out
}

// updateExisting reconciles every configured remote before fetching, since
// fetching against a stale URL would silently bring in the wrong history,
// then integrates upstream changes.
func (s *Syncer) updateExisting(ctx context.Context, ad vcs.Adapter, d repo.Descriptor) (vcs.UpdateStatus, string, error) {
	detail := ""
	for _, r := range d.Remotes {
		status, err := ad.ReconcileRemote(ctx, d.Path, r.Name, r.URL)
		if err != nil {
			return vcs.Updated, "", err
		}
		if status == vcs.RemoteUpdated {
			if detail != "" {
				detail += ", "
			}
			detail += "remote " + r.Name + " reconciled"
		}
	}
	status, err := ad.Update(ctx, d)
	if err != nil {
		return vcs.Updated, "", err
	}
	return status, detail, nil
}

func (s *Syncer) failed(out Outcome, err error) Outcome {
	out.Action = ActionFailed
	out.Reason = vcs.ReasonOf(err)
	if ce, ok := err.(*vcs.Error); ok {
		out.Detail = ce.Msg
	} else {
		out.Detail = err.Error()
	}
	return out
}
