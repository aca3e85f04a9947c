package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/vcs-python/vcspull-sub001/internal/repo"
	"github.com/vcs-python/vcspull-sub001/internal/vcs"
)

// fakeAdapter scripts per-path behavior so the orchestrator's state machine
// runs without spawning a single process. Workers call it concurrently, so
// mu guards the call log and every scripted map.
type fakeAdapter struct {
	kind repo.Kind

	mu    sync.Mutex
	calls []string

	detect    map[string]vcs.State
	remoteURL map[string]string // path|name -> recorded url
	cloneErr  map[string]error
	updateRes map[string]vcs.UpdateStatus
	updateErr map[string]error
}

func newFakeAdapter(kind repo.Kind) *fakeAdapter {
	return &fakeAdapter{
		kind:      kind,
		detect:    map[string]vcs.State{},
		remoteURL: map[string]string{},
		cloneErr:  map[string]error{},
		updateRes: map[string]vcs.UpdateStatus{},
		updateErr: map[string]error{},
	}
}

func (f *fakeAdapter) record(format string, args ...any) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	f.mu.Unlock()
}

func (f *fakeAdapter) callsFor(path string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if len(c) >= len(path) && c[len(c)-len(path):] == path {
			out = append(out, c[:len(c)-len(path)-1])
		}
	}
	return out
}

func (f *fakeAdapter) Kind() repo.Kind { return f.kind }
func (f *fakeAdapter) Tool() string    { return string(f.kind) }

func (f *fakeAdapter) Detect(path string) vcs.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detect[path]
}

func (f *fakeAdapter) CurrentRemoteURL(path, name string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	url, ok := f.remoteURL[path+"|"+name]
	return url, ok, nil
}

func (f *fakeAdapter) Clone(_ context.Context, d repo.Descriptor) error {
	f.record("clone %s", d.Path)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.cloneErr[d.Path]; err != nil {
		return err
	}
	f.detect[d.Path] = vcs.StateSame
	for _, r := range d.Remotes {
		f.remoteURL[d.Path+"|"+r.Name] = r.URL
	}
	return nil
}

func (f *fakeAdapter) Update(_ context.Context, d repo.Descriptor) (vcs.UpdateStatus, error) {
	f.record("update %s", d.Path)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErr[d.Path]; err != nil {
		return vcs.Updated, err
	}
	return f.updateRes[d.Path], nil
}

func (f *fakeAdapter) ReconcileRemote(_ context.Context, path, name, url string) (vcs.ReconcileStatus, error) {
	f.record("reconcile %s", path)
	f.mu.Lock()
	defer f.mu.Unlock()
	key := path + "|" + name
	if f.remoteURL[key] == url {
		return vcs.RemoteUnchanged, nil
	}
	f.remoteURL[key] = url
	return vcs.RemoteUpdated, nil
}

func descriptorAt(i int) repo.Descriptor {
	return repo.Descriptor{
		Name:    fmt.Sprintf("proj%02d", i),
		Path:    fmt.Sprintf("/ws/proj%02d", i),
		Kind:    repo.KindGit,
		Remotes: []repo.Remote{{Name: "origin", URL: fmt.Sprintf("https://example.com/proj%02d.git", i)}},
	}
}

func testSyncer(fake *fakeAdapter, opts Options) *Syncer {
	s := New(opts)
	s.adapters = func(repo.Kind) (vcs.Adapter, error) { return fake, nil }
	s.lookPath = func(string) (string, error) { return "/usr/bin/" + fake.Tool(), nil }
	s.runHooks = func(context.Context, string, []string) error { return nil }
	return s
}

func TestSyncOneOutcomePerDescriptorInSelectionOrder(t *testing.T) {
	fake := newFakeAdapter(repo.KindGit)
	var selected []repo.Descriptor
	for i := 0; i < 20; i++ {
		selected = append(selected, descriptorAt(i))
	}
	s := testSyncer(fake, Options{Workers: 8})

	report, err := s.Sync(context.Background(), selected)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(report.Outcomes) != len(selected) {
		t.Fatalf("got %d outcomes for %d descriptors", len(report.Outcomes), len(selected))
	}
	for i, o := range report.Outcomes {
		if o.Repo.Path != selected[i].Path {
			t.Fatalf("outcome %d is for %s, want %s", i, o.Repo.Path, selected[i].Path)
		}
		if o.Action != ActionCloned {
			t.Fatalf("outcome %d: %s, want cloned", i, o.Action)
		}
	}
}

func TestSyncFailureIsolation(t *testing.T) {
	fake := newFakeAdapter(repo.KindGit)
	var selected []repo.Descriptor
	for i := 0; i < 5; i++ {
		selected = append(selected, descriptorAt(i))
	}
	fake.cloneErr[selected[2].Path] = &vcs.Error{Reason: vcs.ReasonNetworkUnreachable, Msg: "could not resolve host"}
	s := testSyncer(fake, Options{Workers: 3})

	report, err := s.Sync(context.Background(), selected)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	sum := report.Summary()
	if sum.Failed != 1 || sum.Cloned != 4 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	bad := report.Outcomes[2]
	if bad.Action != ActionFailed || bad.Reason != vcs.ReasonNetworkUnreachable {
		t.Fatalf("unexpected failed outcome: %+v", bad)
	}
}

func TestSyncIdempotentSecondRunSkips(t *testing.T) {
	fake := newFakeAdapter(repo.KindGit)
	d := descriptorAt(0)
	s := testSyncer(fake, Options{})

	report, err := s.Sync(context.Background(), []repo.Descriptor{d})
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if report.Outcomes[0].Action != ActionCloned {
		t.Fatalf("first run: %s", report.Outcomes[0].Action)
	}

	// Clone left the fake working copy present and current.
	fake.updateRes[d.Path] = vcs.AlreadyCurrent
	report, err = s.Sync(context.Background(), []repo.Descriptor{d})
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if report.Outcomes[0].Action != ActionSkipped {
		t.Fatalf("second run: %s, want skipped", report.Outcomes[0].Action)
	}
}

func TestSyncReconcilesRemoteBeforeUpdate(t *testing.T) {
	fake := newFakeAdapter(repo.KindGit)
	d := descriptorAt(0)
	fake.detect[d.Path] = vcs.StateSame
	fake.remoteURL[d.Path+"|origin"] = "https://example.com/stale.git"
	fake.updateRes[d.Path] = vcs.Updated
	s := testSyncer(fake, Options{})

	report, err := s.Sync(context.Background(), []repo.Descriptor{d})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	o := report.Outcomes[0]
	if o.Action != ActionUpdated {
		t.Fatalf("unexpected action: %s", o.Action)
	}
	if o.Detail != "remote origin reconciled" {
		t.Fatalf("unexpected detail: %q", o.Detail)
	}
	if url := fake.remoteURL[d.Path+"|origin"]; url != d.Primary().URL {
		t.Fatalf("remote not reconciled: %s", url)
	}
	calls := fake.callsFor(d.Path)
	if len(calls) != 2 || calls[0] != "reconcile" || calls[1] != "update" {
		t.Fatalf("unexpected call order: %v", calls)
	}
}

func TestSyncPathConflictFailsClosed(t *testing.T) {
	fake := newFakeAdapter(repo.KindGit)
	d := descriptorAt(0)
	fake.detect[d.Path] = vcs.StateOther
	s := testSyncer(fake, Options{})

	report, err := s.Sync(context.Background(), []repo.Descriptor{d})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	o := report.Outcomes[0]
	if o.Action != ActionFailed || o.Reason != vcs.ReasonPathConflict {
		t.Fatalf("unexpected outcome: %+v", o)
	}
	if calls := fake.callsFor(d.Path); len(calls) != 0 {
		t.Fatalf("conflicting path must not be touched, got calls %v", calls)
	}
}

func TestSyncCorruptFailsClosed(t *testing.T) {
	fake := newFakeAdapter(repo.KindGit)
	d := descriptorAt(0)
	fake.detect[d.Path] = vcs.StateCorrupt
	s := testSyncer(fake, Options{})

	report, _ := s.Sync(context.Background(), []repo.Descriptor{d})
	o := report.Outcomes[0]
	if o.Action != ActionFailed || o.Reason != vcs.ReasonPathConflict {
		t.Fatalf("unexpected outcome: %+v", o)
	}
}

func TestSyncHookFailureMarksFailedWithoutRollback(t *testing.T) {
	fake := newFakeAdapter(repo.KindGit)
	d := descriptorAt(0)
	d.Hooks = []string{"make install"}
	s := testSyncer(fake, Options{})
	s.runHooks = func(_ context.Context, dir string, hooks []string) error {
		return errors.New("hook \"make install\": exit status 2")
	}

	report, err := s.Sync(context.Background(), []repo.Descriptor{d})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	o := report.Outcomes[0]
	if o.Action != ActionFailed || o.Reason != vcs.ReasonHookFailed {
		t.Fatalf("unexpected outcome: %+v", o)
	}
	// The clone itself happened and is not rolled back.
	if fake.detect[d.Path] != vcs.StateSame {
		t.Fatalf("clone was rolled back")
	}
}

func TestSyncSkippedRunsNoHooks(t *testing.T) {
	fake := newFakeAdapter(repo.KindGit)
	d := descriptorAt(0)
	d.Hooks = []string{"touch marker"}
	fake.detect[d.Path] = vcs.StateSame
	fake.remoteURL[d.Path+"|origin"] = d.Primary().URL
	fake.updateRes[d.Path] = vcs.AlreadyCurrent

	hooksRan := false
	s := testSyncer(fake, Options{})
	s.runHooks = func(context.Context, string, []string) error {
		hooksRan = true
		return nil
	}

	report, _ := s.Sync(context.Background(), []repo.Descriptor{d})
	if report.Outcomes[0].Action != ActionSkipped {
		t.Fatalf("unexpected action: %s", report.Outcomes[0].Action)
	}
	if hooksRan {
		t.Fatalf("hooks must not run when nothing changed")
	}
}

func TestSyncEmptySelectionYieldsEmptyReport(t *testing.T) {
	s := testSyncer(newFakeAdapter(repo.KindGit), Options{})
	report, err := s.Sync(context.Background(), nil)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("expected empty report")
	}
}

func TestSyncInvalidSetFailsFast(t *testing.T) {
	fake := newFakeAdapter(repo.KindGit)
	s := testSyncer(fake, Options{})
	bad := descriptorAt(0)
	bad.Remotes = nil

	_, err := s.Sync(context.Background(), []repo.Descriptor{bad})
	if !errors.Is(err, repo.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("no unit may start on contract violation, got %v", fake.calls)
	}
}

func TestSyncToolMissingShortCircuitsKind(t *testing.T) {
	fake := newFakeAdapter(repo.KindGit)
	var selected []repo.Descriptor
	for i := 0; i < 3; i++ {
		selected = append(selected, descriptorAt(i))
	}
	s := testSyncer(fake, Options{})
	s.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	report, err := s.Sync(context.Background(), selected)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	for i, o := range report.Outcomes {
		if o.Action != ActionFailed || o.Reason != vcs.ReasonToolMissing {
			t.Fatalf("outcome %d: %+v", i, o)
		}
	}
	if len(fake.calls) != 0 {
		t.Fatalf("adapter must not be invoked when the tool is missing, got %v", fake.calls)
	}
}

func TestSyncCanceledContextPreservesOutcomeCount(t *testing.T) {
	fake := newFakeAdapter(repo.KindGit)
	var selected []repo.Descriptor
	for i := 0; i < 6; i++ {
		selected = append(selected, descriptorAt(i))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := testSyncer(fake, Options{Workers: 2})

	report, err := s.Sync(ctx, selected)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(report.Outcomes) != len(selected) {
		t.Fatalf("got %d outcomes for %d descriptors", len(report.Outcomes), len(selected))
	}
	for i, o := range report.Outcomes {
		if o.Repo.Path != selected[i].Path {
			t.Fatalf("outcome %d out of order", i)
		}
	}
}

func TestSyncOnOutcomeSeesEveryUnit(t *testing.T) {
	fake := newFakeAdapter(repo.KindGit)
	var selected []repo.Descriptor
	for i := 0; i < 10; i++ {
		selected = append(selected, descriptorAt(i))
	}
	var mu sync.Mutex
	seen := 0
	s := testSyncer(fake, Options{Workers: 4, OnOutcome: func(Outcome) {
		mu.Lock()
		seen++
		mu.Unlock()
	}})

	if _, err := s.Sync(context.Background(), selected); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if seen != len(selected) {
		t.Fatalf("callback saw %d outcomes, want %d", seen, len(selected))
	}
}
