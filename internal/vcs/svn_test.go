package vcs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSvnDetect(t *testing.T) {
	root := t.TempDir()
	ad := svnAdapter{}

	if got := ad.Detect(filepath.Join(root, "missing")); got != StateAbsent {
		t.Fatalf("missing path: %v", got)
	}

	wc := filepath.Join(root, "wc")
	if err := os.MkdirAll(filepath.Join(wc, ".svn"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if got := ad.Detect(wc); got != StateSame {
		t.Fatalf("working copy: %v", got)
	}

	foreign := filepath.Join(root, "foreign")
	if err := os.MkdirAll(filepath.Join(foreign, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if got := ad.Detect(foreign); got != StateOther {
		t.Fatalf("foreign working copy: %v", got)
	}

	broken := filepath.Join(root, "broken")
	if err := os.MkdirAll(broken, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(broken, ".svn"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := ad.Detect(broken); got != StateCorrupt {
		t.Fatalf("control file instead of dir: %v", got)
	}
}
