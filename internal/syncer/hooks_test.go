package syncer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunHooksInDeclaredOrder(t *testing.T) {
	dir := t.TempDir()
	err := runHooks(context.Background(), dir, []string{
		"echo one > order.txt",
		"echo two >> order.txt",
	})
	if err != nil {
		t.Fatalf("hooks: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "order.txt"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "one\ntwo\n" {
		t.Fatalf("unexpected order: %q", string(data))
	}
}

func TestRunHooksStopsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	err := runHooks(context.Background(), dir, []string{
		"echo broken >&2; exit 7",
		"touch never.txt",
	})
	if err == nil {
		t.Fatalf("expected hook failure")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Fatalf("hook output not preserved: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "never.txt")); statErr == nil {
		t.Fatalf("later hook ran after a failure")
	}
}

func TestRunHooksNoHooksIsNoop(t *testing.T) {
	if err := runHooks(context.Background(), t.TempDir(), nil); err != nil {
		t.Fatalf("empty hook list: %v", err)
	}
}
