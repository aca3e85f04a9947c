package syncer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// runHooks executes the configured shell commands in declared order with the
// working copy as the current directory and the inherited environment. The
// first non-zero exit stops the sequence.
func runHooks(ctx context.Context, dir string, hooks []string) error {
	for _, hook := range hooks {
		cmd := exec.CommandContext(ctx, "sh", "-c", hook)
		cmd.Dir = dir
		cmd.Env = os.Environ()
		out, err := cmd.CombinedOutput()
		if err != nil {
			msg := strings.Join(strings.Fields(string(out)), " ")
			if len(msg) > 300 {
				msg = msg[:300] + "..."
			}
			if msg == "" {
				msg = err.Error()
			}
			return fmt.Errorf("hook %q: %s", hook, msg)
		}
	}
	return nil
}
