package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

const (
	captureMaxBytes = 64 * 1024
	termGrace       = 2 * time.Second
)

// limitedBuffer caps captured output so a chatty subprocess cannot balloon
// the run report.
type limitedBuffer struct {
	max       int
	buf       bytes.Buffer
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	remain := b.max - b.buf.Len()
	if remain > 0 {
		if remain > len(p) {
			remain = len(p)
		}
		_, _ = b.buf.Write(p[:remain])
	}
	if len(p) > remain {
		b.truncated = true
	}
	return n, nil
}

func (b *limitedBuffer) String() string { return b.buf.String() }

// CommandResult is the structured outcome of one external invocation.
// Classification into the failure taxonomy happens separately, so it can be
// tested against recorded tool output.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Canceled bool
}

// ErrToolNotFound is returned when the executable itself is absent.
var ErrToolNotFound = errors.New("tool not found")

// runCommand executes program in dir, inheriting the environment. On ctx
// cancellation the process receives SIGTERM and, after a grace period,
// SIGKILL.
func runCommand(ctx context.Context, dir, program string, args ...string) (CommandResult, error) {
	cmd := exec.Command(program, args...)
	cmd.Dir = dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	outBuf := &limitedBuffer{max: captureMaxBytes}
	errBuf := &limitedBuffer{max: captureMaxBytes}
	cmd.Stdout = outBuf
	cmd.Stderr = errBuf

	if err := cmd.Start(); err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) {
			return CommandResult{ExitCode: -1}, fmt.Errorf("%w: %s", ErrToolNotFound, program)
		}
		return CommandResult{ExitCode: -1}, fmt.Errorf("start %s: %w", program, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var runErr error
	canceled := false
	select {
	case runErr = <-done:
	case <-ctx.Done():
		canceled = true
		signalProcess(cmd, syscall.SIGTERM)
		grace := time.NewTimer(termGrace)
		select {
		case runErr = <-done:
			grace.Stop()
		case <-grace.C:
			signalProcess(cmd, syscall.SIGKILL)
			runErr = <-done
		}
	}

	res := CommandResult{
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		Canceled: canceled,
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		res.ExitCode = -1
		return res, fmt.Errorf("run %s: %w", program, runErr)
	}
	return res, nil
}

func signalProcess(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if pid > 0 {
		if err := syscall.Kill(-pid, sig); err == nil {
			return
		}
	}
	_ = cmd.Process.Signal(sig)
}

// excerpt condenses tool output to a single reportable line, preferring
// stderr.
func excerpt(res CommandResult) string {
	s := strings.TrimSpace(res.Stderr)
	if s == "" {
		s = strings.TrimSpace(res.Stdout)
	}
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 300 {
		s = s[:300] + "..."
	}
	return s
}
