package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const (
	// defaultOutputLimit caps each captured stream per execution. When a
	// stream overflows, the result is marked truncated so the loop can
	// warn the model instead of silently dropping data.
	defaultOutputLimit = 64 * 1024

	timeoutExitCode = 124
)

// LocalEnvironment executes commands with bash on the local machine.
type LocalEnvironment struct {
	Logger      *Logger
	OutputLimit int
	Timeout     time.Duration
}

func NewLocalEnvironment(logger *Logger) *LocalEnvironment {
	return &LocalEnvironment{
		Logger:      logger,
		OutputLimit: defaultOutputLimit,
	}
}

var _ Environment = (*LocalEnvironment)(nil)

func (e *LocalEnvironment) Execute(ctx context.Context, command, workingDirectory string) (ExecutionResult, error) {
	if workingDirectory != "" {
		info, err := os.Stat(workingDirectory)
		if err != nil {
			return ExecutionResult{}, &EnvironmentError{Message: "working directory unavailable", Err: err}
		}
		if !info.IsDir() {
			return ExecutionResult{}, &EnvironmentError{Message: fmt.Sprintf("%s is not a directory", workingDirectory)}
		}
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	limit := e.OutputLimit
	if limit <= 0 {
		limit = defaultOutputLimit
	}
	stdout := newCappedBuffer(limit)
	stderr := newCappedBuffer(limit)

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	cmd.Dir = workingDirectory
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return ExecutionResult{}, &EnvironmentError{Message: "failed to start command", Err: err}
	}

	waitErr := cmd.Wait()
	result := ExecutionResult{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.Overflowed() || stderr.Overflowed(),
	}

	switch {
	case waitErr == nil:
		result.ExitCode = 0
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.ExitCode = timeoutExitCode
		result.Stderr += fmt.Sprintf("\ncommand timed out after %s", e.Timeout)
	default:
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return ExecutionResult{}, &EnvironmentError{Message: "command did not run to completion", Err: waitErr}
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if e.Logger != nil {
		e.Logger.Info("command executed", map[string]interface{}{
			"exit_code":   result.ExitCode,
			"duration_ms": time.Since(start).Milliseconds(),
			"truncated":   result.Truncated,
		})
	}
	return result, nil
}

// cappedBuffer keeps at most cap bytes and remembers whether it overflowed.
type cappedBuffer struct {
	buf        []byte
	limit      int
	overflowed bool
}

func newCappedBuffer(limit int) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.limit - len(b.buf)
	if room > 0 {
		if len(p) <= room {
			b.buf = append(b.buf, p...)
		} else {
			b.buf = append(b.buf, p[:room]...)
			b.overflowed = true
		}
	} else if len(p) > 0 {
		b.overflowed = true
	}
	// Report full consumption so the child process never sees a write error.
	return len(p), nil
}

func (b *cappedBuffer) String() string   { return string(b.buf) }
func (b *cappedBuffer) Overflowed() bool { return b.overflowed }
