package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testEnv(t *testing.T) *LocalEnvironment {
	t.Helper()
	return NewLocalEnvironment(NewLogger(&bytes.Buffer{}))
}

func TestExecuteCapturesStreams(t *testing.T) {
	env := testEnv(t)

	result, err := env.Execute(context.Background(), "echo out; echo err >&2", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", result.ExitCode)
	}
	if result.Stdout != "out\n" {
		t.Fatalf("stdout = %q", result.Stdout)
	}
	if result.Stderr != "err\n" {
		t.Fatalf("stderr = %q", result.Stderr)
	}
	if result.Truncated {
		t.Fatal("small output must not be marked truncated")
	}
}

func TestExecuteNonZeroExitIsData(t *testing.T) {
	env := testEnv(t)

	result, err := env.Execute(context.Background(), "echo partial; exit 3", t.TempDir())
	if err != nil {
		t.Fatalf("a non-zero exit code is not a port failure: %v", err)
	}
	if result.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", result.ExitCode)
	}
	if result.Stdout != "partial\n" {
		t.Fatalf("stdout should survive the failing exit, got %q", result.Stdout)
	}
}

func TestExecuteTruncatesLongOutput(t *testing.T) {
	env := testEnv(t)
	env.OutputLimit = 16

	result, err := env.Execute(context.Background(), "printf 'aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa'", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Truncated {
		t.Fatal("oversized output must be marked truncated")
	}
	if len(result.Stdout) != 16 {
		t.Fatalf("captured %d bytes, want the 16-byte cap", len(result.Stdout))
	}
	if result.Stdout != strings.Repeat("a", 16) {
		t.Fatalf("stdout = %q, want the cap-length prefix", result.Stdout)
	}
}

func TestExecuteRejectsMissingWorkingDirectory(t *testing.T) {
	env := testEnv(t)

	_, err := env.Execute(context.Background(), "true", filepath.Join(t.TempDir(), "nope"))
	var envErr *EnvironmentError
	if !errors.As(err, &envErr) {
		t.Fatalf("error = %T, want *EnvironmentError", err)
	}
}

func TestExecuteRejectsFileAsWorkingDirectory(t *testing.T) {
	env := testEnv(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	result, err := env.Execute(context.Background(), "echo x > f", dir)
	if err != nil || result.ExitCode != 0 {
		t.Fatalf("setup failed: %v, %+v", err, result)
	}

	_, err = env.Execute(context.Background(), "true", file)
	var envErr *EnvironmentError
	if !errors.As(err, &envErr) {
		t.Fatalf("error = %T, want *EnvironmentError for a non-directory", err)
	}
}

func TestExecuteTimeout(t *testing.T) {
	env := testEnv(t)
	env.Timeout = 100 * time.Millisecond

	result, err := env.Execute(context.Background(), "echo started; sleep 5", t.TempDir())
	if err != nil {
		t.Fatalf("a timeout is reported through the exit code, not a port failure: %v", err)
	}
	if result.ExitCode != timeoutExitCode {
		t.Fatalf("exit code = %d, want %d", result.ExitCode, timeoutExitCode)
	}
	if !strings.Contains(result.Stderr, "timed out") {
		t.Fatalf("stderr should mention the timeout, got %q", result.Stderr)
	}
	if result.Stdout != "started\n" {
		t.Fatalf("output before the timeout should be kept, got %q", result.Stdout)
	}
}

func TestCappedBuffer(t *testing.T) {
	b := newCappedBuffer(4)
	if n, err := b.Write([]byte("ab")); n != 2 || err != nil {
		t.Fatalf("write = (%d, %v)", n, err)
	}
	if n, err := b.Write([]byte("cdef")); n != 4 || err != nil {
		t.Fatalf("overflowing write must still report full consumption, got (%d, %v)", n, err)
	}
	if b.String() != "abcd" {
		t.Fatalf("buffer = %q, want %q", b.String(), "abcd")
	}
	if !b.Overflowed() {
		t.Fatal("overflow flag not set")
	}
}
