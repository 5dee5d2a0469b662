package app

import (
	"context"
	"fmt"
)

// ExecutionResult captures one command execution. It is immutable once
// returned by the environment port. A non-zero exit code is ordinary data,
// not a port failure.
type ExecutionResult struct {
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	ExitCode  int    `json:"exit_code"`
	Truncated bool   `json:"truncated"`
}

// Environment is the port that runs one shell command in a working directory
// and returns the captured output. Implementations hold no state across
// calls; each execution is independent.
type Environment interface {
	Execute(ctx context.Context, command, workingDirectory string) (ExecutionResult, error)
}

// EnvironmentError reports that a command could not be attempted at all
// (invalid working directory, spawn failure). It is terminal for the run.
type EnvironmentError struct {
	Message string
	Err     error
}

func (e *EnvironmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("environment: %s: %v", e.Message, e.Err)
	}
	return "environment: " + e.Message
}

func (e *EnvironmentError) Unwrap() error { return e.Err }
