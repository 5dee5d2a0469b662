package app

import "context"

// Verdict is the operator's answer to a pending action.
type Verdict int

const (
	// VerdictAccept executes the command (possibly edited).
	VerdictAccept Verdict = iota
	// VerdictDecline skips execution; the loop continues with a synthetic
	// observation so the model can propose something else.
	VerdictDecline
	// VerdictInterrupt aborts the whole run.
	VerdictInterrupt
)

// Decision is the outcome of one confirmation.
type Decision struct {
	Verdict Verdict
	// Command is the command to execute on accept. It differs from the
	// proposed action's command when the operator edited it.
	Command string
	// Comment carries the operator's free-text reason on decline.
	Comment string
}

// Confirmer is the human-in-the-loop gate consulted before any extracted
// action executes. Confirm blocks until the operator answers.
type Confirmer interface {
	Confirm(ctx context.Context, action Action) (Decision, error)
}

// AutoConfirmer accepts every action without blocking; used for unattended
// runs and when stdin is not a terminal.
type AutoConfirmer struct{}

var _ Confirmer = AutoConfirmer{}

func (AutoConfirmer) Confirm(_ context.Context, action Action) (Decision, error) {
	return Decision{Verdict: VerdictAccept, Command: action.Command}, nil
}
