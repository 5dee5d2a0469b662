package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ExitStatus labels how a run ended. Every terminal state yields a
// human-readable label, never a silent empty return.
type ExitStatus string

const (
	StatusSubmitted        ExitStatus = "Submitted"
	StatusExhausted        ExitStatus = "Exhausted"
	StatusCancelled        ExitStatus = "Cancelled"
	StatusModelError       ExitStatus = "ModelError"
	StatusEnvironmentError ExitStatus = "EnvironmentError"
)

// RunOutcome is computed exactly once, at loop termination, and is immutable
// afterward.
type RunOutcome struct {
	ExitStatus ExitStatus             `json:"exit_status"`
	Result     string                 `json:"result"`
	ExtraInfo  map[string]interface{} `json:"extra_info,omitempty"`
}

// AgentLoop drives one task to completion: query the model, extract an
// action, confirm it, execute it, observe the output, repeat. It exclusively
// owns the message sequence and the outcome for the duration of one run; a
// loop instance must not be reused across runs.
type AgentLoop struct {
	Model       Model
	Env         Environment
	Confirmer   Confirmer
	Logger      *Logger
	MaxTurns    int
	ProjectRoot string
	Prompter    *PromptBuilder

	messages []Message
	outcome  *RunOutcome
}

func NewAgentLoop(model Model, env Environment, confirmer Confirmer, logger *Logger, maxTurns int, projectRoot string) *AgentLoop {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	if confirmer == nil {
		confirmer = AutoConfirmer{}
	}
	return &AgentLoop{
		Model:       model,
		Env:         env,
		Confirmer:   confirmer,
		Logger:      logger,
		MaxTurns:    maxTurns,
		ProjectRoot: projectRoot,
		Prompter:    NewPromptBuilder(projectRoot),
	}
}

// Messages returns a copy of the conversation so far. Valid at any point,
// including after a failed or cancelled run.
func (l *AgentLoop) Messages() []Message {
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Run executes the task until a terminal state. The returned error is
// non-nil only for ModelError/EnvironmentError escalations; declines,
// malformed replies and budget exhaustion are absorbed into the outcome.
func (l *AgentLoop) Run(ctx context.Context, task string) (RunOutcome, error) {
	if l.outcome != nil {
		return *l.outcome, errors.New("agent loop already ran; use a fresh instance per run")
	}

	l.append(RoleSystem, l.Prompter.SystemPrompt())
	l.append(RoleUser, task)

	lastThought := ""
	for turn := 0; turn < l.MaxTurns; turn++ {
		if ctx.Err() != nil {
			return l.finish(StatusCancelled, lastThought, nil), nil
		}

		reply, err := l.Model.Query(ctx, l.messages)
		if err != nil {
			if ctx.Err() != nil {
				return l.finish(StatusCancelled, lastThought, nil), nil
			}
			outcome := l.finish(StatusModelError, err.Error(), nil)
			return outcome, err
		}
		l.append(RoleAssistant, reply)

		ex := ExtractAction(reply, l.ProjectRoot)
		if ex.Thought != "" {
			lastThought = ex.Thought
		}
		if ex.Warning != "" {
			l.Logger.Warn("extraction warning", map[string]interface{}{"warning": ex.Warning})
		}

		if ex.Action == nil {
			// A reply without an action is not a valid completion;
			// the protocol requires a command to submit.
			l.append(RoleObservation, annotate(NoActionNotice, ex.Warning))
			continue
		}

		decision, err := l.Confirmer.Confirm(ctx, *ex.Action)
		if err != nil {
			return l.finish(StatusCancelled, lastThought, map[string]interface{}{"confirm_error": err.Error()}), nil
		}
		switch decision.Verdict {
		case VerdictInterrupt:
			return l.finish(StatusCancelled, lastThought, nil), nil
		case VerdictDecline:
			l.append(RoleObservation, annotate(declineNotice(decision.Comment), ex.Warning))
			continue
		}

		command := decision.Command
		if command == "" {
			command = ex.Action.Command
		}

		result, err := l.Env.Execute(ctx, command, ex.Action.WorkingDirectory)
		if err != nil {
			if ctx.Err() != nil {
				return l.finish(StatusCancelled, lastThought, nil), nil
			}
			outcome := l.finish(StatusEnvironmentError, err.Error(), nil)
			return outcome, err
		}

		if IsComplete(result) {
			// Output before the sentinel is not part of the result but
			// belongs in the transcript like any other command output.
			if lead := PreSubmissionOutput(result.Stdout); lead != "" {
				pre := result
				pre.Stdout = lead
				l.append(RoleObservation, annotate(formatObservation(command, pre), ex.Warning))
			}
			return l.finish(StatusSubmitted, FinalResult(result.Stdout), nil), nil
		}
		l.append(RoleObservation, annotate(formatObservation(command, result), ex.Warning))
	}

	return l.finish(StatusExhausted, lastThought, nil), nil
}

func (l *AgentLoop) append(role Role, content string) {
	l.messages = append(l.messages, Message{Role: role, Content: content})
}

// finish sets the outcome exactly once. After it runs, no further model or
// environment calls happen.
func (l *AgentLoop) finish(status ExitStatus, result string, extra map[string]interface{}) RunOutcome {
	if l.outcome != nil {
		return *l.outcome
	}
	l.outcome = &RunOutcome{ExitStatus: status, Result: result, ExtraInfo: extra}
	l.Logger.Info("run finished", map[string]interface{}{
		"exit_status": string(status),
		"messages":    len(l.messages),
	})
	return *l.outcome
}

// formatObservation renders an execution result the way the model sees it.
func formatObservation(command string, result ExecutionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command: %s\nExit code: %d\n", command, result.ExitCode)
	if result.Truncated {
		b.WriteString("Warning: output exceeded the capture limit and was truncated.\n")
	}
	b.WriteString("Stdout:\n")
	b.WriteString(result.Stdout)
	if result.Stderr != "" {
		b.WriteString("\nStderr:\n")
		b.WriteString(result.Stderr)
	}
	return b.String()
}

// annotate prefixes an observation with an extraction warning so tolerated
// model misbehavior stays on the record.
func annotate(observation, warning string) string {
	if warning == "" {
		return observation
	}
	return "Note: " + warning + "\n" + observation
}
