package app

import (
	"context"
	"errors"
	"fmt"
)

// Telemetry tracks a model port's usage counters. The counters are owned by
// the port, are monotonically non-decreasing for its lifetime, and are only
// ever read (never reset) by callers.
type Telemetry struct {
	CallsMade       int     `json:"calls_made"`
	AccumulatedCost float64 `json:"accumulated_cost"`
	ModelIdentifier string  `json:"model_identifier"`
}

// Model is the port to a language model backend: send a conversation, get a
// reply. Any concrete backend (remote API, scripted test double) implements
// the same contract.
type Model interface {
	// Query sends the full conversation and returns the reply text.
	// The conversation must be non-empty and must not end with an
	// assistant message. Failures are reported as *ModelError and are
	// never retried by the port itself.
	Query(ctx context.Context, conversation []Message) (string, error)

	// Telemetry returns a snapshot of the port's usage counters.
	Telemetry() Telemetry
}

// ModelError reports that a model query could not be completed. It is
// terminal for the run: the loop surfaces it immediately instead of retrying.
type ModelError struct {
	Message string
	Err     error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model: %s: %v", e.Message, e.Err)
	}
	return "model: " + e.Message
}

func (e *ModelError) Unwrap() error { return e.Err }

var errEmptyConversation = errors.New("conversation is empty")

// validateConversation enforces the Query input constraint shared by all
// model backends: the loop must never ask the model to respond to itself.
func validateConversation(conversation []Message) error {
	if len(conversation) == 0 {
		return &ModelError{Message: "invalid conversation", Err: errEmptyConversation}
	}
	if last := conversation[len(conversation)-1]; last.Role == RoleAssistant {
		return &ModelError{Message: "invalid conversation", Err: errors.New("conversation ends with an assistant message")}
	}
	return nil
}
