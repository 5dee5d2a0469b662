package app

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedReply configures one model turn in a scripted sequence.
type ScriptedReply struct {
	Content string
	Err     error
}

// ScriptedModel replays a fixed sequence of replies. It backs --mock runs
// and tests; telemetry behaves like a real port's (a consumed reply counts
// as a call, errors do not).
type ScriptedModel struct {
	ModelID     string
	CostPerCall float64

	mu      sync.Mutex
	index   int
	replies []ScriptedReply
	calls   int
	cost    float64
}

func NewScriptedModel(replies ...ScriptedReply) *ScriptedModel {
	cloned := make([]ScriptedReply, len(replies))
	copy(cloned, replies)
	return &ScriptedModel{
		ModelID: "scripted",
		replies: cloned,
	}
}

var _ Model = (*ScriptedModel)(nil)

func (m *ScriptedModel) Query(_ context.Context, conversation []Message) (string, error) {
	if err := validateConversation(conversation); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index >= len(m.replies) {
		return "", &ModelError{Message: fmt.Sprintf("script exhausted at step %d", m.index+1)}
	}
	current := m.replies[m.index]
	m.index++
	if current.Err != nil {
		return "", &ModelError{Message: "scripted failure", Err: current.Err}
	}
	m.calls++
	m.cost += m.CostPerCall
	return current.Content, nil
}

func (m *ScriptedModel) Telemetry() Telemetry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Telemetry{
		CallsMade:       m.calls,
		AccumulatedCost: m.cost,
		ModelIdentifier: m.ModelID,
	}
}

// MockTaskScript builds the canned two-turn script used by --mock runs: the
// model echoes the task, then submits "done" via the sentinel protocol.
func MockTaskScript(task string) []ScriptedReply {
	return []ScriptedReply{
		{Content: fmt.Sprintf("Starting on the task.\n\n```bash\necho %q\n```", task)},
		{Content: fmt.Sprintf("Looks good, submitting.\n\n```bash\necho %s && echo done\n```", SubmitSentinel)},
	}
}
