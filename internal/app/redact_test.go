package app

import (
	"strings"
	"testing"
)

func TestRedactSecrets(t *testing.T) {
	got := RedactSecrets("export KEY=sk-abc123; echo sk-abc123", "sk-abc123")
	if strings.Contains(got, "sk-abc123") {
		t.Fatalf("secret survived redaction: %q", got)
	}
	if !strings.Contains(got, redactedPlaceholder) {
		t.Fatalf("placeholder missing: %q", got)
	}

	if got := RedactSecrets("nothing secret here", "sk-abc123"); got != "nothing secret here" {
		t.Fatalf("clean input must pass through, got %q", got)
	}
	if got := RedactSecrets("empty secrets", "", "  "); got != "empty secrets" {
		t.Fatalf("blank secrets must be ignored, got %q", got)
	}
}

func TestRedactTrajectory(t *testing.T) {
	traj := Trajectory{
		Task:   "use sk-abc123 to call the api",
		Result: "the key was sk-abc123",
		Messages: []Message{
			{Role: RoleObservation, Content: "stdout: sk-abc123\n"},
		},
	}
	clean := RedactTrajectory(traj, "sk-abc123")

	for _, text := range []string{clean.Task, clean.Result, clean.Messages[0].Content} {
		if strings.Contains(text, "sk-abc123") {
			t.Fatalf("secret survived: %q", text)
		}
	}
	if traj.Messages[0].Content != "stdout: sk-abc123\n" {
		t.Fatal("the input trajectory must not be mutated")
	}
}
