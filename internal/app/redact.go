package app

import (
	"os"
	"strings"
)

const redactedPlaceholder = "[REDACTED]"

// RedactSecrets replaces known secret values with a placeholder before text
// is persisted or displayed. Only exact values are replaced: the configured
// secrets plus the key env var, never pattern guesses.
func RedactSecrets(input string, secrets ...string) string {
	if input == "" {
		return input
	}
	known := append([]string{}, secrets...)
	known = append(known, os.Getenv("NAG_API_KEY"))
	known = uniqueNonEmpty(known)

	out := input
	for _, s := range known {
		out = strings.ReplaceAll(out, s, redactedPlaceholder)
	}
	return out
}

// RedactTrajectory scrubs secrets from every persisted field of a trajectory.
// Commands routinely echo environment values into observations; the audit
// record must not leak them.
func RedactTrajectory(t Trajectory, secrets ...string) Trajectory {
	t.Task = RedactSecrets(t.Task, secrets...)
	t.Result = RedactSecrets(t.Result, secrets...)
	scrubbed := make([]Message, len(t.Messages))
	for i, m := range t.Messages {
		scrubbed[i] = Message{Role: m.Role, Content: RedactSecrets(m.Content, secrets...)}
	}
	t.Messages = scrubbed
	return t
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
