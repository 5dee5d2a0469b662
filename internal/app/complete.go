package app

import "strings"

// SubmitSentinel is the fixed literal token the model must emit on stdout to
// signal that the task is finished. Text after the first occurrence is the
// submitted result. The token is not configurable.
const SubmitSentinel = "COMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT"

// IsComplete reports whether an execution result signals task completion.
func IsComplete(result ExecutionResult) bool {
	return strings.Contains(result.Stdout, SubmitSentinel)
}

// FinalResult extracts the submitted result text: everything after the first
// sentinel occurrence, minus the sentinel's own line break. Output before the
// sentinel is discarded here but stays in the transcript as ordinary
// observation content.
func FinalResult(stdout string) string {
	idx := strings.Index(stdout, SubmitSentinel)
	if idx < 0 {
		return ""
	}
	rest := stdout[idx+len(SubmitSentinel):]
	rest = strings.TrimPrefix(rest, "\r")
	rest = strings.TrimPrefix(rest, "\n")
	return rest
}

// PreSubmissionOutput returns the stdout that preceded the sentinel. The loop
// records it as an ordinary observation so the submitting command's output is
// not lost from the transcript.
func PreSubmissionOutput(stdout string) string {
	idx := strings.Index(stdout, SubmitSentinel)
	if idx <= 0 {
		return ""
	}
	return stdout[:idx]
}
