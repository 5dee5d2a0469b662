package app

import "testing"

func TestIsComplete(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   bool
	}{
		{"sentinel first line", SubmitSentinel + "\nhello world\n", true},
		{"sentinel mid-stream", "setup output\n" + SubmitSentinel + "\ndone\n", true},
		{"no sentinel", "hello\n", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsComplete(ExecutionResult{Stdout: tt.stdout})
			if got != tt.want {
				t.Fatalf("IsComplete = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPreSubmissionOutput(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   string
	}{
		{"output before sentinel", "building...\n" + SubmitSentinel + "\ndone\n", "building...\n"},
		{"sentinel first", SubmitSentinel + "\ndone\n", ""},
		{"no sentinel", "plain output\n", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PreSubmissionOutput(tt.stdout)
			if got != tt.want {
				t.Fatalf("PreSubmissionOutput = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFinalResult(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   string
	}{
		{"text after sentinel", SubmitSentinel + "\nhello world\n", "hello world\n"},
		{"leading output discarded", "building...\n" + SubmitSentinel + "\ncompleted\n", "completed\n"},
		{"crlf", SubmitSentinel + "\r\ndone\n", "done\n"},
		{"nothing after sentinel", SubmitSentinel + "\n", ""},
		{"no sentinel", "plain output\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FinalResult(tt.stdout)
			if got != tt.want {
				t.Fatalf("FinalResult = %q, want %q", got, tt.want)
			}
		})
	}
}
