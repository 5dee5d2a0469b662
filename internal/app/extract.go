package app

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-shellwords"
)

// Action is a single shell command extracted from a model reply.
type Action struct {
	Command          string `json:"command"`
	WorkingDirectory string `json:"working_directory"`
	// RawSpan is the exact substring the model produced, kept for
	// transcript fidelity even though only Command/WorkingDirectory
	// drive execution.
	RawSpan string `json:"raw_span"`
}

// Extraction is the result of inspecting one model reply. Action is nil when
// the reply contains no fenced command block; Warning records tolerated model
// misbehavior (extra blocks, odd quoting) for the transcript.
type Extraction struct {
	Thought string
	Action  *Action
	Warning string
}

// The model is instructed to put exactly one executable command in a fenced
// shell block. Plain fences are treated as quoted output, not commands.
var fencedCommandRE = regexp.MustCompile("(?s)```(?:bash|sh|shell)[ \t]*\n(.*?)\n?```")

// ExtractAction scans a reply for fenced shell blocks. The first block
// becomes the action; everything outside it is the thought text.
func ExtractAction(reply, projectRoot string) Extraction {
	matches := fencedCommandRE.FindAllStringSubmatchIndex(reply, -1)
	if len(matches) == 0 {
		return Extraction{Thought: strings.TrimSpace(reply)}
	}

	first := matches[0]
	raw := reply[first[0]:first[1]]
	command := strings.TrimSpace(reply[first[2]:first[3]])
	thought := strings.TrimSpace(reply[:first[0]] + reply[first[1]:])

	ex := Extraction{
		Thought: thought,
		Action: &Action{
			Command:          command,
			WorkingDirectory: projectRoot,
			RawSpan:          raw,
		},
	}
	if extra := len(matches) - 1; extra > 0 {
		ex.Warning = fmt.Sprintf("reply contained %d extra fenced command block(s); only the first was used", extra)
	}
	if _, err := ArgvPreview(command); err != nil && ex.Warning == "" {
		ex.Warning = fmt.Sprintf("command does not tokenize cleanly: %v", err)
	}
	return ex
}

// ArgvPreview splits a command into words for display in the confirmation
// gate. Shell operators come back as plain tokens; an unbalanced quote is an
// error.
func ArgvPreview(command string) ([]string, error) {
	parser := shellwords.NewParser()
	return parser.Parse(command)
}
