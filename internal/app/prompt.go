package app

import (
	"fmt"
	"runtime"
)

type PromptBuilder struct {
	ProjectRoot string
}

func NewPromptBuilder(projectRoot string) *PromptBuilder {
	return &PromptBuilder{ProjectRoot: projectRoot}
}

const fence = "```"

// SystemPrompt states the agent's role, the fenced-command protocol, and the
// sentinel submission protocol. The extractor and completion detector depend
// on the model following these instructions.
func (p *PromptBuilder) SystemPrompt() string {
	return fmt.Sprintf(`You are nag, a command-line agent that accomplishes tasks by running shell commands.

## How to work

You will be given a task. On every turn, think briefly about the next step,
then include EXACTLY ONE shell command in a fenced block:

%[1]sbash
your command here
%[1]s

The command runs in %[2]s (%[3]s, bash). To work in another directory,
change into it within the command itself (cd dir && ...). After each command
you receive an observation with its stdout, stderr and exit code. Use it to
decide your next command.

## Rules

1. One fenced bash block per reply. Extra blocks are ignored.
2. Every reply must contain a command. A reply without one is rejected.
3. Commands must be non-interactive: no editors, no prompts, no pagers.
4. Prefer small, verifiable steps over long command chains.

## Finishing

When the task is done, submit your final answer by printing the completion
token followed by the result on stdout:

%[1]sbash
echo %[4]s && cat result.txt
%[1]s

Everything printed after the token becomes the final result. Emit the token
only when you are certain the task is complete.`, fence, p.ProjectRoot, runtime.GOOS, SubmitSentinel)
}

// NoActionNotice is appended as an observation when a reply contains no
// fenced command, so the model corrects itself instead of the run silently
// ending on a malformed reply.
const NoActionNotice = "No command found in your reply. You must include exactly one fenced bash block per reply; to finish the task, run a command that prints " + SubmitSentinel + " followed by the final output."

func declineNotice(comment string) string {
	notice := "The user declined to run this command. Propose a different approach."
	if comment != "" {
		notice += "\nUser's reason: " + comment
	}
	return notice
}
