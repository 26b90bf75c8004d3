package domain

import "time"

// CommandResult captures one executed shell command and everything the
// executor observed about it. Created by the executor, consumed read-only
// by the classifier and the analysis pipeline.
type CommandResult struct {
	Command       string        `json:"command"`
	Output        string        `json:"output"`
	ErrorOutput   string        `json:"error"`
	ExitCode      int           `json:"exit_code"`
	ExecutionTime time.Duration `json:"execution_time"`
	StartedAt     time.Time     `json:"started_at"`
}

// Failed reports whether the command exited non-zero.
func (r CommandResult) Failed() bool {
	return r.ExitCode != 0
}

// CombinedText returns stderr when present, falling back to stdout.
// Classification patterns match against this text.
func (r CommandResult) CombinedText() string {
	if r.ErrorOutput != "" {
		return r.ErrorOutput
	}
	return r.Output
}
