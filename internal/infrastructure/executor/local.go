// Package executor runs the wrapped shell commands.
package executor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

// LocalExecutor runs commands on the host shell and captures everything the
// rest of the pipeline consumes: stdout, stderr, exit code, duration.
type LocalExecutor struct {
	shell string
}

// NewLocalExecutor builds a new executor, shell defaults to /bin/sh.
func NewLocalExecutor(shell string) *LocalExecutor {
	if shell == "" || shell == "auto" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	return &LocalExecutor{shell: shell}
}

// Execute implements ports.CommandExecutor. A non-zero exit is a normal
// result, not an error; only failures to start the process propagate.
func (e *LocalExecutor) Execute(ctx context.Context, command string) (domain.CommandResult, error) {
	c := exec.CommandContext(ctx, e.shell, "-c", command)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()

	result := domain.CommandResult{
		Command:       command,
		Output:        stdout.String(),
		ErrorOutput:   stderr.String(),
		ExecutionTime: time.Since(start),
		StartedAt:     start,
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		return result, err
	}
	return result, nil
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)
