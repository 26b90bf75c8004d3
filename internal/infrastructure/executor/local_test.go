package executor

import (
	"context"
	"strings"
	"testing"
)

func TestExecuteCapturesOutput(t *testing.T) {
	e := NewLocalExecutor("/bin/sh")
	result, err := e.Execute(context.Background(), "echo hello")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.TrimSpace(result.Output) != "hello" {
		t.Fatalf("Output = %q", result.Output)
	}
	if result.ExitCode != 0 || result.Failed() {
		t.Fatalf("ExitCode = %d", result.ExitCode)
	}
}

func TestExecuteNonZeroExitIsResultNotError(t *testing.T) {
	e := NewLocalExecutor("/bin/sh")
	result, err := e.Execute(context.Background(), "echo oops >&2; exit 3")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.ExitCode != 3 {
		t.Fatalf("ExitCode = %d, want 3", result.ExitCode)
	}
	if !result.Failed() {
		t.Fatal("Failed() = false for exit 3")
	}
	if strings.TrimSpace(result.ErrorOutput) != "oops" {
		t.Fatalf("ErrorOutput = %q", result.ErrorOutput)
	}
	if result.CombinedText() != result.ErrorOutput {
		t.Fatal("CombinedText() should prefer stderr")
	}
}
