package execute

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesStdout(t *testing.T) {
	runner := NewRunner(RunnerConfig{})

	result, err := runner.Run(context.Background(), "echo hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "hello" {
		t.Errorf("expected stdout 'hello', got %q", result.Stdout)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
	if result.Failed() {
		t.Errorf("expected Failed() to be false")
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	runner := NewRunner(RunnerConfig{})

	result, err := runner.Run(context.Background(), "exit 3")
	if err != nil {
		t.Fatalf("non-zero exit should not return an error, got: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", result.ExitCode)
	}
	if !result.Failed() {
		t.Errorf("expected Failed() to be true")
	}
}

func TestRunStderrIsSurfacedNotFatal(t *testing.T) {
	runner := NewRunner(RunnerConfig{})

	result, err := runner.Run(context.Background(), "echo warning >&2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(result.Stderr) != "warning" {
		t.Errorf("expected stderr 'warning', got %q", result.Stderr)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
}

func TestRunTimeout(t *testing.T) {
	runner := NewRunner(RunnerConfig{Timeout: 100 * time.Millisecond})

	_, err := runner.Run(context.Background(), "sleep 5")
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got: %v", err)
	}
}

func TestRunQuiet(t *testing.T) {
	runner := NewRunner(RunnerConfig{})

	result, err := runner.RunQuiet(context.Background(), "echo probe-noise >&2; echo out")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "out" {
		t.Errorf("expected stdout 'out', got %q", result.Stdout)
	}
}
