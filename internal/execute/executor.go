package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"wpforge-cli/internal/config"
)

// Result captures the outcome of one shell command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Failed reports whether the command exited non-zero.
func (r Result) Failed() bool {
	return r.ExitCode != 0
}

// Runner executes shell commands with a bounded lifetime. A non-zero
// exit status is reported in the Result, not as an error; callers
// decide severity. Errors are reserved for the execution substrate
// itself (spawn failure, timeout).
type Runner struct {
	mysql   config.MySQL
	timeout time.Duration
	logger  *logrus.Entry
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	MySQL   config.MySQL
	Timeout time.Duration
	Logger  *logrus.Entry
}

// NewRunner creates a shell command runner.
func NewRunner(cfg RunnerConfig) *Runner {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Runner{
		mysql:   cfg.MySQL,
		timeout: timeout,
		logger:  logger.WithField("component", "runner"),
	}
}

// Run executes a shell command and captures stdout/stderr/exit status.
// Non-empty stderr is logged but never fatal by itself.
func (r *Runner) Run(ctx context.Context, command string) (Result, error) {
	return r.run(ctx, command, false)
}

// RunQuiet behaves like Run but suppresses stderr logging. Probe-style
// calls (existence checks) use it to avoid noise on expected failures.
func (r *Runner) RunQuiet(ctx context.Context, command string) (Result, error) {
	return r.run(ctx, command, true)
}

func (r *Runner) run(ctx context.Context, command string, quiet bool) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Result{}, fmt.Errorf("command timed out after %s: %s", r.timeout, command)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			return Result{}, fmt.Errorf("failed to run command %q: %w", command, err)
		}
	}

	if !quiet && strings.TrimSpace(result.Stderr) != "" {
		r.logger.WithField("command", command).Warn(strings.TrimSpace(result.Stderr))
	}

	return result, nil
}

// ImportSQL streams a dump file into the named database through the
// mysql command-line client. Row-level statements go through the
// database admin connection instead; this path exists only because
// arbitrarily large dumps are impractical to feed through the driver.
func (r *Runner) ImportSQL(ctx context.Context, dbName, dumpPath string) error {
	command := fmt.Sprintf(`mysql %s %s < %q`, r.mysql.ClientArgs(), dbName, dumpPath)
	result, err := r.Run(ctx, command)
	if err != nil {
		return fmt.Errorf("failed to import %s into %s: %w", dumpPath, dbName, err)
	}
	if result.Failed() {
		return fmt.Errorf("import of %s into %s exited with status %d: %s",
			dumpPath, dbName, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}
