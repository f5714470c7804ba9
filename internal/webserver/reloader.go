package webserver

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"wpforge-cli/internal/execute"
)

// Reloader signals the local web server to pick up virtual-host
// changes. The control executable is an external collaborator; a
// reload failure is reported but never fatal.
type Reloader struct {
	runner  *execute.Runner
	command string
	logger  *logrus.Entry
}

// New creates a Reloader. An empty command disables reloading.
func New(runner *execute.Runner, command string, logger *logrus.Entry) *Reloader {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Reloader{
		runner:  runner,
		command: command,
		logger:  logger.WithField("component", "webserver"),
	}
}

// Reload runs the configured reload command once.
func (r *Reloader) Reload(ctx context.Context) {
	if r.command == "" {
		r.logger.Debug("no reload command configured, skipping")
		return
	}

	r.logger.Info("reloading web server")
	result, err := r.runner.Run(ctx, r.command)
	if err != nil {
		r.logger.Warnf("web server reload failed: %v", err)
		return
	}
	if result.Failed() {
		r.logger.Warnf("web server reload exited with status %d: %s",
			result.ExitCode, strings.TrimSpace(result.Stderr))
	}
}
