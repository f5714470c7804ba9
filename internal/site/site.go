package site

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"wpforge-cli/internal/config"
	"wpforge-cli/internal/database"
	"wpforge-cli/internal/webserver"
)

// Manager lists and removes provisioned sites. A site is a directory
// under the sites root plus its same-named database.
type Manager struct {
	cfg      *config.Config
	admin    *database.Admin
	reloader *webserver.Reloader
	logger   *logrus.Entry
}

// Deps bundles the collaborators a Manager needs.
type Deps struct {
	Config   *config.Config
	Admin    *database.Admin
	Reloader *webserver.Reloader
	Logger   *logrus.Entry
}

// NewManager creates a Manager.
func NewManager(deps Deps) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		cfg:      deps.Config,
		admin:    deps.Admin,
		reloader: deps.Reloader,
		logger:   logger.WithField("component", "site"),
	}
}

// List returns the site names under the sites root in sorted order.
// Hidden directories and plain files are not sites.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.cfg.SitesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sites directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes one site's directory and drops its database. The
// database is dropped even when the directory removal fails so a
// half-deleted site can be retried.
func (m *Manager) Delete(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("website name must not be empty")
	}
	sitePath := m.cfg.SitePath(name)
	if _, err := os.Stat(sitePath); err != nil {
		return fmt.Errorf("website %q does not exist: %w", name, err)
	}

	m.logger.Infof("removing %s", sitePath)
	dirErr := os.RemoveAll(sitePath)

	m.logger.Infof("dropping database %s", name)
	if err := m.admin.Drop(ctx, name); err != nil {
		return err
	}
	if dirErr != nil {
		return fmt.Errorf("failed to remove %s: %w", sitePath, dirErr)
	}
	return nil
}

// DeleteAll removes every site, counting the ones that deleted
// cleanly. One failure never stops the sweep.
func (m *Manager) DeleteAll(ctx context.Context) (deleted, total int, err error) {
	names, err := m.List()
	if err != nil {
		return 0, 0, err
	}
	for _, name := range names {
		if delErr := m.Delete(ctx, name); delErr != nil {
			m.logger.Warnf("could not delete %s: %v", name, delErr)
			continue
		}
		deleted++
	}
	return deleted, len(names), nil
}

// Reload reloads the web server after deletions.
func (m *Manager) Reload(ctx context.Context) {
	m.reloader.Reload(ctx)
}
