package restore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"wpforge-cli/internal/catalog"
	"wpforge-cli/internal/config"
	"wpforge-cli/internal/database"
	"wpforge-cli/internal/execute"
	"wpforge-cli/internal/installer"
	"wpforge-cli/internal/transfer"
	"wpforge-cli/internal/webserver"
)

// migrationPluginIDs are installed before an All-in-One WP Migration
// archive can be imported.
var migrationPluginIDs = []string{
	"all-in-one-wp-migration",
	"all-in-one-wp-migration-unlimited-extension",
}

// Deps bundles the collaborators a Restorer needs. Confirm asks the
// operator a yes/no question; it is only consulted outside bulk mode.
type Deps struct {
	Config   *config.Config
	Runner   *execute.Runner
	Admin    *database.Admin
	Transfer *transfer.Transfer
	Catalog  *catalog.Catalog
	Reloader *webserver.Reloader
	Logger   *logrus.Entry
	Confirm  func(prompt string) (bool, error)
}

// Restorer rebuilds one site from a backup using one of the restore
// methods.
type Restorer struct {
	deps   Deps
	inst   *installer.Installer
	site   installer.Site
	logger *logrus.Entry
	bulk   bool
}

// New creates a Restorer for one site. In bulk mode interactive
// prompts and the per-site server reload are suppressed.
func New(deps Deps, in installer.Inputs, bulk bool) (*Restorer, error) {
	inst, err := installer.New(installer.Deps{
		Config:   deps.Config,
		Runner:   deps.Runner,
		Admin:    deps.Admin,
		Transfer: deps.Transfer,
		Catalog:  deps.Catalog,
		Reloader: deps.Reloader,
		Logger:   deps.Logger,
	}, in)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Restorer{
		deps:   deps,
		inst:   inst,
		site:   inst.Site(),
		logger: logger.WithFields(logrus.Fields{"component": "restore", "site": in.WebsiteName}),
		bulk:   bulk,
	}, nil
}

// Run dispatches to the strategy for the given method. The website
// name must be unclaimed; every strategy mutates the site directory
// and database, so the existence check happens before anything else.
func (r *Restorer) Run(ctx context.Context, method Method, sourcePath, dbPath string) error {
	if err := r.inst.EnsureAbsent(ctx); err != nil {
		return err
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return fmt.Errorf("source path %s: %w", sourcePath, err)
	}
	switch method {
	case MethodAI1:
		return r.restoreAI1(ctx, sourcePath)
	case MethodDuplicator:
		return r.restoreDuplicator(ctx, sourcePath)
	case MethodWPContent:
		if dbPath == "" {
			return fmt.Errorf("restore method %s requires a database dump path", method)
		}
		return r.restoreWPContent(ctx, sourcePath, dbPath)
	case MethodWP:
		return r.restoreWP(ctx, sourcePath)
	default:
		return fmt.Errorf("unhandled restore method %v", method)
	}
}

// provisionBase builds the fresh WordPress site a backup is imported
// into: database, core tree, configuration, installer run, rewrite
// rules.
func (r *Restorer) provisionBase(ctx context.Context) error {
	if err := os.MkdirAll(r.site.Path, 0o755); err != nil {
		return fmt.Errorf("failed to create site directory: %w", err)
	}
	if err := r.deps.Admin.Create(ctx, r.site.Name); err != nil {
		return err
	}
	if err := r.inst.InstallCore(ctx); err != nil {
		return err
	}
	if err := r.inst.WriteConfig(ctx); err != nil {
		return err
	}
	if err := r.inst.Install(ctx); err != nil {
		return err
	}
	return r.inst.EditHtaccess()
}

// detectPrefix resolves the table prefix of the imported database,
// falling back to the default when detection fails.
func (r *Restorer) detectPrefix(ctx context.Context) string {
	prefix, ok := r.deps.Admin.DetectAndPatchPrefix(ctx, r.site.Name, r.site.Path)
	if !ok {
		return database.DefaultPrefix
	}
	return prefix
}

// importDump loads a SQL dump into the site database, optionally
// scrubbing vendored license rows first.
func (r *Restorer) importDump(ctx context.Context, dumpPath string) error {
	if !r.deps.Config.SanitizeDumps {
		return r.deps.Runner.ImportSQL(ctx, r.site.Name, dumpPath)
	}

	source, err := os.Open(dumpPath)
	if err != nil {
		return fmt.Errorf("failed to open dump %s: %w", dumpPath, err)
	}
	defer source.Close()

	scrubbed, err := os.CreateTemp("", "wpforge-dump-*.sql")
	if err != nil {
		return fmt.Errorf("failed to create scratch dump: %w", err)
	}
	defer os.Remove(scrubbed.Name())

	sanitizer := database.NewSanitizer()
	if err := sanitizer.Sanitize(source, scrubbed); err != nil {
		scrubbed.Close()
		return fmt.Errorf("failed to sanitize dump %s: %w", dumpPath, err)
	}
	if err := scrubbed.Close(); err != nil {
		return err
	}
	return r.deps.Runner.ImportSQL(ctx, r.site.Name, scrubbed.Name())
}

// finalizeImport rebinds an imported site to its local identity. The
// three writes touch independent rows and files, so they launch
// together and the step completes when all have finished.
func (r *Restorer) finalizeImport(ctx context.Context, prefix string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.inst.ChangeURL(gctx, prefix) })
	g.Go(func() error { return r.inst.ChangeAdminInfo(gctx, prefix) })
	g.Go(func() error { return r.inst.PersistCredentials() })
	return g.Wait()
}

// finish prints credentials and reloads the web server. Skipped in
// bulk mode, where the orchestrator reports and reloads once.
func (r *Restorer) finish(ctx context.Context) {
	if r.bulk {
		return
	}
	r.inst.PrintSummary()
	r.deps.Reloader.Reload(ctx)
}

// restoreAI1 provisions a fresh site with the migration plugins, then
// imports the archive through them.
func (r *Restorer) restoreAI1(ctx context.Context, sourcePath string) error {
	if err := r.provisionBase(ctx); err != nil {
		return err
	}

	selection, err := r.deps.Catalog.SelectByID(migrationPluginIDs...)
	if err != nil {
		return err
	}
	if err := r.inst.InstallPlugins(ctx, selection); err != nil {
		return err
	}

	backupsDir := filepath.Join(r.site.Path, "wp-content", "ai1wm-backups")
	r.logger.Infof("staging backup into %s", backupsDir)
	fileName, _, err := r.deps.Transfer.Copy(sourcePath, backupsDir)
	if err != nil {
		return fmt.Errorf("failed to stage backup: %w", err)
	}

	r.logger.Infof("restoring from %s", fileName)
	result, err := r.deps.Runner.Run(ctx, fmt.Sprintf("%s ai1wm restore %q --yes", r.site.CLI, fileName))
	if err != nil {
		return err
	}
	if result.Failed() {
		return fmt.Errorf("migration import exited with status %d: %s", result.ExitCode, result.Stderr)
	}

	prefix := r.detectPrefix(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.inst.ChangeAdminInfo(gctx, prefix) })
	g.Go(func() error { return r.inst.PersistCredentials() })
	if err := g.Wait(); err != nil {
		return err
	}
	r.finish(ctx)
	return nil
}

// restoreDuplicator stages the package files; the bundled installer
// finishes in the browser. Outside bulk mode the operator can confirm
// completion to have the admin identity rebound.
func (r *Restorer) restoreDuplicator(ctx context.Context, sourcePath string) error {
	if err := os.MkdirAll(r.site.Path, 0o755); err != nil {
		return fmt.Errorf("failed to create site directory: %w", err)
	}
	if err := r.deps.Admin.Create(ctx, r.site.Name); err != nil {
		return err
	}

	r.logger.Infof("staging package into %s", r.site.Path)
	if _, _, err := r.deps.Transfer.Copy(sourcePath, r.site.Path); err != nil {
		return fmt.Errorf("failed to stage package: %w", err)
	}

	if r.bulk {
		r.logger.Infof("finish the import at %s/installer.php", r.site.URL)
		return nil
	}

	r.deps.Reloader.Reload(ctx)
	fmt.Printf("Open %s/installer.php to finish the import.\n", r.site.URL)

	if r.deps.Confirm == nil {
		return nil
	}
	done, err := r.deps.Confirm("Import finished, rebind the admin identity?")
	if err != nil || !done {
		return err
	}
	prefix := r.detectPrefix(ctx)
	return r.inst.ChangeAdminInfo(ctx, prefix)
}

// restoreWPContent provisions a fresh site, swaps in the backed-up
// wp-content tree and imports the separate database dump.
func (r *Restorer) restoreWPContent(ctx context.Context, sourcePath, dbPath string) error {
	if err := r.provisionBase(ctx); err != nil {
		return err
	}

	contentDir := filepath.Join(r.site.Path, "wp-content")
	r.logger.Infof("replacing %s", contentDir)
	if err := r.deps.Transfer.ReplaceDir(sourcePath, contentDir); err != nil {
		return fmt.Errorf("failed to replace wp-content: %w", err)
	}

	fileName, _, err := r.deps.Transfer.Copy(dbPath, r.site.Path)
	if err != nil {
		return fmt.Errorf("failed to stage database dump: %w", err)
	}
	r.logger.Infof("importing %s", fileName)
	if err := r.importDump(ctx, filepath.Join(r.site.Path, fileName)); err != nil {
		return err
	}

	prefix := r.detectPrefix(ctx)
	if err := r.finalizeImport(ctx, prefix); err != nil {
		return err
	}
	r.finish(ctx)
	return nil
}

// restoreWP copies a complete site tree, regenerates the
// configuration and imports the dump shipped inside the tree.
func (r *Restorer) restoreWP(ctx context.Context, sourcePath string) error {
	if err := os.MkdirAll(r.site.Path, 0o755); err != nil {
		return fmt.Errorf("failed to create site directory: %w", err)
	}

	r.logger.Infof("copying site tree into %s", r.site.Path)
	if _, _, err := r.deps.Transfer.Copy(sourcePath, r.site.Path); err != nil {
		return fmt.Errorf("failed to copy site tree: %w", err)
	}

	if err := r.deps.Admin.Create(ctx, r.site.Name); err != nil {
		return err
	}

	// The copied tree carries the origin's configuration; regenerate
	// it against the local database.
	configPath := filepath.Join(r.site.Path, database.ConfigFileName)
	if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale configuration: %w", err)
	}
	if err := r.inst.WriteConfig(ctx); err != nil {
		return err
	}

	dumpName, err := database.FindDumpFile(r.site.Path)
	if err != nil {
		return err
	}
	r.logger.Infof("importing %s", dumpName)
	if err := r.importDump(ctx, filepath.Join(r.site.Path, dumpName)); err != nil {
		return err
	}

	prefix := r.detectPrefix(ctx)
	if err := r.finalizeImport(ctx, prefix); err != nil {
		return err
	}
	r.finish(ctx)
	return nil
}
