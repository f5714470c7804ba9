package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"wpforge-cli/internal/catalog"
	"wpforge-cli/internal/config"
	"wpforge-cli/internal/database"
	"wpforge-cli/internal/execute"
	"wpforge-cli/internal/transfer"
	"wpforge-cli/internal/webserver"
)

const (
	coreArchiveURL  = "https://wordpress.org/latest.zip"
	coreArchiveName = "wordpress.latest.zip"
	coreDirName     = "wordpress"
)

var websiteNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// cacheGroup serializes first-use population of the shared download
// cache. Concurrent site provisioning must never double-download or
// read a half-extracted archive.
var cacheGroup singleflight.Group

// Inputs is the immutable input record for one site.
type Inputs struct {
	WebsiteName   string
	AdminUser     string
	AdminPassword string
	AdminEmail    string
	SSL           bool
	Language      string
	ApplyOptions  bool
}

// Validate checks the fields that double as filesystem and database
// identifiers.
func (in Inputs) Validate() error {
	if in.WebsiteName == "" {
		return fmt.Errorf("website name must not be empty")
	}
	if !websiteNameRe.MatchString(in.WebsiteName) {
		return fmt.Errorf("website name %q may only contain letters, digits, underscore and hyphen", in.WebsiteName)
	}
	if in.AdminUser == "" {
		return fmt.Errorf("admin username must not be empty")
	}
	if in.AdminPassword == "" {
		return fmt.Errorf("admin password must not be empty")
	}
	return nil
}

// Site is the derived context for one provisioning run, computed once
// and owned by a single orchestrator instance.
type Site struct {
	Name string
	Path string
	URL  string
	CLI  string
}

// NewSite derives the site context from inputs and environment root.
func NewSite(cfg *config.Config, in Inputs) Site {
	path := cfg.SitePath(in.WebsiteName)
	return Site{
		Name: in.WebsiteName,
		Path: path,
		URL:  cfg.SiteURL(in.WebsiteName, in.SSL),
		CLI:  fmt.Sprintf("wp --path=%q", path),
	}
}

// Deps bundles the collaborators an Installer needs.
type Deps struct {
	Config   *config.Config
	Runner   *execute.Runner
	Admin    *database.Admin
	Transfer *transfer.Transfer
	Catalog  *catalog.Catalog
	Reloader *webserver.Reloader
	Logger   *logrus.Entry
}

// Installer provisions one WordPress site: core files, configuration,
// installer run, and the post-install steps.
type Installer struct {
	cfg      *config.Config
	runner   *execute.Runner
	admin    *database.Admin
	transfer *transfer.Transfer
	catalog  *catalog.Catalog
	reloader *webserver.Reloader
	logger   *logrus.Entry

	inputs Inputs
	site   Site
}

// New creates an Installer for one site.
func New(deps Deps, in Inputs) (*Installer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Installer{
		cfg:      deps.Config,
		runner:   deps.Runner,
		admin:    deps.Admin,
		transfer: deps.Transfer,
		catalog:  deps.Catalog,
		reloader: deps.Reloader,
		logger:   logger.WithFields(logrus.Fields{"component": "installer", "site": in.WebsiteName}),
		inputs:   in,
		site:     NewSite(deps.Config, in),
	}, nil
}

// Site returns the derived site context.
func (i *Installer) Site() Site {
	return i.site
}

// Inputs returns the input record this installer was built from.
func (i *Installer) Inputs() Inputs {
	return i.inputs
}

// wp runs a wp-cli command scoped to this site.
func (i *Installer) wp(ctx context.Context, args string) (execute.Result, error) {
	return i.runner.Run(ctx, i.site.CLI+" "+args)
}

// wpChecked runs a wp-cli command and treats a non-zero exit as an
// error. Used for steps the pipeline depends on.
func (i *Installer) wpChecked(ctx context.Context, args string) error {
	result, err := i.wp(ctx, args)
	if err != nil {
		return err
	}
	if result.Failed() {
		return fmt.Errorf("wp %s exited with status %d: %s",
			strings.Fields(args)[0], result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// wpSoft runs a wp-cli command and only logs failures. Used for steps
// whose failure must not abort the run (deleting an already-absent
// default plugin, flushing caches).
func (i *Installer) wpSoft(ctx context.Context, args string) error {
	result, err := i.wp(ctx, args)
	if err != nil {
		return err
	}
	if result.Failed() {
		i.logger.Warnf("wp %s exited with status %d", args, result.ExitCode)
	}
	return nil
}

// EnsureAbsent verifies the website name is unclaimed before any
// mutation begins: neither the site directory nor its database may
// exist.
func (i *Installer) EnsureAbsent(ctx context.Context) error {
	if _, err := os.Stat(i.site.Path); err == nil {
		return fmt.Errorf("website directory %s already exists", i.site.Path)
	}
	exists, err := i.admin.Exists(ctx, i.site.Name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("database %q already exists", i.site.Name)
	}
	return nil
}

// ensureCached populates one shared cache asset at most once across
// concurrent provisioning runs.
func (i *Installer) ensureCached(ctx context.Context, url, fileName string) (string, error) {
	dest := filepath.Join(i.cfg.CachePath, fileName)
	_, err, _ := cacheGroup.Do(dest, func() (interface{}, error) {
		return nil, i.transfer.DownloadIfAbsent(ctx, url, dest)
	})
	if err != nil {
		return "", err
	}
	return dest, nil
}

// InstallCore places the WordPress core tree into the site path. The
// download and extraction are one-time operations shared by every
// site; only the final copy is per-site.
func (i *Installer) InstallCore(ctx context.Context) error {
	archive, err := i.ensureCached(ctx, coreArchiveURL, coreArchiveName)
	if err != nil {
		return fmt.Errorf("failed to fetch WordPress core: %w", err)
	}

	coreDir := filepath.Join(i.cfg.CachePath, coreDirName)
	_, err, _ = cacheGroup.Do(coreDir, func() (interface{}, error) {
		if _, statErr := os.Stat(coreDir); statErr == nil {
			return nil, nil
		}
		return nil, i.transfer.Extract(archive, i.cfg.CachePath)
	})
	if err != nil {
		return fmt.Errorf("failed to extract WordPress core: %w", err)
	}

	i.logger.Infof("copying core files into %s", i.site.Path)
	if _, _, err := i.transfer.Copy(coreDir, i.site.Path); err != nil {
		return fmt.Errorf("failed to copy core files: %w", err)
	}
	return nil
}

// WriteConfig generates the site configuration file pointing at the
// site's database. Must run after the database exists and before the
// installer.
func (i *Installer) WriteConfig(ctx context.Context) error {
	host := i.cfg.MySQL.Host
	if i.cfg.MySQL.Port != 0 && i.cfg.MySQL.Port != 3306 {
		host = fmt.Sprintf("%s:%d", host, i.cfg.MySQL.Port)
	}
	args := fmt.Sprintf("config create --dbname=%q --dbuser=%q --dbpass=%q --dbhost=%q --skip-check",
		i.site.Name, i.cfg.MySQL.User, i.cfg.MySQL.Password, host)
	i.logger.Info("writing wp-config.php")
	return i.wpChecked(ctx, args)
}

// Install runs the WordPress installer with the admin identity and the
// site URL. Must run after WriteConfig.
func (i *Installer) Install(ctx context.Context) error {
	args := fmt.Sprintf("core install --url=%q --title=%q --admin_user=%q --admin_password=%q --admin_email=%q --skip-email",
		i.site.URL+"/", i.site.Name, i.inputs.AdminUser, i.inputs.AdminPassword, i.inputs.AdminEmail)
	i.logger.Info("running WordPress installer")
	return i.wpChecked(ctx, args)
}

// CreateNewWebsite runs the full provisioning sequence. Database,
// core, config and installer are strictly ordered; everything after
// is independent and runs concurrently.
func (i *Installer) CreateNewWebsite(ctx context.Context, selection catalog.Selection) error {
	if err := i.EnsureAbsent(ctx); err != nil {
		return err
	}
	if err := i.admin.Create(ctx, i.site.Name); err != nil {
		return err
	}
	if err := i.InstallCore(ctx); err != nil {
		return err
	}
	if err := i.WriteConfig(ctx); err != nil {
		return err
	}
	if err := i.Install(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return i.InstallThemes(gctx, true) })
	g.Go(func() error { return i.InstallPlugins(gctx, selection) })
	g.Go(func() error { return i.InstallLanguages(gctx) })
	g.Go(func() error { return i.InstallOptions(gctx) })
	g.Go(func() error { return i.EditHtaccess() })
	g.Go(func() error { return i.PersistCredentials() })
	if err := g.Wait(); err != nil {
		return err
	}

	i.PrintSummary()
	i.reloader.Reload(ctx)
	return nil
}

// PrintSummary prints the login details for the finished site.
func (i *Installer) PrintSummary() {
	fmt.Printf(`
WordPress Login Credentials:
------------------------------------------
Login URL: %s/wp-admin/
Username: %s
Password: %s
Email: %s
------------------------------------------
`, i.site.URL, i.inputs.AdminUser, i.inputs.AdminPassword, i.inputs.AdminEmail)
}
