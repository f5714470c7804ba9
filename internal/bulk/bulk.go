package bulk

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"wpforge-cli/internal/config"
	"wpforge-cli/internal/installer"
	"wpforge-cli/internal/restore"
)

// Result records the outcome of one manifest entry.
type Result struct {
	WebsiteName         string
	Method              string
	SourcePath          string
	DBPath              string
	Status              string
	ErrorMessage        string
	MissingRequirements []string
}

const (
	statusSuccess = "Success"
	statusFailed  = "Failed"
)

// Succeeded reports whether the entry restored cleanly.
func (r Result) Succeeded() bool {
	return r.Status == statusSuccess
}

// databaseChecker is the slice of the database admin the entry
// pre-checks need.
type databaseChecker interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// preChecker validates a manifest entry before any mutation is
// attempted against its target.
type preChecker struct {
	cfg *config.Config
	db  databaseChecker
}

// check resolves the method and inputs for a row. On any failed
// pre-condition it fills the reason into res and reports ok=false;
// nothing destructive has happened by then.
func (p preChecker) check(ctx context.Context, row Row, res *Result) (restore.Method, installer.Inputs, bool) {
	method, err := restore.ParseMethod(row.Method)
	if err != nil {
		res.ErrorMessage = err.Error()
		return 0, installer.Inputs{}, false
	}

	inputs := installer.Inputs{
		WebsiteName:   row.WebsiteName,
		AdminUser:     p.cfg.AdminUser,
		AdminPassword: p.cfg.AdminPassword,
		AdminEmail:    p.cfg.AdminEmail,
		SSL:           row.SSL,
		Language:      p.cfg.Language,
	}
	if row.AdminUser != "" {
		inputs.AdminUser = row.AdminUser
	}
	if row.AdminPassword != "" {
		inputs.AdminPassword = row.AdminPassword
	}
	if row.AdminEmail != "" {
		inputs.AdminEmail = row.AdminEmail
	}
	if err := inputs.Validate(); err != nil {
		res.ErrorMessage = err.Error()
		return 0, installer.Inputs{}, false
	}

	if _, err := os.Stat(p.cfg.SitePath(row.WebsiteName)); err == nil {
		res.ErrorMessage = "website directory already exists"
		return 0, installer.Inputs{}, false
	}
	exists, err := p.db.Exists(ctx, row.WebsiteName)
	if err != nil {
		res.ErrorMessage = err.Error()
		return 0, installer.Inputs{}, false
	}
	if exists {
		res.ErrorMessage = "database already exists"
		return 0, installer.Inputs{}, false
	}

	if _, err := os.Stat(row.SourcePath); err != nil {
		res.ErrorMessage = fmt.Sprintf("source path does not exist: %s", row.SourcePath)
		return 0, installer.Inputs{}, false
	}
	if method.NeedsDatabaseDump() {
		if row.DBPath == "" {
			res.ErrorMessage = "database dump path missing"
			res.MissingRequirements = append(res.MissingRequirements, "db_path")
			return 0, installer.Inputs{}, false
		}
		if _, err := os.Stat(row.DBPath); err != nil {
			res.ErrorMessage = fmt.Sprintf("database dump path does not exist: %s", row.DBPath)
			return 0, installer.Inputs{}, false
		}
	}
	return method, inputs, true
}

// Orchestrator fans a restore manifest out over a bounded worker
// pool. One entry's failure never aborts the batch.
type Orchestrator struct {
	deps    restore.Deps
	checker preChecker
	logger  *logrus.Entry
	workers int
}

// New creates an Orchestrator. Worker count comes from the
// configuration, floored at one.
func New(deps restore.Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	workers := deps.Config.BulkWorkers
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		deps:    deps,
		checker: preChecker{cfg: deps.Config, db: deps.Admin},
		logger:  logger.WithField("component", "bulk"),
		workers: workers,
	}
}

// RestoreAll restores every manifest entry, writes the report file
// and reloads the web server once. Results come back in manifest
// order.
func (o *Orchestrator) RestoreAll(ctx context.Context, manifestPath string) ([]Result, error) {
	rows, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	o.logger.Infof("restoring %d sites with %d workers", len(rows), o.workers)

	// Each goroutine writes only its own slot.
	results := make([]Result, len(rows))
	sem := make(chan struct{}, o.workers)
	var wg sync.WaitGroup
	for idx, row := range rows {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[idx] = o.restoreOne(ctx, row)
		}()
	}
	wg.Wait()

	reportPath, err := WriteReport(manifestPath, results)
	if err != nil {
		o.logger.Warnf("could not write report: %v", err)
	} else {
		o.logger.Infof("report written to %s", reportPath)
	}

	PrintSummary(os.Stdout, results)
	o.deps.Reloader.Reload(ctx)
	return results, nil
}

// restoreOne validates and restores a single manifest entry. All
// failures, panics included, land in the Result.
func (o *Orchestrator) restoreOne(ctx context.Context, row Row) (res Result) {
	res = Result{
		WebsiteName: row.WebsiteName,
		Method:      row.Method,
		SourcePath:  row.SourcePath,
		DBPath:      row.DBPath,
		Status:      statusFailed,
	}
	defer func() {
		if r := recover(); r != nil {
			res.Status = statusFailed
			res.ErrorMessage = fmt.Sprintf("panic: %v", r)
		}
	}()

	method, inputs, ok := o.checker.check(ctx, row, &res)
	if !ok {
		return res
	}

	restorer, err := restore.New(o.deps, inputs, true)
	if err != nil {
		res.ErrorMessage = err.Error()
		return res
	}
	o.logger.Infof("restoring %s via %s", row.WebsiteName, method)
	if err := restorer.Run(ctx, method, row.SourcePath, row.DBPath); err != nil {
		res.ErrorMessage = err.Error()
		return res
	}

	res.Status = statusSuccess
	return res
}
