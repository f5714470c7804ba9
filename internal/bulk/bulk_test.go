package bulk

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wpforge-cli/internal/config"
	"wpforge-cli/internal/restore"
	"wpforge-cli/internal/webserver"
)

type fakeDatabases struct {
	existing map[string]bool
}

func (f fakeDatabases) Exists(ctx context.Context, name string) (bool, error) {
	return f.existing[name], nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		SitesPath:     t.TempDir(),
		TLD:           "test",
		AdminUser:     "admin",
		AdminPassword: "pw",
		AdminEmail:    "admin@example.test",
	}
}

func sourceFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backup.wpress")
	if err := os.WriteFile(path, []byte("backup"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckExistingDirectory(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.SitePath("demo"), 0o755); err != nil {
		t.Fatal(err)
	}
	checker := preChecker{cfg: cfg, db: fakeDatabases{}}

	var res Result
	_, _, ok := checker.check(context.Background(), Row{
		WebsiteName: "demo", SourcePath: sourceFile(t), Method: "ai1",
	}, &res)
	if ok {
		t.Fatal("check must fail for an existing site directory")
	}
	if !strings.Contains(res.ErrorMessage, "directory already exists") {
		t.Errorf("ErrorMessage = %q", res.ErrorMessage)
	}
}

func TestCheckExistingDatabase(t *testing.T) {
	cfg := testConfig(t)
	checker := preChecker{cfg: cfg, db: fakeDatabases{existing: map[string]bool{"demo": true}}}

	var res Result
	_, _, ok := checker.check(context.Background(), Row{
		WebsiteName: "demo", SourcePath: sourceFile(t), Method: "ai1",
	}, &res)
	if ok {
		t.Fatal("check must fail for an existing database")
	}
	if !strings.Contains(res.ErrorMessage, "database already exists") {
		t.Errorf("ErrorMessage = %q", res.ErrorMessage)
	}
}

func TestCheckMissingDumpPath(t *testing.T) {
	cfg := testConfig(t)
	checker := preChecker{cfg: cfg, db: fakeDatabases{}}

	var res Result
	_, _, ok := checker.check(context.Background(), Row{
		WebsiteName: "demo", SourcePath: sourceFile(t), Method: "wpcontent",
	}, &res)
	if ok {
		t.Fatal("check must fail without a dump path")
	}
	if len(res.MissingRequirements) != 1 || res.MissingRequirements[0] != "db_path" {
		t.Errorf("MissingRequirements = %v", res.MissingRequirements)
	}
}

func TestCheckValidRow(t *testing.T) {
	cfg := testConfig(t)
	checker := preChecker{cfg: cfg, db: fakeDatabases{}}

	var res Result
	method, inputs, ok := checker.check(context.Background(), Row{
		WebsiteName: "demo", SourcePath: sourceFile(t), Method: "ai1", SSL: true,
	}, &res)
	if !ok {
		t.Fatalf("check failed: %q", res.ErrorMessage)
	}
	if method != restore.MethodAI1 {
		t.Errorf("method = %v", method)
	}
	if inputs.AdminUser != "admin" || !inputs.SSL {
		t.Errorf("inputs = %+v", inputs)
	}
}

func TestCheckRowAdminOverrides(t *testing.T) {
	cfg := testConfig(t)
	checker := preChecker{cfg: cfg, db: fakeDatabases{}}

	var res Result
	_, inputs, ok := checker.check(context.Background(), Row{
		WebsiteName: "demo", SourcePath: sourceFile(t), Method: "wp",
		AdminUser: "owner", AdminPassword: "override", AdminEmail: "owner@site.test",
	}, &res)
	if !ok {
		t.Fatalf("check failed: %q", res.ErrorMessage)
	}
	if inputs.AdminUser != "owner" || inputs.AdminPassword != "override" || inputs.AdminEmail != "owner@site.test" {
		t.Errorf("overrides not applied: %+v", inputs)
	}
}

// Every manifest row yields exactly one result, in order, and row
// failures never fail the batch.
func TestRestoreAllResultCompleteness(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.SitePath("taken"), 0o755); err != nil {
		t.Fatal(err)
	}

	manifestDir := t.TempDir()
	manifest := filepath.Join(manifestDir, "sites.csv")
	content := "website_name,source_path,restore_method\n" +
		"bad-method,/backups/x.wpress,rsync\n" +
		"taken,/backups/y.wpress,ai1\n"
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	deps := restore.Deps{
		Config:   cfg,
		Reloader: webserver.New(nil, "", nil),
	}
	results, err := New(deps).RestoreAll(context.Background(), manifest)
	if err != nil {
		t.Fatalf("RestoreAll: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want one per manifest row", len(results))
	}
	if results[0].WebsiteName != "bad-method" || results[0].Succeeded() {
		t.Errorf("result 0 = %+v", results[0])
	}
	if results[1].WebsiteName != "taken" || results[1].Succeeded() {
		t.Errorf("result 1 = %+v", results[1])
	}
	if !strings.Contains(results[1].ErrorMessage, "directory already exists") {
		t.Errorf("result 1 error = %q", results[1].ErrorMessage)
	}

	reports, err := filepath.Glob(filepath.Join(manifestDir, "logs", "bulk_restore_results_*.csv"))
	if err != nil || len(reports) != 1 {
		t.Errorf("expected one report file, got %v (%v)", reports, err)
	}
}
