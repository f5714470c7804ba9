package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"wpforge-cli/internal/config"
)

func TestInputsValidate(t *testing.T) {
	tests := []struct {
		name    string
		inputs  Inputs
		wantErr bool
	}{
		{
			name:   "valid",
			inputs: Inputs{WebsiteName: "client-site_7", AdminUser: "admin", AdminPassword: "secret"},
		},
		{
			name:    "empty name",
			inputs:  Inputs{AdminUser: "admin", AdminPassword: "secret"},
			wantErr: true,
		},
		{
			name:    "name with path separator",
			inputs:  Inputs{WebsiteName: "../escape", AdminUser: "admin", AdminPassword: "secret"},
			wantErr: true,
		},
		{
			name:    "name with space",
			inputs:  Inputs{WebsiteName: "my site", AdminUser: "admin", AdminPassword: "secret"},
			wantErr: true,
		},
		{
			name:    "missing password",
			inputs:  Inputs{WebsiteName: "site", AdminUser: "admin"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.inputs.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewSite(t *testing.T) {
	cfg := &config.Config{SitesPath: "/srv/www", TLD: "test"}
	site := NewSite(cfg, Inputs{WebsiteName: "acme", SSL: true})
	if site.Path != "/srv/www/acme" {
		t.Errorf("Path = %q", site.Path)
	}
	if site.URL != "https://acme.test" {
		t.Errorf("URL = %q", site.URL)
	}
	if !strings.Contains(site.CLI, `--path=`) || !strings.Contains(site.CLI, "acme") {
		t.Errorf("CLI = %q", site.CLI)
	}

	site = NewSite(cfg, Inputs{WebsiteName: "acme"})
	if site.URL != "http://acme.test" {
		t.Errorf("URL without SSL = %q", site.URL)
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$2y$") {
		t.Errorf("hash prefix = %q, want $2y$", hash[:4])
	}
	compat := "$2a$" + strings.TrimPrefix(hash, "$2y$")
	if err := bcrypt.CompareHashAndPassword([]byte(compat), []byte("hunter2")); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	saved := Credentials{
		LoginURL: "https://acme.test/wp-admin/",
		Username: "admin",
		Password: "s3cret!",
		Email:    "admin@acme.test",
	}
	if err := SaveCredentials(dir, saved); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	loaded, err := LoadCredentials(dir)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if loaded != saved {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, saved)
	}
}

func TestLoadCredentialsMissing(t *testing.T) {
	if _, err := LoadCredentials(t.TempDir()); err == nil {
		t.Error("expected error for missing credentials file")
	}
}

func TestHtaccessContent(t *testing.T) {
	plain := HtaccessContent(false)
	if !strings.Contains(plain, "RewriteRule . /index.php [L]") {
		t.Error("base rewrite rules missing")
	}
	if strings.Contains(plain, "Force SSL") {
		t.Error("plain content contains SSL block")
	}

	ssl := HtaccessContent(true)
	if !strings.Contains(ssl, "https://%{HTTP_HOST}%{REQUEST_URI}") {
		t.Error("SSL redirect missing")
	}
	base := strings.Index(ssl, "# BEGIN WordPress")
	redirect := strings.Index(ssl, "# BEGIN Force SSL")
	if base < 0 || redirect < 0 || redirect < base {
		t.Error("SSL redirect block must follow the rewrite rules")
	}
	if !strings.Contains(ssl, "RewriteRule . /index.php [L]") {
		t.Error("base rewrite rules missing from SSL content")
	}
}

func TestCreateNewWebsiteRejectsExistingDirectory(t *testing.T) {
	cfg := &config.Config{SitesPath: t.TempDir(), TLD: "test"}
	taken := cfg.SitePath("taken")
	if err := os.MkdirAll(taken, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(taken, "index.php"), []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	inst, err := New(Deps{Config: cfg}, Inputs{WebsiteName: "taken", AdminUser: "admin", AdminPassword: "pw"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = inst.CreateNewWebsite(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing-directory error, got %v", err)
	}

	content, err := os.ReadFile(filepath.Join(taken, "index.php"))
	if err != nil || string(content) != "keep" {
		t.Errorf("existing site was touched: %q, %v", content, err)
	}
}
