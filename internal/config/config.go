package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// MySQL describes the administrative connection to the local database
// engine. The zero Port falls back to the engine default.
type MySQL struct {
	User     string
	Password string
	Host     string
	Port     int
}

// DSN returns a go-sql-driver DSN for the administrative connection.
// No schema is selected; every statement names its target database.
func (m MySQL) DSN() string {
	port := m.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/?parseTime=true", m.User, m.Password, m.Host, port)
}

// ClientArgs returns the argument string for the mysql command-line
// client, used when streaming dump files that are impractical to feed
// through the driver.
func (m MySQL) ClientArgs() string {
	args := fmt.Sprintf("-u%s -h%s", m.User, m.Host)
	if m.Port != 0 && m.Port != 3306 {
		args += fmt.Sprintf(" -P%d", m.Port)
	}
	if m.Password != "" {
		args += fmt.Sprintf(" -p%s", m.Password)
	}
	return args
}

// Config is the explicit, dependency-injected configuration every
// component receives at construction time. Nothing reads it from
// ambient global state.
type Config struct {
	// StackPath is the root of the local web stack installation.
	StackPath string
	// SitesPath is the virtual-host directory tree (StackPath/www).
	SitesPath string
	// CachePath holds downloaded core/plugin/theme archives shared
	// across all site provisioning runs.
	CachePath string

	// TLD is appended to the website name to form the local hostname.
	TLD string

	MySQL MySQL

	// Default admin identity applied when inputs omit one.
	AdminUser     string
	AdminPassword string
	AdminEmail    string
	Language      string

	// CatalogPath points at the plugin/theme descriptor file. Empty
	// selects the embedded default catalog.
	CatalogPath string

	// BulkManifestPath is the fallback CSV manifest for bulk restore.
	BulkManifestPath string

	// BulkWorkers caps concurrent site restores in bulk mode.
	BulkWorkers int

	// ReloadCommand is the shell invocation that signals the web
	// server to reload its virtual-host configuration. Empty disables
	// reloading.
	ReloadCommand string

	// SanitizeDumps strips known license/transient option rows from
	// SQL dumps before import.
	SanitizeDumps bool

	CommandTimeout  time.Duration
	DownloadTimeout time.Duration
}

// Load builds a Config from viper (config file, environment, flags).
func Load(v *viper.Viper) (*Config, error) {
	v.SetDefault("tld", "test")
	v.SetDefault("mysql.user", "root")
	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.email", "admin@example.test")
	v.SetDefault("language", "en_US")
	v.SetDefault("bulk.workers", 4)
	v.SetDefault("command_timeout", "5m")
	v.SetDefault("download_timeout", "10m")

	cfg := &Config{
		StackPath:        v.GetString("stack_path"),
		TLD:              v.GetString("tld"),
		AdminUser:        v.GetString("admin.username"),
		AdminPassword:    v.GetString("admin.password"),
		AdminEmail:       v.GetString("admin.email"),
		Language:         v.GetString("language"),
		CatalogPath:      v.GetString("catalog_path"),
		BulkManifestPath: v.GetString("bulk.manifest"),
		BulkWorkers:      v.GetInt("bulk.workers"),
		ReloadCommand:    v.GetString("reload_command"),
		SanitizeDumps:    v.GetBool("sanitize_dumps"),
		CommandTimeout:   v.GetDuration("command_timeout"),
		DownloadTimeout:  v.GetDuration("download_timeout"),
		MySQL: MySQL{
			User:     v.GetString("mysql.user"),
			Password: v.GetString("mysql.password"),
			Host:     v.GetString("mysql.host"),
			Port:     v.GetInt("mysql.port"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the stack root and fills the derived paths.
func (c *Config) Validate() error {
	if c.StackPath == "" {
		return fmt.Errorf("stack_path is not configured")
	}
	info, err := os.Stat(c.StackPath)
	if err != nil {
		return fmt.Errorf("stack path %q does not exist: %w", c.StackPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("stack path %q is not a directory", c.StackPath)
	}

	if c.SitesPath == "" {
		c.SitesPath = filepath.Join(c.StackPath, "www")
	}
	if c.CachePath == "" {
		c.CachePath = filepath.Join(c.StackPath, "tmp", "cached")
	}
	if err := os.MkdirAll(c.CachePath, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory %q: %w", c.CachePath, err)
	}

	if c.BulkWorkers < 1 {
		c.BulkWorkers = 1
	}
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = 5 * time.Minute
	}
	if c.DownloadTimeout <= 0 {
		c.DownloadTimeout = 10 * time.Minute
	}
	return nil
}

// SitePath returns the virtual-host directory for a website name.
func (c *Config) SitePath(name string) string {
	return filepath.Join(c.SitesPath, name)
}

// SiteURL computes the local URL for a website name.
func (c *Config) SiteURL(name string, ssl bool) string {
	protocol := "http://"
	if ssl {
		protocol = "https://"
	}
	return protocol + name + "." + c.TLD
}
