package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"wpforge-cli/internal/config"
)

// DefaultPrefix is the conventional WordPress table prefix.
const DefaultPrefix = "wp_"

// Site database names double as directory names and subdomain labels,
// so the allowed character set is the intersection of all three.
var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var prefixRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Allowed per-user columns for admin identity rewrites.
var userColumns = map[string]bool{
	"user_pass":  true,
	"user_login": true,
	"user_email": true,
}

// Admin performs administrative operations against the local database
// engine: schema lifecycle, prefix discovery, and the option/user row
// rewrites that follow a restore. Each statement is an independent
// administrative call; no transactional wrapping is assumed.
type Admin struct {
	db      *sql.DB
	user    string
	timeout time.Duration
	logger  *logrus.Entry
}

// AdminConfig configures an Admin.
type AdminConfig struct {
	MySQL config.MySQL
	// Timeout bounds each administrative statement. Zero selects a
	// default.
	Timeout time.Duration
	Logger  *logrus.Entry
}

// NewAdmin opens the administrative connection pool.
func NewAdmin(cfg AdminConfig) (*Admin, error) {
	db, err := sql.Open("mysql", cfg.MySQL.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(8)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Admin{
		db:      db,
		user:    cfg.MySQL.User,
		timeout: timeout,
		logger:  logger.WithField("component", "database"),
	}, nil
}

// stmtCtx bounds one administrative statement.
func (a *Admin) stmtCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.timeout)
}

// Close releases the connection pool.
func (a *Admin) Close() error {
	return a.db.Close()
}

// Ping verifies the administrative connection.
func (a *Admin) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func quoteIdent(name string) (string, error) {
	if !nameRe.MatchString(name) {
		return "", fmt.Errorf("invalid database identifier %q", name)
	}
	return "`" + name + "`", nil
}

func quoteTable(dbName, prefix, table string) (string, error) {
	db, err := quoteIdent(dbName)
	if err != nil {
		return "", err
	}
	if prefix != "" && !prefixRe.MatchString(prefix) {
		return "", fmt.Errorf("invalid table prefix %q", prefix)
	}
	return db + ".`" + prefix + table + "`", nil
}

// Exists reports whether a schema with the given name exists.
func (a *Admin) Exists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := a.stmtCtx(ctx)
	defer cancel()

	var found int
	err := a.db.QueryRowContext(ctx,
		"SELECT 1 FROM information_schema.schemata WHERE schema_name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check database %q: %w", name, err)
	}
	return true, nil
}

// Create creates the schema if absent and grants the administrative
// role full privileges on it.
func (a *Admin) Create(ctx context.Context, name string) error {
	ident, err := quoteIdent(name)
	if err != nil {
		return err
	}

	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", ident),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON %s.* TO '%s'@'localhost' WITH GRANT OPTION", ident, a.user),
		"FLUSH PRIVILEGES",
	}
	ctx, cancel := a.stmtCtx(ctx)
	defer cancel()
	for _, stmt := range stmts {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create database %q: %w", name, err)
		}
	}

	a.logger.Infof("created database %q", name)
	return nil
}

// Drop removes the schema if it exists. The error is propagated, not
// treated as fatal: batch-delete callers count per-item outcomes.
func (a *Admin) Drop(ctx context.Context, name string) error {
	ident, err := quoteIdent(name)
	if err != nil {
		return err
	}
	ctx, cancel := a.stmtCtx(ctx)
	defer cancel()
	if _, err := a.db.ExecContext(ctx, "DROP DATABASE IF EXISTS "+ident); err != nil {
		return fmt.Errorf("failed to drop database %q: %w", name, err)
	}
	a.logger.Infof("dropped database %q", name)
	return nil
}

// TablePrefix discovers the installed table prefix by looking for a
// table whose name ends in "options". Restored sites frequently carry
// a non-default prefix, so every subsequent statement must use the
// discovered one.
func (a *Admin) TablePrefix(ctx context.Context, dbName string) (string, bool, error) {
	ctx, cancel := a.stmtCtx(ctx)
	defer cancel()

	rows, err := a.db.QueryContext(ctx,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = ? AND table_name LIKE '%options' ORDER BY table_name",
		dbName)
	if err != nil {
		return "", false, fmt.Errorf("failed to query tables of %q: %w", dbName, err)
	}
	defer rows.Close()

	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return "", false, err
		}
		table = strings.TrimSpace(table)
		if strings.HasSuffix(table, "options") {
			return strings.TrimSuffix(table, "options"), true, nil
		}
	}
	return "", false, rows.Err()
}

// UpdateOption sets a single row in the site's options table.
func (a *Admin) UpdateOption(ctx context.Context, dbName, prefix, option, value string) error {
	table, err := quoteTable(dbName, prefix, "options")
	if err != nil {
		return err
	}
	ctx, cancel := a.stmtCtx(ctx)
	defer cancel()
	_, err = a.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET option_value = ? WHERE option_name = ?", table), value, option)
	if err != nil {
		return fmt.Errorf("failed to update option %q in %s: %w", option, dbName, err)
	}
	return nil
}

// FirstUserID returns the lowest user id, or found=false when the
// users table holds no rows.
func (a *Admin) FirstUserID(ctx context.Context, dbName, prefix string) (int64, bool, error) {
	table, err := quoteTable(dbName, prefix, "users")
	if err != nil {
		return 0, false, err
	}
	ctx, cancel := a.stmtCtx(ctx)
	defer cancel()
	var id int64
	err = a.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT ID FROM %s ORDER BY ID LIMIT 1", table)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query users of %q: %w", dbName, err)
	}
	return id, true, nil
}

// UpdateUserColumn rewrites one identity column of a user row.
func (a *Admin) UpdateUserColumn(ctx context.Context, dbName, prefix string, userID int64, column, value string) error {
	if !userColumns[column] {
		return fmt.Errorf("refusing to update user column %q", column)
	}
	table, err := quoteTable(dbName, prefix, "users")
	if err != nil {
		return err
	}
	ctx, cancel := a.stmtCtx(ctx)
	defer cancel()
	_, err = a.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s = ? WHERE ID = ?", table, column), value, userID)
	if err != nil {
		return fmt.Errorf("failed to update %s for user %d in %q: %w", column, userID, dbName, err)
	}
	return nil
}
