package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ConfigFileName is the site configuration file patched in place.
const ConfigFileName = "wp-config.php"

var prefixAssignRe = regexp.MustCompile(`\$table_prefix\s*=\s*'[^']*';`)

// DetectAndPatchPrefix discovers the table prefix of a restored
// database and, when it differs from the default, patches it into the
// site's configuration file. Returns ok=false when no candidate table
// exists, the configuration file is missing, or a read/write fault
// occurs; callers fall back to the default prefix instead of aborting.
func (a *Admin) DetectAndPatchPrefix(ctx context.Context, dbName, sitePath string) (string, bool) {
	prefix, found, err := a.TablePrefix(ctx, dbName)
	if err != nil {
		a.logger.Warnf("could not detect table prefix of %q: %v", dbName, err)
		return "", false
	}
	if !found {
		a.logger.Warnf("no options table found in %q, table prefix unknown", dbName)
		return "", false
	}

	if prefix == DefaultPrefix {
		return prefix, true
	}

	a.logger.Infof("detected non-default table prefix %q in %q", prefix, dbName)
	if err := PatchConfigPrefix(sitePath, prefix); err != nil {
		a.logger.Warnf("could not patch table prefix into %s: %v", ConfigFileName, err)
		return "", false
	}
	return prefix, true
}

// PatchConfigPrefix rewrites the table prefix assignment in the site's
// configuration file, appending one when no assignment exists. The
// rewrite is idempotent: repeated calls with the same prefix leave the
// file unchanged.
func PatchConfigPrefix(sitePath, prefix string) error {
	if !prefixRe.MatchString(prefix) {
		return fmt.Errorf("invalid table prefix %q", prefix)
	}

	configPath := filepath.Join(sitePath, ConfigFileName)
	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	// Only a single-quoted assignment can be rewritten in place; any
	// other form (double quotes, none at all) gets an assignment
	// appended, which takes effect last.
	assignment := fmt.Sprintf("$table_prefix = '%s';", prefix)
	var updated string
	if prefixAssignRe.MatchString(string(content)) {
		updated = prefixAssignRe.ReplaceAllLiteralString(string(content), assignment)
	} else {
		updated = string(content) + "\n" + assignment + "\n"
	}

	if updated == string(content) {
		return nil
	}
	if err := os.WriteFile(configPath, []byte(updated), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	return nil
}

// FindDumpFile locates the SQL dump inside a restored site tree.
// The first match in lexical order wins.
func FindDumpFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no .sql file found in %s", dir)
	}
	sort.Strings(names)
	return names[0], nil
}
