package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"wpforge-cli/internal/bulk"
)

var bulkManifest string

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Restore multiple sites from a CSV manifest",
	Long: `Restore multiple sites concurrently from a CSV manifest.

The manifest needs the columns website_name, source_path and
restore_method; db_path, admin_username, admin_password, admin_email
and ssl are optional. A results CSV lands in a logs directory next to
the manifest.

Example:
  wpforge bulk --manifest=/backups/sites.csv`,
	RunE: runBulk,
}

func init() {
	rootCmd.AddCommand(bulkCmd)
	bulkCmd.Flags().StringVar(&bulkManifest, "manifest", "", "CSV manifest path (default from config)")
}

func runBulk(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	manifest := bulkManifest
	if manifest == "" {
		manifest = a.cfg.BulkManifestPath
	}
	if manifest == "" {
		return fmt.Errorf("no manifest given: pass --manifest or set bulk.manifest in the config")
	}

	// Per-row failures surface in the summary and the report only;
	// a non-nil error here means the manifest itself was unusable.
	_, err = bulk.New(a.restoreDeps()).RestoreAll(context.Background(), manifest)
	return err
}
