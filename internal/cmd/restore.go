package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"wpforge-cli/internal/installer"
	"wpforge-cli/internal/restore"
)

var (
	restoreName          string
	restoreMethodTag     string
	restoreSource        string
	restoreDBPath        string
	restoreAdminUser     string
	restoreAdminPassword string
	restoreAdminEmail    string
	restoreSSL           bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore a WordPress site from a backup",
	Long: `Restore a WordPress site from a backup using one of four methods:

  ai1        All-in-One WP Migration archive (.wpress)
  dup        Duplicator Pro package (finish in the browser)
  wpcontent  wp-content directory plus a separate SQL dump
  wp         full site tree with the SQL dump inside

Examples:
  wpforge restore --name=acme --method=ai1 --source=/backups/acme.wpress
  wpforge restore --name=acme --method=wpcontent --source=/backups/wp-content --db=/backups/acme.sql`,
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().StringVar(&restoreName, "name", "", "website name (directory, database and hostname)")
	restoreCmd.Flags().StringVar(&restoreMethodTag, "method", "", "restore method (ai1, dup, wpcontent, wp)")
	restoreCmd.Flags().StringVar(&restoreSource, "source", "", "backup source path")
	restoreCmd.Flags().StringVar(&restoreDBPath, "db", "", "database dump path (wpcontent method)")
	restoreCmd.Flags().StringVar(&restoreAdminUser, "admin-user", "", "admin username (default from config)")
	restoreCmd.Flags().StringVar(&restoreAdminPassword, "admin-password", "", "admin password (default from config)")
	restoreCmd.Flags().StringVar(&restoreAdminEmail, "admin-email", "", "admin email (default from config)")
	restoreCmd.Flags().BoolVar(&restoreSSL, "ssl", false, "serve the site over https")

	restoreCmd.MarkFlagRequired("name")
	restoreCmd.MarkFlagRequired("method")
	restoreCmd.MarkFlagRequired("source")
}

func runRestore(cmd *cobra.Command, args []string) error {
	method, err := restore.ParseMethod(restoreMethodTag)
	if err != nil {
		return err
	}
	if method.NeedsDatabaseDump() && restoreDBPath == "" {
		return fmt.Errorf("--db is required for the %s method", method)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	inputs := installer.Inputs{
		WebsiteName:   restoreName,
		AdminUser:     restoreAdminUser,
		AdminPassword: restoreAdminPassword,
		AdminEmail:    restoreAdminEmail,
		SSL:           restoreSSL,
		Language:      a.cfg.Language,
	}
	if inputs.AdminUser == "" {
		inputs.AdminUser = a.cfg.AdminUser
	}
	if inputs.AdminPassword == "" {
		inputs.AdminPassword = a.cfg.AdminPassword
	}
	if inputs.AdminEmail == "" {
		inputs.AdminEmail = a.cfg.AdminEmail
	}

	restorer, err := restore.New(a.restoreDeps(), inputs, false)
	if err != nil {
		return err
	}
	return restorer.Run(context.Background(), method, restoreSource, restoreDBPath)
}
