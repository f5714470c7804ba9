package cmd

import (
	"context"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"wpforge-cli/internal/catalog"
	"wpforge-cli/internal/installer"
)

var (
	createName          string
	createAdminUser     string
	createAdminPassword string
	createAdminEmail    string
	createSSL           bool
	createLanguage      string
	createApplyOptions  bool
	createPlugins       []string
	createNoPlugins     bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a new WordPress site",
	Long: `Provision a new WordPress site on the local stack: database, core
files, configuration, admin account, selected plugins and themes.

Examples:
  # Fully scripted
  wpforge create --name=acme --admin-password=secret --ssl --plugins=wordfence

  # Prompt for whatever is missing
  wpforge create`,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createName, "name", "", "website name (directory, database and hostname)")
	createCmd.Flags().StringVar(&createAdminUser, "admin-user", "", "admin username (default from config)")
	createCmd.Flags().StringVar(&createAdminPassword, "admin-password", "", "admin password (default from config)")
	createCmd.Flags().StringVar(&createAdminEmail, "admin-email", "", "admin email (default from config)")
	createCmd.Flags().BoolVar(&createSSL, "ssl", false, "serve the site over https")
	createCmd.Flags().StringVar(&createLanguage, "language", "", "site language (default from config)")
	createCmd.Flags().BoolVar(&createApplyOptions, "apply-options", true, "apply the house option defaults")
	createCmd.Flags().StringSliceVar(&createPlugins, "plugins", nil, "plugin names to install from the catalog")
	createCmd.Flags().BoolVar(&createNoPlugins, "no-plugins", false, "skip plugin installation and the plugin prompt")
}

func runCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	inputs, err := collectCreateInputs(a)
	if err != nil {
		return err
	}

	selection, err := collectPluginSelection(a)
	if err != nil {
		return err
	}

	inst, err := installer.New(a.installerDeps(), inputs)
	if err != nil {
		return err
	}
	return inst.CreateNewWebsite(context.Background(), selection)
}

// collectCreateInputs fills the input record from flags, config
// defaults and, for required fields still missing, prompts.
func collectCreateInputs(a *app) (installer.Inputs, error) {
	inputs := installer.Inputs{
		WebsiteName:   createName,
		AdminUser:     createAdminUser,
		AdminPassword: createAdminPassword,
		AdminEmail:    createAdminEmail,
		SSL:           createSSL,
		Language:      createLanguage,
		ApplyOptions:  createApplyOptions,
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
	if inputs.Language == "" {
		inputs.Language = a.cfg.Language
	}

	if inputs.WebsiteName == "" {
		if err := survey.AskOne(&survey.Input{Message: "Website name:"}, &inputs.WebsiteName); err != nil {
			return inputs, err
		}
	}
	if inputs.AdminPassword == "" {
		if err := survey.AskOne(&survey.Password{Message: "Admin password:"}, &inputs.AdminPassword); err != nil {
			return inputs, err
		}
	}
	return inputs, inputs.Validate()
}

// collectPluginSelection resolves the plugin set from flags or an
// interactive multi-select.
func collectPluginSelection(a *app) (catalog.Selection, error) {
	if createNoPlugins {
		return nil, nil
	}
	if len(createPlugins) > 0 {
		return a.catalog.SelectionFromNames(createPlugins), nil
	}

	var chosen []string
	prompt := &survey.MultiSelect{
		Message: "Plugins to install:",
		Options: a.catalog.PluginNames(),
	}
	if err := survey.AskOne(prompt, &chosen); err != nil {
		return nil, err
	}
	return a.catalog.SelectionFromNames(chosen), nil
}
