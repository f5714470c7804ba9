package cmd

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"wpforge-cli/internal/site"
)

const deleteAllChoice = "all websites"

var (
	deleteName string
	deleteAll  bool
	deleteYes  bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a WordPress site and its database",
	Long: `Delete a site's directory and drop its database. Without --name or
--all an interactive picker lists the sites.

Examples:
  wpforge delete --name=acme
  wpforge delete --all --yes`,
	RunE: runDelete,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the provisioned sites",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)

	deleteCmd.Flags().StringVar(&deleteName, "name", "", "website to delete")
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "delete every website")
	deleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "skip the confirmation prompt")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	names, err := site.NewManager(site.Deps{Config: a.cfg, Admin: a.admin, Reloader: a.reloader, Logger: a.logger}).List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No websites found.")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	manager := site.NewManager(site.Deps{Config: a.cfg, Admin: a.admin, Reloader: a.reloader, Logger: a.logger})
	ctx := context.Background()

	name := deleteName
	all := deleteAll
	if name == "" && !all {
		name, all, err = pickDeleteTarget(manager)
		if err != nil {
			return err
		}
	}

	if all {
		names, err := manager.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No websites to delete.")
			return nil
		}
		if !deleteYes {
			ok, err := askConfirm(fmt.Sprintf("Delete ALL %d websites?", len(names)))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("cancelled, nothing deleted")
			}
		}
		deleted, total, err := manager.DeleteAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d of %d websites.\n", deleted, total)
		manager.Reload(ctx)
		return nil
	}

	if !deleteYes {
		ok, err := askConfirm(fmt.Sprintf("Delete website %q?", name))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("cancelled, nothing deleted")
		}
	}
	if err := manager.Delete(ctx, name); err != nil {
		return err
	}
	fmt.Printf("Website %q deleted.\n", name)
	manager.Reload(ctx)
	return nil
}

// pickDeleteTarget lists the sites in a picker, with an entry for
// deleting everything.
func pickDeleteTarget(manager *site.Manager) (string, bool, error) {
	names, err := manager.List()
	if err != nil {
		return "", false, err
	}
	if len(names) == 0 {
		return "", false, fmt.Errorf("no websites to delete")
	}

	options := append([]string{deleteAllChoice}, names...)
	var choice string
	prompt := &survey.Select{
		Message: "Website to delete:",
		Options: options,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", false, err
	}
	if choice == deleteAllChoice {
		return "", true, nil
	}
	return choice, false, nil
}
