package cmd

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"wpforge-cli/internal/catalog"
	"wpforge-cli/internal/config"
	"wpforge-cli/internal/database"
	"wpforge-cli/internal/execute"
	"wpforge-cli/internal/installer"
	"wpforge-cli/internal/restore"
	"wpforge-cli/internal/transfer"
	"wpforge-cli/internal/webserver"
)

// app is the dependency graph shared by every command. Each command
// builds it once from the resolved configuration.
type app struct {
	cfg      *config.Config
	runner   *execute.Runner
	admin    *database.Admin
	transfer *transfer.Transfer
	catalog  *catalog.Catalog
	reloader *webserver.Reloader
	logger   *logrus.Entry
}

func newApp() (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger := logrus.NewEntry(logrus.StandardLogger())

	runner := execute.NewRunner(execute.RunnerConfig{
		MySQL:   cfg.MySQL,
		Timeout: cfg.CommandTimeout,
		Logger:  logger,
	})
	admin, err := database.NewAdmin(database.AdminConfig{MySQL: cfg.MySQL, Logger: logger})
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		admin.Close()
		return nil, err
	}
	return &app{
		cfg:      cfg,
		runner:   runner,
		admin:    admin,
		transfer: transfer.New(transfer.Config{DownloadTimeout: cfg.DownloadTimeout, Logger: logger}),
		catalog:  cat,
		reloader: webserver.New(runner, cfg.ReloadCommand, logger),
		logger:   logger,
	}, nil
}

func (a *app) Close() {
	a.admin.Close()
}

func (a *app) installerDeps() installer.Deps {
	return installer.Deps{
		Config:   a.cfg,
		Runner:   a.runner,
		Admin:    a.admin,
		Transfer: a.transfer,
		Catalog:  a.catalog,
		Reloader: a.reloader,
		Logger:   a.logger,
	}
}

func (a *app) restoreDeps() restore.Deps {
	return restore.Deps{
		Config:   a.cfg,
		Runner:   a.runner,
		Admin:    a.admin,
		Transfer: a.transfer,
		Catalog:  a.catalog,
		Reloader: a.reloader,
		Logger:   a.logger,
		Confirm:  askConfirm,
	}
}

// askConfirm asks a yes/no question on the terminal.
func askConfirm(prompt string) (bool, error) {
	var answer bool
	err := survey.AskOne(&survey.Confirm{Message: prompt}, &answer)
	return answer, err
}
