package installer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"wpforge-cli/internal/catalog"
)

const (
	wordfenceHelperURL  = "https://assets.wpforge.test/wordfence-activator.php"
	wordfenceHelperName = "wordfence-activator.php"
)

// defaultPlugins and defaultThemes ship with WordPress core and are
// removed from every new site.
var (
	defaultPlugins = []string{"hello", "akismet"}
	defaultThemes  = []string{"twentytwentythree", "twentytwentyfour", "twentytwentyfive"}
)

// InstallThemes removes the bundled default themes and, when
// installPrimary is set, unpacks and activates the catalog's primary
// theme. During restores the primary theme is skipped because the
// imported content brings its own.
func (i *Installer) InstallThemes(ctx context.Context, installPrimary bool) error {
	if installPrimary {
		theme, ok := i.catalog.PrimaryTheme()
		if ok {
			path, err := i.ensureCached(ctx, theme.URL, theme.FileName)
			if err != nil {
				return fmt.Errorf("failed to fetch theme %s: %w", theme.ID, err)
			}
			themesDir := filepath.Join(i.site.Path, "wp-content", "themes")
			if err := i.transfer.Extract(path, themesDir); err != nil {
				return fmt.Errorf("failed to unpack theme %s: %w", theme.ID, err)
			}
			if err := i.wpChecked(ctx, "theme activate "+theme.ID); err != nil {
				return err
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range defaultThemes {
		g.Go(func() error { return i.wpSoft(gctx, "theme delete "+name) })
	}
	return g.Wait()
}

// InstallPlugins removes the bundled default plugins and installs the
// selected catalog plugins from the shared cache. A wordfence
// selection additionally drops the license helper into mu-plugins.
func (i *Installer) InstallPlugins(ctx context.Context, selection catalog.Selection) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range defaultPlugins {
		g.Go(func() error { return i.wpSoft(gctx, "plugin delete "+name) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(selection) == 0 {
		return nil
	}

	pluginsDir := filepath.Join(i.site.Path, "wp-content", "plugins")
	g, gctx = errgroup.WithContext(ctx)
	for _, asset := range selection {
		g.Go(func() error {
			path, err := i.ensureCached(gctx, asset.URL, asset.FileName)
			if err != nil {
				return fmt.Errorf("failed to fetch plugin %s: %w", asset.ID, err)
			}
			if err := i.transfer.Extract(path, pluginsDir); err != nil {
				return fmt.Errorf("failed to unpack plugin %s: %w", asset.ID, err)
			}
			return nil
		})
		if strings.Contains(asset.ID, "wordfence") {
			g.Go(func() error { return i.installWordfenceHelper(gctx) })
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return i.wpChecked(ctx, "plugin activate --all")
}

// installWordfenceHelper places the license activation drop-in under
// mu-plugins so wordfence starts licensed.
func (i *Installer) installWordfenceHelper(ctx context.Context) error {
	path, err := i.ensureCached(ctx, wordfenceHelperURL, wordfenceHelperName)
	if err != nil {
		return fmt.Errorf("failed to fetch wordfence helper: %w", err)
	}
	muDir := filepath.Join(i.site.Path, "wp-content", "mu-plugins")
	if _, _, err := i.transfer.Copy(path, muDir); err != nil {
		return fmt.Errorf("failed to place wordfence helper: %w", err)
	}
	return nil
}

// InstallLanguages installs and activates the configured site
// language. Failures are logged, not fatal: a missing language pack
// leaves the site on the default locale.
func (i *Installer) InstallLanguages(ctx context.Context) error {
	lang := i.inputs.Language
	if lang == "" || lang == "en_US" {
		return nil
	}
	if err := i.wpSoft(ctx, "language core install "+lang); err != nil {
		return err
	}
	return i.wpSoft(ctx, "language core activate "+lang)
}

// siteOptions are the house defaults applied to new sites.
var siteOptions = []string{
	`option update blog_public 0`,
	`option update timezone_string "Asia/Ho_Chi_Minh"`,
	`option update permalink_structure "/%postname%/"`,
	`option update default_comment_status closed`,
	`option update default_ping_status closed`,
}

// InstallOptions applies the house option defaults, then flushes the
// rewrite rules so the permalink structure takes effect.
func (i *Installer) InstallOptions(ctx context.Context) error {
	if !i.inputs.ApplyOptions {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, opt := range siteOptions {
		g.Go(func() error { return i.wpSoft(gctx, opt) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return i.wpSoft(ctx, "rewrite flush --hard")
}
