package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Asset describes one downloadable plugin or theme archive.
type Asset struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	FileName string `yaml:"file_name"`
	URL      string `yaml:"url"`
}

// Catalog is the read-only descriptor of installable plugins and
// themes. It is loaded once at startup and injected where needed.
type Catalog struct {
	Plugins []Asset `yaml:"plugins"`
	Themes  []Asset `yaml:"themes"`
}

// Selection maps plugin id to its asset, built per install run.
type Selection map[string]Asset

// Default returns the built-in catalog used when no descriptor file is
// configured.
func Default() *Catalog {
	return &Catalog{
		Plugins: []Asset{
			{
				ID:       "wordfence",
				Name:     "Wordfence Security",
				FileName: "wordfence.zip",
				URL:      "https://downloads.wordpress.org/plugin/wordfence.zip",
			},
			{
				ID:       "all-in-one-wp-migration",
				Name:     "All-in-One WP Migration",
				FileName: "all-in-one-wp-migration.zip",
				URL:      "https://downloads.wordpress.org/plugin/all-in-one-wp-migration.zip",
			},
			{
				ID:       "all-in-one-wp-migration-unlimited-extension",
				Name:     "All-in-One WP Migration Unlimited Extension",
				FileName: "all-in-one-wp-migration-unlimited-extension.zip",
				URL:      "https://assets.wpforge.test/all-in-one-wp-migration-unlimited-extension.zip",
			},
			{
				ID:       "duplicator-pro",
				Name:     "Duplicator Pro",
				FileName: "duplicator-pro.zip",
				URL:      "https://assets.wpforge.test/duplicator-pro.zip",
			},
		},
		Themes: []Asset{
			{
				ID:       "flatsome",
				Name:     "Flatsome",
				FileName: "flatsome.zip",
				URL:      "https://assets.wpforge.test/flatsome.zip",
			},
		},
	}
}

// Load reads a catalog descriptor file. An empty path selects the
// built-in default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

// Validate checks that every asset is complete.
func (c *Catalog) Validate() error {
	for i, p := range c.Plugins {
		if p.ID == "" || p.FileName == "" || p.URL == "" {
			return fmt.Errorf("plugin[%d]: id, file_name and url are required", i)
		}
	}
	for i, th := range c.Themes {
		if th.ID == "" || th.FileName == "" || th.URL == "" {
			return fmt.Errorf("theme[%d]: id, file_name and url are required", i)
		}
	}
	return nil
}

// PrimaryTheme returns the catalog's first theme, if any.
func (c *Catalog) PrimaryTheme() (Asset, bool) {
	if len(c.Themes) == 0 {
		return Asset{}, false
	}
	return c.Themes[0], true
}

// ParseSelection resolves a delimiter-tolerant list of 1-based indices
// ("1,2,3" or "1 2 3") against the plugin list. Unknown indices are
// silently skipped.
func (c *Catalog) ParseSelection(choices string) Selection {
	selection := make(Selection)

	normalized := strings.ReplaceAll(choices, " ", ",")
	for _, token := range strings.Split(normalized, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		for index, plugin := range c.Plugins {
			if fmt.Sprintf("%d", index+1) == token {
				selection[plugin.ID] = plugin
				break
			}
		}
	}
	return selection
}

// SelectByID builds a selection from explicit plugin ids. Missing ids
// produce an error: callers asking by id expect the asset to exist.
func (c *Catalog) SelectByID(ids ...string) (Selection, error) {
	selection := make(Selection)
	for _, id := range ids {
		found := false
		for _, plugin := range c.Plugins {
			if plugin.ID == id {
				selection[id] = plugin
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("plugin %q is not in the catalog", id)
		}
	}
	return selection, nil
}

// PluginNames lists catalog plugin display names in order, for
// interactive selection.
func (c *Catalog) PluginNames() []string {
	names := make([]string, 0, len(c.Plugins))
	for _, p := range c.Plugins {
		names = append(names, p.Name)
	}
	return names
}

// SelectionFromNames resolves display names (as returned by
// PluginNames) or plugin ids back to a Selection.
func (c *Catalog) SelectionFromNames(names []string) Selection {
	selection := make(Selection)
	for _, name := range names {
		for _, p := range c.Plugins {
			if p.Name == name || p.ID == name {
				selection[p.ID] = p
				break
			}
		}
	}
	return selection
}
