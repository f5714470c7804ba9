package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseSelection(t *testing.T) {
	c := Default()

	tests := []struct {
		name    string
		choices string
		wantIDs []string
	}{
		{"comma separated", "2,3", []string{"all-in-one-wp-migration", "all-in-one-wp-migration-unlimited-extension"}},
		{"space separated", "1 2", []string{"wordfence", "all-in-one-wp-migration"}},
		{"mixed separators", "1, 3", []string{"wordfence", "all-in-one-wp-migration-unlimited-extension"}},
		{"unknown indices skipped", "1,99,0", []string{"wordfence"}},
		{"empty", "", nil},
		{"garbage skipped", "a,b", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selection := c.ParseSelection(tt.choices)
			if len(selection) != len(tt.wantIDs) {
				t.Fatalf("expected %d plugins, got %d: %v", len(tt.wantIDs), len(selection), selection)
			}
			for _, id := range tt.wantIDs {
				if _, ok := selection[id]; !ok {
					t.Errorf("expected plugin %q in selection", id)
				}
			}
		})
	}
}

func TestSelectByID(t *testing.T) {
	c := Default()

	selection, err := c.SelectByID("all-in-one-wp-migration", "all-in-one-wp-migration-unlimited-extension")
	if err != nil {
		t.Fatalf("select by id: %v", err)
	}
	if len(selection) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(selection))
	}

	if _, err := c.SelectByID("no-such-plugin"); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `plugins:
  - id: seo-pack
    name: SEO Pack
    file_name: seo-pack.zip
    url: https://example.test/seo-pack.zip
themes:
  - id: storefront
    name: Storefront
    file_name: storefront.zip
    url: https://example.test/storefront.zip
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Plugins) != 1 || c.Plugins[0].ID != "seo-pack" {
		t.Errorf("unexpected plugins: %+v", c.Plugins)
	}
	theme, ok := c.PrimaryTheme()
	if !ok || theme.ID != "storefront" {
		t.Errorf("unexpected primary theme: %+v", theme)
	}
}

func TestLoadRejectsIncompleteAsset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte("plugins:\n  - id: broken\n"), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if len(c.Plugins) == 0 || len(c.Themes) == 0 {
		t.Fatalf("default catalog must not be empty")
	}
}

func TestSelectionFromNames(t *testing.T) {
	c := Default()
	selection := c.SelectionFromNames([]string{"Wordfence Security", "Nope"})
	if len(selection) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(selection))
	}
	if _, ok := selection["wordfence"]; !ok {
		t.Errorf("expected wordfence in selection")
	}
}
