package bulk

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

const manifestContent = "website_name,source_path,restore_method,db_path,ssl\n" +
	"site-one,/backups/one.wpress,ai1,,true\n" +
	"site-two,/backups/two/wp-content,WPContent,/backups/two/db.sql,\n"

func writeManifest(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func checkRows(t *testing.T, rows []Row) {
	t.Helper()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].WebsiteName != "site-one" || rows[0].Method != "ai1" || !rows[0].SSL {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Method != "wpcontent" {
		t.Errorf("method not lowercased: %q", rows[1].Method)
	}
	if rows[1].DBPath != "/backups/two/db.sql" || rows[1].SSL {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestLoadManifestUTF8(t *testing.T) {
	path := writeManifest(t, "sites.csv", []byte(manifestContent))
	rows, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	checkRows(t, rows)
}

func TestLoadManifestUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(manifestContent)...)
	path := writeManifest(t, "sites.csv", data)
	rows, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	checkRows(t, rows)
}

func TestLoadManifestUTF16(t *testing.T) {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(manifestContent))
	if err != nil {
		t.Fatal(err)
	}
	path := writeManifest(t, "sites.csv", encoded)
	rows, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	checkRows(t, rows)
}

func TestLoadManifestLegacyCodePage(t *testing.T) {
	// 0xE9 is not valid UTF-8 on its own; windows-1258 maps it to é.
	data := []byte("website_name,source_path,restore_method\nsite-\xE9,/b/x.wpress,ai1\n")
	path := writeManifest(t, "sites.csv", data)
	rows, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if rows[0].WebsiteName != "site-é" {
		t.Errorf("WebsiteName = %q, want site-é", rows[0].WebsiteName)
	}
}

func TestLoadManifestMissingColumns(t *testing.T) {
	path := writeManifest(t, "sites.csv", []byte("website_name,ssl\nsite,true\n"))
	_, err := LoadManifest(path)
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	for _, col := range []string{"source_path", "restore_method"} {
		if !strings.Contains(err.Error(), col) {
			t.Errorf("error %q does not name missing column %s", err, col)
		}
	}
}

func TestLoadManifestRejectsNonCSV(t *testing.T) {
	path := writeManifest(t, "sites.xlsx", []byte(manifestContent))
	if _, err := LoadManifest(path); err == nil {
		t.Fatal("expected error for non-csv extension")
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "1", "yes", "Yes"} {
		if !truthy(v) {
			t.Errorf("truthy(%q) = false", v)
		}
	}
	for _, v := range []string{"", "false", "0", "no", "on"} {
		if truthy(v) {
			t.Errorf("truthy(%q) = true", v)
		}
	}
}
