package bulk

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var requiredColumns = []string{"website_name", "source_path", "restore_method"}

// Row is one manifest entry. Admin fields left empty fall back to the
// configured defaults.
type Row struct {
	WebsiteName   string
	SourcePath    string
	Method        string
	DBPath        string
	AdminUser     string
	AdminPassword string
	AdminEmail    string
	SSL           bool
}

// LoadManifest reads and validates a restore manifest. Exports from
// spreadsheet tools arrive in several encodings, so the content is
// decoded before parsing.
func LoadManifest(path string) ([]Row, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return nil, fmt.Errorf("manifest %s is not a .csv file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	content, err := decodeManifest(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	// Spreadsheet exports leave short rows behind; missing cells read
	// as empty instead of failing the whole manifest.
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("manifest %s is empty", path)
	}

	columns := make(map[string]int, len(records[0]))
	for idx, name := range records[0] {
		columns[strings.TrimSpace(name)] = idx
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("manifest %s is missing required columns: %s", path, strings.Join(missing, ", "))
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, Row{
			WebsiteName:   field(record, "website_name"),
			SourcePath:    field(record, "source_path"),
			Method:        strings.ToLower(field(record, "restore_method")),
			DBPath:        field(record, "db_path"),
			AdminUser:     field(record, "admin_username"),
			AdminPassword: field(record, "admin_password"),
			AdminEmail:    field(record, "admin_email"),
			SSL:           truthy(field(record, "ssl")),
		})
	}
	return rows, nil
}

// decodeManifest normalizes manifest bytes to UTF-8. BOMs win, then
// valid UTF-8 passes through, and anything left is treated as the
// Windows Vietnamese code page.
func decodeManifest(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:]), nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("failed to decode UTF-16 manifest: %w", err)
		}
		return string(decoded), nil
	case utf8.Valid(data):
		return string(data), nil
	default:
		decoded, err := charmap.Windows1258.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("failed to decode manifest: %w", err)
		}
		return string(decoded), nil
	}
}

func truthy(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	}
	return false
}
