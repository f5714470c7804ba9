package bulk

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "sites.csv")
	results := []Result{
		{WebsiteName: "ok-site", Method: "ai1", SourcePath: "/b/a.wpress", Status: "Success"},
		{
			WebsiteName:         "bad-site",
			Method:              "wpcontent",
			SourcePath:          "/b/wp-content",
			Status:              "Failed",
			ErrorMessage:        "database dump path missing",
			MissingRequirements: []string{"db_path"},
		},
	}

	path, err := WriteReport(manifest, results)
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(dir, "logs") {
		t.Errorf("report written to %s, want logs dir", path)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "bulk_restore_results_") || !strings.HasSuffix(base, ".csv") {
		t.Errorf("report name = %q", base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("report missing UTF-8 BOM")
	}

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	if err != nil {
		t.Fatalf("report does not parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header plus 2", len(records))
	}
	if records[0][0] != "website_name" || records[0][6] != "missing_requirements" {
		t.Errorf("header = %v", records[0])
	}
	if records[2][4] != "Failed" || records[2][6] != "db_path" {
		t.Errorf("failed row = %v", records[2])
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, []Result{
		{WebsiteName: "a", Status: "Success"},
		{WebsiteName: "b", Status: "Failed", ErrorMessage: "boom"},
		{WebsiteName: "c", Status: "Failed", ErrorMessage: "no dump", MissingRequirements: []string{"db_path"}},
	})
	out := buf.String()
	for _, want := range []string{"Total sites:", "3", "Succeeded:", "Failed:", "b", "boom", "db_path"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestResultSucceeded(t *testing.T) {
	if !(Result{Status: "Success"}).Succeeded() {
		t.Error("Success must report succeeded")
	}
	if (Result{Status: "Failed"}).Succeeded() {
		t.Error("Failed must not report succeeded")
	}
}
