package bulk

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"
)

var reportColumns = []string{
	"website_name", "restore_method", "source_path", "db_path",
	"status", "error_message", "missing_requirements",
}

// WriteReport exports batch results next to the manifest, under a
// logs directory, one timestamped file per run. The file starts with
// a UTF-8 BOM so spreadsheet tools pick the right encoding.
func WriteReport(manifestPath string, results []Result) (string, error) {
	logDir := filepath.Join(filepath.Dir(manifestPath), "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("bulk_restore_results_%s.csv", time.Now().Format("20060102_150405"))
	path := filepath.Join(logDir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", err
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(reportColumns); err != nil {
		return "", err
	}
	for _, result := range results {
		record := []string{
			result.WebsiteName,
			result.Method,
			result.SourcePath,
			result.DBPath,
			result.Status,
			result.ErrorMessage,
			strings.Join(result.MissingRequirements, ", "),
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return path, nil
}

// PrintSummary writes the batch outcome, with one line per failed
// site.
func PrintSummary(out io.Writer, results []Result) {
	var failed []Result
	for _, result := range results {
		if !result.Succeeded() {
			failed = append(failed, result)
		}
	}

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "\nTotal sites:\t%d\n", len(results))
	fmt.Fprintf(w, "Succeeded:\t%d\n", len(results)-len(failed))
	fmt.Fprintf(w, "Failed:\t%d\n", len(failed))
	if len(failed) > 0 {
		fmt.Fprintln(w, "\nSITE\tERROR\tMISSING")
		for _, result := range failed {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				result.WebsiteName, result.ErrorMessage, strings.Join(result.MissingRequirements, ", "))
		}
	}
	w.Flush()
}
