package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/hakim/zoneshah/internal/models"
)

var unsafeTargetChars = regexp.MustCompile(`[^a-zA-Z0-9.\-]+`)

// ScanLayout names the files inside one scan directory:
//
//	{dir}/raw/results.json    scan summary
//	{dir}/raw/diff.json       last diff against an earlier scan
//	{dir}/reports/report.md   markdown scan report
//	{dir}/reports/diff.md     markdown diff report
type ScanLayout struct {
	Dir string
}

func (l ScanLayout) ResultsPath() string    { return filepath.Join(l.Dir, "raw", "results.json") }
func (l ScanLayout) DiffJSONPath() string   { return filepath.Join(l.Dir, "raw", "diff.json") }
func (l ScanLayout) ReportPath() string     { return filepath.Join(l.Dir, "reports", "report.md") }
func (l ScanLayout) DiffReportPath() string { return filepath.Join(l.Dir, "reports", "diff.md") }

// WriteResults stores the summary as indented JSON at ResultsPath
func (l ScanLayout) WriteResults(summary *models.ScanSummary) error {
	return WriteJSON(l.ResultsPath(), summary)
}

// WriteJSON writes v as indented JSON to path
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// SanitizeTarget replaces characters unsafe for filesystem paths
// Allows alphanumeric, dots, and hyphens. Replaces everything else with underscore.
func SanitizeTarget(target string) string {
	return unsafeTargetChars.ReplaceAllString(target, "_")
}

// ScanDirPath names the directory of a scan started from source, which is a
// single domain or the path of a domain list.
// Format: {baseDir}/{source base name}_{YYYYMMDD}_{HHMMSS}
func ScanDirPath(baseDir string, source string, startedAt time.Time) string {
	sanitized := SanitizeTarget(filepath.Base(source))
	timestamp := startedAt.Format("20060102_150405")
	return filepath.Join(baseDir, fmt.Sprintf("%s_%s", sanitized, timestamp))
}

// CreateScanDir creates the scan directory with its raw and reports subdirectories
func CreateScanDir(baseDir string, source string, startedAt time.Time) (ScanLayout, error) {
	layout := ScanLayout{Dir: ScanDirPath(baseDir, source, startedAt)}

	for _, dir := range []string{layout.Dir, filepath.Join(layout.Dir, "reports"), filepath.Join(layout.Dir, "raw")} {
		if err := EnsureDir(dir); err != nil {
			return ScanLayout{}, err
		}
	}

	return layout, nil
}

// EnsureDir creates a directory and all parent directories if they don't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
