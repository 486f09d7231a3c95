package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hakim/zoneshah/internal/models"
)

// WriteMarkdownReport generates a markdown report for a scan and writes it
// to the specified output path.
func WriteMarkdownReport(record *models.ScanRecord, outputPath string) error {
	return writeFile(outputPath, RenderMarkdown(record))
}

// RenderMarkdown renders the markdown report for a scan
func RenderMarkdown(record *models.ScanRecord) string {
	summary := &record.Summary
	var b strings.Builder

	b.WriteString("# Zone Transfer Report\n\n")
	b.WriteString(fmt.Sprintf("**Source:** %s\n", record.Source))
	b.WriteString(fmt.Sprintf("**Scan ID:** %s\n", record.ID))
	b.WriteString(fmt.Sprintf("**Date:** %s\n", record.StartedAt.UTC().Format("2006-01-02 15:04:05 UTC")))
	b.WriteString(fmt.Sprintf("**Domains scanned:** %d | **Vulnerable:** %d | **Elapsed:** %s\n\n",
		len(summary.Results), summary.VulnerableCount(), summary.Elapsed.Round(time.Millisecond)))

	if summary.Interrupted {
		b.WriteString("> Scan was interrupted; only completed domains are listed.\n\n")
	}

	b.WriteString("## Vulnerable Domains\n\n")
	vulnerable := summary.Vulnerable()
	if len(vulnerable) > 0 {
		b.WriteString("| Domain | Leaking NS | Records | Failed Before |\n")
		b.WriteString("|--------|------------|---------|---------------|\n")
		for _, r := range vulnerable {
			b.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n",
				r.Domain, r.SuccessfulServer, r.RecordCount, dashIfEmpty(strings.Join(r.FailedServers(), ", "))))
		}
	} else {
		b.WriteString("None found.\n")
	}
	b.WriteString("\n")

	b.WriteString("## Protected Domains\n\n")
	var rows []string
	for _, r := range summary.Results {
		if r.Vulnerable || len(r.FailedAttempts) == 0 {
			continue
		}
		for _, a := range r.FailedAttempts {
			rows = append(rows, fmt.Sprintf("| %s | %s | %s | %s |\n",
				r.Domain, a.NameServer, a.Status, dashIfEmpty(escapePipes(a.Detail))))
		}
	}
	if len(rows) > 0 {
		b.WriteString("| Domain | NS | Status | Detail |\n")
		b.WriteString("|--------|----|--------|--------|\n")
		for _, row := range rows {
			b.WriteString(row)
		}
	} else {
		b.WriteString("None found.\n")
	}
	b.WriteString("\n")

	b.WriteString("## Unresolved Domains (No NS Records)\n\n")
	var unresolved []models.DomainScanResult
	for _, r := range summary.Results {
		if len(r.NameServers) == 0 {
			unresolved = append(unresolved, r)
		}
	}
	if len(unresolved) > 0 {
		b.WriteString("| Domain | Reason |\n")
		b.WriteString("|--------|--------|\n")
		for _, r := range unresolved {
			b.WriteString(fmt.Sprintf("| %s | %s |\n", r.Domain, dashIfEmpty(escapePipes(r.ResolutionError))))
		}
	} else {
		b.WriteString("None found.\n")
	}
	b.WriteString("\n")

	return b.String()
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing report to %s: %w", path, err)
	}
	return nil
}
