package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/hakim/zoneshah/internal/diff"
	"github.com/hakim/zoneshah/internal/models"
)

// WriteDiffReport generates a markdown report capturing the delta between two
// scans and writes it to outputPath.
func WriteDiffReport(result *diff.DiffResult, outputPath string) error {
	return writeFile(outputPath, RenderDiff(result, time.Now()))
}

// RenderDiff renders the diff report; now stamps the header
func RenderDiff(result *diff.DiffResult, now time.Time) string {
	var b strings.Builder

	b.WriteString("# Zone Transfer Diff Report\n\n")
	b.WriteString(fmt.Sprintf("**Date:** %s\n\n", now.UTC().Format("2006-01-02 15:04:05 UTC")))

	if !result.HasChanges() && len(result.AddedDomains) == 0 && len(result.RemovedDomains) == 0 {
		b.WriteString("No changes detected.\n")
		return b.String()
	}

	b.WriteString("## Summary\n\n")
	b.WriteString("| Category | Previous | Current | Change |\n")
	b.WriteString("|----------|----------|---------|--------|\n")
	b.WriteString(fmt.Sprintf("| Vulnerable domains | %d | %d | %s |\n\n",
		result.PreviousVulnerableCount, result.CurrentVulnerableCount,
		formatChange(len(result.NewlyVulnerable), len(result.Remediated))))

	writeResultList(&b, fmt.Sprintf("Newly Vulnerable (+%d)", len(result.NewlyVulnerable)), result.NewlyVulnerable, func(r models.DomainScanResult) string {
		return fmt.Sprintf("- %s via %s (%d records)\n", r.Domain, r.SuccessfulServer, r.RecordCount)
	})
	writeResultList(&b, fmt.Sprintf("Remediated (-%d)", len(result.Remediated)), result.Remediated, func(r models.DomainScanResult) string {
		return fmt.Sprintf("- %s (was vulnerable, now refuses transfer)\n", r.Domain)
	})
	writeResultList(&b, fmt.Sprintf("Still Vulnerable (%d)", len(result.StillVulnerable)), result.StillVulnerable, func(r models.DomainScanResult) string {
		return fmt.Sprintf("- %s via %s\n", r.Domain, r.SuccessfulServer)
	})

	if len(result.ChangedServer) > 0 {
		b.WriteString(fmt.Sprintf("## Leaking Server Changed (%d)\n\n", len(result.ChangedServer)))
		b.WriteString("| Domain | Previous NS | Current NS |\n")
		b.WriteString("|--------|-------------|------------|\n")
		for _, c := range result.ChangedServer {
			b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", c.Domain, c.PreviousServer, c.CurrentServer))
		}
		b.WriteString("\n")
	}

	writeNameList(&b, fmt.Sprintf("Added Domains (+%d)", len(result.AddedDomains)), result.AddedDomains)
	writeNameList(&b, fmt.Sprintf("Removed Domains (-%d)", len(result.RemovedDomains)), result.RemovedDomains)

	return b.String()
}

// writeResultList renders one section per category. Skipped when empty.
func writeResultList(b *strings.Builder, title string, results []models.DomainScanResult, line func(models.DomainScanResult) string) {
	if len(results) == 0 {
		return
	}
	b.WriteString("## " + title + "\n\n")
	for _, r := range results {
		b.WriteString(line(r))
	}
	b.WriteString("\n")
}

func writeNameList(b *strings.Builder, title string, names []string) {
	if len(names) == 0 {
		return
	}
	b.WriteString("## " + title + "\n\n")
	for _, n := range names {
		b.WriteString("- " + n + "\n")
	}
	b.WriteString("\n")
}

// formatChange returns a human-readable change string such as "+3 / -1".
// When there are no additions and no removals it returns "none".
func formatChange(added, removed int) string {
	if added == 0 && removed == 0 {
		return "none"
	}
	parts := make([]string, 0, 2)
	if added > 0 {
		parts = append(parts, fmt.Sprintf("+%d", added))
	}
	if removed > 0 {
		parts = append(parts, fmt.Sprintf("-%d", removed))
	}
	return strings.Join(parts, " / ")
}
