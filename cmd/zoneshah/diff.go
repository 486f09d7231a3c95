package main

import (
	"errors"
	"fmt"

	"github.com/hakim/zoneshah/internal/diff"
	"github.com/hakim/zoneshah/internal/models"
	"github.com/hakim/zoneshah/internal/report"
	"github.com/hakim/zoneshah/internal/resolver"
	"github.com/hakim/zoneshah/internal/storage"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare two scans and report what changed",
	Long: `Compare zone transfer exposure between two recorded scans.

With --domain the two most recent scans covering that domain are compared,
restricted to that domain. With --old and --new two scans are compared in
full by ID.

When the newer scan has a scan directory, results are also saved to:
  - {scan_dir}/reports/diff.md   (markdown change report)
  - {scan_dir}/raw/diff.json     (structured diff JSON)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Step 1: Get flags
		domain, _ := cmd.Flags().GetString("domain")
		oldID, _ := cmd.Flags().GetString("old")
		newID, _ := cmd.Flags().GetString("new")
		out := cmd.OutOrStdout()

		if domain == "" && (oldID == "" || newID == "") {
			return errors.New("either --domain or both --old and --new are required")
		}

		// Step 2: Open bbolt store
		store, err := storage.NewStore(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer store.Close()

		// Step 3: Pick the two scans
		var previous, current *models.ScanRecord
		if domain != "" {
			domain = resolver.NormalizeName(domain)
			scans, err := store.GetLatestScans(domain, 2)
			if err != nil {
				return fmt.Errorf("looking up scan history: %w", err)
			}
			if len(scans) < 2 {
				fmt.Fprintf(out, "[!] No previous scan found for comparison\n")
				return nil
			}
			current, previous = scans[0], scans[1]
		} else {
			if previous, err = loadScan(store, oldID); err != nil {
				return err
			}
			if current, err = loadScan(store, newID); err != nil {
				return err
			}
		}

		fmt.Fprintf(out, "[*] Current scan:  %s (%s)\n", current.ID, current.StartedAt.UTC().Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "[*] Previous scan: %s (%s)\n", previous.ID, previous.StartedAt.UTC().Format("2006-01-02 15:04"))

		// Step 4: Compute diff
		currentSummary, previousSummary := &current.Summary, &previous.Summary
		if domain != "" {
			currentSummary, previousSummary = currentSummary.Subset(domain), previousSummary.Subset(domain)
		}
		result := diff.ComputeDiff(currentSummary, previousSummary)

		// Step 5: Write diff artifacts next to the newer scan
		if current.ScanDir != "" {
			writeDiffArtifacts(cmd, result, storage.ScanLayout{Dir: current.ScanDir})
		}

		// Step 6: Print summary
		fmt.Fprintln(out)
		fmt.Fprintf(out, "[+] Diff complete!\n")
		fmt.Fprintf(out, "    Vulnerable: %d -> %d\n", result.PreviousVulnerableCount, result.CurrentVulnerableCount)
		fmt.Fprintf(out, "    Newly vulnerable: %d, remediated: %d, still vulnerable: %d\n",
			len(result.NewlyVulnerable), len(result.Remediated), len(result.StillVulnerable))
		for _, r := range result.NewlyVulnerable {
			fmt.Fprintf(out, "    [+] %s now leaks its zone via %s\n", r.Domain, r.SuccessfulServer)
		}
		for _, r := range result.Remediated {
			fmt.Fprintf(out, "    [-] %s no longer leaks its zone\n", r.Domain)
		}

		return nil
	},
}

func loadScan(store *storage.Store, id string) (*models.ScanRecord, error) {
	record, err := store.GetScan(id)
	if err != nil {
		return nil, fmt.Errorf("loading scan %s: %w", id, err)
	}
	if record == nil {
		return nil, fmt.Errorf("scan %s not found", id)
	}
	return record, nil
}

// writeDiffArtifacts writes the markdown and JSON diff into the scan
// directory. Failures are warnings.
func writeDiffArtifacts(cmd *cobra.Command, result *diff.DiffResult, layout storage.ScanLayout) {
	out := cmd.OutOrStdout()

	if err := report.WriteDiffReport(result, layout.DiffReportPath()); err != nil {
		fmt.Fprintf(out, "[!] Warning: failed to write diff report: %v\n", err)
	} else {
		fmt.Fprintf(out, "[+] Diff report written to %s\n", layout.DiffReportPath())
	}

	if err := storage.WriteJSON(layout.DiffJSONPath(), result); err != nil {
		fmt.Fprintf(out, "[!] Warning: failed to write diff.json: %v\n", err)
		return
	}
	fmt.Fprintf(out, "[+] Diff JSON written to %s\n", layout.DiffJSONPath())
}

func init() {
	diffCmd.Flags().StringP("domain", "d", "", "Compare the two latest scans covering this domain")
	diffCmd.Flags().String("old", "", "ID of the earlier scan")
	diffCmd.Flags().String("new", "", "ID of the later scan")
	rootCmd.AddCommand(diffCmd)
}
