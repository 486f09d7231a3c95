package main

import (
	"fmt"

	"github.com/hakim/zoneshah/internal/models"
	"github.com/hakim/zoneshah/internal/resolver"
	"github.com/hakim/zoneshah/internal/storage"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show scan history for a domain",
	Long: `Display a formatted table of past scans that covered a domain.

Scans are listed newest-first. Each row shows the scan ID (truncated), start
time, scan status, and the domain's result in that scan.

Use --limit to cap the number of rows shown (default: 10).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Step 1: Get flags
		domain, _ := cmd.Flags().GetString("domain")
		domain = resolver.NormalizeName(domain)
		limit, _ := cmd.Flags().GetInt("limit")
		out := cmd.OutOrStdout()

		// Step 2: Open bbolt store
		store, err := storage.NewStore(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer store.Close()

		// Step 3: List scans (sorted newest-first by store.ListScans)
		scans, err := store.ListScans(domain)
		if err != nil {
			return fmt.Errorf("listing scans for %s: %w", domain, err)
		}

		if len(scans) == 0 {
			fmt.Fprintf(out, "No scan history found for %s\n", domain)
			return nil
		}

		// Step 4: Apply limit
		if limit > 0 && len(scans) > limit {
			scans = scans[:limit]
		}

		// Step 5: Print formatted table
		const separator = "────────────────────────────────────────────────────────────────────────"

		fmt.Fprintf(out, "\nScan History for %s\n", domain)
		fmt.Fprintln(out, separator)
		fmt.Fprintf(out, "  %-3s  %-12s  %-20s  %-12s  %s\n", "#", "Scan ID", "Started", "Status", "Result")
		fmt.Fprintln(out, separator)

		for i, scan := range scans {
			fmt.Fprintf(out, "  %-3d  %-12s  %-20s  %-12s  %s\n",
				i+1,
				shortScanID(scan.ID),
				scan.StartedAt.UTC().Format("2006-01-02 15:04"),
				scan.Status,
				domainOutcome(scan.Summary.Find(domain)))
		}

		fmt.Fprintln(out, separator)
		fmt.Fprintf(out, "Total: %d scan(s)\n\n", len(scans))

		return nil
	},
}

// shortScanID returns the first 8 characters of a UUID followed by "..." for
// compact table display. Falls back to the full ID when shorter than 8 chars.
func shortScanID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

// domainOutcome summarizes a domain's result for one history row
func domainOutcome(r *models.DomainScanResult) string {
	switch {
	case r == nil:
		return "-"
	case r.Vulnerable:
		return fmt.Sprintf("VULNERABLE via %s (%d records)", r.SuccessfulServer, r.RecordCount)
	case len(r.NameServers) == 0:
		return "no NS records"
	default:
		return fmt.Sprintf("protected (%d NS)", len(r.FailedAttempts))
	}
}

func init() {
	historyCmd.Flags().StringP("domain", "d", "", "Target domain (required)")
	historyCmd.Flags().Int("limit", 10, "Maximum number of scans to display")
	historyCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(historyCmd)
}
