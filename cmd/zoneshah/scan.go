package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hakim/zoneshah/internal/axfr"
	"github.com/hakim/zoneshah/internal/checker"
	"github.com/hakim/zoneshah/internal/config"
	"github.com/hakim/zoneshah/internal/models"
	"github.com/hakim/zoneshah/internal/notify"
	"github.com/hakim/zoneshah/internal/report"
	"github.com/hakim/zoneshah/internal/resolver"
	"github.com/hakim/zoneshah/internal/scanner"
	"github.com/hakim/zoneshah/internal/storage"
	"github.com/spf13/cobra"
)

// notifyTimeout bounds the webhook delivery, which may run after an interrupt
const notifyTimeout = 10 * time.Second

// resetSignals restores default handling of the signals main listens for
var resetSignals = func() { signal.Reset(os.Interrupt, syscall.SIGTERM) }

var scanCmd = &cobra.Command{
	Use:   "scan [-u domain | -f file]",
	Short: "Check one domain or a list of domains for open zone transfers",
	Long: `Resolve the NS records of each domain and attempt an AXFR zone transfer
against every name server in order. A domain is vulnerable as soon as one
server hands out its zone.

Results are saved to:
  {scan_dir}/{source}_{timestamp}/raw/results.json   (structured results)
  {scan_dir}/{source}_{timestamp}/reports/report.md  (markdown report)

Examples:
  zoneshah -u example.com
  zoneshah scan -f domains.txt -v --workers 8
  zoneshah scan -u example.com --timeout 2 --no-save`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("domain", "u", "", "Single domain to scan")
	cmd.Flags().StringP("file", "f", "", "File with one domain per line")
	cmd.Flags().Float64("timeout", 0, "Per name server transfer timeout in seconds (default from config, 5)")
	cmd.Flags().Int("workers", 0, "Domains scanned concurrently (default from config, 1)")
	cmd.Flags().Bool("no-save", false, "Do not record the scan in the database or write scan files")
	cmd.Flags().Bool("no-banner", false, "Do not print the banner")
	cmd.Flags().String("report", "", "Also write the markdown report to this path")
	cmd.MarkFlagsMutuallyExclusive("domain", "file")
}

func init() {
	addScanFlags(scanCmd)
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	// Step 1: Get flags
	domain, _ := cmd.Flags().GetString("domain")
	file, _ := cmd.Flags().GetString("file")
	timeout, _ := cmd.Flags().GetFloat64("timeout")
	workers, _ := cmd.Flags().GetInt("workers")
	noSave, _ := cmd.Flags().GetBool("no-save")
	noBanner, _ := cmd.Flags().GetBool("no-banner")
	reportPath, _ := cmd.Flags().GetString("report")

	if domain == "" && file == "" {
		_ = cmd.Usage()
		return errUsage
	}

	// Step 2: Apply flag overrides to the loaded config
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}
	runCfg := *cfg
	if cmd.Flags().Changed("timeout") {
		runCfg.Transfer.TimeoutSeconds = timeout
	}
	if cmd.Flags().Changed("workers") {
		runCfg.Workers = workers
	}
	if err := runCfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	// Step 3: Load input
	source := domain
	domains := []string{domain}
	if file != "" {
		var err error
		domains, err = scanner.LoadDomainFile(file)
		if err != nil {
			return err
		}
		source = file
	}

	printer := report.NewPrinter(cmd.OutOrStdout(), verbose)
	if !noBanner {
		printer.Banner(version)
	}

	// Step 4: Build the pipeline
	s, err := newScanner(&runCfg, printer)
	if err != nil {
		return err
	}

	record := models.NewScanRecord(source)
	record.Status = models.ScanRunning

	var store *storage.Store
	if !noSave {
		store, err = storage.NewStore(runCfg.DBPath)
		if err != nil {
			printer.Warnf("opening database %s: %v", runCfg.DBPath, err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	// Step 5: Scan
	ctx := cmd.Context()
	printer.Infof("Scanning %d domain(s) from %s", len(scanner.NormalizeDomains(domains)), source)
	summary := s.Scan(ctx, domains)
	record.Summary = *summary

	final := models.ScanComplete
	if summary.Interrupted {
		final = models.ScanInterrupted
		// A second interrupt while results are written terminates the process.
		resetSignals()
	}

	// Step 6: Persist and write artifacts (non-fatal)
	if !noSave {
		writeScanArtifacts(printer, record, runCfg.ScanDir)
	}
	if reportPath != "" {
		if err := report.WriteMarkdownReport(record, reportPath); err != nil {
			printer.Warnf("%v", err)
		} else {
			printer.Infof("Report written to %s", reportPath)
		}
	}
	if store != nil {
		if err := store.SaveScan(record); err != nil {
			printer.Warnf("saving scan: %v", err)
		} else if err := store.UpdateScanStatus(record.ID, final); err != nil {
			printer.Warnf("updating scan status: %v", err)
		}
	}
	completed := time.Now()
	record.Status = final
	record.CompletedAt = &completed

	// Step 7: Webhook notification (non-fatal)
	if runCfg.Notify.WebhookURL != "" {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		hook := &notify.Webhook{URL: runCfg.Notify.WebhookURL}
		if err := hook.SendCompletion(notifyCtx, record); err != nil {
			printer.Warnf("webhook notification failed: %v", err)
		} else if verbose {
			printer.Infof("Completion notification sent to %s", runCfg.Notify.WebhookURL)
		}
		cancel()
	}

	// Step 8: Print final summary
	printer.Summary(summary)

	if summary.Interrupted {
		return interrupted(context.Cause(ctx))
	}
	return nil
}

// newScanner wires resolver, transfer client and checker into a Scanner that
// reports progress through printer
func newScanner(c *config.Config, printer *report.Printer) (*scanner.Scanner, error) {
	res, err := resolver.New(resolver.Config{
		Servers:    c.Resolver.Servers,
		ResolvConf: c.Resolver.ResolvConf,
		Timeout:    c.ResolverTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("configuring resolver: %w", err)
	}

	client := axfr.NewClient(c.Transfer.Port, c.TransferTimeout())
	p := checker.New(client, checker.Options{
		Timeout:        c.TransferTimeout(),
		OnAttemptStart: printer.AttemptStart,
		OnAttemptDone:  printer.AttemptDone,
	})

	return scanner.New(res, p, scanner.Config{
		Workers:       c.Workers,
		OnDomainStart: printer.DomainStart,
		OnResult:      printer.Domain,
	}), nil
}

// writeScanArtifacts creates the scan directory and writes the raw results
// and the markdown report into it
func writeScanArtifacts(printer *report.Printer, record *models.ScanRecord, baseDir string) {
	layout, err := storage.CreateScanDir(baseDir, record.Source, record.StartedAt)
	if err != nil {
		printer.Warnf("creating scan directory: %v", err)
		return
	}
	record.ScanDir = layout.Dir

	if err := layout.WriteResults(&record.Summary); err != nil {
		printer.Warnf("%v", err)
	}

	if err := report.WriteMarkdownReport(record, layout.ReportPath()); err != nil {
		printer.Warnf("%v", err)
		return
	}
	if verbose {
		printer.Infof("Report written to %s", layout.ReportPath())
	}
}
