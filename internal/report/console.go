package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/hakim/zoneshah/internal/models"
)

const banner = `
 ______                 ____  _           _
|__  / ___  _ __   ___ / ___|| |__   __ _| |__
  / / / _ \| '_ \ / _ \\___ \| '_ \ / _' | '_ \
 / /_| (_) | | | |  __/ ___) | | | | (_| | | | |
/____|\___/|_| |_|\___||____/|_| |_|\__,_|_| |_|

        Zone Transfer Scanner | %s
`

var (
	cyan      = color.New(color.FgCyan)
	cyanBold  = color.New(color.FgCyan, color.Bold)
	blue      = color.New(color.FgBlue)
	yellow    = color.New(color.FgYellow)
	yellowB   = color.New(color.FgYellow, color.Bold)
	redBold   = color.New(color.FgRed, color.Bold)
	redUnder  = color.New(color.FgRed, color.Bold, color.Underline)
	greenBold = color.New(color.FgGreen, color.Bold)
)

// Printer writes the human-readable scan report. It is safe for use by
// concurrent workers; each call writes a whole section at once.
type Printer struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

// NewPrinter creates a Printer writing to w
func NewPrinter(w io.Writer, verbose bool) *Printer {
	return &Printer{w: w, verbose: verbose}
}

// Banner prints the tool banner
func (p *Printer) Banner(version string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cyanBold.Fprintf(p.w, banner, version)
}

// DomainStart prints the verbose "scanning" line
func (p *Printer) DomainStart(domain string) {
	if !p.verbose {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	cyan.Fprintf(p.w, "[*] Scanning domain: %s\n", domain)
}

// AttemptStart prints the verbose per-server line
func (p *Printer) AttemptStart(domain, server string) {
	if !p.verbose {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	blue.Fprintf(p.w, "[*] Trying zone transfer from NS: %s for domain: %s\n", server, domain)
}

// AttemptDone prints the verbose outcome of a failed attempt
func (p *Printer) AttemptDone(domain string, attempt models.TransferAttemptResult) {
	if !p.verbose || attempt.Status == models.StatusSuccess {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	yellow.Fprintf(p.w, "[-] Zone transfer failed from NS: %s for domain: %s (%s)\n",
		attempt.NameServer, domain, describeAttempt(attempt))
}

// Domain prints the section for one finished domain
func (p *Printer) Domain(result models.DomainScanResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case result.Vulnerable:
		redBold.Fprintln(p.w, "\n[+] VULNERABLE DOMAIN FOUND:")
		fmt.Fprint(p.w, "    ")
		redUnder.Fprintln(p.w, result.Domain)
		yellow.Fprintf(p.w, "    Zone transferred from NS server: %s (%d records)\n\n",
			result.SuccessfulServer, result.RecordCount)

	case len(result.NameServers) == 0:
		yellowB.Fprintf(p.w, "[!] No NS records found for domain: %s\n", result.Domain)
		if p.verbose && result.ResolutionError != "" {
			yellow.Fprintf(p.w, "    Reason: %s\n", result.ResolutionError)
		}

	case len(result.FailedAttempts) > 0:
		yellowB.Fprintf(p.w, "[!] Zone transfer failed for domain: %s\n", result.Domain)
		yellow.Fprintf(p.w, "    Failed NS servers: %s\n\n", strings.Join(result.FailedServers(), ", "))
	}
}

// Summary prints the closing line for the scan
func (p *Printer) Summary(summary *models.ScanSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if summary.Interrupted {
		yellowB.Fprintf(p.w, "[!] Scan interrupted: %d domain(s) completed\n", len(summary.Results))
	}

	count := summary.VulnerableCount()
	if count == 0 {
		greenBold.Fprintln(p.w, "[*] No vulnerable domains found.")
		return
	}
	redBold.Fprintf(p.w, "[+] %d vulnerable domain(s) found out of %d scanned\n", count, len(summary.Results))
}

// Warnf prints a non-fatal warning
func (p *Printer) Warnf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	yellow.Fprintf(p.w, "[!] Warning: "+format+"\n", args...)
}

// Infof prints a progress line
func (p *Printer) Infof(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "[*] "+format+"\n", args...)
}

// describeAttempt renders status and detail for a failed attempt
func describeAttempt(attempt models.TransferAttemptResult) string {
	if attempt.Detail == "" {
		return string(attempt.Status)
	}
	return fmt.Sprintf("%s: %s", attempt.Status, attempt.Detail)
}
