// Package diff computes how zone transfer exposure changed between two scans.
//
// Domains are matched by name. When a domain appears more than once in a
// scan, its last occurrence wins.
package diff

import (
	"sort"

	"github.com/hakim/zoneshah/internal/models"
)

// ServerChange describes a domain whose leaking name server changed between
// two scans while the domain stayed vulnerable.
type ServerChange struct {
	Domain         string
	PreviousServer string
	CurrentServer  string
}

// DiffResult holds the delta between a current and a previous scan. All
// slice fields are non-nil so callers can range over them unconditionally.
type DiffResult struct {
	NewlyVulnerable []models.DomainScanResult // vulnerable now, not vulnerable (or absent) before
	StillVulnerable []models.DomainScanResult // vulnerable in both scans
	Remediated      []models.DomainScanResult // vulnerable before, scanned now and not vulnerable
	ChangedServer   []ServerChange
	AddedDomains    []string // scanned now, absent before
	RemovedDomains  []string // scanned before, absent now

	CurrentVulnerableCount  int
	PreviousVulnerableCount int
}

// HasChanges reports whether the vulnerability state of any domain moved
func (d *DiffResult) HasChanges() bool {
	return len(d.NewlyVulnerable) > 0 || len(d.Remediated) > 0 || len(d.ChangedServer) > 0
}

// ComputeDiff calculates the delta between current and previous summaries.
// Both arguments must be non-nil; pass an empty ScanSummary for the
// "no previous scan" case.
func ComputeDiff(current, previous *models.ScanSummary) *DiffResult {
	dr := &DiffResult{
		NewlyVulnerable: []models.DomainScanResult{},
		StillVulnerable: []models.DomainScanResult{},
		Remediated:      []models.DomainScanResult{},
		ChangedServer:   []ServerChange{},
		AddedDomains:    []string{},
		RemovedDomains:  []string{},
	}

	prevByDomain := byDomain(previous.Results)
	currByDomain := byDomain(current.Results)

	for _, domain := range sortedKeys(currByDomain) {
		curr := currByDomain[domain]
		prev, existed := prevByDomain[domain]
		if !existed {
			dr.AddedDomains = append(dr.AddedDomains, domain)
		}

		switch {
		case curr.Vulnerable && (!existed || !prev.Vulnerable):
			dr.NewlyVulnerable = append(dr.NewlyVulnerable, curr)
		case curr.Vulnerable && prev.Vulnerable:
			dr.StillVulnerable = append(dr.StillVulnerable, curr)
			if curr.SuccessfulServer != prev.SuccessfulServer {
				dr.ChangedServer = append(dr.ChangedServer, ServerChange{
					Domain:         domain,
					PreviousServer: prev.SuccessfulServer,
					CurrentServer:  curr.SuccessfulServer,
				})
			}
		case !curr.Vulnerable && existed && prev.Vulnerable:
			dr.Remediated = append(dr.Remediated, curr)
		}
	}

	for _, domain := range sortedKeys(prevByDomain) {
		if _, exists := currByDomain[domain]; !exists {
			dr.RemovedDomains = append(dr.RemovedDomains, domain)
		}
	}

	dr.CurrentVulnerableCount = countVulnerable(currByDomain)
	dr.PreviousVulnerableCount = countVulnerable(prevByDomain)

	return dr
}

func byDomain(results []models.DomainScanResult) map[string]models.DomainScanResult {
	m := make(map[string]models.DomainScanResult, len(results))
	for _, r := range results {
		m[r.Domain] = r
	}
	return m
}

func sortedKeys(m map[string]models.DomainScanResult) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func countVulnerable(m map[string]models.DomainScanResult) int {
	n := 0
	for _, r := range m {
		if r.Vulnerable {
			n++
		}
	}
	return n
}
