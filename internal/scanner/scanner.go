// Package scanner runs the resolve-then-transfer pipeline over a list of domains.
package scanner

import (
	"context"
	"time"

	"github.com/hakim/zoneshah/internal/models"
	"github.com/hakim/zoneshah/internal/resolver"
	"github.com/sourcegraph/conc/iter"
)

// NameServerResolver is the minimal resolver contract required by the scanner
type NameServerResolver interface {
	Lookup(ctx context.Context, domain string) resolver.Resolution
}

// DomainChecker is the minimal checker contract required by the scanner
type DomainChecker interface {
	CheckDomain(ctx context.Context, domain string, nameServers []string) (models.DomainScanResult, error)
}

// Config controls how Scan behaves
type Config struct {
	// Workers is the number of domains checked concurrently. Name servers of
	// a single domain are always tried one after another.
	Workers int

	// OnDomainStart is called when a worker picks up a domain
	OnDomainStart func(domain string)

	// OnResult is called as soon as a domain finishes, in completion order.
	// The summary returned by Scan is always in input order.
	OnResult func(result models.DomainScanResult)
}

// Scanner is the scan orchestrator
type Scanner struct {
	resolver NameServerResolver
	checker  DomainChecker
	cfg      Config
}

// New creates a Scanner
func New(r NameServerResolver, p DomainChecker, cfg Config) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Scanner{resolver: r, checker: p, cfg: cfg}
}

// slot holds the outcome for one input position
type slot struct {
	result models.DomainScanResult
	done   bool
}

// Scan resolves and checks every non-blank domain. Repeated domains are
// checked once per occurrence.
//
// When ctx is cancelled no further domains are started, in-flight ones are
// abandoned, and the summary holds only the domains that completed, still in
// input order, with Interrupted set.
func (s *Scanner) Scan(ctx context.Context, domains []string) *models.ScanSummary {
	summary := &models.ScanSummary{
		Results:   []models.DomainScanResult{},
		StartedAt: time.Now(),
	}

	targets := NormalizeDomains(domains)

	mapper := iter.Mapper[string, slot]{MaxGoroutines: s.cfg.Workers}
	slots := mapper.Map(targets, func(domain *string) slot {
		return s.scanDomain(ctx, *domain)
	})

	for _, sl := range slots {
		if sl.done {
			summary.Results = append(summary.Results, sl.result)
		}
	}

	summary.Interrupted = len(summary.Results) < len(targets)
	summary.Elapsed = time.Since(summary.StartedAt)
	return summary
}

func (s *Scanner) scanDomain(ctx context.Context, domain string) slot {
	if ctx.Err() != nil {
		return slot{}
	}

	if s.cfg.OnDomainStart != nil {
		s.cfg.OnDomainStart(domain)
	}

	resolution := s.resolver.Lookup(ctx, domain)
	if ctx.Err() != nil {
		return slot{}
	}

	result, err := s.checker.CheckDomain(ctx, domain, resolution.NameServers)
	if err != nil {
		return slot{}
	}
	if resolution.Err != nil && len(resolution.NameServers) == 0 {
		result.ResolutionError = resolution.Err.Error()
	}

	if s.cfg.OnResult != nil {
		s.cfg.OnResult(result)
	}

	return slot{result: result, done: true}
}

// NormalizeDomains trims whitespace and the trailing dot from each entry and
// drops blank ones. Order and duplicates are preserved.
func NormalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = resolver.NormalizeName(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}
