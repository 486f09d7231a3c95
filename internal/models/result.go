package models

import "time"

// TransferAttemptResult is the outcome of probing one name server for one domain.
type TransferAttemptResult struct {
	NameServer string         `json:"name_server"`
	Status     TransferStatus `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Rcode      int            `json:"rcode,omitempty"`
	Elapsed    time.Duration  `json:"elapsed"`
}

// DomainScanResult aggregates every attempt made for a single domain.
//
// When Vulnerable is true, SuccessfulServer names the first server that
// handed out the zone and FailedAttempts holds only the failures that came
// before it. Otherwise SuccessfulServer is empty and FailedAttempts has one
// entry per attempted server, in attempt order.
type DomainScanResult struct {
	Domain           string                  `json:"domain"`
	NameServers      []string                `json:"name_servers,omitempty"`
	Vulnerable       bool                    `json:"vulnerable"`
	SuccessfulServer string                  `json:"successful_server,omitempty"`
	RecordCount      int                     `json:"record_count,omitempty"`
	FailedAttempts   []TransferAttemptResult `json:"failed_attempts"`

	// ResolutionError explains an empty NameServers list. It never affects
	// classification.
	ResolutionError string `json:"resolution_error,omitempty"`
}

// FailedServers returns the name servers of the failed attempts in attempt order
func (r *DomainScanResult) FailedServers() []string {
	servers := make([]string, 0, len(r.FailedAttempts))
	for _, attempt := range r.FailedAttempts {
		servers = append(servers, attempt.NameServer)
	}
	return servers
}

// ScanSummary holds the results of a scan in input order
type ScanSummary struct {
	Results     []DomainScanResult `json:"results"`
	Interrupted bool               `json:"interrupted,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	Elapsed     time.Duration      `json:"elapsed"`
}

// VulnerableCount returns the number of results marked vulnerable
func (s *ScanSummary) VulnerableCount() int {
	if s == nil {
		return 0
	}
	count := 0
	for _, r := range s.Results {
		if r.Vulnerable {
			count++
		}
	}
	return count
}

// Vulnerable returns only the vulnerable results, preserving order
func (s *ScanSummary) Vulnerable() []DomainScanResult {
	if s == nil {
		return nil
	}
	var out []DomainScanResult
	for _, r := range s.Results {
		if r.Vulnerable {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the first result for domain, or nil
func (s *ScanSummary) Find(domain string) *DomainScanResult {
	if s == nil {
		return nil
	}
	for i := range s.Results {
		if s.Results[i].Domain == domain {
			return &s.Results[i]
		}
	}
	return nil
}

// Subset returns a copy of the summary holding only the results for domain
func (s *ScanSummary) Subset(domain string) *ScanSummary {
	out := &ScanSummary{Results: []DomainScanResult{}}
	if s == nil {
		return out
	}
	out.Interrupted = s.Interrupted
	out.StartedAt = s.StartedAt
	out.Elapsed = s.Elapsed
	for _, r := range s.Results {
		if r.Domain == domain {
			out.Results = append(out.Results, r)
		}
	}
	return out
}
