package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanRecord is the persisted form of one zoneshah run
type ScanRecord struct {
	ID          string      `json:"id"`
	Source      string      `json:"source"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Status      ScanStatus  `json:"status"`
	ScanDir     string      `json:"scan_dir,omitempty"`
	Summary     ScanSummary `json:"summary"`
}

// NewScanRecord creates a new scan record with a fresh ID.
// source is the single domain or the input file path the scan was started with.
func NewScanRecord(source string) *ScanRecord {
	now := time.Now()
	return &ScanRecord{
		ID:        uuid.New().String(),
		Source:    source,
		StartedAt: now,
		Status:    ScanPending,
		Summary: ScanSummary{
			Results:   []DomainScanResult{},
			StartedAt: now,
		},
	}
}

// Domains returns the distinct domains covered by the record, in first-seen order
func (r *ScanRecord) Domains() []string {
	seen := make(map[string]bool, len(r.Summary.Results))
	var domains []string
	for _, res := range r.Summary.Results {
		if seen[res.Domain] {
			continue
		}
		seen[res.Domain] = true
		domains = append(domains, res.Domain)
	}
	return domains
}
