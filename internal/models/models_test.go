package models

import (
	"reflect"
	"testing"
)

func TestScanSummaryCounts(t *testing.T) {
	s := &ScanSummary{Results: []DomainScanResult{
		{Domain: "a.com", Vulnerable: true, SuccessfulServer: "ns1.a.com"},
		{Domain: "b.com"},
		{Domain: "c.com", Vulnerable: true, SuccessfulServer: "ns2.c.com"},
	}}

	if got := s.VulnerableCount(); got != 2 {
		t.Errorf("VulnerableCount() = %d, want 2", got)
	}
	var names []string
	for _, r := range s.Vulnerable() {
		names = append(names, r.Domain)
	}
	if !reflect.DeepEqual(names, []string{"a.com", "c.com"}) {
		t.Errorf("Vulnerable() = %v", names)
	}
	if r := s.Find("b.com"); r == nil || r.Domain != "b.com" {
		t.Errorf("Find(b.com) = %v", r)
	}
	if r := s.Find("missing.com"); r != nil {
		t.Errorf("Find(missing.com) = %v, want nil", r)
	}

	var nilSummary *ScanSummary
	if nilSummary.VulnerableCount() != 0 || nilSummary.Vulnerable() != nil || nilSummary.Find("a.com") != nil {
		t.Error("nil summary should behave as empty")
	}
}

func TestFailedServers(t *testing.T) {
	r := DomainScanResult{FailedAttempts: []TransferAttemptResult{
		{NameServer: "ns1", Status: StatusRefused},
		{NameServer: "ns2", Status: StatusTimeout},
	}}
	if got := r.FailedServers(); !reflect.DeepEqual(got, []string{"ns1", "ns2"}) {
		t.Errorf("FailedServers() = %v", got)
	}
}

func TestNewScanRecord(t *testing.T) {
	a := NewScanRecord("a.com")
	b := NewScanRecord("a.com")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected unique IDs, got %q and %q", a.ID, b.ID)
	}
	if a.Status != ScanPending || a.Summary.Results == nil {
		t.Errorf("unexpected initial record: %+v", a)
	}
}

func TestScanRecordDomains(t *testing.T) {
	r := NewScanRecord("list.txt")
	r.Summary.Results = []DomainScanResult{{Domain: "b.com"}, {Domain: "a.com"}, {Domain: "b.com"}}
	if got := r.Domains(); !reflect.DeepEqual(got, []string{"b.com", "a.com"}) {
		t.Errorf("Domains() = %v", got)
	}
}

func TestScanStatusIsTerminal(t *testing.T) {
	tests := map[ScanStatus]bool{
		ScanPending:     false,
		ScanRunning:     false,
		ScanComplete:    true,
		ScanInterrupted: true,
		ScanFailed:      true,
	}
	for status, want := range tests {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestScanSummarySubset(t *testing.T) {
	s := &ScanSummary{Interrupted: true, Results: []DomainScanResult{
		{Domain: "a.com", Vulnerable: true},
		{Domain: "b.com"},
	}}
	sub := s.Subset("a.com")
	if len(sub.Results) != 1 || sub.Results[0].Domain != "a.com" || !sub.Interrupted {
		t.Errorf("Subset(a.com) = %+v", sub)
	}
	if got := s.Subset("z.com"); got.Results == nil || len(got.Results) != 0 {
		t.Errorf("Subset(z.com) = %+v", got)
	}
}
