package models

// TransferStatus is the outcome of one AXFR attempt against one name server
type TransferStatus string

const (
	StatusSuccess         TransferStatus = "success"
	StatusRefused         TransferStatus = "refused"
	StatusTimeout         TransferStatus = "timeout"
	StatusConnectionError TransferStatus = "connection_error"
	StatusNoData          TransferStatus = "no_data"
)

// ScanStatus represents the current state of a persisted scan
type ScanStatus string

const (
	ScanPending     ScanStatus = "pending"
	ScanRunning     ScanStatus = "running"
	ScanComplete    ScanStatus = "complete"
	ScanInterrupted ScanStatus = "interrupted"
	ScanFailed      ScanStatus = "failed"
)

// IsTerminal reports whether no further status transition is expected
func (s ScanStatus) IsTerminal() bool {
	switch s {
	case ScanComplete, ScanInterrupted, ScanFailed:
		return true
	}
	return false
}
