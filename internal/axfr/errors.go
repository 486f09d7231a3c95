package axfr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/hakim/zoneshah/internal/models"
	"github.com/miekg/dns"
)

var (
	ErrEmptyZone   = errors.New("transfer returned no records")
	ErrSOAFirst    = errors.New("first record of transfer is not SOA")
	ErrWrongOrigin = errors.New("transfer SOA is not at the requested zone")
	ErrIDMismatch  = errors.New("response id does not match query")
	ErrEmptyServer = errors.New("name server is empty")
)

// TransferError is a classified zone transfer failure
type TransferError struct {
	Server string
	Status models.TransferStatus
	// Rcode is set when the server answered with a DNS response code
	Rcode int
	Err   error
}

func (e *TransferError) Error() string {
	if e.Rcode != 0 {
		return fmt.Sprintf("axfr from %s: %s (rcode %s)", e.Server, e.Status, dns.RcodeToString[e.Rcode])
	}
	return fmt.Sprintf("axfr from %s: %s: %v", e.Server, e.Status, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// Classify maps an error returned by a transfer attempt to a status.
// Errors that are already a *TransferError keep their status.
func Classify(err error) models.TransferStatus {
	if err == nil {
		return models.StatusSuccess
	}

	var transferErr *TransferError
	if errors.As(err, &transferErr) && transferErr.Status != "" {
		return transferErr.Status
	}

	if errors.Is(err, ErrEmptyZone) || errors.Is(err, ErrSOAFirst) || errors.Is(err, ErrWrongOrigin) {
		return models.StatusNoData
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ETIMEDOUT) {
		return models.StatusTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.StatusTimeout
	}

	// Refused or reset connections, EOF and undecodable messages.
	return models.StatusConnectionError
}
