// Package checker decides whether a domain leaks its zone over AXFR.
package checker

import (
	"context"
	"errors"
	"time"

	"github.com/hakim/zoneshah/internal/axfr"
	"github.com/hakim/zoneshah/internal/models"
)

// DefaultTimeout bounds each transfer attempt when Options.Timeout is zero
const DefaultTimeout = 5 * time.Second

// Transferer is the network contract the checker needs. *axfr.Client
// satisfies it; tests substitute fakes.
type Transferer interface {
	Transfer(ctx context.Context, domain, server string) (*axfr.Zone, error)
}

// Options controls a Checker
type Options struct {
	// Timeout bounds each individual transfer attempt
	Timeout time.Duration

	// OnAttemptStart is called before each server is tried
	OnAttemptStart func(domain, server string)

	// OnAttemptDone is called with the classified outcome of each attempt,
	// successful ones included
	OnAttemptDone func(domain string, attempt models.TransferAttemptResult)
}

// Checker tries the name servers of a domain in order
type Checker struct {
	transferer Transferer
	opts       Options
}

// New creates a Checker around transferer
func New(transferer Transferer, opts Options) *Checker {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Checker{transferer: transferer, opts: opts}
}

// CheckDomain attempts a zone transfer from each name server in the given
// order and stops at the first success.
//
// Transfer failures are recorded on the result and never returned. The only
// error is the context's, meaning the check was abandoned and the result is
// partial.
func (p *Checker) CheckDomain(ctx context.Context, domain string, nameServers []string) (models.DomainScanResult, error) {
	result := models.DomainScanResult{
		Domain:         domain,
		NameServers:    nameServers,
		FailedAttempts: []models.TransferAttemptResult{},
	}

	for _, server := range nameServers {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if p.opts.OnAttemptStart != nil {
			p.opts.OnAttemptStart(domain, server)
		}

		attempt, zone := p.attempt(ctx, domain, server)

		// An attempt cut short by cancellation says nothing about the server.
		if err := ctx.Err(); err != nil && attempt.Status != models.StatusSuccess {
			return result, err
		}

		if p.opts.OnAttemptDone != nil {
			p.opts.OnAttemptDone(domain, attempt)
		}

		if attempt.Status == models.StatusSuccess {
			result.Vulnerable = true
			result.SuccessfulServer = server
			result.RecordCount = len(zone.Records)
			return result, nil
		}

		result.FailedAttempts = append(result.FailedAttempts, attempt)
	}

	return result, nil
}

func (p *Checker) attempt(ctx context.Context, domain, server string) (models.TransferAttemptResult, *axfr.Zone) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	start := time.Now()
	zone, err := p.transferer.Transfer(attemptCtx, domain, server)
	attempt := models.TransferAttemptResult{
		NameServer: server,
		Elapsed:    time.Since(start),
	}

	switch {
	case err != nil:
		attempt.Status = axfr.Classify(err)
		// Bounded by our own deadline even when the transferer reports it
		// with an unclassifiable error.
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			attempt.Status = models.StatusTimeout
		}
		attempt.Detail = err.Error()
		var transferErr *axfr.TransferError
		if errors.As(err, &transferErr) {
			attempt.Rcode = transferErr.Rcode
		}
	case zone == nil || len(zone.Records) == 0:
		attempt.Status = models.StatusNoData
		attempt.Detail = axfr.ErrEmptyZone.Error()
	default:
		attempt.Status = models.StatusSuccess
	}

	return attempt, zone
}
