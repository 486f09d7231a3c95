// Package axfr performs full zone transfers against a single name server.
package axfr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/hakim/zoneshah/internal/models"
	"github.com/miekg/dns"
)

const (
	defaultPort    = 53
	defaultTimeout = 5 * time.Second
)

// Zone is a successfully transferred zone
type Zone struct {
	Origin  string
	Server  string
	Records []dns.RR
}

// Client performs AXFR requests over TCP
type Client struct {
	// Port is the name server port, 53 when zero
	Port int
	// Timeout bounds the whole transfer when the context has no deadline
	Timeout time.Duration
}

// NewClient creates a Client for the given port and timeout
func NewClient(port int, timeout time.Duration) *Client {
	return &Client{Port: port, Timeout: timeout}
}

// Transfer requests the full zone for domain from server. Any failure is
// returned as a *TransferError carrying its classified status.
func (c *Client) Transfer(ctx context.Context, domain, server string) (*Zone, error) {
	if server == "" {
		return nil, &TransferError{Status: models.StatusConnectionError, Err: ErrEmptyServer}
	}

	if _, ok := ctx.Deadline(); !ok {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	zone, err := c.transfer(ctx, domain, server)
	if err != nil {
		var transferErr *TransferError
		if errors.As(err, &transferErr) {
			return nil, transferErr
		}
		// A read that fails because the context fired reports the context
		// cause rather than the deadline we forced onto the socket.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, &TransferError{Server: server, Status: Classify(err), Err: err}
	}

	return zone, nil
}

func (c *Client) transfer(ctx context.Context, domain, server string) (*Zone, error) {
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	address := net.JoinHostPort(server, strconv.Itoa(port))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// Unblock any pending read as soon as the context is cancelled.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	dnsConn := &dns.Conn{Conn: conn}

	query := new(dns.Msg)
	query.SetAxfr(dns.Fqdn(domain))
	if err := dnsConn.WriteMsg(query); err != nil {
		return nil, fmt.Errorf("write axfr query: %w", err)
	}

	zone := &Zone{Origin: dns.Fqdn(domain), Server: server}
	first := true

	for {
		in, err := dnsConn.ReadMsg()
		if err != nil {
			return nil, fmt.Errorf("read axfr response: %w", err)
		}

		if in.Id != query.Id {
			return nil, ErrIDMismatch
		}

		// Any message of the stream may abort the transfer.
		if in.Rcode != dns.RcodeSuccess {
			return nil, &TransferError{
				Server: server,
				Status: models.StatusRefused,
				Rcode:  in.Rcode,
				Err:    fmt.Errorf("bad xfr rcode: %d", in.Rcode),
			}
		}

		if first {
			if len(in.Answer) == 0 {
				return nil, &TransferError{Server: server, Status: models.StatusNoData, Err: ErrEmptyZone}
			}
			soa, ok := in.Answer[0].(*dns.SOA)
			if !ok {
				return nil, &TransferError{Server: server, Status: models.StatusNoData, Err: ErrSOAFirst}
			}
			if dns.CanonicalName(soa.Hdr.Name) != dns.CanonicalName(zone.Origin) {
				return nil, &TransferError{
					Server: server,
					Status: models.StatusNoData,
					Err:    fmt.Errorf("%w: got %s", ErrWrongOrigin, soa.Hdr.Name),
				}
			}
			first = false
		}

		zone.Records = append(zone.Records, in.Answer...)

		// The zone ends with a repeat of the opening SOA.
		if n := len(zone.Records); n > 1 {
			if _, ok := zone.Records[n-1].(*dns.SOA); ok {
				return zone, nil
			}
		}
	}
}
