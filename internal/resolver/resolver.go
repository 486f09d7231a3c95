// Package resolver looks up the authoritative name servers of a domain.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Resolution is the outcome of an NS lookup. Err explains an empty
// NameServers list and is nil when at least one NS record was found.
type Resolution struct {
	NameServers []string
	Err         error
}

// Resolver issues NS queries against a fixed list of recursive resolvers
type Resolver struct {
	client  *dns.Client
	servers []string
}

// Config controls resolver construction
type Config struct {
	// Servers are host or host:port resolver addresses. When empty the
	// nameserver lines of ResolvConf are used.
	Servers    []string
	ResolvConf string
	Timeout    time.Duration
}

// New creates a Resolver from cfg
func New(cfg Config) (*Resolver, error) {
	servers := cfg.Servers
	if len(servers) == 0 && cfg.ResolvConf != "" {
		clientConfig, err := dns.ClientConfigFromFile(cfg.ResolvConf)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", cfg.ResolvConf, err)
		}
		for _, s := range clientConfig.Servers {
			servers = append(servers, net.JoinHostPort(s, clientConfig.Port))
		}
	}

	var addrs []string
	for _, s := range servers {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		addrs = append(addrs, withDefaultPort(s))
	}
	if len(addrs) == 0 {
		return nil, ErrNoResolvers
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Resolver{
		client:  &dns.Client{Net: "udp", Timeout: timeout},
		servers: addrs,
	}, nil
}

// Servers returns the resolver addresses in query order
func (r *Resolver) Servers() []string {
	return append([]string(nil), r.servers...)
}

// ResolveNameServers returns the NS host names for domain with the trailing
// dot trimmed, in answer order. Any failure yields an empty slice.
func (r *Resolver) ResolveNameServers(ctx context.Context, domain string) []string {
	return r.Lookup(ctx, domain).NameServers
}

// Lookup queries each configured resolver in turn. The first resolver that
// answers decides the outcome; transport failures move on to the next one.
func (r *Resolver) Lookup(ctx context.Context, domain string) Resolution {
	domain = NormalizeName(domain)
	if domain == "" {
		return Resolution{Err: ErrEmptyDomain}
	}

	message := new(dns.Msg)
	message.SetQuestion(dns.Fqdn(domain), dns.TypeNS)

	var errs []error
	for _, server := range r.servers {
		if err := ctx.Err(); err != nil {
			return Resolution{Err: err}
		}

		in, err := r.exchange(ctx, message, server)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", server, err))
			continue
		}

		return fromAnswer(in)
	}

	return Resolution{Err: fmt.Errorf("all resolvers failed: %w", errors.Join(errs...))}
}

// exchange sends message over UDP and retries over TCP when truncated
func (r *Resolver) exchange(ctx context.Context, message *dns.Msg, server string) (*dns.Msg, error) {
	in, _, err := r.client.ExchangeContext(ctx, message, server)
	if err != nil {
		return nil, fmt.Errorf("dns client exchange: %w", err)
	}
	if in == nil {
		return nil, errors.New("nil exchange message")
	}

	if in.Truncated {
		tcpClient := *r.client
		tcpClient.Net = "tcp"
		in, _, err = tcpClient.ExchangeContext(ctx, message, server)
		if err != nil {
			return nil, fmt.Errorf("dns client exchange (tcp): %w", err)
		}
		if in == nil {
			return nil, errors.New("nil exchange message")
		}
	}

	return in, nil
}

func fromAnswer(in *dns.Msg) Resolution {
	switch in.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return Resolution{Err: ErrNXDomain}
	default:
		return Resolution{Err: &RcodeError{Rcode: in.Rcode}}
	}

	var nameServers []string
	for _, answer := range in.Answer {
		if ns, ok := answer.(*dns.NS); ok {
			if name := NormalizeName(ns.Ns); name != "" {
				nameServers = append(nameServers, name)
			}
		}
	}

	if len(nameServers) == 0 {
		return Resolution{Err: ErrNoNameServers}
	}
	return Resolution{NameServers: nameServers}
}

// NormalizeName trims whitespace and the trailing root-label dot
func NormalizeName(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), ".")
}

func withDefaultPort(server string) string {
	if _, port, err := net.SplitHostPort(server); err == nil {
		if _, err := strconv.Atoi(port); err == nil {
			return server
		}
	}
	// Bare IPv6 literals may arrive bracketed or not.
	return net.JoinHostPort(strings.Trim(server, "[]"), "53")
}
