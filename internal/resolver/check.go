package resolver

import (
	"context"
	"time"

	"github.com/miekg/dns"
)

// CheckResult represents the result of checking a single resolver
type CheckResult struct {
	Server string
	OK     bool
	RTT    time.Duration
	Err    error
}

// Check sends a root NS query to every configured resolver and reports which
// ones answer. Any DNS answer counts as reachable, whatever its rcode.
func (r *Resolver) Check(ctx context.Context) []CheckResult {
	message := new(dns.Msg)
	message.SetQuestion(".", dns.TypeNS)

	results := make([]CheckResult, 0, len(r.servers))
	for _, server := range r.servers {
		start := time.Now()
		_, err := r.exchange(ctx, message, server)
		results = append(results, CheckResult{
			Server: server,
			OK:     err == nil,
			RTT:    time.Since(start),
			Err:    err,
		})
	}
	return results
}
