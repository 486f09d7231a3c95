package resolver

import (
	"errors"
	"fmt"

	"github.com/miekg/dns"
)

var (
	ErrNoResolvers       = errors.New("no resolvers configured")
	ErrNXDomain          = errors.New("domain does not exist")
	ErrNoNameServers     = errors.New("no NS records in answer")
	ErrUnsuccessfulRcode = errors.New("unsuccessful rcode")
	ErrEmptyDomain       = errors.New("domain is empty")
)

// RcodeError reports a resolver answer with a non-success response code
type RcodeError struct {
	Rcode int
}

func (e *RcodeError) Is(target error) bool {
	return target == ErrUnsuccessfulRcode
}

func (e *RcodeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsuccessfulRcode, dns.RcodeToString[e.Rcode])
}
