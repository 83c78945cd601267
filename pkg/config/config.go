package config

import (
	"dominicbreuker/picolink/pkg/resolver"
	"fmt"
	"time"
)

// DefaultLease is how long a stream link's close lingers to flush unsent
// data unless configured otherwise.
const DefaultLease = 10 * time.Second

// DefaultTimeout is the receive/send timeout armed on datagram links
// unless configured otherwise.
const DefaultTimeout = 250 * time.Millisecond

// DefaultTTL is the default hop limit for multicast publishing, keeping
// datagrams on the local network.
const DefaultTTL = 1

// Shared is the link configuration common to all probe commands.
type Shared struct {
	Protocol resolver.Protocol
	Host     string
	Port     int

	Lease   time.Duration // stream links: linger interval on close
	Timeout time.Duration // datagram links: receive/send timeout, 0 blocks forever
	TTL     int           // multicast publishing: hop limit

	LogFile string // capture link traffic to this file
	Verbose bool
}

func (c *Shared) Validate() []error {
	var errors []error

	if err := validatePort(c.Port); err != nil {
		errors = append(errors, fmt.Errorf("endpoint port: %s", err))
	}

	if c.Lease < 0 {
		errors = append(errors, fmt.Errorf("'--lease' must not be negative"))
	}

	if c.Timeout < 0 {
		errors = append(errors, fmt.Errorf("'--timeout' must not be negative"))
	}

	if c.TTL < 0 || c.TTL > 255 {
		errors = append(errors, fmt.Errorf("'--ttl' must be in [0, 255]"))
	}

	return errors
}
