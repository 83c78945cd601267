// Package resolver turns host and service names into the candidate socket
// addresses a link transport needs. Resolution is the only place name
// lookups happen; the transports work on resolved endpoints exclusively.
package resolver

import (
	"context"
	"dominicbreuker/picolink/pkg/format"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrNoAddresses indicates a lookup that produced no usable candidate.
var ErrNoAddresses = errors.New("no usable addresses")

// ErrUnsupportedFamily indicates an address family the transports cannot
// open sockets for.
var ErrUnsupportedFamily = errors.New("unsupported address family")

// Protocol selects the transport a lookup resolves for.
type Protocol int

const (
	// ProtoTCP resolves stream candidates.
	ProtoTCP Protocol = iota
	// ProtoUDP resolves datagram candidates.
	ProtoUDP
)

// String implements fmt.Stringer.
func (p Protocol) String() string {
	switch p {
	case ProtoTCP:
		return "tcp"
	case ProtoUDP:
		return "udp"
	}
	return ""
}

// Network returns the name the net package uses for the protocol.
func (p Protocol) Network() string {
	return p.String()
}

func (p Protocol) sockType() int {
	if p == ProtoUDP {
		return unix.SOCK_DGRAM
	}
	return unix.SOCK_STREAM
}

func (p Protocol) number() int {
	if p == ProtoUDP {
		return unix.IPPROTO_UDP
	}
	return unix.IPPROTO_TCP
}

// Candidate is one concrete socket address an endpoint resolved to,
// together with the socket parameters needed to open it.
type Candidate struct {
	Family   int
	SockType int
	Protocol int
	Addr     unix.Sockaddr
}

// Endpoint is an ordered, non-empty list of candidate addresses for one
// host and service. Stream endpoints keep every candidate so a connect can
// fall back across them; datagram endpoints keep only the preferred one.
type Endpoint struct {
	Proto      Protocol
	Candidates []Candidate
}

// First returns the preferred candidate.
func (ep *Endpoint) First() Candidate {
	return ep.Candidates[0]
}

// IsMulticast reports whether the endpoint's preferred candidate is a
// multicast group address.
func (ep *Endpoint) IsMulticast() bool {
	switch sa := ep.First().Addr.(type) {
	case *unix.SockaddrInet4:
		return net.IP(sa.Addr[:]).IsMulticast()
	case *unix.SockaddrInet6:
		return net.IP(sa.Addr[:]).IsMulticast()
	}
	return false
}

// String renders the endpoint's candidates for log output.
func (ep *Endpoint) String() string {
	addrs := make([]string, len(ep.Candidates))
	for i, c := range ep.Candidates {
		addrs[i] = format.Sockaddr(c.Addr)
	}
	return fmt.Sprintf("%s(%s)", ep.Proto, strings.Join(addrs, ","))
}

func newEndpoint(proto Protocol, cands []Candidate) (*Endpoint, error) {
	if len(cands) == 0 {
		return nil, ErrNoAddresses
	}
	if proto == ProtoUDP {
		// Datagram links target a single address, drop the alternatives.
		cands = cands[:1]
	}
	return &Endpoint{Proto: proto, Candidates: cands}, nil
}

// Resolve looks up host and service and returns the endpoint a transport
// can open toward them. Candidates come back in resolver preference order.
func Resolve(ctx context.Context, host, service string, proto Protocol) (*Endpoint, error) {
	port, err := net.DefaultResolver.LookupPort(ctx, proto.Network(), service)
	if err != nil {
		return nil, fmt.Errorf("looking up service %q: %w: %w", service, ErrNoAddresses, err)
	}

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("looking up host %q: %w: %w", host, ErrNoAddresses, err)
	}

	cands := make([]Candidate, 0, len(ips))
	for _, ip := range ips {
		c, err := newCandidate(ip, port, proto)
		if err != nil {
			continue // unusable address, try the others
		}
		cands = append(cands, c)
	}

	ep, err := newEndpoint(proto, cands)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", format.Addr(host, port), err)
	}
	return ep, nil
}

// ResolvePassive resolves a bind-side endpoint. An empty host selects the
// wildcard address of both families, IPv6 first, so a listener can serve
// either stack.
func ResolvePassive(ctx context.Context, host, service string, proto Protocol) (*Endpoint, error) {
	if host != "" {
		return Resolve(ctx, host, service, proto)
	}

	port, err := net.DefaultResolver.LookupPort(ctx, proto.Network(), service)
	if err != nil {
		return nil, fmt.Errorf("looking up service %q: %w: %w", service, ErrNoAddresses, err)
	}
	return &Endpoint{Proto: proto, Candidates: []Candidate{
		{Family: unix.AF_INET6, SockType: proto.sockType(), Protocol: proto.number(), Addr: &unix.SockaddrInet6{Port: port}},
		{Family: unix.AF_INET, SockType: proto.sockType(), Protocol: proto.number(), Addr: &unix.SockaddrInet4{Port: port}},
	}}, nil
}

// Wildcard returns the local any-address endpoint of the given family with
// an OS-assigned port. Datagram opens use it to derive the local side of a
// link from the remote's family.
func Wildcard(family int, proto Protocol) (*Endpoint, error) {
	c := Candidate{Family: family, SockType: proto.sockType(), Protocol: proto.number()}
	switch family {
	case unix.AF_INET:
		c.Addr = &unix.SockaddrInet4{}
	case unix.AF_INET6:
		c.Addr = &unix.SockaddrInet6{}
	default:
		return nil, fmt.Errorf("family %d: %w", family, ErrUnsupportedFamily)
	}
	return &Endpoint{Proto: proto, Candidates: []Candidate{c}}, nil
}

func newCandidate(ip net.IPAddr, port int, proto Protocol) (Candidate, error) {
	if v4 := ip.IP.To4(); v4 != nil {
		sa := &unix.SockaddrInet4{Port: port}
		copy(sa.Addr[:], v4)
		return Candidate{Family: unix.AF_INET, SockType: proto.sockType(), Protocol: proto.number(), Addr: sa}, nil
	}

	v6 := ip.IP.To16()
	if v6 == nil {
		return Candidate{}, fmt.Errorf("address %s: %w", ip.IP, ErrUnsupportedFamily)
	}
	sa := &unix.SockaddrInet6{Port: port}
	copy(sa.Addr[:], v6)
	if ip.Zone != "" {
		id, err := zoneID(ip.Zone)
		if err != nil {
			return Candidate{}, fmt.Errorf("resolving zone %q: %w", ip.Zone, err)
		}
		sa.ZoneId = id
	}
	return Candidate{Family: unix.AF_INET6, SockType: proto.sockType(), Protocol: proto.number(), Addr: sa}, nil
}

// zoneID maps an IPv6 zone to an interface index, accepting both interface
// names and literal indexes.
func zoneID(zone string) (uint32, error) {
	if ifi, err := net.InterfaceByName(zone); err == nil {
		return uint32(ifi.Index), nil
	}
	n, err := strconv.Atoi(zone)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("unknown interface %q", zone)
	}
	return uint32(n), nil
}
