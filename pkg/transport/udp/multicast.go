package udp

import (
	"dominicbreuker/picolink/pkg/resolver"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// OpenMulticast creates a datagram socket for publishing to a multicast
// group. The hop limit bounds how far published datagrams travel; 1 keeps
// them on the local network.
func OpenMulticast(group *resolver.Endpoint, timeout time.Duration, ttl int) (Socket, error) {
	g := group.First()

	sock, err := open(g, timeout)
	if err != nil {
		return -1, err
	}

	switch g.Family {
	case unix.AF_INET:
		err = unix.SetsockoptInt(int(sock), unix.IPPROTO_IP, unix.IP_MULTICAST_TTL, ttl)
	case unix.AF_INET6:
		err = unix.SetsockoptInt(int(sock), unix.IPPROTO_IPV6, unix.IPV6_MULTICAST_HOPS, ttl)
	default:
		err = resolver.ErrUnsupportedFamily
	}
	if err != nil {
		unix.Close(int(sock))
		return -1, fmt.Errorf("configuring hop limit for %s: %w", group, err)
	}

	return sock, nil
}

// ListenMulticast creates a datagram socket subscribed to a multicast
// group: bound to the group's port on the wildcard address and joined to
// the group on the default interface.
func ListenMulticast(group *resolver.Endpoint, timeout time.Duration) (Socket, error) {
	g := group.First()

	sock, err := open(g, timeout)
	if err != nil {
		return -1, err
	}

	// Several subscribers on one host share the group port.
	if err := unix.SetsockoptInt(int(sock), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(int(sock))
		return -1, fmt.Errorf("setsockopt(SO_REUSEADDR): %w", err)
	}

	bindAddr, err := wildcardFor(g.Addr)
	if err != nil {
		unix.Close(int(sock))
		return -1, fmt.Errorf("deriving bind address for %s: %w", group, err)
	}
	if err := unix.Bind(int(sock), bindAddr); err != nil {
		unix.Close(int(sock))
		return -1, fmt.Errorf("binding to %s: %w", group, err)
	}

	if err := join(int(sock), g.Addr); err != nil {
		unix.Close(int(sock))
		return -1, fmt.Errorf("joining %s: %w", group, err)
	}

	return sock, nil
}

// LeaveMulticast drops the socket's membership in the group. The socket
// itself stays open and must still be closed.
func (s Socket) LeaveMulticast(group *resolver.Endpoint) error {
	if err := leave(int(s), group.First().Addr); err != nil {
		return fmt.Errorf("leaving %s: %w", group, err)
	}
	return nil
}

func join(fd int, sa unix.Sockaddr) error {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		mreq := &unix.IPMreq{Multiaddr: sa.Addr}
		return unix.SetsockoptIPMreq(fd, unix.IPPROTO_IP, unix.IP_ADD_MEMBERSHIP, mreq)
	case *unix.SockaddrInet6:
		mreq := &unix.IPv6Mreq{Multiaddr: sa.Addr}
		return unix.SetsockoptIPv6Mreq(fd, unix.IPPROTO_IPV6, unix.IPV6_JOIN_GROUP, mreq)
	default:
		return fmt.Errorf("sockaddr %T: %w", sa, resolver.ErrUnsupportedFamily)
	}
}

func leave(fd int, sa unix.Sockaddr) error {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		mreq := &unix.IPMreq{Multiaddr: sa.Addr}
		return unix.SetsockoptIPMreq(fd, unix.IPPROTO_IP, unix.IP_DROP_MEMBERSHIP, mreq)
	case *unix.SockaddrInet6:
		mreq := &unix.IPv6Mreq{Multiaddr: sa.Addr}
		return unix.SetsockoptIPv6Mreq(fd, unix.IPPROTO_IPV6, unix.IPV6_LEAVE_GROUP, mreq)
	default:
		return fmt.Errorf("sockaddr %T: %w", sa, resolver.ErrUnsupportedFamily)
	}
}

// wildcardFor keeps the port of a group address but clears the host part,
// which is what the subscription socket binds to.
func wildcardFor(sa unix.Sockaddr) (unix.Sockaddr, error) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return &unix.SockaddrInet4{Port: sa.Port}, nil
	case *unix.SockaddrInet6:
		return &unix.SockaddrInet6{Port: sa.Port}, nil
	default:
		return nil, fmt.Errorf("sockaddr %T: %w", sa, resolver.ErrUnsupportedFamily)
	}
}
