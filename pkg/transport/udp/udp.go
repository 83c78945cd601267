// Package udp implements the datagram link transport.
package udp

import (
	"dominicbreuker/picolink/pkg/resolver"
	"dominicbreuker/picolink/pkg/transport"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Socket is an open datagram link. As with the stream transport it is just
// the OS socket descriptor.
type Socket int

// Open creates the local socket a datagram link sends and receives through.
// The local side is derived from the remote: the wildcard address of its
// family, with the port left for the OS to assign on first send. A timeout
// greater than zero arms both receive and send; zero means block forever.
func Open(ep *resolver.Endpoint, timeout time.Duration) (Socket, error) {
	remote := ep.First()

	local, err := resolver.Wildcard(remote.Family, resolver.ProtoUDP)
	if err != nil {
		return -1, fmt.Errorf("local side of %s: %w: %w", ep, transport.ErrInvalidLocator, err)
	}

	return open(local.First(), timeout)
}

// Listen creates a datagram socket bound to the endpoint's first candidate,
// so datagrams addressed to it arrive on the socket.
func Listen(ep *resolver.Endpoint, timeout time.Duration) (Socket, error) {
	first := ep.First()

	sock, err := open(first, timeout)
	if err != nil {
		return -1, err
	}

	if err := unix.Bind(int(sock), first.Addr); err != nil {
		unix.Close(int(sock))
		return -1, fmt.Errorf("binding to %s: %w", ep, err)
	}
	return sock, nil
}

func open(c resolver.Candidate, timeout time.Duration) (Socket, error) {
	fd, err := unix.Socket(c.Family, c.SockType, c.Protocol)
	if err != nil {
		return -1, fmt.Errorf("unix.Socket(%d, %d, %d): %w", c.Family, c.SockType, c.Protocol, err)
	}

	if timeout > 0 {
		tv := unix.NsecToTimeval(timeout.Nanoseconds())
		if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
			unix.Close(fd)
			return -1, fmt.Errorf("setsockopt(SO_RCVTIMEO): %w", err)
		}
		if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv); err != nil {
			unix.Close(fd)
			return -1, fmt.Errorf("setsockopt(SO_SNDTIMEO): %w", err)
		}
	}

	return Socket(fd), nil
}

// Read receives the next datagram into p, from any source, and returns its
// length. A datagram longer than p is truncated by the OS. With a timeout
// armed a quiet link fails the read; transport.IsTimeout recognizes that
// case.
func (s Socket) Read(p []byte) (int, error) {
	for {
		n, _, err := unix.Recvfrom(int(s), p, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("unix.Recvfrom(%d): %w", int(s), err)
		}
		return n, nil
	}
}

// ReadExact fills p completely, reading as many datagrams as it takes.
// Empty datagrams contribute nothing and are skipped. There is no stream
// EOF here; the only way a quiet link ends the loop is its timeout.
func (s Socket) ReadExact(p []byte) error {
	for n := 0; n < len(p); {
		rb, err := s.Read(p[n:])
		if err != nil {
			return err
		}
		n += rb
	}
	return nil
}

// Send transmits p as a single datagram to the destination endpoint's
// preferred candidate and returns how many bytes went out.
func (s Socket) Send(p []byte, dst *resolver.Endpoint) (int, error) {
	to := dst.First()
	for {
		n, err := unix.SendmsgN(int(s), p, nil, to.Addr, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("sending to %s: %w", dst, err)
		}
		return n, nil
	}
}

// Close releases the socket descriptor.
func (s Socket) Close() error {
	if err := unix.Close(int(s)); err != nil {
		return fmt.Errorf("unix.Close(%d): %w", int(s), err)
	}
	return nil
}
