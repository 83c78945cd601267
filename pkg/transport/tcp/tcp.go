// Package tcp implements the stream link transport.
package tcp

import (
	"dominicbreuker/picolink/pkg/resolver"
	"dominicbreuker/picolink/pkg/transport"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sys/unix"
)

// Socket is an open stream link. It carries no state beyond the OS socket
// descriptor itself.
type Socket int

// Open establishes a stream link to one of the endpoint's candidate
// addresses. Candidates are tried in resolver order on a single socket; the
// first successful connect wins and earlier failures are forgotten. The
// lease drives how long a close lingers to flush unsent data.
func Open(ep *resolver.Endpoint, lease time.Duration) (Socket, error) {
	first := ep.First()

	fd, err := unix.Socket(first.Family, first.SockType, first.Protocol)
	if err != nil {
		return -1, fmt.Errorf("unix.Socket(%d, %d, %d): %w", first.Family, first.SockType, first.Protocol, err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("setsockopt(SO_KEEPALIVE): %w", err)
	}

	// The kernel option has whole-second granularity, sub-second lease
	// remainders are dropped.
	ling := unix.Linger{Onoff: 1, Linger: int32(lease / time.Second)}
	if err := unix.SetsockoptLinger(fd, unix.SOL_SOCKET, unix.SO_LINGER, &ling); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("setsockopt(SO_LINGER): %w", err)
	}

	suppressSigpipe(fd)

	var connErr error
	for _, c := range ep.Candidates {
		connErr = unix.Connect(fd, c.Addr)
		if connErr == nil {
			return Socket(fd), nil
		}
	}

	unix.Close(fd)
	return -1, fmt.Errorf("connecting to %s: %w: %w", ep, transport.ErrConnectionFailed, connErr)
}

// Listen opens a stream socket bound to the endpoint's first candidate and
// marks it ready to accept inbound links.
func Listen(ep *resolver.Endpoint) (Socket, error) {
	first := ep.First()

	fd, err := unix.Socket(first.Family, first.SockType, first.Protocol)
	if err != nil {
		return -1, fmt.Errorf("unix.Socket(%d, %d, %d): %w", first.Family, first.SockType, first.Protocol, err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("setsockopt(SO_REUSEADDR): %w", err)
	}

	if err := unix.Bind(fd, first.Addr); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("binding to %s: %w", ep, err)
	}

	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("unix.Listen(%d): %w", fd, err)
	}

	return Socket(fd), nil
}

// Accept blocks until an inbound link arrives and returns its socket. The
// caller owns the returned socket; accepted links inherit no options from
// the listener beyond what the OS copies itself.
func (s Socket) Accept() (Socket, error) {
	for {
		fd, _, err := unix.Accept(int(s))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return -1, fmt.Errorf("unix.Accept(%d): %w", int(s), err)
		}
		suppressSigpipe(fd)
		return Socket(fd), nil
	}
}

// Read receives at most len(p) bytes from the link and may return fewer. A
// peer that closed its end in an orderly way is reported as io.EOF.
func (s Socket) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(int(s), p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("unix.Read(%d): %w", int(s), err)
		}
		if n == 0 && len(p) > 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

// ReadExact fills p completely, reading as many times as the link requires.
// A link that terminates before p is full is an error: io.EOF if nothing
// arrived at all, io.ErrUnexpectedEOF if the peer quit partway through.
func (s Socket) ReadExact(p []byte) error {
	for n := 0; n < len(p); {
		rb, err := s.Read(p[n:])
		if err != nil {
			if errors.Is(err, io.EOF) && n > 0 {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		n += rb
	}
	return nil
}

// Send transmits at most len(p) bytes over the link in a single call and
// returns how many went out. Completing partial sends is the caller's job.
func (s Socket) Send(p []byte) (int, error) {
	for {
		n, err := unix.SendmsgN(int(s), p, nil, nil, sendFlags)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("sending on socket %d: %w", int(s), err)
		}
		return n, nil
	}
}

// Shutdown terminates the link in both directions so the peer observes EOF.
// The descriptor itself stays allocated until Close.
func (s Socket) Shutdown() error {
	if err := unix.Shutdown(int(s), unix.SHUT_RDWR); err != nil {
		return fmt.Errorf("unix.Shutdown(%d): %w", int(s), err)
	}
	return nil
}

// Close releases the socket descriptor.
func (s Socket) Close() error {
	if err := unix.Close(int(s)); err != nil {
		return fmt.Errorf("unix.Close(%d): %w", int(s), err)
	}
	return nil
}
