// Package transport holds what the link transports (tcp, udp) share.
// Each transport exposes plain functions and a small Socket type instead of
// interfaces:
//
// Open Functions:
//   - Establish a link from a resolved endpoint
//   - Accept: endpoint plus the transport's tuning knob (lease or timeout)
//   - Return: Socket or error
//   - Handle all socket setup and option configuration internally
//
// Socket methods:
//   - Read / ReadExact / Send move bytes over the link
//   - Close releases the descriptor; the stream transport additionally has
//     Shutdown for an orderly goodbye
//
// Blocking behavior:
//   - Every operation blocks the calling goroutine until it completes
//   - There is no deadline plumbing; a caller that wants to abort a blocked
//     operation shuts the socket down from another goroutine, which wakes
//     the blocked call, then closes it
//   - Datagram sockets carry a receive/send timeout instead, set once at
//     open time
package transport

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrConnectionFailed indicates that every candidate address of an endpoint
// refused or failed the connection attempt.
var ErrConnectionFailed = errors.New("connection failed")

// ErrInvalidLocator indicates an endpoint no local socket can be derived
// for, usually because its address family is unsupported.
var ErrInvalidLocator = errors.New("invalid locator")

// IsTimeout reports whether err is the OS failure a datagram read or send
// returns when the socket's configured timeout elapses.
func IsTimeout(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

// LocalPort returns the port a socket descriptor is bound to. Sockets bound
// to port 0 get their port assigned by the OS, this is how callers learn
// the assignment.
func LocalPort(fd int) (int, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return 0, fmt.Errorf("unix.Getsockname(%d): %w", fd, err)
	}
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return sa.Port, nil
	case *unix.SockaddrInet6:
		return sa.Port, nil
	default:
		return 0, fmt.Errorf("socket %d has unexpected address type %T", fd, sa)
	}
}
