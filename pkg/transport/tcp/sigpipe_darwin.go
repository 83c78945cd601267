//go:build darwin

package tcp

import "golang.org/x/sys/unix"

const sendFlags = 0

// suppressSigpipe disables SIGPIPE delivery for the socket. Best effort: a
// send on a dead link still fails with EPIPE either way.
func suppressSigpipe(fd int) {
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NOSIGPIPE, 1)
}
