//go:build linux

package tcp

import "golang.org/x/sys/unix"

// Linux has no SO_NOSIGPIPE; SIGPIPE is suppressed per send instead.
const sendFlags = unix.MSG_NOSIGNAL

func suppressSigpipe(fd int) {}
