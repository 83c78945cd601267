package format

import (
	"fmt"
	"net"
	"strings"

	"golang.org/x/sys/unix"
)

func Addr(host string, port int) string {
	if strings.ContainsAny(host, ":") { // IPv6
		return fmt.Sprintf("[%s]:%d", host, port)
	} else { // IPv4
		return fmt.Sprintf("%s:%d", host, port)
	}
}

// Sockaddr renders an OS socket address as host:port for log output.
func Sockaddr(sa unix.Sockaddr) string {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return Addr(net.IP(sa.Addr[:]).String(), sa.Port)
	case *unix.SockaddrInet6:
		host := net.IP(sa.Addr[:]).String()
		if sa.ZoneId != 0 {
			host = fmt.Sprintf("%s%%%d", host, sa.ZoneId)
		}
		return Addr(host, sa.Port)
	default:
		return fmt.Sprintf("<%T>", sa)
	}
}
