package shared

import (
	"dominicbreuker/picolink/pkg/resolver"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseEndpoint parses an endpoint string in the format "protocol://host:port"
// where protocol is tcp or udp. The host can be empty or "*" to bind to all
// interfaces, and IPv6 hosts go in brackets. Returns the protocol, host, port,
// and any parsing error.
func ParseEndpoint(s string) (proto resolver.Protocol, host string, port int, err error) {
	re := regexp.MustCompile(`^(tcp|udp)://(\[[^\]]+\]|[^:]*):(\d+)$`)
	matches := re.FindStringSubmatch(s)

	if len(matches) != 4 {
		err = parsingError(s)
		return
	}

	switch matches[1] {
	case "tcp":
		proto = resolver.ProtoTCP
	case "udp":
		proto = resolver.ProtoUDP
	default:
		err = parsingError(s)
		return
	}

	host = strings.Trim(matches[2], "[]")
	if host == "*" { // also counts as all interfaces
		host = ""
	}

	port, err = strconv.Atoi(matches[3])
	if err != nil || port < 1 || port > 65535 {
		err = parsingError(s)
		return
	}

	return
}

func parsingError(s string) error {
	return fmt.Errorf("parsing %s: format should be 'protocol://host:port', where protocol = tcp|udp", s)
}
