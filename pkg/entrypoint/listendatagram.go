package entrypoint

import (
	"context"
	"dominicbreuker/picolink/pkg/config"
	"dominicbreuker/picolink/pkg/format"
	"dominicbreuker/picolink/pkg/log"
	"dominicbreuker/picolink/pkg/resolver"
	"dominicbreuker/picolink/pkg/transport"
	"dominicbreuker/picolink/pkg/transport/udp"
	"fmt"
	"strconv"
	"sync"
)

// listenDatagram prints every datagram arriving on the configured endpoint,
// one per line. A multicast host subscribes to the group first.
func listenDatagram(ctx context.Context, cfg *config.Shared, deps *config.Dependencies) error {
	ep, err := resolver.ResolvePassive(ctx, cfg.Host, strconv.Itoa(cfg.Port), resolver.ProtoUDP)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", format.Addr(cfg.Host, cfg.Port), err)
	}
	log.VerboseMsg("Resolved %s\n", ep)

	mcast := ep.IsMulticast()
	var sock udp.Socket
	if mcast {
		sock, err = udp.ListenMulticast(ep, cfg.Timeout)
	} else {
		sock, err = udp.Listen(ep, cfg.Timeout)
	}
	if err != nil {
		return fmt.Errorf("opening listener: %w", err)
	}

	var closeOnce sync.Once
	closeSock := func() {
		closeOnce.Do(func() {
			if mcast {
				_ = sock.LeaveMulticast(ep)
			}
			_ = sock.Close()
		})
	}
	defer closeSock()

	port, err := transport.LocalPort(int(sock))
	if err != nil {
		return fmt.Errorf("reading listener port: %w", err)
	}
	log.InfoMsg("Receiving datagrams on %s\n", format.Addr(cfg.Host, port))

	stop := context.AfterFunc(ctx, closeSock)
	defer stop()

	out := config.GetStdoutFunc(deps)()
	buf := make([]byte, maxDatagram)
	for {
		n, err := sock.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if transport.IsTimeout(err) {
				continue // quiet link, keep waiting
			}
			return fmt.Errorf("reading datagram: %w", err)
		}
		fmt.Fprintf(out, "%s\n", buf[:n])
	}
}
