package entrypoint

import (
	"context"
	"dominicbreuker/picolink/pkg/config"
	"dominicbreuker/picolink/pkg/format"
	"dominicbreuker/picolink/pkg/log"
	"dominicbreuker/picolink/pkg/resolver"
	"dominicbreuker/picolink/pkg/transport"
	"dominicbreuker/picolink/pkg/transport/tcp"
	"fmt"
	"strconv"
	"sync"
)

// Listen runs the inbound probe: it waits for a link on the configured
// endpoint and moves bytes between the link and the local streams.
func Listen(ctx context.Context, cfg *config.Shared, deps *config.Dependencies) error {
	if cfg.Protocol == resolver.ProtoUDP {
		return listenDatagram(ctx, cfg, deps)
	}
	return listenStream(ctx, cfg, deps)
}

func listenStream(ctx context.Context, cfg *config.Shared, deps *config.Dependencies) error {
	ep, err := resolver.ResolvePassive(ctx, cfg.Host, strconv.Itoa(cfg.Port), resolver.ProtoTCP)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", format.Addr(cfg.Host, cfg.Port), err)
	}
	log.VerboseMsg("Resolved %s\n", ep)

	ls, err := tcp.Listen(ep)
	if err != nil {
		return fmt.Errorf("opening listener: %w", err)
	}

	var closeOnce sync.Once
	closeListener := func() {
		closeOnce.Do(func() {
			_ = ls.Shutdown()
			_ = ls.Close()
		})
	}
	defer closeListener()

	port, err := transport.LocalPort(int(ls))
	if err != nil {
		return fmt.Errorf("reading listener port: %w", err)
	}
	log.InfoMsg("Listening on %s\n", format.Addr(cfg.Host, port))

	// Wake the blocked accept if the context ends first.
	stop := context.AfterFunc(ctx, closeListener)
	defer stop()

	sock, err := ls.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("accepting link: %w", err)
	}

	// Single-session probe: once a link is up, stop listening.
	closeListener()
	log.InfoMsg("Accepted a link\n")

	return pipeLink(ctx, cfg, deps, &linkConn{sock: sock})
}
