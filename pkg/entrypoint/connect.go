// Package entrypoint provides the entry functions behind the probe
// commands. They tie resolution, link transports and local I/O together,
// separated from CLI argument parsing.
package entrypoint

import (
	"context"
	"dominicbreuker/picolink/pkg/config"
	"dominicbreuker/picolink/pkg/format"
	"dominicbreuker/picolink/pkg/log"
	"dominicbreuker/picolink/pkg/resolver"
	"dominicbreuker/picolink/pkg/transport/tcp"
	"fmt"
	"strconv"
)

// Connect runs the outbound probe: it opens a link to the configured
// endpoint and moves bytes between the link and the local streams.
func Connect(ctx context.Context, cfg *config.Shared, deps *config.Dependencies) error {
	if cfg.Protocol == resolver.ProtoUDP {
		return connectDatagram(ctx, cfg, deps)
	}
	return connectStream(ctx, cfg, deps)
}

func connectStream(ctx context.Context, cfg *config.Shared, deps *config.Dependencies) error {
	ep, err := resolver.Resolve(ctx, cfg.Host, strconv.Itoa(cfg.Port), resolver.ProtoTCP)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", format.Addr(cfg.Host, cfg.Port), err)
	}
	log.VerboseMsg("Resolved %s\n", ep)

	sock, err := tcp.Open(ep, cfg.Lease)
	if err != nil {
		return fmt.Errorf("opening link: %w", err)
	}
	log.InfoMsg("Connected to %s\n", format.Addr(cfg.Host, cfg.Port))

	return pipeLink(ctx, cfg, deps, &linkConn{sock: sock})
}
