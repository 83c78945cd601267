package entrypoint

import (
	"context"
	"dominicbreuker/picolink/pkg/config"
	"dominicbreuker/picolink/pkg/log"
	"dominicbreuker/picolink/pkg/pipeio"
	"dominicbreuker/picolink/pkg/transport/tcp"
	"io"
)

// maxDatagram is the receive buffer size for datagram probes, large enough
// for any UDP payload.
const maxDatagram = 65536

// linkConn adapts a stream socket to the ReadWriteCloser the pipe wants.
type linkConn struct {
	sock tcp.Socket
}

func (lc *linkConn) Read(p []byte) (int, error) {
	return lc.sock.Read(p)
}

// Write sends all of p, continuing across partial sends.
func (lc *linkConn) Write(p []byte) (int, error) {
	var n int
	for n < len(p) {
		sent, err := lc.sock.Send(p[n:])
		if err != nil {
			return n, err
		}
		n += sent
	}
	return n, nil
}

// Close shuts the link down first so a read blocked on it wakes up, then
// releases the descriptor.
func (lc *linkConn) Close() error {
	_ = lc.sock.Shutdown()
	return lc.sock.Close()
}

// pipeLink pipes the local streams over an established link until either
// side ends. It consumes the link and closes it.
func pipeLink(ctx context.Context, cfg *config.Shared, deps *config.Dependencies, link io.ReadWriteCloser) error {
	if cfg.LogFile != "" {
		logged, err := log.NewLoggedLink(link, cfg.LogFile)
		if err != nil {
			link.Close()
			return err
		}
		link = logged
	}

	stdio := pipeio.NewStdio(config.GetStdinFunc(deps)(), config.GetStdoutFunc(deps)())
	pipeio.Pipe(ctx, link, stdio, func(err error) {
		log.ErrorMsg("Piping link: %s\n", err)
	})
	return nil
}
