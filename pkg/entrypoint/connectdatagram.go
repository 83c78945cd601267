package entrypoint

import (
	"bufio"
	"context"
	"dominicbreuker/picolink/pkg/config"
	"dominicbreuker/picolink/pkg/format"
	"dominicbreuker/picolink/pkg/log"
	"dominicbreuker/picolink/pkg/pipeio"
	"dominicbreuker/picolink/pkg/resolver"
	"dominicbreuker/picolink/pkg/transport"
	"dominicbreuker/picolink/pkg/transport/udp"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/muesli/cancelreader"
)

// connectDatagram turns each line of local input into one datagram toward
// the endpoint and prints replies that arrive within the timeout. A
// multicast host publishes to the group instead.
func connectDatagram(ctx context.Context, cfg *config.Shared, deps *config.Dependencies) error {
	ep, err := resolver.Resolve(ctx, cfg.Host, strconv.Itoa(cfg.Port), resolver.ProtoUDP)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", format.Addr(cfg.Host, cfg.Port), err)
	}
	log.VerboseMsg("Resolved %s\n", ep)

	var sock udp.Socket
	if ep.IsMulticast() {
		sock, err = udp.OpenMulticast(ep, cfg.Timeout, cfg.TTL)
	} else {
		sock, err = udp.Open(ep, cfg.Timeout)
	}
	if err != nil {
		return fmt.Errorf("opening link: %w", err)
	}

	stdio := pipeio.NewStdio(config.GetStdinFunc(deps)(), config.GetStdoutFunc(deps)())

	var closeOnce sync.Once
	shutdown := func() {
		closeOnce.Do(func() {
			_ = sock.Close()
			_ = stdio.Close()
		})
	}
	defer shutdown()

	log.InfoMsg("Sending datagrams to %s\n", ep)

	errCh := make(chan error, 1)
	go func() { errCh <- datagramSendLoop(cfg, sock, ep, stdio) }()

	select {
	case <-ctx.Done():
		// Closing the socket and stdio wakes the loop, as far as the
		// platform supports canceling a stdin read.
		shutdown()
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

// datagramSendLoop sends one datagram per input line and gives the peer one
// timeout window to answer after each send.
func datagramSendLoop(cfg *config.Shared, sock udp.Socket, dst *resolver.Endpoint, stdio *pipeio.Stdio) error {
	in := bufio.NewScanner(stdio)
	buf := make([]byte, maxDatagram)

	for in.Scan() {
		if _, err := sock.Send(in.Bytes(), dst); err != nil {
			return fmt.Errorf("sending datagram: %w", err)
		}

		if cfg.Timeout <= 0 {
			continue // no reply window without a timeout to bound it
		}
		n, err := sock.Read(buf)
		if err != nil {
			if transport.IsTimeout(err) {
				continue // nobody answered in time
			}
			return fmt.Errorf("reading reply: %w", err)
		}
		fmt.Fprintf(stdio, "%s\n", buf[:n])
	}

	if err := in.Err(); err != nil && !errors.Is(err, cancelreader.ErrCanceled) {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}
