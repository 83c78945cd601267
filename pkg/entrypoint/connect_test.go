package entrypoint

import (
	"context"
	"dominicbreuker/picolink/mocks"
	"dominicbreuker/picolink/pkg/resolver"
	"dominicbreuker/picolink/pkg/transport"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

// it should pipe local input to the peer and peer output back
func TestConnect_StreamEcho(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	ls, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	defer ls.Close()

	go func() {
		conn, err := ls.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		io.Copy(conn, conn) // echo
	}()

	cfg := testConfig(resolver.ProtoTCP, ls.Addr().(*net.TCPAddr).Port)

	m := mocks.NewMockStdio()
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- Connect(ctx, cfg, testDeps(m))
	}()

	if _, err := m.WriteToStdin([]byte("ping over the link\n")); err != nil {
		t.Fatalf("WriteToStdin() error = %v", err)
	}
	if err := m.WaitForOutput("ping over the link", 2000); err != nil {
		t.Fatalf("echo did not come back: %v", err)
	}

	cancel()
	if err := waitForError(t, errCh, 2*time.Second); err != nil {
		t.Errorf("Connect() error = %v, want nil", err)
	}
}

// it should report a connection failure when nobody listens
func TestConnect_ConnectionRefused(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	cfg := testConfig(resolver.ProtoTCP, freeTCPPort(t))

	m := mocks.NewMockStdio()
	defer m.Close()

	err := Connect(context.Background(), cfg, testDeps(m))
	if err == nil {
		t.Fatal("Connect() error = nil, want error")
	}
	if !errors.Is(err, transport.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

// it should send one datagram per input line and print the reply
func TestConnect_DatagramReply(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	peer, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.ListenPacket() error = %v", err)
	}
	defer peer.Close()

	cfg := testConfig(resolver.ProtoUDP, peer.LocalAddr().(*net.UDPAddr).Port)
	cfg.Timeout = time.Second // generous reply window

	m := mocks.NewMockStdio()
	defer m.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- Connect(context.Background(), cfg, testDeps(m))
	}()

	if _, err := m.WriteToStdin([]byte("ping\n")); err != nil {
		t.Fatalf("WriteToStdin() error = %v", err)
	}

	buf := make([]byte, maxDatagram)
	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, addr, err := peer.ReadFrom(buf)
	if err != nil {
		t.Fatalf("peer.ReadFrom() error = %v", err)
	}
	if got := string(buf[:n]); got != "ping" {
		t.Errorf("peer received %q, want %q", got, "ping")
	}

	if _, err := peer.WriteTo([]byte("pong"), addr); err != nil {
		t.Fatalf("peer.WriteTo() error = %v", err)
	}
	if err := m.WaitForOutput("pong", 2000); err != nil {
		t.Errorf("reply did not arrive: %v", err)
	}

	// EOF on stdin ends the probe cleanly.
	m.CloseStdin()
	if err := waitForError(t, errCh, 2*time.Second); err != nil {
		t.Errorf("Connect() error = %v, want nil", err)
	}
}

// it should fire and forget when no timeout bounds a reply window
func TestConnect_DatagramFireAndForget(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	peer, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.ListenPacket() error = %v", err)
	}
	defer peer.Close()

	cfg := testConfig(resolver.ProtoUDP, peer.LocalAddr().(*net.UDPAddr).Port)
	cfg.Timeout = 0 // no reply window, sends must not block

	m := mocks.NewMockStdio()
	defer m.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- Connect(context.Background(), cfg, testDeps(m))
	}()

	for _, msg := range []string{"first", "second"} {
		if _, err := m.WriteToStdin([]byte(msg + "\n")); err != nil {
			t.Fatalf("WriteToStdin() error = %v", err)
		}
	}

	buf := make([]byte, maxDatagram)
	for _, want := range []string{"first", "second"} {
		peer.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, _, err := peer.ReadFrom(buf)
		if err != nil {
			t.Fatalf("peer.ReadFrom() error = %v", err)
		}
		if got := string(buf[:n]); got != want {
			t.Errorf("peer received %q, want %q", got, want)
		}
	}

	m.CloseStdin()
	if err := waitForError(t, errCh, 2*time.Second); err != nil {
		t.Errorf("Connect() error = %v, want nil", err)
	}
}
