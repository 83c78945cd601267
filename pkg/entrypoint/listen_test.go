package entrypoint

import (
	"context"
	"dominicbreuker/picolink/mocks"
	"dominicbreuker/picolink/pkg/resolver"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// dialRetry dials the address until the listener under test is up.
func dialRetry(t *testing.T, network, addr string) net.Conn {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, err := net.Dial(network, addr)
		if err == nil {
			return conn
		}
		if time.Now().After(deadline) {
			t.Fatalf("net.Dial(%s) did not succeed: %v", addr, err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// it should accept a link and pipe bytes in both directions
func TestListen_StreamSession(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	port := freeTCPPort(t)
	cfg := testConfig(resolver.ProtoTCP, port)

	m := mocks.NewMockStdio()
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- Listen(ctx, cfg, testDeps(m))
	}()

	conn := dialRetry(t, "tcp", fmt.Sprintf("127.0.0.1:%d", port))
	defer conn.Close()

	if _, err := conn.Write([]byte("hello from the far end\n")); err != nil {
		t.Fatalf("conn.Write() error = %v", err)
	}
	if err := m.WaitForOutput("hello from the far end", 2000); err != nil {
		t.Fatalf("peer data did not arrive: %v", err)
	}

	if _, err := m.WriteToStdin([]byte("hello from the near end\n")); err != nil {
		t.Fatalf("WriteToStdin() error = %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("conn.Read() error = %v", err)
	}
	if got := string(buf[:n]); !strings.Contains(got, "hello from the near end") {
		t.Errorf("peer read %q, want local input", got)
	}

	// Hanging up ends the single session.
	conn.Close()
	if err := waitForError(t, errCh, 2*time.Second); err != nil {
		t.Errorf("Listen() error = %v, want nil", err)
	}
}

// it should stop waiting for links when the context ends
func TestListen_CancelWhileWaiting(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	cfg := testConfig(resolver.ProtoTCP, freeTCPPort(t))

	m := mocks.NewMockStdio()
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- Listen(ctx, cfg, testDeps(m))
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	if err := waitForError(t, errCh, 2*time.Second); err != nil {
		t.Errorf("Listen() error = %v, want nil", err)
	}
}

// it should print arriving datagrams line by line
func TestListen_DatagramPrints(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	port := freeUDPPort(t)
	cfg := testConfig(resolver.ProtoUDP, port)

	m := mocks.NewMockStdio()
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- Listen(ctx, cfg, testDeps(m))
	}()

	sender, err := net.Dial("udp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		t.Fatalf("net.Dial() error = %v", err)
	}
	defer sender.Close()

	// The listener may still be binding, so keep sending until it answers.
	arrived := false
	for i := 0; i < 50 && !arrived; i++ {
		if _, err := sender.Write([]byte("dgram payload")); err != nil {
			t.Fatalf("sender.Write() error = %v", err)
		}
		arrived = m.WaitForOutput("dgram payload", 100) == nil
	}
	if !arrived {
		t.Fatalf("datagram never showed up, stdout: %q", m.ReadFromStdout())
	}

	cancel()
	if err := waitForError(t, errCh, 2*time.Second); err != nil {
		t.Errorf("Listen() error = %v, want nil", err)
	}
}
