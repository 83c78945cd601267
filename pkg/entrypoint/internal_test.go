package entrypoint

import (
	"dominicbreuker/picolink/mocks"
	"dominicbreuker/picolink/pkg/config"
	"dominicbreuker/picolink/pkg/resolver"
	"io"
	"net"
	"testing"
	"time"
)

// testConfig creates a standard test configuration for the given endpoint.
func testConfig(proto resolver.Protocol, port int) *config.Shared {
	return &config.Shared{
		Protocol: proto,
		Host:     "127.0.0.1",
		Port:     port,
		Lease:    config.DefaultLease,
		Timeout:  config.DefaultTimeout,
	}
}

// testDeps wires a mock stdio into the dependency struct.
func testDeps(m *mocks.MockStdio) *config.Dependencies {
	return &config.Dependencies{
		Stdin:  func() io.Reader { return m.GetStdin() },
		Stdout: func() io.Writer { return m.GetStdout() },
	}
}

// freeTCPPort reserves a TCP port on loopback and releases it again so the
// code under test can bind it.
func freeTCPPort(t *testing.T) int {
	t.Helper()

	ls, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	port := ls.Addr().(*net.TCPAddr).Port
	ls.Close()

	return port
}

// freeUDPPort reserves a UDP port on loopback and releases it again.
func freeUDPPort(t *testing.T) int {
	t.Helper()

	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.ListenPacket() error = %v", err)
	}
	port := pc.LocalAddr().(*net.UDPAddr).Port
	pc.Close()

	return port
}

// waitForError expects an entrypoint goroutine to return within the timeout.
func waitForError(t *testing.T, errCh <-chan error, timeout time.Duration) error {
	t.Helper()

	select {
	case err := <-errCh:
		return err
	case <-time.After(timeout):
		t.Fatal("entrypoint did not return in time")
		return nil
	}
}
