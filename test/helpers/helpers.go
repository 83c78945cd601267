// Package helpers provides common utilities for integration and end-to-end tests.
package helpers

import (
	"dominicbreuker/picolink/mocks"
	"dominicbreuker/picolink/pkg/config"
	"io"
	"net"
)

// NewStdioDeps creates a mock stdio and a dependency struct wiring it in,
// one pair per probe side under test.
func NewStdioDeps() (*mocks.MockStdio, *config.Dependencies) {
	mockStdio := mocks.NewMockStdio()

	deps := &config.Dependencies{
		Stdin:  func() io.Reader { return mockStdio.GetStdin() },
		Stdout: func() io.Writer { return mockStdio.GetStdout() },
	}

	return mockStdio, deps
}

// FreePort reserves a port on loopback for the given network ("tcp" or
// "udp") and releases it again so the code under test can bind it.
func FreePort(network string) (int, error) {
	switch network {
	case "udp":
		pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
		if err != nil {
			return 0, err
		}
		defer pc.Close()
		return pc.LocalAddr().(*net.UDPAddr).Port, nil
	default:
		ls, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return 0, err
		}
		defer ls.Close()
		return ls.Addr().(*net.TCPAddr).Port, nil
	}
}
