package pipeio

import (
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muesli/cancelreader"
)

// fakeRWC is a fake ReadWriteCloser for testing.
type fakeRWC struct {
	reader io.Reader
	writer io.Writer
	closed bool
	mu     sync.Mutex
}

func newFakeRWC(reader io.Reader, writer io.Writer) *fakeRWC {
	return &fakeRWC{
		reader: reader,
		writer: writer,
	}
}

func (f *fakeRWC) Read(p []byte) (n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, io.EOF
	}
	return f.reader.Read(p)
}

func (f *fakeRWC) Write(p []byte) (n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, io.ErrClosedPipe
	}
	return f.writer.Write(p)
}

func (f *fakeRWC) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeRWC) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// errorReader always fails with a fixed error.
type errorReader struct {
	err error
}

func (r *errorReader) Read(p []byte) (int, error) {
	return 0, r.err
}

// errCollector is a goroutine-safe logfunc for Pipe.
type errCollector struct {
	mu   sync.Mutex
	errs []error
}

func (c *errCollector) logfunc(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func (c *errCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errs)
}

func TestPipe_BidirectionalCopy(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// One pipe pair per side: Pipe bridges the local ends, the test drives
	// the remote ends.
	linkLocal, linkRemote := net.Pipe()
	ioLocal, ioRemote := net.Pipe()
	defer linkRemote.Close()
	defer ioRemote.Close()

	collector := &errCollector{}
	done := make(chan struct{})
	go func() {
		Pipe(ctx, linkLocal, ioLocal, collector.logfunc)
		close(done)
	}()

	// Local input must come out on the link side.
	go ioRemote.Write([]byte("to the link"))
	buf := make([]byte, 32)
	n, err := linkRemote.Read(buf)
	if err != nil {
		t.Fatalf("linkRemote.Read() error = %v", err)
	}
	if string(buf[:n]) != "to the link" {
		t.Errorf("link received %q, want %q", buf[:n], "to the link")
	}

	// Link data must come out on the local side.
	go linkRemote.Write([]byte("from the link"))
	n, err = ioRemote.Read(buf)
	if err != nil {
		t.Fatalf("ioRemote.Read() error = %v", err)
	}
	if string(buf[:n]) != "from the link" {
		t.Errorf("local side received %q, want %q", buf[:n], "from the link")
	}

	// Closing the link must end the pipe.
	linkRemote.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Pipe() did not return after the link closed")
	}
}

func TestPipe_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	client, clientRemote := net.Pipe()
	server, serverRemote := net.Pipe()
	defer clientRemote.Close()
	defer serverRemote.Close()

	collector := &errCollector{}
	done := make(chan struct{})
	go func() {
		Pipe(ctx, client, server, collector.logfunc)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Pipe() did not return after context cancellation")
	}
}

func TestPipe_EOF(t *testing.T) {
	t.Parallel()

	rwc1 := newFakeRWC(strings.NewReader(""), io.Discard)
	rwc2 := newFakeRWC(strings.NewReader(""), io.Discard)

	collector := &errCollector{}
	done := make(chan struct{})
	go func() {
		Pipe(context.Background(), rwc1, rwc2, collector.logfunc)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Pipe() did not return on EOF")
	}

	if !rwc1.isClosed() || !rwc2.isClosed() {
		t.Error("Pipe() did not close both ends")
	}
	if collector.count() != 0 {
		t.Errorf("Pipe() logged %d errors on clean EOF, want 0", collector.count())
	}
}

func TestPipe_IgnoresCancelReaderError(t *testing.T) {
	t.Parallel()

	rwc1 := newFakeRWC(&errorReader{err: cancelreader.ErrCanceled}, io.Discard)
	rwc2 := newFakeRWC(strings.NewReader(""), io.Discard)

	collector := &errCollector{}
	done := make(chan struct{})
	go func() {
		Pipe(context.Background(), rwc1, rwc2, collector.logfunc)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Pipe() did not return")
	}

	if collector.count() != 0 {
		t.Errorf("Pipe() logged %d errors for a cancelled reader, want 0", collector.count())
	}
}
