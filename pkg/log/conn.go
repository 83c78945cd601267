package log

import (
	"fmt"
	"io"
	"os"
)

// loggedLink wraps a link and copies everything read from or written over
// it into a capture file.
type loggedLink struct {
	link    io.ReadWriteCloser
	logFile *os.File
}

func (ll *loggedLink) Read(b []byte) (int, error) {
	n, err := ll.link.Read(b)
	if n > 0 {
		if _, werr := ll.logFile.Write(b[:n]); werr != nil {
			return n, fmt.Errorf("capturing read: %s", werr)
		}
	}
	return n, err
}

func (ll *loggedLink) Write(b []byte) (int, error) {
	n, err := ll.link.Write(b)
	if n > 0 {
		if _, werr := ll.logFile.Write(b[:n]); werr != nil {
			return n, fmt.Errorf("capturing write: %s", werr)
		}
	}
	return n, err
}

func (ll *loggedLink) Close() error {
	ll.logFile.Close()
	return ll.link.Close()
}

// NewLoggedLink wraps a link so all data read from and written over it is
// appended to a capture file at the specified path.
func NewLoggedLink(link io.ReadWriteCloser, logFilePath string) (io.ReadWriteCloser, error) {
	logFile, err := os.OpenFile(logFilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &loggedLink{link: link, logFile: logFile}, nil
}
