// Package pipeio moves bytes between the local process and a link until
// either side ends.
package pipeio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/muesli/cancelreader"
)

// Pipe copies in both directions between rwc1 and rwc2 until one direction
// ends or the context is cancelled, then closes both ends. Copy failures go
// to logfunc, except the cancellation error a cancelable reader returns
// when Pipe itself shuts it down.
func Pipe(ctx context.Context, rwc1, rwc2 io.ReadWriteCloser, logfunc func(error)) {
	var wg sync.WaitGroup
	var o sync.Once

	shutdown := func() {
		rwc1.Close()
		rwc2.Close()

		wg.Done()
	}
	wg.Add(1)

	stop := context.AfterFunc(ctx, func() {
		o.Do(shutdown)
	})
	defer stop()

	go func() {
		if _, err := io.Copy(rwc1, rwc2); err != nil && !errors.Is(err, cancelreader.ErrCanceled) {
			logfunc(fmt.Errorf("io.Copy(rwc1, rwc2): %s", err))
		}
		o.Do(shutdown)
	}()

	go func() {
		if _, err := io.Copy(rwc2, rwc1); err != nil && !errors.Is(err, cancelreader.ErrCanceled) {
			logfunc(fmt.Errorf("io.Copy(rwc2, rwc1): %s", err))
		}
		o.Do(shutdown)
	}()

	wg.Wait()
}
