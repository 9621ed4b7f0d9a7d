package wlf

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalExitCode is the status the process exits with after a signal.
const SignalExitCode = 1

// AbortOnSignal aborts every session being created and exits the process
// when one of sigs arrives. Without sigs, it listens for SIGINT and SIGTERM.
// The handler is removed when ctx is done or stop is called.
func (r *Registry) AbortOnSignal(ctx context.Context, sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer signal.Stop(ch)

		select {
		case sig := <-ch:
			r.log.Warnw("signal received, aborting", "signal", sig.String())

			err := r.AbortAll()
			if err != nil {
				r.log.Errorw("abort failed", "error", err)
			}

			r.exit(SignalExitCode)
		case <-ctx.Done():
		case <-done:
		}
	}()

	var once sync.Once

	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}
