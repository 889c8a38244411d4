package core

import (
	"os"
	"os/signal"
)

// catchInterrupts keeps SIGINT from stopping the shell until stop is
// called. Foreground stages share the terminal's process group and still
// receive it; caught signals are restored to their default action in the
// processes the shell starts.
func (s *Shell) catchInterrupts() (stop func()) {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range interrupts {
			s.log.Debug("interrupt")
		}
	}()

	return func() {
		signal.Stop(interrupts)
		close(interrupts)
		<-done
	}
}
