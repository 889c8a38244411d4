package commands

import (
	"fmt"
	"syscall"
)

// Signaler delivers a signal to every process of a job.
type Signaler interface {
	Signal(jobID int, sig syscall.Signal) error
}

// Kill sends signal to job jobID. It doesn't wait for the job to exit.
func Kill(jobs Signaler, signal, jobID int) error {
	if signal < 0 {
		return fmt.Errorf("kill: %d: invalid signal specification", signal)
	}
	if err := jobs.Signal(jobID, syscall.Signal(signal)); err != nil {
		return fmt.Errorf("kill: %w", err)
	}
	return nil
}
