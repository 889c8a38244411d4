package jobs

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrNotChild is returned when a pid can't be reaped because it is not, or
// no longer, a child of this process.
var ErrNotChild = errors.New("not a child process")

// Reaper collects the exit status of child processes.
type Reaper interface {
	// Reap collects pid. With block false it returns done == false instead of
	// waiting for a running process. A pid that is not a child returns
	// ErrNotChild with done == true.
	Reap(pid int, block bool) (done bool, status int, err error)
}

// WaitReaper reaps with wait4(2).
type WaitReaper struct{}

var _ Reaper = WaitReaper{}

// Reap implements Reaper.
func (WaitReaper) Reap(pid int, block bool) (bool, int, error) {
	options := 0
	if !block {
		options = unix.WNOHANG
	}

	for {
		var ws unix.WaitStatus
		got, err := unix.Wait4(pid, &ws, options, nil)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ECHILD):
			return true, 0, fmt.Errorf("pid %d: %w", pid, ErrNotChild)
		case err != nil:
			return true, 0, fmt.Errorf("pid %d: %w", pid, err)
		case got == 0:
			return false, 0, nil
		}
		return true, exitStatus(ws), nil
	}
}

func exitStatus(ws unix.WaitStatus) int {
	switch {
	case ws.Exited():
		return ws.ExitStatus()
	case ws.Signaled():
		return 128 + int(ws.Signal())
	default:
		return 0
	}
}
