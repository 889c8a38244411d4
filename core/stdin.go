package core

import (
	"errors"
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// pollIntervalMillis bounds how long a closed gate takes to notice it was opened.
const pollIntervalMillis = 50

// gatedStdin reads a file only while its gate is open. Line editing reads
// ahead in a goroutine; the gate keeps it from consuming input meant for a
// foreground job between prompts.
type gatedStdin struct {
	f *os.File

	mu     sync.Mutex
	cond   *sync.Cond
	open   bool
	closed bool
}

func newGatedStdin(f *os.File) *gatedStdin {
	g := &gatedStdin{f: f}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// SetOpen opens or closes the gate.
func (g *gatedStdin) SetOpen(open bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = open
	g.cond.Broadcast()
}

// waitOpen blocks until the gate is open, returning false once closed.
func (g *gatedStdin) waitOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for !g.open && !g.closed {
		g.cond.Wait()
	}
	return !g.closed
}

func (g *gatedStdin) isOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open && !g.closed
}

// Read implements io.Reader.
func (g *gatedStdin) Read(b []byte) (int, error) {
	fds := []unix.PollFd{{Fd: int32(g.f.Fd()), Events: unix.POLLIN}}
	for {
		if !g.waitOpen() {
			return 0, io.EOF
		}

		n, err := unix.Poll(fds, pollIntervalMillis)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return 0, err
		case n == 0:
			continue
		}

		if !g.isOpen() {
			continue
		}
		return g.f.Read(b)
	}
}

// Close unblocks pending reads; the file itself is left open.
func (g *gatedStdin) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.cond.Broadcast()
	return nil
}
