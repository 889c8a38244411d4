// Package pipes allocates the pipe connections between adjacent stages of a
// pipeline.
//
// A stage needs at most its predecessor's read end and its own successor's
// write end, so connections live in a two slot ring: Previous is the
// connection the current stage reads from and Next the one it writes to.
// After each stage is created the ring is advanced and Next becomes Previous.
package pipes

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrPipe is returned when a pipe connection can't be created.
var ErrPipe = errors.New("cannot create pipe")

// Conn is one pipe connection. A nil end has been closed.
type Conn struct {
	R *os.File
	W *os.File
}

// Held returns the number of ends still open.
func (c *Conn) Held() int {
	if c == nil {
		return 0
	}
	n := 0
	if c.R != nil {
		n++
	}
	if c.W != nil {
		n++
	}
	return n
}

// CloseRead closes the read end if it is still open.
func (c *Conn) CloseRead() error {
	if c == nil || c.R == nil {
		return nil
	}
	err := c.R.Close()
	c.R = nil
	return err
}

// CloseWrite closes the write end if it is still open.
func (c *Conn) CloseWrite() error {
	if c == nil || c.W == nil {
		return nil
	}
	err := c.W.Close()
	c.W = nil
	return err
}

// Close closes both ends.
func (c *Conn) Close() error {
	return errors.Join(c.CloseRead(), c.CloseWrite())
}

// Ring is the two slot pipe ring for one pipeline invocation. The zero value
// is ready to use; a Ring must not be shared between pipelines.
type Ring struct {
	slots [2]*Conn
	next  int

	// opened counts connections created over the ring's lifetime.
	opened int
}

// OpenNext creates a connection in the Next slot, pending consumption by the
// next stage. Both ends are close-on-exec, so only processes that are handed
// an end explicitly ever hold it.
func (r *Ring) OpenNext() (*Conn, error) {
	if held := r.slots[r.next].Held(); held != 0 {
		return nil, fmt.Errorf("%w: slot still holds %d open ends", ErrPipe, held)
	}

	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPipe, err)
	}

	conn := &Conn{
		R: os.NewFile(uintptr(fds[0]), "|0"),
		W: os.NewFile(uintptr(fds[1]), "|1"),
	}
	r.slots[r.next] = conn
	r.opened++
	return conn, nil
}

// Previous returns the connection the current stage reads from, or nil.
func (r *Ring) Previous() *Conn {
	return r.slots[1-r.next]
}

// Next returns the connection the current stage writes to, or nil.
func (r *Ring) Next() *Conn {
	return r.slots[r.next]
}

// ReleaseConsumer closes the read end of Previous in the calling process once
// the stage reading it has been created.
func (r *Ring) ReleaseConsumer() error {
	return r.Previous().CloseRead()
}

// ReleaseProducer closes the write end of Next in the calling process once
// the stage writing it has been created.
func (r *Ring) ReleaseProducer() error {
	return r.Next().CloseWrite()
}

// Advance rotates the ring so Next becomes Previous. A fully closed
// Previous slot is dropped.
func (r *Ring) Advance() {
	prev := 1 - r.next
	if r.slots[prev].Held() == 0 {
		r.slots[prev] = nil
	}
	r.next = prev
}

// Opened returns how many connections the ring has created.
func (r *Ring) Opened() int {
	return r.opened
}

// Held returns the number of raw pipe ends still open in the calling process.
func (r *Ring) Held() int {
	return r.slots[0].Held() + r.slots[1].Held()
}

// Close closes every end still held.
func (r *Ring) Close() error {
	var errs []error
	for i, c := range r.slots {
		if c != nil {
			errs = append(errs, c.Close())
			r.slots[i] = nil
		}
	}
	return errors.Join(errs...)
}
