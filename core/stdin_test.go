package core

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatedStdin(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	gate := newGatedStdin(r)
	_, err = w.Write([]byte("ls\n"))
	require.NoError(t, err)

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, 16)
		n, _ := gate.Read(buf)
		got <- string(buf[:n])
	}()

	select {
	case s := <-got:
		t.Fatalf("read %q through a closed gate", s)
	case <-time.After(200 * time.Millisecond):
	}

	gate.SetOpen(true)
	select {
	case s := <-got:
		assert.Equal(t, "ls\n", s)
	case <-time.After(5 * time.Second):
		t.Fatal("read didn't finish after the gate opened")
	}
}

func TestGatedStdin_Close(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	gate := newGatedStdin(r)
	done := make(chan error, 1)
	go func() {
		_, err := gate.Read(make([]byte, 1))
		done <- err
	}()

	require.NoError(t, gate.Close())
	select {
	case err := <-done:
		assert.Equal(t, io.EOF, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close didn't unblock the reader")
	}
}
