package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	"github.com/josephlewis42/quash/core/vos"
	"golang.org/x/sys/unix"
)

// Exit statuses of a stage whose program couldn't be run.
const (
	StatusCannotExecute = 126
	StatusNotFound      = 127
)

// Exec replaces the calling process with the program args[0]. It only returns
// if the program can't be found or executed, after reporting why.
func Exec(proc vos.VOS, args []string) int {
	if len(args) == 0 {
		return 0
	}

	path, err := exec.LookPath(args[0])
	switch {
	case errors.Is(err, exec.ErrNotFound):
		fmt.Fprintf(proc.Stderr(), "quash: %s: command not found\n", args[0])
		return StatusNotFound
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(proc.Stderr(), "quash: %s: No such file or directory\n", args[0])
		return StatusNotFound
	case err != nil:
		fmt.Fprintf(proc.Stderr(), "quash: %s: %v\n", args[0], unwrapPathError(err))
		return StatusCannotExecute
	}

	err = unix.Exec(path, args, proc.Environ())
	fmt.Fprintf(proc.Stderr(), "quash: %s: %v\n", args[0], err)
	if errors.Is(err, unix.ENOENT) {
		return StatusNotFound
	}
	return StatusCannotExecute
}

var _ ChildFunc = Exec

func unwrapPathError(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return execErr.Err
	}
	return err
}
