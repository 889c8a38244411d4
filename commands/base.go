// Package commands implements the semantics of the shell builtins. Handlers
// that produce output run inside a stage process; handlers that mutate the
// shell run in the controlling process.
package commands

import (
	"fmt"
	"io"

	"github.com/josephlewis42/quash/core/vos"
	getopt "github.com/pborman/getopt/v2"
)

// ChildFunc is a builtin that runs in a new process. args includes the
// command name as args[0]. The return value is the process exit status.
type ChildFunc func(proc vos.VOS, args []string) int

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a sone line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool
	// NeverBail skips interacting with stdout/stderr on failure and
	// always runs the callback.
	NeverBail bool

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was succcessful call the callback.
func (s *SimpleCommand) Run(proc vos.VOS, args []string, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	err := opts.Getopt(args, nil)
	if err != nil && !s.NeverBail {
		fmt.Fprintf(proc.Stderr(), "error: %s\n\n", err)

		s.PrintHelp(proc.Stdout())
		return 1
	}

	if *s.ShowHelp {
		s.PrintHelp(proc.Stdout())
		return 0
	}

	return callback()
}
