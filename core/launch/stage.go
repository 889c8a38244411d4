// Package launch creates one operating-system process per pipeline stage.
//
// A stage is the shell's own executable started again in stage mode. The
// stage applies its file redirections, then runs the new-process handler for
// its command kind, which for external programs replaces the stage with the
// program. Programs that embed the shell must call Init first thing in main.
package launch

import (
	"fmt"
	"os"
	"strconv"

	"github.com/josephlewis42/quash/core/command"
	"github.com/josephlewis42/quash/core/dispatch"
	"github.com/josephlewis42/quash/core/vos"
	getopt "github.com/pborman/getopt/v2"
	"golang.org/x/sys/unix"
)

// StageArg is the first argument of a stage process.
const StageArg = "__quash_stage__"

// Exit status of a stage whose redirection couldn't be applied.
const StatusRedirectFailed = 1

// StageOptions are the redirections a stage applies to itself.
type StageOptions struct {
	In     string
	Out    string
	Append bool
}

// args renders the options followed by kind and argv as a stage flag vector.
func (o StageOptions) args(kind command.Kind, argv []string) []string {
	out := []string{StageArg}
	if o.In != "" {
		out = append(out, "--in", o.In)
	}
	if o.Out != "" {
		out = append(out, "--out", o.Out)
		if o.Append {
			out = append(out, "--append")
		}
	}
	out = append(out, "--", strconv.Itoa(int(kind)))
	return append(out, argv...)
}

// Init runs the stage and exits if the process was started as a stage, and
// returns otherwise.
func Init() {
	if len(os.Args) < 2 || os.Args[1] != StageArg {
		return
	}

	os.Exit(Stage(os.Args[1:], dispatch.Default(), &vos.Proc{VEnv: vos.OSEnv{}, VIO: vos.NewOSIO()}))
}

// Stage runs the stage described by args, which start with StageArg, and
// returns its exit status.
func Stage(args []string, table *dispatch.Table, proc vos.VOS) int {
	set := getopt.New()
	in := set.StringLong("in", 0, "", "read standard input from FILE", "FILE")
	out := set.StringLong("out", 0, "", "write standard output to FILE", "FILE")
	appendOut := set.BoolLong("append", 0, "append to the --out file instead of truncating it")

	if err := set.Getopt(args, nil); err != nil {
		fmt.Fprintf(proc.Stderr(), "quash: stage: %v\n", err)
		return StatusRedirectFailed
	}

	rest := set.Args()
	if len(rest) == 0 {
		fmt.Fprintln(proc.Stderr(), "quash: stage: missing command type")
		return StatusRedirectFailed
	}
	kind, err := strconv.Atoi(rest[0])
	if err != nil {
		fmt.Fprintf(proc.Stderr(), "Unknown command type: %s\n", rest[0])
		return 1
	}

	opts := StageOptions{In: *in, Out: *out, Append: *appendOut}
	if err := opts.apply(); err != nil {
		fmt.Fprintf(proc.Stderr(), "quash: %v\n", err)
		return StatusRedirectFailed
	}

	return table.RunChild(proc, command.Kind(kind), rest[1:])
}

// apply opens the redirection files and duplicates them onto standard input
// and output, replacing whatever pipe end the stage was started with.
func (o StageOptions) apply() error {
	if o.In != "" {
		f, err := os.Open(o.In)
		if err != nil {
			return err
		}
		if err := dupOnto(f, unix.Stdin); err != nil {
			return err
		}
	}

	if o.Out != "" {
		flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if o.Append {
			flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}
		f, err := os.OpenFile(o.Out, flag, 0666)
		if err != nil {
			return err
		}
		if err := dupOnto(f, unix.Stdout); err != nil {
			return err
		}
	}
	return nil
}

func dupOnto(f *os.File, fd int) error {
	defer f.Close()
	if err := unix.Dup3(int(f.Fd()), fd, 0); err != nil {
		return fmt.Errorf("%s: %w", f.Name(), err)
	}
	return nil
}
