package launch

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/josephlewis42/quash/core/command"
	"github.com/josephlewis42/quash/core/dispatch"
	"github.com/josephlewis42/quash/core/jobs"
	"github.com/josephlewis42/quash/core/pipes"
	"go.uber.org/zap"
)

// ErrStageStart is returned when a stage process can't be created.
var ErrStageStart = errors.New("cannot start process")

// Launcher creates stage processes.
type Launcher struct {
	// Executable is started in stage mode; it must call Init.
	Executable string
	Table      *dispatch.Table
	Runtime    *dispatch.Runtime

	// Standard streams of stages that aren't piped.
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	// Diagnostics is where recoverable handler errors are reported.
	Diagnostics io.Writer
	Log         *zap.Logger
}

// NewLauncher creates a launcher that starts the running executable as
// stages and uses the process's standard streams.
func NewLauncher(table *dispatch.Table, rt *dispatch.Runtime, log *zap.Logger) (*Launcher, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("%w: locating executable: %v", ErrStageStart, err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Launcher{
		Executable:  exe,
		Table:       table,
		Runtime:     rt,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Diagnostics: os.Stderr,
		Log:         log,
	}, nil
}

// Launch creates the process for one stage and appends its pid to job.
//
// If the stage pipes its output, a connection is opened in ring first. Once
// the process exists the pipe ends handed to it are closed here, the ring is
// advanced, and the stage's controlling-process handler runs. Handler
// failures are reported to Diagnostics and don't fail the launch.
//
// On error no process was created and every end held by ring is closed.
func (l *Launcher) Launch(h command.Holder, ring *pipes.Ring, job *jobs.Job) (int, error) {
	if h.Flags.Has(command.PipeOut) {
		conn, err := ring.OpenNext()
		if err != nil {
			ring.Close()
			return 0, err
		}
		l.Log.Debug("pipe opened", zap.Uintptr("read_fd", conn.R.Fd()), zap.Uintptr("write_fd", conn.W.Fd()))
	}

	cmd := h.Cmd
	if cmd == nil {
		cmd = command.EOC{}
	}
	kind := cmd.Kind()
	argv, err := l.Table.Encode(l.Runtime, cmd)
	if err != nil && !errors.Is(err, dispatch.ErrUnknownKind) {
		ring.Close()
		return 0, err
	}

	stdin, stdout := l.Stdin, l.Stdout
	if h.Flags.Has(command.PipeIn) {
		if prev := ring.Previous(); prev != nil && prev.R != nil {
			stdin = prev.R
		}
	}
	if h.Flags.Has(command.PipeOut) {
		stdout = ring.Next().W
	}

	opts := StageOptions{}
	if h.Flags.Has(command.RedirectIn) {
		opts.In = h.RedirectIn
	}
	if h.Flags.Has(command.RedirectOut) {
		opts.Out = h.RedirectOut
		opts.Append = h.Flags.Has(command.RedirectAppend)
	}

	wd, err := l.Runtime.Env.Getwd()
	if err != nil {
		ring.Close()
		return 0, fmt.Errorf("%w: %v", ErrStageStart, err)
	}

	args := append([]string{l.Executable}, opts.args(kind, argv)...)
	proc, err := os.StartProcess(l.Executable, args, &os.ProcAttr{
		Dir:   wd,
		Env:   l.Runtime.Env.Environ(),
		Files: []*os.File{stdin, stdout, l.Stderr},
	})
	if err != nil {
		ring.Close()
		return 0, fmt.Errorf("%w: %s: %v", ErrStageStart, kind, err)
	}
	pid := proc.Pid
	// Reaping is done by pid with wait4, the handle isn't needed.
	_ = proc.Release()

	if h.Flags.Has(command.PipeIn) {
		ring.ReleaseConsumer()
	}
	if h.Flags.Has(command.PipeOut) {
		ring.ReleaseProducer()
	}
	ring.Advance()
	job.Add(pid)

	l.Log.Debug("stage launched", zap.Int("pid", pid), zap.Stringer("kind", kind), zap.Int("held", ring.Held()))

	if err := l.Table.RunParent(l.Runtime, cmd); err != nil && !errors.Is(err, dispatch.ErrUnknownKind) {
		l.Log.Warn("command failed", zap.Stringer("kind", kind), zap.Error(err))
		fmt.Fprintf(l.Diagnostics, "quash: %v\n", err)
	} else if k, ok := cmd.(command.Kill); ok && err == nil {
		l.Log.Info("signal sent", zap.Int("job", k.JobID), zap.Int("signal", k.Signal))
	}

	return pid, nil
}
