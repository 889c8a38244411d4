package launch

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/quash/core/command"
	"github.com/josephlewis42/quash/core/dispatch"
	"github.com/josephlewis42/quash/core/jobs"
	"github.com/josephlewis42/quash/core/pipes"
	"github.com/josephlewis42/quash/core/vos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	Init()
	os.Exit(m.Run())
}

type testLauncher struct {
	*Launcher
	dir    string
	diag   *bytes.Buffer
	env    *vos.MapEnv
	jobs   *jobs.Registry
	errOut string
}

func newTestLauncher(t *testing.T) *testLauncher {
	t.Helper()

	dir := t.TempDir()
	env := vos.NewMapEnvFromEnvList(os.Environ())
	env.Stat = os.Stat
	require.NoError(t, env.Chdir(dir))

	registry := jobs.NewRegistry(nil)
	l, err := NewLauncher(dispatch.Default(), &dispatch.Runtime{Env: env, Jobs: registry}, zaptest.NewLogger(t))
	require.NoError(t, err)

	devNull, err := os.Open(os.DevNull)
	require.NoError(t, err)
	t.Cleanup(func() { devNull.Close() })

	errOut := filepath.Join(dir, "stage.stderr")
	stderr, err := os.Create(errOut)
	require.NoError(t, err)
	t.Cleanup(func() { stderr.Close() })

	l.Stdin = devNull
	l.Stdout = stderr
	l.Stderr = stderr
	diag := &bytes.Buffer{}
	l.Diagnostics = diag

	return &testLauncher{Launcher: l, dir: dir, diag: diag, env: env, jobs: registry, errOut: errOut}
}

// run launches every holder as one job and waits for it.
func (tl *testLauncher) run(t *testing.T, holders ...command.Holder) *jobs.Job {
	t.Helper()

	ring := &pipes.Ring{}
	job := jobs.New("test")
	for _, h := range holders {
		_, err := tl.Launch(h, ring, job)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, ring.Held(), "every pipe end is closed once the pipeline is built")
	job.Wait(jobs.WaitReaper{}, func(pid int, err error) {
		t.Errorf("reaping %d: %v", pid, err)
	})
	return job
}

func (tl *testLauncher) path(name string) string {
	return filepath.Join(tl.dir, name)
}

func readFile(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(name)
	require.NoError(t, err)
	return string(b)
}

func TestLaunch_RedirectOut(t *testing.T) {
	tl := newTestLauncher(t)

	tl.run(t, command.Holder{
		Cmd:         command.Echo{Args: []string{"hello", "world"}},
		Flags:       command.RedirectOut,
		RedirectOut: tl.path("out.txt"),
	})

	assert.Equal(t, "hello world\n", readFile(t, tl.path("out.txt")))
}

func TestLaunch_EchoDashWords(t *testing.T) {
	tl := newTestLauncher(t)

	job := tl.run(t, command.Holder{
		Cmd:         command.Echo{Args: []string{"-h", "-5", "degrees"}},
		Flags:       command.RedirectOut,
		RedirectOut: tl.path("out.txt"),
	})

	assert.Equal(t, 0, job.ExitStatus())
	assert.Equal(t, "-h -5 degrees\n", readFile(t, tl.path("out.txt")))
}

func TestLaunch_AppendVsTruncate(t *testing.T) {
	tl := newTestLauncher(t)
	out := tl.path("out.txt")
	require.NoError(t, os.WriteFile(out, []byte("old contents\n"), 0600))

	tl.run(t, command.Holder{Cmd: command.Echo{Args: []string{"new"}}, Flags: command.RedirectOut, RedirectOut: out})
	assert.Equal(t, "new\n", readFile(t, out))

	tl.run(t, command.Holder{Cmd: command.Echo{Args: []string{"more"}}, Flags: command.RedirectOut | command.RedirectAppend, RedirectOut: out})
	assert.Equal(t, "new\nmore\n", readFile(t, out))
}

func TestLaunch_Pipeline(t *testing.T) {
	tl := newTestLauncher(t)
	out := tl.path("out.txt")

	job := tl.run(t,
		command.Holder{Cmd: command.Echo{Args: []string{"b\na\nc"}}, Flags: command.PipeOut},
		command.Holder{Cmd: command.Generic{Args: []string{"sort"}}, Flags: command.PipeIn | command.PipeOut},
		command.Holder{Cmd: command.Generic{Args: []string{"cat"}}, Flags: command.PipeIn | command.RedirectOut, RedirectOut: out},
	)

	assert.Equal(t, 3, job.Len())
	assert.Equal(t, "a\nb\nc\n", readFile(t, out))
	assert.Equal(t, 0, job.ExitStatus())
}

func TestLaunch_RedirectInOverridesPipe(t *testing.T) {
	tl := newTestLauncher(t)
	in := tl.path("in.txt")
	out := tl.path("out.txt")
	require.NoError(t, os.WriteFile(in, []byte("from file\n"), 0600))

	tl.run(t,
		command.Holder{Cmd: command.Echo{Args: []string{"from pipe"}}, Flags: command.PipeOut},
		command.Holder{
			Cmd:         command.Generic{Args: []string{"cat"}},
			Flags:       command.PipeIn | command.RedirectIn | command.RedirectOut,
			RedirectIn:  in,
			RedirectOut: out,
		},
	)

	assert.Equal(t, "from file\n", readFile(t, out))
}

func TestLaunch_RedirectOutOverridesPipe(t *testing.T) {
	tl := newTestLauncher(t)
	first := tl.path("first.txt")
	second := tl.path("second.txt")

	tl.run(t,
		command.Holder{Cmd: command.Echo{Args: []string{"hello"}}, Flags: command.PipeOut | command.RedirectOut, RedirectOut: first},
		command.Holder{Cmd: command.Generic{Args: []string{"cat"}}, Flags: command.PipeIn | command.RedirectOut, RedirectOut: second},
	)

	assert.Equal(t, "hello\n", readFile(t, first))
	assert.Equal(t, "", readFile(t, second), "the consumer sees end of file")
}

func TestLaunch_CommandNotFound(t *testing.T) {
	tl := newTestLauncher(t)

	job := tl.run(t, command.Holder{Cmd: command.Generic{Args: []string{"quash-no-such-program"}}})

	assert.Equal(t, 127, job.ExitStatus())
	assert.Contains(t, readFile(t, tl.errOut), "quash: quash-no-such-program: command not found")
}

func TestLaunch_ExitStatus(t *testing.T) {
	tl := newTestLauncher(t)

	job := tl.run(t, command.Holder{Cmd: command.Generic{Args: []string{"sh", "-c", "exit 3"}}})
	assert.Equal(t, 3, job.ExitStatus())
}

func TestLaunch_RedirectInMissing(t *testing.T) {
	tl := newTestLauncher(t)

	job := tl.run(t, command.Holder{
		Cmd:        command.Generic{Args: []string{"cat"}},
		Flags:      command.RedirectIn,
		RedirectIn: tl.path("missing.txt"),
	})

	assert.Equal(t, StatusRedirectFailed, job.ExitStatus())
	assert.Contains(t, readFile(t, tl.errOut), "missing.txt")
}

func TestLaunch_StartFailure(t *testing.T) {
	tl := newTestLauncher(t)
	tl.Executable = tl.path("no-such-executable")

	ring := &pipes.Ring{}
	job := jobs.New("echo hi | cat")
	_, err := tl.Launch(command.Holder{Cmd: command.Echo{Args: []string{"hi"}}, Flags: command.PipeOut}, ring, job)

	assert.True(t, errors.Is(err, ErrStageStart), "got %v", err)
	assert.Equal(t, 0, ring.Held())
	assert.Equal(t, 0, job.Len())
}

func TestLaunch_ParentHandlers(t *testing.T) {
	tl := newTestLauncher(t)
	sub := tl.path("sub")
	require.NoError(t, os.Mkdir(sub, 0700))

	job := tl.run(t,
		command.Holder{Cmd: command.Cd{Dir: "sub"}},
		command.Holder{Cmd: command.Export{Name: "QUASH_TEST", Value: "yes"}},
		command.Holder{Cmd: command.Kill{Signal: 15, JobID: 9}},
	)

	assert.Equal(t, 3, job.Len(), "every stage gets a process")
	wd, _ := tl.env.Getwd()
	assert.Equal(t, sub, wd)
	assert.Equal(t, "yes", tl.env.Getenv("QUASH_TEST"))
	assert.Equal(t, "quash: kill: %9: no such job\n", tl.diag.String())
}

func TestLaunch_JobsSnapshot(t *testing.T) {
	tl := newTestLauncher(t)
	bg := jobs.New("sleep 100")
	bg.Add(1234)
	tl.jobs.Enqueue(bg)

	tl.run(t, command.Holder{Cmd: command.Jobs{}, Flags: command.RedirectOut, RedirectOut: tl.path("jobs.txt")})

	assert.Equal(t, "[1]\t    1234\tsleep 100\n", readFile(t, tl.path("jobs.txt")))
}

func TestLaunch_WorkingDirectory(t *testing.T) {
	tl := newTestLauncher(t)

	tl.run(t, command.Holder{Cmd: command.Pwd{}, Flags: command.RedirectOut, RedirectOut: "pwd.txt"})

	assert.Equal(t, tl.dir+"\n", readFile(t, tl.path("pwd.txt")))
}

func TestStageOptions_Args(t *testing.T) {
	got := StageOptions{In: "a", Out: "b", Append: true}.args(command.KindEcho, []string{"echo", "--in"})
	assert.Equal(t, []string{StageArg, "--in", "a", "--out", "b", "--append", "--", "1", "echo", "--in"}, got)

	got = StageOptions{}.args(command.KindPwd, []string{"pwd"})
	assert.Equal(t, []string{StageArg, "--", "2", "pwd"}, got)
}

func TestStage_UnknownKind(t *testing.T) {
	buf := &bytes.Buffer{}
	proc := &vos.Proc{VEnv: vos.NewMapEnv(), VIO: vos.NewVIOAdapter(nil, buf, buf)}

	status := Stage([]string{StageArg, "--", "77"}, dispatch.Default(), proc)
	assert.Equal(t, 1, status)
	assert.Equal(t, "Unknown command type: 77\n", buf.String())
}
