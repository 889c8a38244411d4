package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/josephlewis42/quash/core/config"
	"github.com/josephlewis42/quash/core/jobs"
	"github.com/josephlewis42/quash/core/launch"
	"github.com/josephlewis42/quash/core/vos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	launch.Init()
	os.Exit(m.Run())
}

type testShell struct {
	*Shell
	dir    string
	env    *vos.MapEnv
	stdout string
	stderr string
}

func newTestShell(t *testing.T, cfg *config.Configuration) *testShell {
	t.Helper()

	dir := t.TempDir()
	env := vos.NewMapEnvFromEnvList(os.Environ())
	env.Stat = os.Stat
	require.NoError(t, env.Chdir(dir))

	open := func(name string) *os.File {
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		t.Cleanup(func() { f.Close() })
		return f
	}
	stdin, err := os.Open(os.DevNull)
	require.NoError(t, err)
	t.Cleanup(func() { stdin.Close() })

	s, err := NewShell(ShellOptions{
		Config: cfg,
		Env:    env,
		Stdin:  stdin,
		Stdout: open("shell.stdout"),
		Stderr: open("shell.stderr"),
		Log:    zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	return &testShell{
		Shell:  s,
		dir:    dir,
		env:    env,
		stdout: filepath.Join(dir, "shell.stdout"),
		stderr: filepath.Join(dir, "shell.stderr"),
	}
}

func (ts *testShell) read(t *testing.T, name string) string {
	t.Helper()
	if !filepath.IsAbs(name) {
		name = filepath.Join(ts.dir, name)
	}
	b, err := os.ReadFile(name)
	require.NoError(t, err)
	return string(b)
}

func TestShell_RunScript(t *testing.T) {
	ts := newTestShell(t, nil)

	script := strings.Join([]string{
		"echo hello | cat > out.txt",
		"mkdir sub",
		"cd sub",
		"pwd > ../pwd.txt",
		"export GREETING=hi",
		"echo $GREETING >> ../out.txt",
		"exit",
		"echo never > ../never.txt",
	}, "\n")

	require.NoError(t, ts.RunScript(strings.NewReader(script)))

	assert.True(t, ts.Stopped())
	assert.Equal(t, "hello\nhi\n", ts.read(t, "out.txt"))
	assert.Equal(t, filepath.Join(ts.dir, "sub")+"\n", ts.read(t, "pwd.txt"))
	assert.Equal(t, "hi", ts.env.Getenv("GREETING"))
	assert.NoFileExists(t, filepath.Join(ts.dir, "never.txt"))
	assert.Empty(t, ts.read(t, ts.stderr))
}

func TestShell_ExitStopsLine(t *testing.T) {
	ts := newTestShell(t, nil)

	ts.RunCommand("echo one > a.txt; exit; echo two > b.txt")

	assert.True(t, ts.Stopped())
	assert.FileExists(t, filepath.Join(ts.dir, "a.txt"))
	assert.NoFileExists(t, filepath.Join(ts.dir, "b.txt"))
}

func TestShell_Background(t *testing.T) {
	ts := newTestShell(t, nil)

	require.NoError(t, ts.RunScript(strings.NewReader("sleep 0.2 &\n")))

	out := ts.read(t, ts.stdout)
	assert.Contains(t, out, jobs.StartedPrefix+"[1]\t")
	assert.Contains(t, out, jobs.CompletedPrefix+"[1]\t")
	assert.True(t, strings.HasSuffix(out, "\tsleep 0.2 &\n"))
}

func TestShell_Kill(t *testing.T) {
	ts := newTestShell(t, nil)

	require.NoError(t, ts.RunScript(strings.NewReader("sleep 30 &\nkill -KILL %1\n")))

	assert.Contains(t, ts.read(t, ts.stdout), jobs.CompletedPrefix+"[1]\t")
	assert.Empty(t, ts.read(t, ts.stderr))
}

func TestShell_Errors(t *testing.T) {
	ts := newTestShell(t, nil)

	ts.RunCommand("echo $(whoami)")
	ts.RunCommand("cd does-not-exist")
	ts.RunCommand("kill %4")
	ts.RunCommand("quash-no-such-program")

	stderr := ts.read(t, ts.stderr)
	assert.Contains(t, stderr, "quash: syntax error: unsupported expansion")
	assert.Contains(t, stderr, "quash: cd: ")
	assert.Contains(t, stderr, "quash: kill: %4: no such job")
	assert.Contains(t, stderr, "quash: quash-no-such-program: command not found")
	assert.False(t, ts.Stopped())
}

func TestShell_ConfigEnv(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Env = map[string]string{"QUASH_TEST_VAR": "from config"}

	ts := newTestShell(t, cfg)
	ts.RunCommand("echo $QUASH_TEST_VAR > out.txt")

	assert.Equal(t, "from config\n", ts.read(t, "out.txt"))
}

func TestExpandPrompt(t *testing.T) {
	env := vos.NewMapEnvFromEnvList([]string{
		"USER=alice",
		"HOSTNAME=box.example.com",
		"HOME=/home/alice",
	})

	cases := map[string]struct {
		tmpl string
		wd   string
		uid  int
		want string
	}{
		"default":      {DefaultPrompt, "/home/alice/src", 1000, "alice@box:~/src$ "},
		"home":         {DefaultPrompt, "/home/alice", 1000, "alice@box:~$ "},
		"root":         {DefaultPrompt, "/etc", 0, "alice@box:/etc# "},
		"home prefix":  {DefaultPrompt, "/home/alicex", 1000, "alice@box:/home/alicex$ "},
		"user only":    {`\u> `, "/", 1000, "alice> "},
		"plain string": {"quash> ", "/", 1000, "quash> "},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			require.NoError(t, env.Chdir(tc.wd))
			assert.Equal(t, tc.want, expandPrompt(tc.tmpl, env, tc.uid, false))
		})
	}
}
