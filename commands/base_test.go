package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/quash/core/vos"
	"github.com/sebdah/goldie/v2"
)

type goldenTestSuite map[string]goldenTest

type goldenTest struct {
	Args []string
}

// Run executes each case against a fresh in-memory process rooted at /home/test
// and compares stdout and stderr with testdata/golden/NAME.golden.
func (gts goldenTestSuite) Run(t *testing.T, cmd ChildFunc) {
	t.Helper()

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
	)

	for tn, tc := range gts {
		t.Run(tn, func(t *testing.T) {
			out, _ := runChild(cmd, tc.Args...)
			g.Assert(t, tn, out)
		})
	}
}

func runChild(cmd ChildFunc, args ...string) ([]byte, int) {
	env := vos.NewMapEnvFromEnvList([]string{"HOME=/home/test"})
	_ = env.Chdir("/home/test")

	buf := &bytes.Buffer{}
	proc := &vos.Proc{VEnv: env, VIO: vos.NewVIOAdapter(nil, buf, buf)}
	status := cmd(proc, args)
	return buf.Bytes(), status
}
