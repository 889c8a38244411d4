package cmd

import (
	"bytes"
	"testing"

	"github.com/josephlewis42/quash/core/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEntry(t *testing.T) {
	le := &logger.Entry{
		Level:   "info",
		Message: "background job started",
		Session: "abc",
		Fields: map[string]interface{}{
			logger.TimeKey:    "2021-01-01T00:00:00Z",
			logger.LevelKey:   "info",
			logger.MessageKey: "background job started",
			logger.SessionKey: "abc",
			"job":             float64(1),
			"caller":          "pipeline/orchestrator.go:121",
		},
	}

	assert.Equal(t, `2021-01-01T00:00:00Z INFO background job started job="1"`, formatEntry(le))
}

func TestBuiltinsCmd(t *testing.T) {
	var out bytes.Buffer
	builtinsCmd.SetOut(&out)

	require.NoError(t, builtinsCmd.RunE(builtinsCmd, nil))

	assert.Contains(t, out.String(), "KIND")
	assert.Regexp(t, `(?m)^echo\s+new process$`, out.String())
	assert.Regexp(t, `(?m)^cd\s+shell$`, out.String())
	assert.Regexp(t, `(?m)^exit\s+none$`, out.String())
}

func TestBuiltinsCmd_OneKind(t *testing.T) {
	var out bytes.Buffer
	builtinsCmd.SetOut(&out)

	require.NoError(t, builtinsCmd.RunE(builtinsCmd, []string{"kill"}))

	assert.Regexp(t, `(?m)^kill\s+new process, shell$`, out.String())
	assert.NotContains(t, out.String(), "echo")

	assert.Error(t, builtinsCmd.RunE(builtinsCmd, []string{"nope"}))
}
