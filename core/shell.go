// Package core wires the engine into an interactive shell: it reads lines,
// parses them into pipelines, and hands them to the orchestrator.
package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"strconv"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/josephlewis42/quash/core/config"
	"github.com/josephlewis42/quash/core/dispatch"
	"github.com/josephlewis42/quash/core/jobs"
	"github.com/josephlewis42/quash/core/launch"
	"github.com/josephlewis42/quash/core/parser"
	"github.com/josephlewis42/quash/core/pipeline"
	"github.com/josephlewis42/quash/core/vos"
	"go.uber.org/zap"
)

const (
	EnvHome     = "HOME"
	EnvUser     = "USER"
	EnvHostname = "HOSTNAME"

	DefaultPrompt = `\u@\h:\w\$ `
)

var (
	promptUserColor = color.New(color.FgGreen, color.Bold)
	promptDirColor  = color.New(color.FgBlue, color.Bold)
)

// ShellOptions configure a Shell. Nil streams default to the process's own.
type ShellOptions struct {
	Config *config.Configuration
	Env    vos.VEnv
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
	Log    *zap.Logger
}

// Shell reads command lines and runs them.
type Shell struct {
	env    vos.VEnv
	stdin  *os.File
	stdout *os.File
	stderr *os.File
	log    *zap.Logger

	prompt string
	color  bool

	parser *parser.Parser
	orch   *pipeline.Orchestrator
}

// NewShell creates a shell and the engine behind it.
func NewShell(opts ShellOptions) (*Shell, error) {
	s := &Shell{
		env:    opts.Env,
		stdin:  opts.Stdin,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
		log:    opts.Log,
		prompt: DefaultPrompt,
	}
	if s.env == nil {
		s.env = vos.OSEnv{}
	}
	if s.stdin == nil {
		s.stdin = os.Stdin
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	if s.stderr == nil {
		s.stderr = os.Stderr
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if cfg := opts.Config; cfg != nil {
		s.prompt = cfg.Prompt
		s.color = cfg.Color
		if err := vos.CopyEnv(s.env, cfg.Environ()); err != nil {
			return nil, err
		}
	}

	registry := jobs.NewRegistry(nil)
	launcher, err := launch.NewLauncher(dispatch.Default(), &dispatch.Runtime{Env: s.env, Jobs: registry}, s.log)
	if err != nil {
		return nil, err
	}
	launcher.Stdin = s.stdin
	launcher.Stdout = s.stdout
	launcher.Stderr = s.stderr
	launcher.Diagnostics = s.stderr

	s.orch = pipeline.New(launcher, registry, pipeline.Options{
		Printer: &jobs.Printer{W: s.stdout, Color: s.color},
		Stderr:  s.stderr,
		Log:     s.log,
	})
	s.parser = parser.New(s.lookup)
	return s, nil
}

// lookup resolves a variable for expansion.
func (s *Shell) lookup(name string) string {
	if name == "$" {
		return strconv.Itoa(os.Getpid())
	}
	return s.env.Getenv(name)
}

// Stopped reports whether the shell ran exit.
func (s *Shell) Stopped() bool {
	return s.orch.Stopped()
}

// RunCommand parses and runs one line.
func (s *Shell) RunCommand(line string) {
	pipelines, err := s.parser.Parse(line)
	if err != nil {
		s.log.Warn("parse failed", zap.String("line", line), zap.Error(err))
		fmt.Fprintf(s.stderr, "quash: %v\n", err)
		return
	}

	for _, p := range pipelines {
		if s.orch.Stopped() {
			return
		}
		// Failures are reported by the orchestrator.
		_ = s.orch.Run(p)
	}
}

// RunScript runs every line of r until it ends or exit runs, then waits for
// background jobs.
func (s *Shell) RunScript(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for !s.Stopped() && scanner.Scan() {
		s.orch.CheckBackground()
		s.RunCommand(scanner.Text())
	}
	s.Wait()
	return scanner.Err()
}

// Wait blocks until every background job has completed.
func (s *Shell) Wait() {
	s.orch.WaitBackground()
}

// RunInteractive prompts for lines with line editing until input ends or
// exit runs.
func (s *Shell) RunInteractive() error {
	gate := newGatedStdin(s.stdin)
	defer gate.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       s.Prompt(),
		Stdin:        gate,
		Stdout:       s.stdout,
		Stderr:       s.stderr,
		HistoryLimit: -1,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	stop := s.catchInterrupts()
	defer stop()

	for !s.Stopped() {
		s.orch.CheckBackground()

		rl.SetPrompt(s.Prompt())
		gate.SetOpen(true)
		line, err := rl.Readline()
		gate.SetOpen(false)

		switch {
		case err == io.EOF:
			return nil // Input closed, quit.
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case err != nil:
			s.log.Error("reading line", zap.Error(err))
			return err
		case strings.TrimSpace(line) == "":
			continue
		default:
			s.log.Debug("line read", zap.String("line", line))
			s.RunCommand(line)
		}
	}
	return nil
}

// Prompt expands the prompt template: \u user, \h short host name, \w
// working directory with $HOME as ~, \$ # for root and $ otherwise.
func (s *Shell) Prompt() string {
	return expandPrompt(s.prompt, s.env, os.Geteuid(), s.color)
}

func expandPrompt(tmpl string, env vos.VEnv, uid int, colored bool) string {
	username := env.Getenv(EnvUser)
	if username == "" {
		if u, err := user.Current(); err == nil {
			username = u.Username
		}
	}

	host := env.Getenv(EnvHostname)
	if host == "" {
		host, _ = os.Hostname()
	}
	host, _, _ = strings.Cut(host, ".")

	wd, _ := env.Getwd()
	home := env.Getenv(EnvHome)
	if home != "" && (wd == home || strings.HasPrefix(wd, strings.TrimSuffix(home, "/")+"/")) {
		wd = "~" + strings.TrimPrefix(wd, home)
	}

	userHost := username + "@" + host
	if colored {
		userHost = promptUserColor.Sprint(userHost)
		wd = promptDirColor.Sprint(wd)
	}

	prompt := strings.ReplaceAll(tmpl, `\u@\h`, userHost)
	prompt = strings.ReplaceAll(prompt, `\u`, username)
	prompt = strings.ReplaceAll(prompt, `\h`, host)
	prompt = strings.ReplaceAll(prompt, `\w`, wd)

	if uid == 0 {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}
	return prompt
}
