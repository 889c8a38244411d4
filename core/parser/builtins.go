package parser

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"github.com/josephlewis42/quash/core/command"
	"golang.org/x/sys/unix"
)

// builtin maps an argument vector to the commands it names.
func builtin(args []string) ([]command.Command, error) {
	switch args[0] {
	case "echo":
		return one(command.Echo{Args: args[1:]})
	case "pwd":
		return one(command.Pwd{})
	case "jobs":
		return one(command.Jobs{})
	case "exit", "quit":
		return one(command.Exit{})
	case "cd":
		switch len(args) {
		case 1:
			return one(command.Cd{})
		case 2:
			return one(command.Cd{Dir: args[1]})
		default:
			return nil, fmt.Errorf("%w: cd: too many arguments", ErrSyntax)
		}
	case "export":
		return parseExport(args[1:])
	case "kill":
		k, err := parseKill(args[1:])
		if err != nil {
			return nil, err
		}
		return one(k)
	default:
		return one(command.Generic{Args: args})
	}
}

func one(c command.Command) ([]command.Command, error) {
	return []command.Command{c}, nil
}

func parseExport(args []string) ([]command.Command, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: export: usage: export NAME=VALUE ...", ErrSyntax)
	}

	var out []command.Command
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("%w: export: %q: expected NAME=VALUE", ErrSyntax, arg)
		}
		out = append(out, command.Export{Name: name, Value: value})
	}
	return out, nil
}

// parseKill accepts "kill [-SIGNAL] [%]JOB" and "kill SIGNAL JOB". The signal
// defaults to SIGTERM and may be a number or a name with or without SIG.
func parseKill(args []string) (command.Kill, error) {
	usage := fmt.Errorf("%w: kill: usage: kill [-SIGNAL] [%%]JOB", ErrSyntax)

	sig := int(syscall.SIGTERM)
	switch {
	case len(args) == 2 && strings.HasPrefix(args[0], "-"):
		s, err := parseSignal(args[0][1:])
		if err != nil {
			return command.Kill{}, err
		}
		sig = s
		args = args[1:]
	case len(args) == 2:
		s, err := strconv.Atoi(args[0])
		if err != nil {
			return command.Kill{}, usage
		}
		sig = s
		args = args[1:]
	case len(args) != 1:
		return command.Kill{}, usage
	}

	job, err := strconv.Atoi(strings.TrimPrefix(args[0], "%"))
	if err != nil || job < 1 {
		return command.Kill{}, fmt.Errorf("%w: kill: %s: no such job", ErrSyntax, args[0])
	}
	return command.Kill{Signal: sig, JobID: job}, nil
}

func parseSignal(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	name := strings.ToUpper(s)
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	if sig := unix.SignalNum(name); sig != 0 {
		return int(sig), nil
	}
	return 0, fmt.Errorf("%w: kill: %s: invalid signal specification", ErrSyntax, s)
}
