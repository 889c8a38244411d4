package commands

import (
	"errors"
	"fmt"

	"github.com/josephlewis42/quash/core/vos"
)

const (
	EnvHome   = "HOME"
	EnvPWD    = "PWD"
	EnvOldPWD = "OLDPWD"
)

// Cd changes the shell's working directory to dir, or $HOME if dir is empty,
// and updates PWD and OLDPWD.
func Cd(env vos.VEnv, dir string) error {
	if dir == "" {
		dir = env.Getenv(EnvHome)
		if dir == "" {
			return errors.New("cd: HOME not set")
		}
	}

	old, _ := env.Getwd()
	if err := env.Chdir(dir); err != nil {
		return fmt.Errorf("cd: %w", err)
	}

	wd, err := env.Getwd()
	if err != nil {
		return fmt.Errorf("cd: %w", err)
	}
	if err := env.Setenv(EnvPWD, wd); err != nil {
		return fmt.Errorf("cd: %w", err)
	}
	if old != "" {
		if err := env.Setenv(EnvOldPWD, old); err != nil {
			return fmt.Errorf("cd: %w", err)
		}
	}
	return nil
}
