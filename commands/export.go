package commands

import (
	"fmt"
	"regexp"

	"github.com/josephlewis42/quash/core/vos"
)

var envNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Export sets name to value in the shell's environment.
func Export(env vos.VEnv, name, value string) error {
	if !envNameRegex.MatchString(name) {
		return fmt.Errorf("export: `%s': not a valid identifier", name)
	}
	if err := env.Setenv(name, value); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
