package commands

import (
	"fmt"

	"github.com/josephlewis42/quash/core/vos"
)

// Jobs prints a job listing. The new process can't see the shell's registry,
// so the listing lines are rendered by the shell and passed as arguments.
func Jobs(proc vos.VOS, args []string) int {
	for _, line := range args[1:] {
		fmt.Fprint(proc.Stdout(), line)
	}
	return 0
}

var _ ChildFunc = Jobs
