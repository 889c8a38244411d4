package commands

import (
	"fmt"

	"github.com/josephlewis42/quash/core/vos"
)

// Pwd prints the working directory.
func Pwd(proc vos.VOS, args []string) int {
	cmd := &SimpleCommand{
		Use:   "pwd",
		Short: "Print the name of the current working directory.",
	}

	return cmd.Run(proc, args, func() int {
		wd, err := proc.Getwd()
		if err != nil {
			fmt.Fprintf(proc.Stderr(), "pwd: %v\n", err)
			return 1
		}
		fmt.Fprintln(proc.Stdout(), wd)
		return 0
	})
}

var _ ChildFunc = Pwd
