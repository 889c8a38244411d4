package main

import (
	"github.com/josephlewis42/quash/cmd"
	"github.com/josephlewis42/quash/core/launch"
)

func main() {
	// Stage processes are this binary started again; they never reach cobra.
	launch.Init()
	cmd.Execute()
}
