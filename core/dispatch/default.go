package dispatch

import (
	"github.com/josephlewis42/quash/commands"
	"github.com/josephlewis42/quash/core/command"
	"github.com/josephlewis42/quash/core/jobs"
)

// Default returns the table for the builtin command kinds.
func Default() *Table {
	return NewTable(map[command.Kind]Entry{
		command.KindGeneric: {
			Encode: func(_ *Runtime, cmd command.Command) []string {
				return append([]string(nil), cmd.(command.Generic).Args...)
			},
			Child: commands.Exec,
		},
		command.KindEcho: {
			Encode: func(_ *Runtime, cmd command.Command) []string {
				return append([]string{"echo"}, cmd.(command.Echo).Args...)
			},
			Child: commands.Echo,
		},
		command.KindPwd: {
			Encode: func(*Runtime, command.Command) []string { return []string{"pwd"} },
			Child:  commands.Pwd,
		},
		command.KindJobs: {
			Encode: func(rt *Runtime, _ command.Command) []string {
				args := []string{"jobs"}
				if rt.Jobs != nil {
					args = append(args, jobs.Listing(rt.Jobs.List())...)
				}
				return args
			},
			Child: commands.Jobs,
		},
		command.KindExport: {
			Parent: func(rt *Runtime, cmd command.Command) error {
				c := cmd.(command.Export)
				return commands.Export(rt.Env, c.Name, c.Value)
			},
		},
		command.KindCd: {
			Parent: func(rt *Runtime, cmd command.Command) error {
				return commands.Cd(rt.Env, cmd.(command.Cd).Dir)
			},
		},
		command.KindKill: {
			Parent: func(rt *Runtime, cmd command.Command) error {
				c := cmd.(command.Kill)
				return commands.Kill(rt.Jobs, c.Signal, c.JobID)
			},
		},
		command.KindExit: {},
		command.KindEOC:  {},
	})
}
