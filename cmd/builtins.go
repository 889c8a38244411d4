package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/josephlewis42/quash/core/command"
	"github.com/josephlewis42/quash/core/dispatch"
	"github.com/spf13/cobra"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins [KIND]",
	Short: "Show the command types and where each one runs.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table := dispatch.Default()

		kinds := table.Kinds()
		if len(args) == 1 {
			kind, err := command.ParseKind(args[0])
			if err != nil {
				return err
			}
			kinds = []command.Kind{kind}
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 8, 8, 2, ' ', 0)
		defer tw.Flush()

		fmt.Fprintln(tw, "KIND\tRUNS IN")
		for _, kind := range kinds {
			fmt.Fprintf(tw, "%s\t%s\n", kind, table.Sides(kind))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
