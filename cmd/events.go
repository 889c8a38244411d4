package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/josephlewis42/quash/core/logger"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the shell event log.",
}

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Show a report of events.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		config, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := config.ReadAppLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		report := logger.NewReport()
		if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
			return err
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return nil
	},
}

// catCommand prints the event log one event per line.
var catCommand = &cobra.Command{
	Use:   "cat",
	Short: "Print every event in the log.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		config, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := config.ReadAppLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		w := cmd.OutOrStdout()
		return logger.ReadJSONLinesLog(fd, func(le *logger.Entry) {
			fmt.Fprintln(w, formatEntry(le))
		})
	},
}

// formatEntry renders an entry as "TIME LEVEL MESSAGE key=value ...".
func formatEntry(le *logger.Entry) string {
	var keys []string
	for k := range le.Fields {
		switch k {
		case logger.TimeKey, logger.LevelKey, logger.MessageKey, logger.SessionKey, "caller":
		default:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := []string{le.String(logger.TimeKey), strings.ToUpper(le.Level), le.Message}
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, le.String(k)))
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)
	eventsCmd.AddCommand(catCommand)
}
