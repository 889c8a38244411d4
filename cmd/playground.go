package cmd

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/josephlewis42/quash/core/config"
	"github.com/spf13/cobra"
)

// playgroundCmd runs the shell with a throwaway configuration and a
// debug level event log, for trying out changes.
var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Run the shell with a temporary configuration and verbose event log.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		dir, err := os.MkdirTemp("", "quash-playground")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)

		playgroundLogger := log.New(cmd.ErrOrStderr(), "[playground] ", 0)
		cfg, err := config.Initialize(dir, playgroundLogger)
		if err != nil {
			return err
		}
		cfg.LogLevel = "debug"
		cfg.Prompt = `[playground] \w\$ `

		playgroundLogger.Printf("Logging to: file://%s\n", dir)
		playgroundLogger.Printf("See logs with: tail -f %s\n", filepath.Join(dir, config.AppLogName))
		playgroundLogger.Println(strings.Repeat("=", 80))

		return runShell(cfg)
	},
}

func init() {
	rootCmd.AddCommand(playgroundCmd)
}
