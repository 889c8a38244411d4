package cmd

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/quash/core"
	"github.com/josephlewis42/quash/core/config"
	"github.com/josephlewis42/quash/core/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgPath     string
	commandLine string
)

// configDir returns the --config directory, or the user's quash config
// directory if the flag wasn't given.
func configDir() (string, error) {
	if cfgPath != "" {
		return cfgPath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "quash"), nil
}

// loadConfig loads the configuration. Without --config a missing
// configuration falls back to the built in defaults.
func loadConfig() (*config.Configuration, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	configuration, err := config.Load(dir)
	switch {
	case err == nil:
		return configuration, nil
	case errors.Is(err, fs.ErrNotExist) && cfgPath == "":
		return config.Default()
	case errors.Is(err, fs.ErrNotExist):
		log.Println("Couldn't load config: did you run init?")
	}
	return nil, err
}

// newAppLogger opens the application log of cfg and creates a session
// logger writing to it. Configurations without a directory only log errors,
// to stderr.
func newAppLogger(cfg *config.Configuration) (*zap.Logger, io.Closer, error) {
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.LogLevel
	logConfig.Development = cfg.DevelopmentLog

	fd, err := cfg.OpenAppLog()
	if errors.Is(err, config.ErrNoDirectory) {
		logConfig.Level = "error"
		base, err := logger.New(logConfig)
		if err != nil {
			return nil, nil, err
		}
		session, _ := logger.NewSession(base)
		return session, io.NopCloser(nil), nil
	}
	if err != nil {
		return nil, nil, err
	}

	base, err := logger.NewForWriter(logConfig, fd)
	if err != nil {
		fd.Close()
		return nil, nil, err
	}
	session, _ := logger.NewSession(base)
	return session, fd, nil
}

// runShell runs a shell over the process's own streams: the -c command if
// one was given, a line editor on a terminal, or a script from stdin.
func runShell(cfg *config.Configuration) error {
	appLog, closer, err := newAppLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	defer appLog.Sync()

	shell, err := core.NewShell(core.ShellOptions{Config: cfg, Log: appLog})
	if err != nil {
		return err
	}

	appLog.Info("session start", zap.Int("pid", os.Getpid()))
	defer appLog.Info("session end")

	switch {
	case commandLine != "":
		shell.RunCommand(commandLine)
		shell.Wait()
		return nil
	case readline.IsTerminal(int(os.Stdin.Fd())):
		return shell.RunInteractive()
	default:
		return shell.RunScript(os.Stdin)
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quash",
	Short: "Quite a shell",
	Long:  `A small job-control shell: pipelines, redirections, and background jobs.`,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runShell(cfg)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config directory (default $XDG_CONFIG_HOME/quash)")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run COMMAND and exit once its jobs finish")
}
