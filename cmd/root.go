// ABOUTME: Cobra command tree for the nightchorus binary
// ABOUTME: Loads settings and the logger once before any subcommand runs
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/harperreed/nightchorus/internal/config"
	"github.com/harperreed/nightchorus/internal/logger"
	"github.com/harperreed/nightchorus/internal/version"
)

// rootOptions carries flag values and what PersistentPreRunE builds from them.
type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
	logFile    string
	devUI      bool

	settings *config.Settings
	logger   *slog.Logger
	logSink  io.Closer
}

// RootCommand creates and returns the root command
func RootCommand() *cobra.Command {
	o := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "nightchorus",
		Short:         "Ambient night chorus player",
		Long:          "Plays species loops chosen by season, sped up or slowed down with the temperature and silenced by daylight.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlayer(cmd, o)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.initialize(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if o.logSink != nil {
				return o.logSink.Close()
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&o.configPath, "config", "c", "", "Path to config file (default: search ., ~/.config/nightchorus, /etc/nightchorus)")
	flags.StringVar(&o.envFile, "env-file", ".env", "Environment file loaded before the config")
	flags.StringVar(&o.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	flags.StringVar(&o.logFile, "log-file", "nightchorus.log", "Log file used while the dev console owns the terminal")
	flags.BoolVar(&o.devUI, "dev-ui", false, "Run the dev console to adjust simulated sensors")

	rootCmd.AddCommand(
		newRunCommand(o),
		newScheduleCommand(o),
		newRenderCommand(o),
		newVersionCommand(),
	)

	return rootCmd
}

// Execute runs the root command and reports errors on stderr.
func Execute() int {
	if err := RootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "nightchorus: %v\n", err)
		return 1
	}
	return 0
}

// initialize is called before any subcommand runs.
func (o *rootOptions) initialize(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	if err := config.LoadDotEnv(o.envFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", o.envFile, err)
	}

	settings, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		settings.Log.Level = o.logLevel
	}
	o.settings = settings

	if o.devUI {
		// the console draws on stdout
		f, err := os.OpenFile(o.logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("error opening log file: %w", err)
		}
		o.logSink = f
		o.logger = logger.NewWithWriter(f, settings.Log.Level, settings.Log.Format)
	} else {
		o.logger = logger.NewWithWriter(cmd.ErrOrStderr(), settings.Log.Level, settings.Log.Format)
	}
	slog.SetDefault(o.logger)

	return nil
}
