// ABOUTME: The run subcommand, also the default action
// ABOUTME: Starts the decision loop and shuts down cleanly on SIGINT/SIGTERM
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/nightchorus/internal/app"
	"github.com/harperreed/nightchorus/internal/version"
)

func newRunCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the player until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlayer(cmd, o)
		},
	}
}

func runPlayer(cmd *cobra.Command, o *rootOptions) error {
	log := o.logger
	log.Info("starting player", "version", version.String(), "profile", o.settings.Profile)

	a, err := app.New(o.settings, log, app.Options{DevUI: o.devUI})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("error closing player", "error", err)
		}
		log.Info("player stopped")
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info("received signal, shutting down gracefully", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return a.Run(ctx)
}
