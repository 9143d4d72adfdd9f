// ABOUTME: The render subcommand
// ABOUTME: Runs the ffmpeg pipeline once and prints the rendered file
package cmd

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/harperreed/nightchorus/internal/app"
	"github.com/harperreed/nightchorus/internal/render"
)

func newRenderCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "render <species> <temperature>",
		Short: "Render a species loop for a temperature without playing it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			temperature, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid temperature %q: %w", args[1], err)
			}
			if math.IsNaN(temperature) || math.IsInf(temperature, 0) {
				return fmt.Errorf("invalid temperature %q: must be a finite number", args[1])
			}

			ff, err := render.NewFFmpeg(o.settings.FFmpeg.Path, o.logger)
			if err != nil {
				return err
			}

			path, factor, err := app.RenderOnce(cmd.Context(), o.settings, ff, o.logger, args[0], temperature)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (speed factor %.3f)\n", path, factor)
			return nil
		},
	}
}
