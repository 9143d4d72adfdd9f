// ABOUTME: Helpers shared by the player and the one-off render command
// ABOUTME: Builds the tempo law and renderer from settings
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harperreed/nightchorus/internal/config"
	"github.com/harperreed/nightchorus/internal/metrics"
	"github.com/harperreed/nightchorus/internal/render"
	"github.com/harperreed/nightchorus/internal/source"
	"github.com/harperreed/nightchorus/internal/tempo"
)

// Law returns the tempo law for the configured reference temperature.
func Law(settings *config.Settings) tempo.Law {
	return tempo.Law{Reference: settings.Playback.ReferenceTemperature}
}

// NewRenderer builds the render pipeline around t.
func NewRenderer(settings *config.Settings, t render.Transcoder, logger *slog.Logger, m *metrics.Metrics) *render.Renderer {
	return render.New(t, render.Options{
		TempDir:    settings.Paths.Temp,
		SampleRate: settings.FFmpeg.SampleRate,
		Timeout:    settings.Playback.Timing.RenderTimeout,
		Logger:     logger,
		Metrics:    m,
	})
}

// RenderOnce renders species at temperature without playing it and returns
// the rendered file. The caller owns the file.
func RenderOnce(ctx context.Context, settings *config.Settings, t render.Transcoder, logger *slog.Logger, species string, temperature float64) (string, float64, error) {
	library := source.NewLibrary(settings.SourcePath, settings.Playback.Timing.PlaybackInterval, logger)
	path, err := library.Path(species)
	if err != nil {
		return "", 0, err
	}

	factor := Law(settings).Factor(temperature)
	r := NewRenderer(settings, t, logger, nil)

	out, err := r.Render(ctx, render.Request{
		Source:        path,
		SpeedFactor:   factor,
		FadeTime:      settings.Playback.Timing.FadeTime,
		TotalDuration: settings.Playback.Timing.PlaybackInterval,
	})
	if err != nil {
		return "", factor, fmt.Errorf("render %s at %.1f°F: %w", species, temperature, err)
	}
	return out, factor, nil
}
