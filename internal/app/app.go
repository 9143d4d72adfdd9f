// ABOUTME: Player application orchestration
// ABOUTME: Builds every component from settings and runs them until shutdown
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/nightchorus/internal/config"
	"github.com/harperreed/nightchorus/internal/controller"
	"github.com/harperreed/nightchorus/internal/metrics"
	"github.com/harperreed/nightchorus/internal/playback"
	"github.com/harperreed/nightchorus/internal/render"
	"github.com/harperreed/nightchorus/internal/sensors"
	"github.com/harperreed/nightchorus/internal/source"
	"github.com/harperreed/nightchorus/internal/ui"
	"github.com/harperreed/nightchorus/pkg/audio/output"
)

// ErrConsoleNeedsSimulated is returned when the dev console is requested
// with a sensor source it cannot drive.
var ErrConsoleNeedsSimulated = errors.New("dev console requires simulated sensors")

// Options holds startup switches that are not part of the settings file.
type Options struct {
	// DevUI runs the bubbletea sensor console.
	DevUI bool
	// Output overrides the configured audio backend.
	Output output.Output
	// Transcoder overrides the ffmpeg transcoder.
	Transcoder render.Transcoder
}

// App represents the running player
type App struct {
	settings *config.Settings
	logger   *slog.Logger
	metrics  *metrics.Metrics

	sensors    sensors.Source
	simulated  *sensors.Simulated
	library    *source.Library
	renderer   *render.Renderer
	output     output.Output
	engine     *playback.Engine
	controller *controller.Controller

	devUI   bool
	console *tea.Program
}

// New builds the application. Components created before a failure are closed.
func New(settings *config.Settings, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{settings: settings, logger: logger, devUI: opts.DevUI}
	built := false
	defer func() {
		if !built {
			_ = a.Close()
		}
	}()

	sched, err := settings.Playback.BuildSchedule()
	if err != nil {
		return nil, err
	}

	if settings.Metrics.Enabled {
		a.metrics = metrics.New()
	}

	a.sensors, err = sensors.New(settings.Sensors, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sensors: %w", err)
	}
	if opts.DevUI {
		sim, ok := a.sensors.(*sensors.Simulated)
		if !ok {
			return nil, fmt.Errorf("%w (sensors.source is %q)", ErrConsoleNeedsSimulated, settings.Sensors.Source)
		}
		a.simulated = sim
	}

	a.library = source.NewLibrary(settings.SourcePath, settings.Playback.Timing.PlaybackInterval, logger)
	if err := a.library.Check(sched.Species()); err != nil {
		// not fatal, a missing loop only fails the ticks that need it
		logger.Warn("source library incomplete", "error", err)
	}

	transcoder := opts.Transcoder
	if transcoder == nil {
		transcoder, err = render.NewFFmpeg(settings.FFmpeg.Path, logger)
		if err != nil {
			return nil, err
		}
	}
	a.renderer = NewRenderer(settings, transcoder, logger, a.metrics)

	a.output = opts.Output
	if a.output == nil {
		a.output, err = output.New(settings.Audio.Backend, logger)
		if err != nil {
			return nil, err
		}
	}
	a.output.SetVolume(settings.Audio.Volume)

	a.engine = playback.New(a.renderer, a.output, playback.Options{
		Loop:       settings.Playback.Loop,
		DeviceRate: settings.FFmpeg.SampleRate,
		Logger:     logger,
		Metrics:    a.metrics,
	})

	timing := settings.Playback.Timing
	a.controller = controller.New(a.sensors, a.engine, a.library, controller.Options{
		Schedule:         sched,
		Law:              Law(settings),
		LightThreshold:   settings.Playback.LightThreshold,
		CheckInterval:    timing.CheckInterval,
		PlaybackInterval: timing.PlaybackInterval,
		FadeTime:         timing.FadeTime,
		Logger:           logger,
		Metrics:          a.metrics,
		OnStatus:         a.sendStatus,
	})

	built = true
	return a, nil
}

// Run blocks until ctx is cancelled or the console quits.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.devUI {
		a.console = ui.NewProgram(ctx, a.simulated)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.controller.Run(gctx)
	})

	if a.metrics != nil {
		g.Go(func() error {
			err := a.metrics.Serve(gctx, a.settings.Metrics.Listen, a.logger)
			if err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	if a.console != nil {
		g.Go(func() error {
			_, err := a.console.Run()
			cancel()
			if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("dev console: %w", err)
			}
			return nil
		})
	}

	a.logger.Info("nightchorus running",
		"profile", a.settings.Profile, "sensors", a.settings.Sensors.Source, "dev_ui", a.devUI)

	return g.Wait()
}

// Close stops playback and releases the device, temp files and sensors.
func (a *App) Close() error {
	var errs []error
	if a.engine != nil {
		errs = append(errs, a.engine.Close())
	}
	if a.renderer != nil {
		errs = append(errs, a.renderer.Close())
	}
	if a.output != nil {
		errs = append(errs, a.output.Close())
	}
	if a.sensors != nil {
		errs = append(errs, a.sensors.Close())
	}
	return errors.Join(errs...)
}

// Controller exposes the decision loop.
func (a *App) Controller() *controller.Controller { return a.controller }

func (a *App) sendStatus(st controller.Status) {
	if a.console != nil {
		a.console.Send(ui.NewStatusMsg(st))
	}
}
