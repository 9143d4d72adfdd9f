// ABOUTME: Playback decision loop run on a fixed check interval
// ABOUTME: Maps sensors, schedule and tempo law onto start, update and stop calls
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/harperreed/nightchorus/internal/metrics"
	"github.com/harperreed/nightchorus/internal/playback"
	"github.com/harperreed/nightchorus/internal/render"
	"github.com/harperreed/nightchorus/internal/schedule"
	"github.com/harperreed/nightchorus/internal/tempo"
)

// Sensors supplies readings for one tick.
type Sensors interface {
	ReadTemperature() float64
	ReadLight() float64
}

// Player is the playback engine as seen by the loop.
type Player interface {
	UpdateAndPlay(ctx context.Context, req render.Request) (string, error)
	Resume(path string) error
	Stop()
	Status() playback.Status
}

// Sources maps a species to its loop file.
type Sources interface {
	Path(species string) (string, error)
}

// Action is what a tick decided to do.
type Action string

const (
	ActionStop    Action = "stop"    // species inactive, state cleared
	ActionSilence Action = "silence" // too bright, state kept
	ActionUpdate  Action = "update"  // render and play dispatched
	ActionResume  Action = "resume"  // silenced output replayed from cache
	ActionPending Action = "pending" // same target already in flight
	ActionNone    Action = "none"    // up to date
	ActionFailed  Action = "failed"  // could not dispatch
)

// PlaybackState is what the loop believes is playing.
type PlaybackState struct {
	ActiveSpecies     string // empty when nothing is selected
	ActiveSpeedFactor float64
	RenderedPath      string
	OutputActive      bool
}

// Status is published after every tick and every finished dispatch.
type Status struct {
	Time        time.Time
	Temperature float64
	Light       float64
	Species     string
	SpeedFactor float64
	Action      Action
	State       PlaybackState
	Playing     bool
	Err         error
}

// Options configure a Controller.
type Options struct {
	Schedule         schedule.Schedule
	Law              tempo.Law
	LightThreshold   float64
	CheckInterval    time.Duration
	PlaybackInterval time.Duration
	FadeTime         time.Duration
	Logger           *slog.Logger
	Metrics          *metrics.Metrics
	// Now is the clock used to resolve the schedule; defaults to time.Now.
	Now func() time.Time
	// OnStatus, when set, receives every published Status.
	OnStatus func(Status)
}

type dispatch struct {
	species string
	factor  float64
	cancel  context.CancelFunc
}

// Controller runs the decision loop.
type Controller struct {
	sensors Sensors
	player  Player
	sources Sources
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics

	wg sync.WaitGroup

	mu       sync.Mutex
	state    PlaybackState
	pending  *dispatch
	dispatch uint64 // bumped whenever a dispatch is started or cancelled
	seq      uint64 // orders statuses by when their state was read
	last     Status

	pubMu     sync.Mutex // held while a status is delivered
	published uint64
}

// New creates a Controller.
func New(s Sensors, p Player, src Sources, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = 10 * time.Second
	}
	return &Controller{
		sensors: s,
		player:  p,
		sources: src,
		opts:    opts,
		logger:  opts.Logger.With("component", "controller"),
		metrics: opts.Metrics,
	}
}

// Run ticks immediately and then every CheckInterval until ctx is done.
// In-flight work is cancelled and awaited before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("playback controller started", "check_interval", c.opts.CheckInterval)

	ticker := time.NewTicker(c.opts.CheckInterval)
	defer ticker.Stop()

	c.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.cancelPendingLocked()
			c.mu.Unlock()
			c.Wait()
			c.logger.Info("playback controller stopped")
			return nil
		case <-ticker.C:
			c.Tick(ctx)
		}
	}
}

// Wait blocks until dispatched render/play work has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// State returns the current playback state.
func (c *Controller) State() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Last returns the most recently published status.
func (c *Controller) Last() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// ErrBadReading is reported when a reading yields a non-finite speed factor.
var ErrBadReading = errors.New("speed factor is not finite")

// Tick runs one decision. Render and play work is dispatched to a
// goroutine; Tick itself only blocks on sensor reads and Stop.
func (c *Controller) Tick(ctx context.Context) Action {
	temperature := c.sensors.ReadTemperature()
	light := c.sensors.ReadLight()
	now := c.opts.Now()
	species := c.opts.Schedule.Resolve(now)
	c.metrics.ObserveTick(temperature, light)

	st := Status{Time: now, Temperature: temperature, Light: light, Species: species}
	var launch func()

	c.mu.Lock()
	switch {
	case species == schedule.Inactive:
		c.logger.Info("no active species for playback")
		c.cancelPendingLocked()
		c.player.Stop()
		c.state = PlaybackState{}
		st.Action = ActionStop

	case light > c.opts.LightThreshold:
		c.logger.Info("light level exceeds threshold, stopping playback",
			"light", light, "threshold", c.opts.LightThreshold)
		c.cancelPendingLocked()
		c.player.Stop()
		c.state.OutputActive = false
		st.Action = ActionSilence

	default:
		factor := c.opts.Law.Factor(temperature)
		st.SpeedFactor = factor
		c.logger.Debug("calculated speed factor", "temperature", temperature, "speed_factor", factor)
		if math.IsNaN(factor) || math.IsInf(factor, 0) {
			st.Err = fmt.Errorf("%w: temperature %v", ErrBadReading, temperature)
			c.logger.Error("skipping tick", "error", st.Err)
			st.Action = ActionFailed
			break
		}
		st.Action, launch, st.Err = c.decideLocked(ctx, species, factor)
	}
	st.State = c.state
	seq := c.nextSeqLocked()
	c.mu.Unlock()

	c.logger.Info("tick", "species", species, "temperature", temperature, "light", light, "action", st.Action)
	c.publish(seq, st)
	if launch != nil {
		launch()
	}
	return st.Action
}

// decideLocked picks the action for an active, dark tick. A returned launch
// func must be called after c.mu is released.
func (c *Controller) decideLocked(ctx context.Context, species string, factor float64) (Action, func(), error) {
	if c.state.ActiveSpecies == species && c.state.ActiveSpeedFactor == factor {
		if c.pending != nil {
			// a newer target was in flight but conditions went back
			c.cancelPendingLocked()
		}
		if c.state.OutputActive {
			if c.player.Status().State == playback.Playing {
				c.logger.Debug("playback is already up to date", "species", species)
				return ActionNone, nil, nil
			}
			c.logger.Warn("output stopped on its own, restarting", "species", species, "path", c.state.RenderedPath)
			c.state.OutputActive = false
		}
		err := c.player.Resume(c.state.RenderedPath)
		if err == nil {
			c.state.OutputActive = true
			return ActionResume, nil, nil
		}
		if !errors.Is(err, playback.ErrNoRendering) {
			c.logger.Error("resume failed", "error", err)
			return ActionFailed, nil, err
		}
		// cache no longer holds it, render again below
	}

	if p := c.pending; p != nil && p.species == species && p.factor == factor {
		return ActionPending, nil, nil
	}

	path, err := c.sources.Path(species)
	if err != nil {
		c.logger.Error("error updating playback", "species", species, "error", err)
		return ActionFailed, nil, err
	}

	c.cancelPendingLocked()
	return ActionUpdate, c.startLocked(ctx, species, factor, path), nil
}

// startLocked registers a pending dispatch and returns the func that runs
// UpdateAndPlay for it; must hold c.mu.
func (c *Controller) startLocked(ctx context.Context, species string, factor float64, source string) func() {
	c.logger.Info("updating playback", "species", species, "speed_factor", factor)

	dctx, cancel := context.WithCancel(ctx)
	c.dispatch++
	id := c.dispatch
	c.pending = &dispatch{species: species, factor: factor, cancel: cancel}

	req := render.Request{
		Source:        source,
		SpeedFactor:   factor,
		FadeTime:      c.opts.FadeTime,
		TotalDuration: c.opts.PlaybackInterval,
	}

	c.wg.Add(1)
	return func() {
		go c.runDispatch(dctx, cancel, id, species, factor, req)
	}
}

func (c *Controller) runDispatch(ctx context.Context, cancel context.CancelFunc, id uint64, species string, factor float64, req render.Request) {
	defer c.wg.Done()
	defer cancel()

	path, err := c.player.UpdateAndPlay(ctx, req)

	c.mu.Lock()
	if c.dispatch != id {
		c.mu.Unlock()
		c.logger.Debug("dropping superseded playback result", "species", species, "speed_factor", factor)
		return
	}
	c.pending = nil
	st := Status{Time: c.opts.Now(), Species: species, SpeedFactor: factor, Action: ActionUpdate, Err: err}
	if err != nil {
		c.logger.Error("error updating playback", "species", species, "speed_factor", factor, "error", err)
		st.Action = ActionFailed
	} else {
		c.state = PlaybackState{
			ActiveSpecies:     species,
			ActiveSpeedFactor: factor,
			RenderedPath:      path,
			OutputActive:      true,
		}
		c.metrics.SetSpeedFactor(factor)
	}
	st.State = c.state
	st.Temperature, st.Light = c.last.Temperature, c.last.Light
	seq := c.nextSeqLocked()
	c.mu.Unlock()

	c.publish(seq, st)
}

// cancelPendingLocked abandons any in-flight dispatch; must hold c.mu.
func (c *Controller) cancelPendingLocked() {
	if c.pending == nil {
		return
	}
	c.pending.cancel()
	c.pending = nil
	c.dispatch++
}

func (c *Controller) nextSeqLocked() uint64 {
	c.seq++
	return c.seq
}

// publish delivers st unless a status snapshotted after it went out first.
func (c *Controller) publish(seq uint64, st Status) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	if seq <= c.published {
		c.logger.Debug("dropping stale status", "action", st.Action)
		return
	}
	c.published = seq
	st.Playing = c.player.Status().State == playback.Playing

	c.mu.Lock()
	c.last = st
	c.mu.Unlock()

	if c.opts.OnStatus != nil {
		c.opts.OnStatus(st)
	}
}
