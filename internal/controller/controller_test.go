// ABOUTME: Tests for the playback decision loop
// ABOUTME: Drives ticks against fake sensors and player to check each branch
package controller

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/nightchorus/internal/logger"
	"github.com/harperreed/nightchorus/internal/render"
	"github.com/harperreed/nightchorus/internal/schedule"
	"github.com/harperreed/nightchorus/internal/tempo"
)

var testSchedule = schedule.Schedule{
	{Species: schedule.Inactive, Start: schedule.MonthDay{Month: time.January, Day: 1}, End: schedule.MonthDay{Month: time.January, Day: 14}},
	{Species: "frogs", Start: schedule.MonthDay{Month: time.January, Day: 15}, End: schedule.MonthDay{Month: time.June, Day: 30}},
	{Species: "crickets", Start: schedule.MonthDay{Month: time.July, Day: 1}, End: schedule.MonthDay{Month: time.December, Day: 31}},
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) set(month time.Month, day int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Date(2024, month, day, 21, 0, 0, 0, time.UTC)
}

type harness struct {
	ctrl    *Controller
	sensors *fakeSensors
	player  *fakePlayer
	clock   *clock
}

func newHarness(t *testing.T, sources fakeSources) *harness {
	t.Helper()
	if sources == nil {
		sources = fakeSources{"frogs": "/data/frogs.wav", "crickets": "/data/crickets.wav"}
	}
	h := &harness{
		sensors: &fakeSensors{temperature: 70, light: 0},
		player:  &fakePlayer{},
		clock:   &clock{},
	}
	h.clock.set(time.March, 1)
	h.ctrl = New(h.sensors, h.player, sources, Options{
		Schedule:         testSchedule,
		Law:              tempo.Law{Reference: 70},
		LightThreshold:   10,
		CheckInterval:    time.Hour,
		PlaybackInterval: time.Minute,
		FadeTime:         2 * time.Second,
		Logger:           logger.Discard(),
		Now:              h.clock.Now,
	})
	t.Cleanup(h.ctrl.Wait)
	return h
}

// tick runs one decision and waits for any dispatched work.
func (h *harness) tick(t *testing.T) Action {
	t.Helper()
	a := h.ctrl.Tick(context.Background())
	h.ctrl.Wait()
	return a
}

func (h *harness) gate() chan struct{} {
	gate := make(chan struct{})
	h.player.mu.Lock()
	h.player.gate = gate
	h.player.entered = make(chan struct{}, 4)
	h.player.mu.Unlock()
	return gate
}

func TestTickStartsPlayback(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, ActionUpdate, h.tick(t))

	st := h.ctrl.State()
	assert.Equal(t, PlaybackState{
		ActiveSpecies:     "frogs",
		ActiveSpeedFactor: 1.0,
		RenderedPath:      "/tmp/render_1_adjusted.wav",
		OutputActive:      true,
	}, st)

	calls := h.player.counts()
	require.Len(t, calls.requests, 1)
	assert.Equal(t, render.Request{
		Source:        "/data/frogs.wav",
		SpeedFactor:   1.0,
		FadeTime:      2 * time.Second,
		TotalDuration: time.Minute,
	}, calls.requests[0])

	last := h.ctrl.Last()
	assert.Equal(t, ActionUpdate, last.Action)
	assert.True(t, last.Playing)
}

func TestUnchangedConditionsAreNoOp(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, ActionUpdate, h.tick(t))

	for i := 0; i < 3; i++ {
		assert.Equal(t, ActionNone, h.tick(t))
	}

	calls := h.player.counts()
	assert.Len(t, calls.requests, 1)
	assert.Zero(t, calls.stops)
}

func TestTemperatureChangeRerenders(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, ActionUpdate, h.tick(t))

	h.sensors.set(85, 0)
	assert.Equal(t, ActionUpdate, h.tick(t))

	want := tempo.SpeedFactor(85, 70)
	st := h.ctrl.State()
	assert.InDelta(t, want, st.ActiveSpeedFactor, 1e-9)
	assert.Equal(t, "/tmp/render_2_adjusted.wav", st.RenderedPath)

	calls := h.player.counts()
	require.Len(t, calls.requests, 2)
	assert.InDelta(t, want, calls.requests[1].SpeedFactor, 1e-9)
}

func TestSpeciesSwitch(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, ActionUpdate, h.tick(t))

	h.clock.set(time.July, 2)
	assert.Equal(t, ActionUpdate, h.tick(t))

	assert.Equal(t, "crickets", h.ctrl.State().ActiveSpecies)
	calls := h.player.counts()
	require.Len(t, calls.requests, 2)
	assert.Equal(t, "/data/crickets.wav", calls.requests[1].Source)
}

func TestLightSilencesAndResumes(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, ActionUpdate, h.tick(t))
	rendered := h.ctrl.State().RenderedPath

	h.sensors.set(70, 50)
	assert.Equal(t, ActionSilence, h.tick(t))

	st := h.ctrl.State()
	assert.Equal(t, "frogs", st.ActiveSpecies)
	assert.Equal(t, 1.0, st.ActiveSpeedFactor)
	assert.Equal(t, rendered, st.RenderedPath)
	assert.False(t, st.OutputActive)
	assert.False(t, h.ctrl.Last().Playing)

	// stays silent while bright
	assert.Equal(t, ActionSilence, h.tick(t))

	h.sensors.set(70, 0)
	assert.Equal(t, ActionResume, h.tick(t))
	assert.True(t, h.ctrl.State().OutputActive)
	assert.Equal(t, ActionNone, h.tick(t))

	calls := h.player.counts()
	assert.Len(t, calls.requests, 1)
	assert.Equal(t, []string{rendered}, calls.resumes)
	assert.Equal(t, 2, calls.stops)
}

func TestLightThresholdIsExclusive(t *testing.T) {
	h := newHarness(t, nil)
	h.sensors.set(70, 10)

	assert.Equal(t, ActionUpdate, h.tick(t))
}

func TestResumeFallsBackToRender(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, ActionUpdate, h.tick(t))

	h.sensors.set(70, 50)
	require.Equal(t, ActionSilence, h.tick(t))

	h.player.evict()
	h.sensors.set(70, 0)
	assert.Equal(t, ActionUpdate, h.tick(t))

	st := h.ctrl.State()
	assert.True(t, st.OutputActive)
	assert.Equal(t, "/tmp/render_2_adjusted.wav", st.RenderedPath)
	assert.Len(t, h.player.counts().requests, 2)
}

func TestDeadStreamIsRestarted(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, ActionUpdate, h.tick(t))
	rendered := h.ctrl.State().RenderedPath

	h.player.halt()
	assert.Equal(t, ActionResume, h.tick(t))
	assert.True(t, h.ctrl.State().OutputActive)
	assert.True(t, h.ctrl.Last().Playing)
	assert.Equal(t, ActionNone, h.tick(t))

	calls := h.player.counts()
	assert.Len(t, calls.requests, 1)
	assert.Equal(t, []string{rendered}, calls.resumes)
}

func TestDeadStreamRerendersWhenEvicted(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, ActionUpdate, h.tick(t))

	h.player.halt()
	h.player.evict()
	assert.Equal(t, ActionUpdate, h.tick(t))

	st := h.ctrl.State()
	assert.True(t, st.OutputActive)
	assert.Equal(t, "/tmp/render_2_adjusted.wav", st.RenderedPath)
	assert.Len(t, h.player.counts().requests, 2)
}

func TestNonFiniteReadingIsSkipped(t *testing.T) {
	for name, temperature := range map[string]float64{
		"+Inf": math.Inf(1),
		"-Inf": math.Inf(-1),
		"NaN":  math.NaN(),
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, nil)
			require.Equal(t, ActionUpdate, h.tick(t))
			before := h.ctrl.State()

			h.sensors.set(temperature, 0)
			assert.Equal(t, ActionFailed, h.tick(t))
			assert.ErrorIs(t, h.ctrl.Last().Err, ErrBadReading)
			assert.Equal(t, before, h.ctrl.State())
			assert.Len(t, h.player.counts().requests, 1)

			h.sensors.set(70, 0)
			assert.Equal(t, ActionNone, h.tick(t))
		})
	}
}

func TestOlderStatusIsNotPublished(t *testing.T) {
	var got []Action
	c := New(&fakeSensors{}, &fakePlayer{}, fakeSources{}, Options{
		Logger:   logger.Discard(),
		OnStatus: func(st Status) { got = append(got, st.Action) },
	})

	c.publish(2, Status{Action: ActionNone})
	c.publish(1, Status{Action: ActionUpdate})
	c.publish(3, Status{Action: ActionSilence})

	assert.Equal(t, []Action{ActionNone, ActionSilence}, got)
	assert.Equal(t, ActionSilence, c.Last().Action)
}

func TestInactiveClearsState(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, ActionUpdate, h.tick(t))

	h.clock.set(time.January, 5)
	assert.Equal(t, ActionStop, h.tick(t))
	assert.Equal(t, PlaybackState{}, h.ctrl.State())

	assert.Equal(t, ActionStop, h.tick(t))
	assert.Equal(t, 2, h.player.counts().stops)

	// back in season starts from scratch
	h.clock.set(time.February, 1)
	assert.Equal(t, ActionUpdate, h.tick(t))
	assert.Len(t, h.player.counts().requests, 2)
}

func TestRenderFailureKeepsState(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, ActionUpdate, h.tick(t))
	before := h.ctrl.State()

	boom := errors.New("ffmpeg exploded")
	h.player.mu.Lock()
	h.player.fail = boom
	h.player.mu.Unlock()

	h.sensors.set(60, 0)
	assert.Equal(t, ActionUpdate, h.tick(t))
	assert.Equal(t, before, h.ctrl.State())

	last := h.ctrl.Last()
	assert.Equal(t, ActionFailed, last.Action)
	assert.ErrorIs(t, last.Err, boom)

	// retried on the next tick
	h.player.mu.Lock()
	h.player.fail = nil
	h.player.mu.Unlock()
	assert.Equal(t, ActionUpdate, h.tick(t))
	assert.InDelta(t, tempo.SpeedFactor(60, 70), h.ctrl.State().ActiveSpeedFactor, 1e-9)
}

func TestSourceLookupFailure(t *testing.T) {
	h := newHarness(t, fakeSources{})

	assert.Equal(t, ActionFailed, h.tick(t))
	assert.ErrorIs(t, h.ctrl.Last().Err, errNoSource)
	assert.Empty(t, h.player.counts().requests)
	assert.Equal(t, PlaybackState{}, h.ctrl.State())
}

func TestPendingDispatchNotDuplicated(t *testing.T) {
	h := newHarness(t, nil)
	gate := h.gate()

	assert.Equal(t, ActionUpdate, h.ctrl.Tick(context.Background()))
	<-h.player.entered
	assert.Equal(t, ActionPending, h.ctrl.Tick(context.Background()))
	assert.Equal(t, PlaybackState{}, h.ctrl.State())

	close(gate)
	h.ctrl.Wait()

	assert.Len(t, h.player.counts().requests, 1)
	assert.Equal(t, "frogs", h.ctrl.State().ActiveSpecies)
}

func TestNewerTargetSupersedesPending(t *testing.T) {
	h := newHarness(t, nil)
	gate := h.gate()

	assert.Equal(t, ActionUpdate, h.ctrl.Tick(context.Background()))
	<-h.player.entered

	h.sensors.set(85, 0)
	assert.Equal(t, ActionUpdate, h.ctrl.Tick(context.Background()))
	<-h.player.entered

	close(gate)
	h.ctrl.Wait()

	st := h.ctrl.State()
	assert.InDelta(t, tempo.SpeedFactor(85, 70), st.ActiveSpeedFactor, 1e-9)
	assert.True(t, st.OutputActive)
	assert.Len(t, h.player.counts().requests, 2)
	assert.Equal(t, ActionUpdate, h.ctrl.Last().Action)
}

func TestLightCancelsPending(t *testing.T) {
	h := newHarness(t, nil)
	h.gate()

	assert.Equal(t, ActionUpdate, h.ctrl.Tick(context.Background()))
	<-h.player.entered

	h.sensors.set(70, 50)
	assert.Equal(t, ActionSilence, h.ctrl.Tick(context.Background()))
	h.ctrl.Wait()

	assert.Equal(t, PlaybackState{}, h.ctrl.State())
	assert.Equal(t, ActionSilence, h.ctrl.Last().Action)
}

func TestRunTicksImmediately(t *testing.T) {
	statuses := make(chan Status, 8)
	h := &harness{
		sensors: &fakeSensors{temperature: 70},
		player:  &fakePlayer{},
		clock:   &clock{},
	}
	h.clock.set(time.March, 1)
	h.ctrl = New(h.sensors, h.player, fakeSources{"frogs": "/data/frogs.wav"}, Options{
		Schedule:         testSchedule,
		Law:              tempo.Law{Reference: 70},
		LightThreshold:   10,
		CheckInterval:    time.Hour,
		PlaybackInterval: time.Minute,
		Logger:           logger.Discard(),
		Now:              h.clock.Now,
		OnStatus: func(st Status) {
			select {
			case statuses <- st:
			default:
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.ctrl.Run(ctx) }()

	select {
	case st := <-statuses:
		assert.Equal(t, "frogs", st.Species)
	case <-time.After(5 * time.Second):
		t.Fatal("no status published")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}
