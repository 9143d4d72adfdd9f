// ABOUTME: Playback engine streaming rendered loops to the output device
// ABOUTME: Combines the renderer with an Idle/Playing stream lifecycle
package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/harperreed/nightchorus/internal/metrics"
	"github.com/harperreed/nightchorus/internal/render"
	"github.com/harperreed/nightchorus/pkg/audio/decode"
	"github.com/harperreed/nightchorus/pkg/audio/output"
	"github.com/harperreed/nightchorus/pkg/audio/resample"
)

const defaultChunkFrames = 4096

// State of the output stream.
type State int

const (
	Idle State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "idle"
}

// Renderer is the part of render.Renderer the engine uses.
type Renderer interface {
	Render(ctx context.Context, req render.Request) (string, error)
	Current() (render.Rendering, bool)
}

// Options configure an Engine.
type Options struct {
	// Loop replays the rendering back to back until stopped.
	Loop bool
	// DeviceRate is the rate the output is opened at; renderings at other
	// rates are resampled. Zero uses each rendering's own rate.
	DeviceRate  int
	ChunkFrames int
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

// Status is a snapshot of the engine.
type Status struct {
	State     State
	Path      string
	StartedAt time.Time
	Loops     int
	LastError error
}

type stream struct {
	path   string
	cancel context.CancelFunc
	done   chan struct{}
	loops  int
}

// Engine owns the output device and at most one stream at a time.
type Engine struct {
	renderer    Renderer
	out         output.Output
	loop        bool
	deviceRate  int
	chunkFrames int
	logger      *slog.Logger
	metrics     *metrics.Metrics

	opMu sync.Mutex // one render-then-play sequence at a time

	mu         sync.Mutex
	state      State
	current    *stream
	lastDone   chan struct{} // done channel of the most recent stream
	startedAt  time.Time
	lastErr    error
	generation uint64
}

// New creates an idle engine.
func New(r Renderer, out output.Output, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ChunkFrames <= 0 {
		opts.ChunkFrames = defaultChunkFrames
	}
	return &Engine{
		renderer:    r,
		out:         out,
		loop:        opts.Loop,
		deviceRate:  opts.DeviceRate,
		chunkFrames: opts.ChunkFrames,
		logger:      opts.Logger.With("component", "playback"),
		metrics:     opts.Metrics,
	}
}

// Render passes through to the renderer.
func (e *Engine) Render(ctx context.Context, req render.Request) (string, error) {
	return e.renderer.Render(ctx, req)
}

// Play starts streaming path. It is a no-op with a warning while playing.
func (e *Engine) Play(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Playing {
		e.logger.Warn("audio is already playing", "path", e.current.path)
		return nil
	}
	return e.startLocked(path)
}

// Stop silences output. It is a no-op with a warning while idle, but it
// always invalidates a render that is still pending in UpdateAndPlay.
// The device is released asynchronously by the stream goroutine.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	if e.state != Playing {
		e.logger.Warn("no audio is currently playing")
		return
	}
	e.logger.Info("stopping playback", "path", e.current.path)
	e.haltLocked()
	e.metrics.Stopped()
}

// UpdateAndPlay renders req and switches output to the result. A render
// failure is returned and the current stream keeps playing.
func (e *Engine) UpdateAndPlay(ctx context.Context, req render.Request) (string, error) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	gen := e.generation
	e.mu.Unlock()

	path, err := e.renderer.Render(ctx, req)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.generation != gen || ctx.Err() != nil {
		e.logger.Info("discarding rendering, request was superseded", "path", path)
		return path, ErrSuperseded
	}
	if e.state == Playing {
		if e.current.path == path {
			return path, nil
		}
		e.logger.Info("switching rendering", "from", e.current.path, "to", path)
		e.haltLocked()
	}
	return path, e.startLocked(path)
}

// Resume replays path without rendering again. path must still be the
// cached rendering, otherwise ErrNoRendering is returned.
func (e *Engine) Resume(path string) error {
	cur, ok := e.renderer.Current()
	if !ok || cur.Path != path {
		return ErrNoRendering
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Playing {
		return nil
	}
	e.logger.Info("resuming cached rendering", "path", path)
	return e.startLocked(path)
}

// Status returns a snapshot.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{State: e.state, StartedAt: e.startedAt, LastError: e.lastErr}
	if e.current != nil {
		st.Path = e.current.path
		st.Loops = e.current.loops
	}
	return st
}

// Close stops any stream and waits for the device to be released.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.generation++
	if e.state == Playing {
		e.haltLocked()
	}
	done := e.lastDone
	e.mu.Unlock()

	if done != nil {
		<-done
	}
	return nil
}

// haltLocked cancels the current stream; must hold e.mu.
func (e *Engine) haltLocked() {
	e.current.cancel()
	e.current = nil
	e.state = Idle
	e.metrics.SetPlaying(false)
}

// startLocked opens path and launches its stream goroutine; must hold e.mu.
func (e *Engine) startLocked(path string) error {
	src, err := decode.OpenWAV(path)
	if err != nil {
		serr := &StreamError{Path: path, Err: err}
		e.lastErr = serr
		e.metrics.StreamError()
		return serr
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &stream{path: path, cancel: cancel, done: make(chan struct{})}
	prev := e.lastDone

	e.current = s
	e.lastDone = s.done
	e.state = Playing
	e.startedAt = time.Now()
	e.lastErr = nil
	e.metrics.SetPlaying(true)

	e.logger.Info("starting playback", "path", path, "format", src.Format().String(), "loop", e.loop)
	go e.run(ctx, s, src, prev)
	return nil
}

func (e *Engine) run(ctx context.Context, s *stream, src *decode.WAVStream, prev chan struct{}) {
	defer close(s.done)
	defer src.Close()

	// the previous stream must release the device first
	if prev != nil {
		<-prev
	}

	err := e.pump(ctx, s, src)
	if cerr := e.out.Close(); cerr != nil {
		e.logger.Warn("output close failed", "error", cerr)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != s {
		return
	}
	e.current = nil
	e.state = Idle
	e.metrics.SetPlaying(false)

	if err != nil && !errors.Is(err, context.Canceled) {
		e.lastErr = &StreamError{Path: s.path, Err: err}
		e.metrics.StreamError()
		e.logger.Error("playback error", "path", s.path, "error", err)
		return
	}
	e.logger.Info("audio playback ended", "path", s.path)
}

func (e *Engine) pump(ctx context.Context, s *stream, src *decode.WAVStream) error {
	format := src.Format()
	rate := e.deviceRate
	if rate <= 0 {
		rate = format.SampleRate
	}
	if err := e.out.Open(rate, format.Channels); err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	rs := resample.New(format.SampleRate, rate, format.Channels)
	buf := make([]int32, e.chunkFrames*format.Channels)
	var converted []int32
	read := false

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := src.Read(buf)
		if n > 0 {
			read = true
			converted = rs.Process(converted[:0], buf[:n])
			if werr := e.out.Write(converted); werr != nil {
				return fmt.Errorf("write output: %w", werr)
			}
		}

		switch {
		case errors.Is(err, io.EOF):
			if !e.loop || !read {
				return nil
			}
			if rerr := src.Rewind(); rerr != nil {
				return fmt.Errorf("rewind: %w", rerr)
			}
			read = false
			e.mu.Lock()
			s.loops++
			e.mu.Unlock()
		case err != nil:
			return err
		}
	}
}
