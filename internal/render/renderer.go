// ABOUTME: Render pipeline turning a source loop into a tempo-adjusted PCM file
// ABOUTME: Holds a single cached rendering and replaces it only on success
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/nightchorus/internal/metrics"
)

// MinSpeedFactor is the slowest tempo the pipeline renders.
const MinSpeedFactor = 0.5

// Request asks for source played at SpeedFactor, faded in and out over
// FadeTime and lasting TotalDuration.
type Request struct {
	Source        string
	SpeedFactor   float64
	FadeTime      time.Duration
	TotalDuration time.Duration
}

// Job is a single transcoder invocation.
type Job struct {
	Input         string
	Output        string
	SpeedFactor   float64
	FadeTime      time.Duration
	TotalDuration time.Duration
	SampleRate    int
}

// Transcoder renders one job into job.Output.
type Transcoder interface {
	Transcode(ctx context.Context, job Job) error
}

// Key identifies a rendering. Source is part of the key so two species
// at the same factor never share a file.
type Key struct {
	Source        string
	SpeedFactor   float64
	FadeTime      time.Duration
	TotalDuration time.Duration
}

// Rendering is the content of the cache slot.
type Rendering struct {
	Key       Key
	Path      string
	CreatedAt time.Time
}

// Options configure a Renderer.
type Options struct {
	TempDir    string
	SampleRate int
	Timeout    time.Duration
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

// Renderer owns the single-slot render cache.
type Renderer struct {
	transcoder Transcoder
	tempDir    string
	sampleRate int
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics

	renderMu sync.Mutex // serializes transcoder runs

	mu      sync.Mutex
	current *Rendering
}

// New creates a Renderer. Zero options fall back to os.TempDir, 48kHz and a 30s timeout.
func New(t Transcoder, opts Options) *Renderer {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 48000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Renderer{
		transcoder: t,
		tempDir:    opts.TempDir,
		sampleRate: opts.SampleRate,
		timeout:    opts.Timeout,
		logger:     opts.Logger.With("component", "render"),
		metrics:    opts.Metrics,
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ClampSpeedFactor raises factors below MinSpeedFactor and reports whether it did.
func ClampSpeedFactor(f float64) (float64, bool) {
	if f < MinSpeedFactor {
		return MinSpeedFactor, true
	}
	return f, false
}

// Render returns the path of a rendering matching req, reusing the cached one
// when the key matches. On failure the cached rendering is left in place.
func (r *Renderer) Render(ctx context.Context, req Request) (string, error) {
	if !finite(req.SpeedFactor) {
		return "", r.renderError(req.Source, req.SpeedFactor, ErrBadSpeedFactor)
	}
	factor, clamped := ClampSpeedFactor(req.SpeedFactor)
	if clamped {
		r.logger.Warn("speed factor too low, clamping", "requested", req.SpeedFactor, "clamped", factor)
	}
	key := Key{
		Source:        req.Source,
		SpeedFactor:   factor,
		FadeTime:      req.FadeTime,
		TotalDuration: req.TotalDuration,
	}

	if path, ok := r.lookup(key); ok {
		return path, nil
	}

	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	// another caller may have rendered it while we waited
	if path, ok := r.lookup(key); ok {
		return path, nil
	}

	if err := ctx.Err(); err != nil {
		return "", &RenderError{Source: req.Source, SpeedFactor: factor, ExitCode: -1, Err: err}
	}

	job := Job{
		Input:         req.Source,
		Output:        filepath.Join(r.tempDir, uuid.NewString()+"_adjusted.wav"),
		SpeedFactor:   factor,
		FadeTime:      req.FadeTime,
		TotalDuration: req.TotalDuration,
		SampleRate:    r.sampleRate,
	}

	r.logger.Info("rendering", "source", req.Source, "speed_factor", factor, "output", job.Output)
	start := time.Now()

	err := r.transcode(ctx, job)
	r.metrics.ObserveRender(err, time.Since(start))
	if err != nil {
		r.removeQuietly(job.Output)
		return "", r.renderError(req.Source, factor, err)
	}

	r.commit(Rendering{Key: key, Path: job.Output, CreatedAt: time.Now()})
	r.logger.Info("render complete", "output", job.Output, "took", time.Since(start))
	return job.Output, nil
}

func (r *Renderer) transcode(ctx context.Context, job Job) error {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.transcoder.Transcode(tctx, job); err != nil {
		return err
	}
	st, err := os.Stat(job.Output)
	if err != nil || st.Size() == 0 {
		return ErrNoOutput
	}
	return nil
}

func (r *Renderer) renderError(source string, factor float64, err error) *RenderError {
	re := &RenderError{Source: source, SpeedFactor: factor, ExitCode: -1, Err: err}
	var te *TranscodeError
	if errors.As(err, &te) {
		re.ExitCode = te.ExitCode
		re.Stderr = te.Stderr
	}
	r.logger.Error("render failed", "source", source, "speed_factor", factor,
		"exit_code", re.ExitCode, "error", err)
	return re
}

func (r *Renderer) lookup(key Key) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil && r.current.Key == key {
		r.metrics.CacheHit()
		r.logger.Debug("reusing rendering", "speed_factor", key.SpeedFactor, "path", r.current.Path)
		return r.current.Path, true
	}
	return "", false
}

// commit swaps the slot and removes the evicted file. An open stream on the
// evicted file keeps reading through its descriptor.
func (r *Renderer) commit(next Rendering) {
	r.mu.Lock()
	prev := r.current
	r.current = &next
	r.mu.Unlock()

	if prev != nil && prev.Path != next.Path {
		r.removeQuietly(prev.Path)
		r.logger.Debug("evicted rendering", "path", prev.Path)
	}
}

// Current returns the cached rendering, if any.
func (r *Renderer) Current() (Rendering, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Rendering{}, false
	}
	return *r.current, true
}

// Close removes the cached file and empties the slot.
func (r *Renderer) Close() error {
	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	r.mu.Lock()
	prev := r.current
	r.current = nil
	r.mu.Unlock()

	if prev == nil {
		return nil
	}
	if err := os.Remove(prev.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove rendering: %w", err)
	}
	return nil
}

func (r *Renderer) removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("failed to remove rendering", "path", path, "error", err)
	}
}
