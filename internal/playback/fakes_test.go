// ABOUTME: Test doubles for the playback engine
// ABOUTME: A recording output device and a transcoder that copies WAV fixtures
package playback

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/harperreed/nightchorus/internal/render"
	"github.com/harperreed/nightchorus/pkg/audio/output"
)

type fakeOutput struct {
	mu         sync.Mutex
	opens      int
	closes     int
	overlaps   int
	rate       int
	channels   int
	samples    int
	open       bool
	writeDelay time.Duration
	failWrite  error
}

func (f *fakeOutput) Open(sampleRate, channels int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.open {
		f.overlaps++
		return errors.New("device already open")
	}
	f.open = true
	f.opens++
	f.rate, f.channels = sampleRate, channels
	return nil
}

func (f *fakeOutput) Write(samples []int32) error {
	f.mu.Lock()
	open, delay, fail := f.open, f.writeDelay, f.failWrite
	f.mu.Unlock()

	if !open {
		return output.ErrNotOpen
	}
	if fail != nil {
		return fail
	}
	time.Sleep(delay)

	f.mu.Lock()
	f.samples += len(samples)
	f.mu.Unlock()
	return nil
}

func (f *fakeOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.open {
		f.closes++
	}
	f.open = false
	return nil
}

func (f *fakeOutput) SetVolume(int) {}

type outputStats struct {
	opens, closes, overlaps int
	rate, channels, samples int
	open                    bool
}

func (f *fakeOutput) stats() outputStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return outputStats{
		opens: f.opens, closes: f.closes, overlaps: f.overlaps,
		rate: f.rate, channels: f.channels, samples: f.samples, open: f.open,
	}
}

// copyTranscoder "renders" by copying a fixture WAV to the job output.
type copyTranscoder struct {
	fixture string

	mu      sync.Mutex
	calls   int
	err     error
	gate    chan struct{} // when set, Transcode waits for it to close
	entered chan struct{} // signalled when a gated Transcode starts
}

func (c *copyTranscoder) Transcode(ctx context.Context, job render.Job) error {
	c.mu.Lock()
	c.calls++
	err, gate, entered := c.err, c.gate, c.entered
	c.mu.Unlock()

	if gate != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.fixture)
	if err != nil {
		return err
	}
	return os.WriteFile(job.Output, data, 0o644)
}

func (c *copyTranscoder) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
