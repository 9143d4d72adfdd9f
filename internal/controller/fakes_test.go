// ABOUTME: Test doubles for the decision loop
// ABOUTME: Scriptable sensors, player and source lookup
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/harperreed/nightchorus/internal/playback"
	"github.com/harperreed/nightchorus/internal/render"
)

type fakeSensors struct {
	mu          sync.Mutex
	temperature float64
	light       float64
}

func (s *fakeSensors) ReadTemperature() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temperature
}

func (s *fakeSensors) ReadLight() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.light
}

func (s *fakeSensors) set(temperature, light float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.temperature, s.light = temperature, light
}

type fakePlayer struct {
	mu       sync.Mutex
	requests []render.Request
	resumes  []string
	stops    int
	renders  int
	playing  bool
	cached   string
	fail     error
	// gate, when set, blocks UpdateAndPlay until closed or cancelled.
	gate    chan struct{}
	entered chan struct{}
}

func (p *fakePlayer) UpdateAndPlay(ctx context.Context, req render.Request) (string, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	gate, entered, fail := p.gate, p.entered, p.fail
	p.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if fail != nil {
		return "", fail
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.renders++
	p.cached = fmt.Sprintf("/tmp/render_%d_adjusted.wav", p.renders)
	p.playing = true
	return p.cached, nil
}

func (p *fakePlayer) Resume(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resumes = append(p.resumes, path)
	if path == "" || path != p.cached {
		return playback.ErrNoRendering
	}
	p.playing = true
	return nil
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	p.playing = false
}

func (p *fakePlayer) Status() playback.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return playback.Status{State: playback.Playing, Path: p.cached}
	}
	return playback.Status{State: playback.Idle}
}

type playerCounts struct {
	requests []render.Request
	resumes  []string
	stops    int
}

func (p *fakePlayer) counts() playerCounts {
	p.mu.Lock()
	defer p.mu.Unlock()
	return playerCounts{
		requests: append([]render.Request(nil), p.requests...),
		resumes:  append([]string(nil), p.resumes...),
		stops:    p.stops,
	}
}

// halt drops the stream the way a device error does, leaving the cache alone.
func (p *fakePlayer) halt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

func (p *fakePlayer) evict() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = ""
}

type fakeSources map[string]string

var errNoSource = errors.New("no source")

func (f fakeSources) Path(species string) (string, error) {
	p, ok := f[species]
	if !ok {
		return "", errNoSource
	}
	return p, nil
}
