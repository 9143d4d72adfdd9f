// ABOUTME: Malgo-based audio output implementation with 24-bit support
// ABOUTME: Uses miniaudio via malgo with a ring buffer feeding the device callback
package output

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/harperreed/nightchorus/pkg/audio/encode"
)

// bufferLatency is the ring buffer capacity expressed as playback time.
const bufferLatency = 500 * time.Millisecond

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	logger *slog.Logger
	volume atomic.Int32

	mu         sync.Mutex
	malgoCtx   *malgo.AllocatedContext
	device     *malgo.Device
	ring       *RingBuffer
	done       chan struct{}
	sampleRate int
	channels   int

	scaled  []int32
	scratch []int32 // callback side
}

// NewMalgo creates a new Malgo output
func NewMalgo(logger *slog.Logger) *Malgo {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Malgo{logger: logger}
	m.volume.Store(100)
	return m
}

// Open initializes the playback device as signed 24-bit
func (m *Malgo) Open(sampleRate, channels int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		if m.sampleRate == sampleRate && m.channels == channels {
			return nil
		}
		m.logger.Info("format change, reinitializing device",
			"from_rate", m.sampleRate, "from_channels", m.channels,
			"to_rate", sampleRate, "to_channels", channels)
		m.closeDevice()
	}

	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}

	ring := NewRingBuffer(int(int64(sampleRate*channels) * int64(bufferLatency) / int64(time.Second)))

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS24
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			m.fill(ring, pOutput, int(frameCount)*channels)
		},
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device
	m.ring = ring
	m.done = make(chan struct{})
	m.sampleRate = sampleRate
	m.channels = channels

	m.logger.Info("audio output initialized", "sample_rate", sampleRate, "channels", channels, "format", "S24")
	return nil
}

// fill runs on the device thread
func (m *Malgo) fill(ring *RingBuffer, pOutput []byte, samples int) {
	if cap(m.scratch) < samples {
		m.scratch = make([]int32, samples)
	}
	buf := m.scratch[:samples]
	ring.Read(buf)
	encode.PCM24LE(pOutput[:0], buf)
}

// Write queues samples, blocking while the ring buffer is full.
func (m *Malgo) Write(samples []int32) error {
	m.mu.Lock()
	ring, done := m.ring, m.done
	if m.device == nil {
		m.mu.Unlock()
		return ErrNotOpen
	}
	m.scaled = applyVolume(m.scaled, samples, int(m.volume.Load()))
	pending := m.scaled
	m.mu.Unlock()

	for len(pending) > 0 {
		n := ring.Write(pending)
		pending = pending[n:]
		if n > 0 {
			continue
		}
		select {
		case <-done:
			return ErrNotOpen
		case <-time.After(5 * time.Millisecond):
		}
	}
	return nil
}

// Close stops the device and releases the miniaudio context
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeDevice()
	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			m.logger.Warn("malgo context uninit failed", "error", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}

// closeDevice must hold m.mu
func (m *Malgo) closeDevice() {
	if m.device == nil {
		return
	}
	if err := m.device.Stop(); err != nil {
		m.logger.Warn("device stop failed", "error", err)
	}
	m.device.Uninit()
	m.device = nil
	close(m.done)
}

// SetVolume sets the volume (0-100)
func (m *Malgo) SetVolume(volume int) {
	volume = clampVolume(volume)
	m.volume.Store(int32(volume))
	m.logger.Debug("volume set", "volume", volume)
}
