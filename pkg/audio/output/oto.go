// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams 16-bit PCM through a pipe into a persistent oto player
package output

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
	"github.com/harperreed/nightchorus/pkg/audio/encode"
)

// Oto output implementation using oto library.
// oto allows a single context per process, so the first Open fixes the
// device format; later Opens reuse it.
type Oto struct {
	logger *slog.Logger
	volume atomic.Int32

	mu         sync.Mutex
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	sampleRate int
	channels   int

	scaled []int32
	buf    []byte
}

// NewOto creates a new Oto output
func NewOto(logger *slog.Logger) *Oto {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Oto{logger: logger}
	o.volume.Store(100)
	return o
}

// Open initializes the output device
func (o *Oto) Open(sampleRate, channels int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pipeWriter != nil {
		return nil
	}

	if o.otoCtx == nil {
		ctx, readyChan, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			return fmt.Errorf("failed to create oto context: %w", err)
		}
		<-readyChan

		o.otoCtx = ctx
		o.sampleRate = sampleRate
		o.channels = channels
		o.logger.Info("audio output initialized", "sample_rate", sampleRate, "channels", channels)
	} else {
		if o.sampleRate != sampleRate || o.channels != channels {
			o.logger.Warn("oto cannot change format after init, keeping existing context",
				"have_rate", o.sampleRate, "have_channels", o.channels,
				"want_rate", sampleRate, "want_channels", channels)
		}
		if err := o.otoCtx.Resume(); err != nil {
			return fmt.Errorf("failed to resume oto context: %w", err)
		}
	}

	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()
	return nil
}

// Format returns the device format fixed by the first Open.
func (o *Oto) Format() (sampleRate, channels int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sampleRate, o.channels
}

// Write outputs audio samples (blocks until the player consumes them)
func (o *Oto) Write(samples []int32) error {
	o.mu.Lock()
	w := o.pipeWriter
	if w == nil {
		o.mu.Unlock()
		return ErrNotOpen
	}
	o.scaled = applyVolume(o.scaled, samples, int(o.volume.Load()))
	o.buf = encode.PCM16LE(o.buf[:0], o.scaled)
	buf := o.buf
	o.mu.Unlock()

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}
	return nil
}

// Close releases the player; the oto context is suspended, not destroyed.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			o.logger.Warn("oto player close failed", "error", err)
		}
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			o.logger.Warn("oto suspend failed", "error", err)
		}
	}
	return nil
}

// SetVolume sets the volume (0-100)
func (o *Oto) SetVolume(volume int) {
	volume = clampVolume(volume)
	o.volume.Store(int32(volume))
	o.logger.Debug("volume set", "volume", volume)
}
