// ABOUTME: MP3 probing
// ABOUTME: Uses go-mp3 to read sample rate and decoded length
package decode

import (
	"fmt"
	"os"
	"time"

	"github.com/harperreed/nightchorus/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always decodes to interleaved 16-bit stereo.
const mp3BytesPerFrame = 4

func probeMP3(f *os.File) (Info, error) {
	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return Info{}, fmt.Errorf("failed to decode MP3: %w", err)
	}

	rate := decoder.SampleRate()
	if rate <= 0 {
		return Info{}, fmt.Errorf("invalid MP3 sample rate: %d", rate)
	}

	var duration time.Duration
	if length := decoder.Length(); length > 0 {
		frames := length / mp3BytesPerFrame
		duration = time.Duration(frames) * time.Second / time.Duration(rate)
	}

	return Info{
		Codec:    "mp3",
		Format:   audio.Format{SampleRate: rate, Channels: 2, BitDepth: 16},
		Duration: duration,
	}, nil
}
