// ABOUTME: Ogg Vorbis probing
// ABOUTME: Uses oggvorbis.GetLength to find the last granule position
package decode

import (
	"fmt"
	"os"
	"time"

	"github.com/harperreed/nightchorus/pkg/audio"
	"github.com/jfreymuth/oggvorbis"
)

func probeOgg(f *os.File) (Info, error) {
	length, format, err := oggvorbis.GetLength(f)
	if err != nil {
		return Info{}, fmt.Errorf("failed to decode Ogg Vorbis: %w", err)
	}
	if format.SampleRate <= 0 {
		return Info{}, fmt.Errorf("invalid Ogg Vorbis sample rate: %d", format.SampleRate)
	}

	return Info{
		Codec: "vorbis",
		Format: audio.Format{
			SampleRate: format.SampleRate,
			Channels:   format.Channels,
			BitDepth:   32,
		},
		Duration: time.Duration(length) * time.Second / time.Duration(format.SampleRate),
	}, nil
}
