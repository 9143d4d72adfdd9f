// ABOUTME: FLAC probing
// ABOUTME: Reads the STREAMINFO block via mewkiz/flac
package decode

import (
	"fmt"
	"os"
	"time"

	"github.com/harperreed/nightchorus/pkg/audio"
	"github.com/mewkiz/flac"
)

func probeFLAC(f *os.File) (Info, error) {
	stream, err := flac.New(f)
	if err != nil {
		return Info{}, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	si := stream.Info
	if si == nil || si.SampleRate == 0 {
		return Info{}, fmt.Errorf("FLAC stream info missing")
	}

	return Info{
		Codec: "flac",
		Format: audio.Format{
			SampleRate: int(si.SampleRate),
			Channels:   int(si.NChannels),
			BitDepth:   int(si.BitsPerSample),
		},
		Duration: time.Duration(si.NSamples) * time.Second / time.Duration(si.SampleRate),
	}, nil
}
