// ABOUTME: Tests for WAV probing and streaming
// ABOUTME: Uses fixtures written with go-audio/wav
package decode

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/nightchorus/internal/testutil"
	"github.com/harperreed/nightchorus/pkg/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeWAV(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteWAV(t, dir, "frogs.wav", 8000, 2, testutil.Tone(8000, 2, 16000, 440))

	info, err := Probe(path)
	require.NoError(t, err)

	assert.Equal(t, "pcm", info.Codec)
	assert.Equal(t, audio.Format{SampleRate: 8000, Channels: 2, BitDepth: 16}, info.Format)
	assert.Equal(t, 2*time.Second, info.Duration)
}

func TestProbeUnsupported(t *testing.T) {
	_, err := Probe(filepath.Join(t.TempDir(), "loop.aiff"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, Supported("loop.aiff"))
	assert.True(t, Supported("LOOP.WAV"))
}

func TestProbeMissingFile(t *testing.T) {
	_, err := Probe(filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestProbeGarbage(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"junk.wav", "junk.mp3", "junk.flac", "junk.ogg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("definitely not audio data at all"), 0o644))

		_, err := Probe(path)
		assert.Error(t, err, name)
	}
}

func TestWAVStreamReadsAllSamples(t *testing.T) {
	dir := t.TempDir()
	samples := []int{0, 1, -1, 100, -100, 32767, -32768, 42}
	path := testutil.WriteWAV(t, dir, "short.wav", 48000, 2, samples)

	stream, err := OpenWAV(path)
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16}, stream.Format())

	var got []int32
	buf := make([]int32, 3)
	for {
		n, err := stream.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}

	want := make([]int32, len(samples))
	for i, s := range samples {
		want[i] = audio.SampleFromInt16(int16(s))
	}
	assert.Equal(t, want, got)
}

func TestWAVStreamRewind(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteWAV(t, dir, "loop.wav", 8000, 1, []int{5, 6, 7, 8})

	stream, err := OpenWAV(path)
	require.NoError(t, err)
	defer stream.Close()

	buf := make([]int32, 16)
	n, err := stream.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	_, err = stream.Read(buf)
	require.ErrorIs(t, err, io.EOF)

	require.NoError(t, stream.Rewind())
	n, err = stream.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, audio.SampleFromInt16(5), buf[0])
}

func TestOpenWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF????WAVEnope"), 0o644))

	_, err := OpenWAV(path)
	assert.ErrorIs(t, err, ErrInvalidWAV)
}
