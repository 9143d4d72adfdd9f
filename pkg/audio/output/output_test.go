// ABOUTME: Audio output tests
// ABOUTME: Verifies backend selection, software volume and the ring buffer
package output

import (
	"testing"

	"github.com/harperreed/nightchorus/pkg/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendsImplementOutput(t *testing.T) {
	var _ Output = (*Oto)(nil)
	var _ Output = (*Malgo)(nil)
}

func TestNew(t *testing.T) {
	tests := []struct {
		backend string
		want    any
		wantErr bool
	}{
		{"", &Oto{}, false},
		{BackendOto, &Oto{}, false},
		{BackendMalgo, &Malgo{}, false},
		{"portaudio", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			out, err := New(tt.backend, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown audio backend")
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, out)
		})
	}
}

func TestWriteBeforeOpen(t *testing.T) {
	assert.ErrorIs(t, NewOto(nil).Write([]int32{1}), ErrNotOpen)
	assert.ErrorIs(t, NewMalgo(nil).Write([]int32{1}), ErrNotOpen)
}

func TestCloseWithoutOpen(t *testing.T) {
	assert.NoError(t, NewMalgo(nil).Close())
}

func TestGetVolumeMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, getVolumeMultiplier(100))
	assert.Equal(t, 0.5, getVolumeMultiplier(50))
	assert.Equal(t, 0.0, getVolumeMultiplier(0))
	assert.Equal(t, 1.0, getVolumeMultiplier(150))
	assert.Equal(t, 0.0, getVolumeMultiplier(-3))
}

func TestApplyVolume(t *testing.T) {
	samples := []int32{1000, -1000, audio.Max24Bit, audio.Min24Bit}

	assert.Equal(t, []int32{500, -500, audio.Max24Bit / 2, audio.Min24Bit / 2}, applyVolume(nil, samples, 50))
	assert.Equal(t, samples, applyVolume(nil, samples, 100))
	assert.Equal(t, []int32{0, 0, 0, 0}, applyVolume(nil, samples, 0))
}

func TestApplyVolumeReusesBuffer(t *testing.T) {
	dst := make([]int32, 0, 8)
	out := applyVolume(dst, []int32{10, 20}, 100)
	assert.Equal(t, &dst[:1][0], &out[0])
}

func TestSetVolumeClamps(t *testing.T) {
	o := NewOto(nil)
	o.SetVolume(140)
	assert.EqualValues(t, 100, o.volume.Load())
	o.SetVolume(-1)
	assert.EqualValues(t, 0, o.volume.Load())

	m := NewMalgo(nil)
	m.SetVolume(42)
	assert.EqualValues(t, 42, m.volume.Load())
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(4)

	assert.Equal(t, 3, rb.Write([]int32{1, 2, 3}))
	assert.Equal(t, 1, rb.Write([]int32{4, 5}))
	assert.Equal(t, 4, rb.Available())

	out := make([]int32, 2)
	assert.Equal(t, 2, rb.Read(out))
	assert.Equal(t, []int32{1, 2}, out)

	assert.Equal(t, 2, rb.Write([]int32{5, 6}))

	out = make([]int32, 6)
	assert.Equal(t, 4, rb.Read(out))
	assert.Equal(t, []int32{3, 4, 5, 6, 0, 0}, out)

	rb.Write([]int32{9})
	rb.Reset()
	assert.Zero(t, rb.Available())
}
