// ABOUTME: Streaming linear resampler for interleaved int32 audio
// ABOUTME: Used by playback when a rendering's rate differs from the device rate
package resample

// Resampler performs linear interpolation between sample rates.
// It is not safe for concurrent use.
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	step       float64 // input frames advanced per output frame
	position   float64 // offset from prev, in input frames
	prev       []int32 // last frame of the previous chunk
	primed     bool
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	if channels < 1 {
		channels = 1
	}
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		step:       float64(inputRate) / float64(outputRate),
		prev:       make([]int32, channels),
	}
}

// Passthrough reports whether input and output rates match.
func (r *Resampler) Passthrough() bool {
	return r.inputRate == r.outputRate
}

// Process appends the resampled form of input to dst and returns it.
// input must hold whole interleaved frames.
func (r *Resampler) Process(dst, input []int32) []int32 {
	if r.Passthrough() {
		return append(dst, input...)
	}

	frames := len(input) / r.channels
	if frames == 0 {
		return dst
	}
	if !r.primed {
		copy(r.prev, input[:r.channels])
		input = input[r.channels:]
		frames--
		r.primed = true
	}

	// frame(0) is prev, frame(k) is input frame k-1
	frame := func(k, ch int) int32 {
		if k == 0 {
			return r.prev[ch]
		}
		return input[(k-1)*r.channels+ch]
	}

	last := frames // index of the final available frame
	for {
		idx := int(r.position)
		if idx+1 > last {
			break
		}
		frac := r.position - float64(idx)
		for ch := 0; ch < r.channels; ch++ {
			a := float64(frame(idx, ch))
			b := float64(frame(idx+1, ch))
			dst = append(dst, int32(a+(b-a)*frac))
		}
		r.position += r.step
	}

	if frames > 0 {
		copy(r.prev, input[(frames-1)*r.channels:frames*r.channels])
	}
	r.position -= float64(last)
	return dst
}

// Reset clears stream state so the next Process starts a new stream.
func (r *Resampler) Reset() {
	r.position = 0
	r.primed = false
	for i := range r.prev {
		r.prev[i] = 0
	}
}
