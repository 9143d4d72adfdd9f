// ABOUTME: Thread-safe circular sample buffer
// ABOUTME: Decouples blocking writers from the malgo device callback
package output

import "sync"

// RingBuffer provides thread-safe circular buffer for audio samples
type RingBuffer struct {
	mu       sync.Mutex
	buffer   []int32
	readPos  int
	writePos int
	count    int
}

// NewRingBuffer creates a ring buffer with given capacity (in samples)
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{buffer: make([]int32, capacity)}
}

// Write adds as many samples as fit and returns how many were stored.
func (rb *RingBuffer) Write(samples []int32) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	size := len(rb.buffer)
	written := 0
	for written < len(samples) && rb.count < size {
		rb.buffer[rb.writePos] = samples[written]
		rb.writePos = (rb.writePos + 1) % size
		rb.count++
		written++
	}
	return written
}

// Read fills samples from the buffer, zero-filling on underrun, and
// returns how many real samples were read.
func (rb *RingBuffer) Read(samples []int32) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	size := len(rb.buffer)
	read := 0
	for read < len(samples) && rb.count > 0 {
		samples[read] = rb.buffer[rb.readPos]
		rb.readPos = (rb.readPos + 1) % size
		rb.count--
		read++
	}
	for i := read; i < len(samples); i++ {
		samples[i] = 0
	}
	return read
}

// Available returns the number of samples available to read
func (rb *RingBuffer) Available() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Reset drops any buffered samples.
func (rb *RingBuffer) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.readPos, rb.writePos, rb.count = 0, 0, 0
}
