// ABOUTME: Error values reported by the playback engine
// ABOUTME: StreamError wraps device or decode failures during a stream
package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrStream matches every StreamError via errors.Is.
	ErrStream = errors.New("stream failed")

	// ErrNoRendering is returned by Resume when the cache slot is empty.
	ErrNoRendering = errors.New("no cached rendering to resume")

	// ErrSuperseded is returned by UpdateAndPlay when a Stop or a newer
	// request arrived while the render was in flight; nothing was played.
	ErrSuperseded = errors.New("playback request superseded")
)

// StreamError reports a stream that ended because of an error.
type StreamError struct {
	Path string
	Err  error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream %s: %v", e.Path, e.Err)
}

func (e *StreamError) Unwrap() []error {
	return []error{ErrStream, e.Err}
}
