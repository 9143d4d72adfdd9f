// ABOUTME: Error types for the render pipeline
// ABOUTME: RenderError carries transcoder context and matches ErrRenderFailed
package render

import (
	"errors"
	"fmt"
	"path/filepath"
)

var (
	// ErrRenderFailed matches every failed render via errors.Is.
	ErrRenderFailed = errors.New("render failed")

	// ErrNoOutput means the transcoder reported success but wrote nothing.
	ErrNoOutput = errors.New("transcoder produced no output file")

	// ErrBadSpeedFactor rejects NaN and infinite factors before any work starts.
	ErrBadSpeedFactor = errors.New("speed factor must be finite")
)

// RenderError describes a failed render. The cache slot is untouched when one is returned.
type RenderError struct {
	Source      string
	SpeedFactor float64
	ExitCode    int    // -1 when the process did not exit normally
	Stderr      string // tail of the transcoder's stderr
	Err         error
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("render %s at speed %.4f", filepath.Base(e.Source), e.SpeedFactor)
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" (exit code %d)", e.ExitCode)
	}
	return msg + ": " + e.Err.Error()
}

func (e *RenderError) Unwrap() []error {
	return []error{ErrRenderFailed, e.Err}
}

// TranscodeError is returned by FFmpeg when the process fails.
type TranscodeError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *TranscodeError) Error() string {
	if e.Stderr == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Stderr)
}

func (e *TranscodeError) Unwrap() error { return e.Err }
