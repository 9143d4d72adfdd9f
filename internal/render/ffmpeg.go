// ABOUTME: ffmpeg-backed transcoder for tempo-shifted, faded loop renders
// ABOUTME: Builds the atempo/apad/afade filter chain and runs ffmpeg under a context
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// stderrLimit caps how much ffmpeg stderr is kept for error reports.
const stderrLimit = 4096

// maxAtempo is the largest factor a single atempo filter accepts on older ffmpeg builds.
const maxAtempo = 2.0

// FFmpeg runs the ffmpeg binary.
type FFmpeg struct {
	Path   string
	logger *slog.Logger
}

// NewFFmpeg resolves the binary, looking it up on PATH when path is empty.
func NewFFmpeg(path string, logger *slog.Logger) (*FFmpeg, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		found, err := exec.LookPath("ffmpeg")
		if err != nil {
			return nil, fmt.Errorf("ffmpeg not found in PATH: %w (install with: apt install ffmpeg)", err)
		}
		path = found
	}
	return &FFmpeg{Path: path, logger: logger.With("component", "ffmpeg")}, nil
}

// Args builds the ffmpeg command line for job.
//
//	-y -loglevel error -i <in> -filter:a atempo=..,apad=..,afade=in..,afade=out..
//	-t <total> -ar <rate> -c:a pcm_s16le <out>
func Args(job Job) []string {
	total := job.TotalDuration
	fadeOut := total - job.FadeTime

	filters := append(tempoChain(job.SpeedFactor),
		"apad=whole_dur="+seconds(total),
		"afade=t=in:ss=0:d="+seconds(job.FadeTime),
		"afade=t=out:st="+seconds(fadeOut)+":d="+seconds(job.FadeTime),
	)

	return []string{
		"-y",
		"-loglevel", "error",
		"-i", job.Input,
		"-filter:a", strings.Join(filters, ","),
		"-t", seconds(total),
		"-ar", strconv.Itoa(job.SampleRate),
		"-c:a", "pcm_s16le",
		job.Output,
	}
}

// tempoChain splits factors above maxAtempo into several atempo stages.
func tempoChain(factor float64) []string {
	var chain []string
	for factor > maxAtempo {
		chain = append(chain, fmt.Sprintf("atempo=%.6f", maxAtempo))
		factor /= maxAtempo
	}
	return append(chain, fmt.Sprintf("atempo=%.6f", factor))
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// Transcode runs ffmpeg and waits for it. Cancelling ctx kills the process.
func (f *FFmpeg) Transcode(ctx context.Context, job Job) error {
	if !finite(job.SpeedFactor) {
		return &TranscodeError{ExitCode: -1, Err: ErrBadSpeedFactor}
	}
	args := Args(job)
	cmd := exec.CommandContext(ctx, f.Path, args...)
	cmd.WaitDelay = time.Second

	stderr := &tailBuffer{limit: stderrLimit}
	cmd.Stderr = stderr

	f.logger.Debug("running ffmpeg", "args", strings.Join(args, " "))
	start := time.Now()

	if err := cmd.Run(); err != nil {
		te := &TranscodeError{ExitCode: -1, Stderr: strings.TrimSpace(stderr.String()), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			te.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			te.Err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return te
	}

	f.logger.Debug("ffmpeg finished", "output", job.Output, "took", time.Since(start))
	return nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) > t.limit {
		p = p[len(p)-t.limit:]
	}
	if over := t.buf.Len() + len(p) - t.limit; over > 0 {
		t.buf.Next(over)
	}
	t.buf.Write(p)
	return n, nil
}

func (t *tailBuffer) String() string { return t.buf.String() }
