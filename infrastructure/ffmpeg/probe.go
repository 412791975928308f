package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"minute-condenser/domain/video"
)

// FFprobe implements video.DurationProber by running ffprobe and reading the
// container's format duration
type FFprobe struct {
	ffprobePath string
	runner      CommandRunner
}

// FFprobeOption is a functional option for configuring FFprobe
type FFprobeOption func(*FFprobe)

// WithFFprobePath sets a custom ffprobe executable path
func WithFFprobePath(path string) FFprobeOption {
	return func(p *FFprobe) {
		p.ffprobePath = path
	}
}

// WithFFprobeCommandRunner sets a custom command runner (for testing)
func WithFFprobeCommandRunner(runner CommandRunner) FFprobeOption {
	return func(p *FFprobe) {
		p.runner = runner
	}
}

// NewFFprobe creates a new ffprobe-based duration prober
func NewFFprobe(opts ...FFprobeOption) *FFprobe {
	p := &FFprobe{
		ffprobePath: "ffprobe",
		runner:      &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Duration implements video.DurationProber
func (p *FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	out, err := p.runner.Output(ctx, p.ffprobePath, args...)
	if err != nil {
		if diag := diagnosticOf(err); diag != "" {
			err = fmt.Errorf("%w: %s", err, diag)
		}
		return 0, &video.ProbeError{Path: path, Err: err}
	}

	duration, err := parseDuration(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, &video.ProbeError{Path: path, Err: err}
	}
	return duration, nil
}

// parseDuration reads a duration field as printed by ffprobe
func parseDuration(s string) (float64, error) {
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("no duration reported")
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected duration %q: %w", s, err)
	}
	return d, nil
}

// VerifyInstalled checks that ffprobe is available
func (p *FFprobe) VerifyInstalled(ctx context.Context) error {
	_, err := p.runner.Output(ctx, p.ffprobePath, "-version")
	if err != nil {
		return fmt.Errorf("ffprobe not found or not executable: %w", err)
	}
	return nil
}

// Ensure FFprobe implements video.DurationProber
var _ video.DurationProber = (*FFprobe)(nil)
