package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"

	"minute-condenser/domain/video"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// ProbeFunc matches ffmpeg-go's Probe, which returns ffprobe's JSON report
type ProbeFunc func(fileName string, kwargs ...ffmpeggo.KwArgs) (string, error)

// LibraryProber implements video.DurationProber and video.Inspector on top of
// ffmpeg-go's JSON probe
type LibraryProber struct {
	probe ProbeFunc
}

// LibraryProberOption is a functional option for configuring LibraryProber
type LibraryProberOption func(*LibraryProber)

// WithProbeFunc replaces the probe call (for testing)
func WithProbeFunc(fn ProbeFunc) LibraryProberOption {
	return func(p *LibraryProber) {
		p.probe = fn
	}
}

// NewLibraryProber creates a prober backed by ffmpeg-go.
// ffmpeg-go always runs the ffprobe found on PATH, so ffmpeg.ffprobe_path
// does not apply here.
func NewLibraryProber(opts ...LibraryProberOption) *LibraryProber {
	p := &LibraryProber{
		probe: ffmpeggo.Probe,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

type probeReport struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

// Duration implements video.DurationProber
func (p *LibraryProber) Duration(ctx context.Context, path string) (float64, error) {
	info, err := p.Inspect(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

// Inspect implements video.Inspector. The container duration is preferred;
// without one the longest stream duration is used.
func (p *LibraryProber) Inspect(ctx context.Context, path string) (*video.MediaInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, &video.ProbeError{Path: path, Err: err}
	}

	out, err := p.probe(path)
	if err != nil {
		return nil, &video.ProbeError{Path: path, Err: err}
	}

	var report probeReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		return nil, &video.ProbeError{Path: path, Err: fmt.Errorf("failed to parse probe output: %w", err)}
	}

	info := &video.MediaInfo{}
	var longestStream float64
	for _, s := range report.Streams {
		switch s.CodecType {
		case "video":
			info.VideoStreams++
		case "audio":
			info.AudioStreams++
		}
		if d, err := parseDuration(s.Duration); err == nil && d > longestStream {
			longestStream = d
		}
	}

	if d, err := parseDuration(report.Format.Duration); err == nil {
		info.Duration = d
	} else if longestStream > 0 {
		info.Duration = longestStream
	} else {
		return nil, &video.ProbeError{Path: path, Err: fmt.Errorf("no duration reported")}
	}

	return info, nil
}

// Ensure LibraryProber implements the probe ports
var (
	_ video.DurationProber = (*LibraryProber)(nil)
	_ video.Inspector      = (*LibraryProber)(nil)
)
