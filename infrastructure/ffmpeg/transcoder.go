package ffmpeg

import (
	"context"
	"fmt"
	"strings"

	"minute-condenser/domain/video"
	"minute-condenser/infrastructure/config"
)

// TranscoderMarker is inserted into output names written by the Transcoder
const TranscoderMarker = "_1min_ffmpeg_fast"

// Transcoder implements video.Retimer by running ffmpeg with a setpts/atempo
// filter graph, hardware decode when the machine offers it, and fast-start muxing.
//
// Audio is retimed with a single atempo stage clamped to video.MaxTempoFactor.
// Above a 2x speed factor the audio track therefore ends up longer than the
// video; the Artifact reports this as AudioMismatch.
type Transcoder struct {
	ffmpegPath string
	runner     CommandRunner
	config     config.FFmpegConfig
}

// TranscoderOption is a functional option for configuring Transcoder
type TranscoderOption func(*Transcoder)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) TranscoderOption {
	return func(t *Transcoder) {
		t.ffmpegPath = path
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) TranscoderOption {
	return func(t *Transcoder) {
		t.runner = runner
	}
}

// NewTranscoder creates a new FFmpeg-based retimer
func NewTranscoder(cfg config.FFmpegConfig, opts ...TranscoderOption) *Transcoder {
	t := &Transcoder{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
		config:     cfg,
	}
	if cfg.FFmpegPath != "" {
		t.ffmpegPath = cfg.FFmpegPath
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Name implements video.Retimer
func (t *Transcoder) Name() string {
	return "FFmpeg (Ultra-fast)"
}

// OutputMarker implements video.Retimer
func (t *Transcoder) OutputMarker() string {
	return TranscoderMarker
}

// HWAccelAvailable reports whether the configured hwaccel method is listed by
// `ffmpeg -hwaccels`
func (t *Transcoder) HWAccelAvailable(ctx context.Context) bool {
	if t.config.HWAccel == "" {
		return false
	}

	out, err := t.runner.Output(ctx, t.ffmpegPath, "-hide_banner", "-hwaccels")
	if err != nil {
		return false
	}

	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == t.config.HWAccel {
			return true
		}
	}
	return false
}

// FilterGraph returns the -filter_complex value for the job
func (t *Transcoder) FilterGraph(job *video.MediaJob, plan video.RetimePlan) string {
	var videoFilters []string
	if t.config.MaxHeight > 0 {
		videoFilters = append(videoFilters, fmt.Sprintf("scale=-2:'min(%d,ih)'", t.config.MaxHeight))
	}
	videoFilters = append(videoFilters, fmt.Sprintf("setpts=%s*PTS", video.FormatFactor(plan.PTSMultiplier())))

	graph := "[0:v]" + strings.Join(videoFilters, ",") + "[v]"
	if !job.RemoveAudio {
		graph += fmt.Sprintf(";[0:a]atempo=%s[a]", video.FormatFactor(plan.ClampedTempo()))
	}
	return graph
}

// BuildArgs returns the ffmpeg arguments for the job. hwaccel selects hardware
// decode and the hardware encoder.
func (t *Transcoder) BuildArgs(job *video.MediaJob, plan video.RetimePlan, hwaccel bool) []string {
	var args []string
	videoCodec := t.config.FallbackVideoCodec
	if hwaccel {
		args = append(args, "-hwaccel", t.config.HWAccel)
		if t.config.HWVideoCodec != "" {
			videoCodec = t.config.HWVideoCodec
		}
	}

	args = append(args,
		"-i", job.InputPath,
		"-filter_complex", t.FilterGraph(job, plan),
		"-map", "[v]",
	)
	if !job.RemoveAudio {
		args = append(args, "-map", "[a]")
	}

	args = appendOption(args, "-c:v", videoCodec)
	args = appendOption(args, "-b:v", t.config.VideoBitrate)
	args = appendOption(args, "-maxrate", t.config.MaxRate)
	args = appendOption(args, "-bufsize", t.config.BufSize)
	args = appendOption(args, "-profile:v", t.config.Profile)
	args = append(args, "-threads", "0")

	if job.RemoveAudio {
		args = append(args, "-an")
	} else {
		args = appendOption(args, "-c:a", t.config.AudioCodec)
		args = appendOption(args, "-b:a", t.config.AudioBitrate)
	}

	return append(args,
		"-movflags", "+faststart",
		"-y", // Overwrite output file if it exists
		job.OutputPath,
	)
}

func appendOption(args []string, flag, value string) []string {
	if value == "" {
		return args
	}
	return append(args, flag, value)
}

// Retime implements video.Retimer
func (t *Transcoder) Retime(ctx context.Context, job *video.MediaJob, plan video.RetimePlan) (*video.Artifact, error) {
	args := t.BuildArgs(job, plan, t.HWAccelAvailable(ctx))

	if err := t.runner.Run(ctx, t.ffmpegPath, args...); err != nil {
		return nil, &video.TranscodeError{
			Backend:    t.Name(),
			OutputPath: job.OutputPath,
			Diagnostic: diagnosticOf(err),
			Err:        err,
		}
	}

	artifact := &video.Artifact{
		Path:          job.OutputPath,
		AudioRetained: !job.RemoveAudio,
	}
	if !job.RemoveAudio {
		artifact.AudioTempo = plan.ClampedTempo()
		artifact.AudioMismatch = plan.AudioMismatch()
	}
	return artifact, nil
}

// VerifyInstalled checks that ffmpeg is available
func (t *Transcoder) VerifyInstalled(ctx context.Context) error {
	_, err := t.runner.Output(ctx, t.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Transcoder implements video.Retimer
var _ video.Retimer = (*Transcoder)(nil)
