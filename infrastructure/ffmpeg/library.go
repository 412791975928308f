package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"minute-condenser/domain/video"
	"minute-condenser/infrastructure/config"

	"github.com/google/uuid"
	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// LibraryMarker is inserted into output names written by the LibraryRetimer
const LibraryMarker = "_1min"

// LibraryRetimer implements video.Retimer by describing the whole edit as an
// ffmpeg-go stream graph: setpts on the video and a chain of atempo stages on
// the audio that together match the speed factor exactly.
//
// The graph is written to a staging file next to the output and renamed into
// place once the encode succeeds, so a failed encode never leaves a file at
// the output path.
type LibraryRetimer struct {
	ffmpegPath string
	runner     CommandRunner
	config     config.LibraryConfig
	newID      func() string
	inspector  video.Inspector
}

// LibraryOption is a functional option for configuring LibraryRetimer
type LibraryOption func(*LibraryRetimer)

// WithLibraryFFmpegPath sets a custom ffmpeg executable path
func WithLibraryFFmpegPath(path string) LibraryOption {
	return func(l *LibraryRetimer) {
		l.ffmpegPath = path
	}
}

// WithLibraryCommandRunner sets a custom command runner (for testing)
func WithLibraryCommandRunner(runner CommandRunner) LibraryOption {
	return func(l *LibraryRetimer) {
		l.runner = runner
	}
}

// WithStagingID sets the generator for staging file ids (for testing)
func WithStagingID(newID func() string) LibraryOption {
	return func(l *LibraryRetimer) {
		l.newID = newID
	}
}

// WithStreamInspector sets the inspector used to find inputs without an audio
// stream. Without one every input is assumed to carry audio.
func WithStreamInspector(inspector video.Inspector) LibraryOption {
	return func(l *LibraryRetimer) {
		l.inspector = inspector
	}
}

// NewLibraryRetimer creates a new graph-based retimer
func NewLibraryRetimer(cfg config.LibraryConfig, opts ...LibraryOption) *LibraryRetimer {
	l := &LibraryRetimer{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
		config:     cfg,
		newID:      uuid.NewString,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Name implements video.Retimer
func (l *LibraryRetimer) Name() string {
	return "Library"
}

// OutputMarker implements video.Retimer
func (l *LibraryRetimer) OutputMarker() string {
	return LibraryMarker
}

// StagingPath returns the hidden file the encode is written to before the rename
func (l *LibraryRetimer) StagingPath(outputPath, id string) string {
	stem, ext := video.SplitExt(filepath.Base(outputPath))
	return filepath.Join(filepath.Dir(outputPath), "."+stem+"-"+id+ext)
}

// Graph builds the stream graph that writes the retimed job to target
func (l *LibraryRetimer) Graph(job *video.MediaJob, plan video.RetimePlan, target string) *ffmpeggo.Stream {
	input := ffmpeggo.Input(job.InputPath)

	streams := []*ffmpeggo.Stream{
		input.Video().Filter("setpts", ffmpeggo.Args{video.FormatFactor(plan.PTSMultiplier()) + "*PTS"}),
	}

	kwargs := ffmpeggo.KwArgs{"movflags": "+faststart"}
	if l.config.VideoCodec != "" {
		kwargs["c:v"] = l.config.VideoCodec
	}
	if l.config.Preset != "" {
		kwargs["preset"] = l.config.Preset
	}

	if !job.RemoveAudio {
		audio := input.Audio()
		for _, tempo := range plan.TempoChain() {
			audio = audio.Filter("atempo", ffmpeggo.Args{video.FormatFactor(tempo)})
		}
		streams = append(streams, audio)
		if l.config.AudioCodec != "" {
			kwargs["c:a"] = l.config.AudioCodec
		}
	}

	return ffmpeggo.Output(streams, target, kwargs).OverWriteOutput()
}

// Retime implements video.Retimer
func (l *LibraryRetimer) Retime(ctx context.Context, job *video.MediaJob, plan video.RetimePlan) (*video.Artifact, error) {
	if !l.config.Overwrite {
		if _, err := os.Stat(job.OutputPath); err == nil {
			return nil, l.transcodeError(job, video.ErrOutputExists)
		}
	}

	if !job.RemoveAudio && !l.hasAudio(ctx, job.InputPath) {
		silent := *job
		silent.RemoveAudio = true
		job = &silent
	}

	staging := l.StagingPath(job.OutputPath, l.newID())
	args := l.Graph(job, plan, staging).GetArgs()

	if err := l.runner.Run(ctx, l.ffmpegPath, args...); err != nil {
		os.Remove(staging)
		terr := l.transcodeError(job, err)
		terr.Diagnostic = diagnosticOf(err)
		return nil, terr
	}

	if err := os.Rename(staging, job.OutputPath); err != nil {
		os.Remove(staging)
		return nil, l.transcodeError(job, fmt.Errorf("failed to move encoded file into place: %w", err))
	}

	artifact := &video.Artifact{
		Path:          job.OutputPath,
		AudioRetained: !job.RemoveAudio,
	}
	if !job.RemoveAudio {
		artifact.AudioTempo = plan.Factor
	}
	return artifact, nil
}

// hasAudio reports whether path has an audio stream. An unreadable file is
// assumed to have one so ffmpeg reports the real problem.
func (l *LibraryRetimer) hasAudio(ctx context.Context, path string) bool {
	if l.inspector == nil {
		return true
	}
	info, err := l.inspector.Inspect(ctx, path)
	if err != nil {
		return true
	}
	return info.AudioStreams > 0
}

func (l *LibraryRetimer) transcodeError(job *video.MediaJob, err error) *video.TranscodeError {
	return &video.TranscodeError{
		Backend:    l.Name(),
		OutputPath: job.OutputPath,
		Err:        err,
	}
}

// VerifyInstalled checks that ffmpeg is available
func (l *LibraryRetimer) VerifyInstalled(ctx context.Context) error {
	_, err := l.runner.Output(ctx, l.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure LibraryRetimer implements video.Retimer
var _ video.Retimer = (*LibraryRetimer)(nil)
