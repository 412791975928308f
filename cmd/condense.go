package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	appvideo "minute-condenser/application/video"
	"minute-condenser/domain/video"
	"minute-condenser/infrastructure/config"
	"minute-condenser/infrastructure/ffmpeg"
	"minute-condenser/infrastructure/filesystem"
	"minute-condenser/infrastructure/opencv"

	"github.com/spf13/cobra"
)

var (
	noSound     bool
	backendName string
	forceWrite  bool
)

func init() {
	rootCmd.Flags().BoolVar(&noSound, "no-sound", false, "Remove sound from the output video")
	rootCmd.Flags().StringVar(&backendName, "backend", "", "Retime backend: ffmpeg or library (default from config)")
	rootCmd.Flags().BoolVar(&forceWrite, "force", false, "Let the library backend replace an existing output file")
}

func runCondense(cmd *cobra.Command, args []string) error {
	loaded, err := GetConfig()
	if err != nil {
		return err
	}

	settings := *loaded
	if backendName != "" {
		settings.Backend = backendName
	}
	if forceWrite {
		settings.Library.Overwrite = true
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	deps := NewCondenseDependencies(settings, os.Stderr)

	return RunCondenseWithDependencies(
		cmd.Context(),
		deps,
		args[0],
		noSound,
		os.Stdout,
	)
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// CondenseDependencies holds the ports a condense run is wired with
type CondenseDependencies struct {
	Prober      video.DurationProber
	Retimer     video.Retimer
	FileChecker video.FileChecker
	Remover     video.FileRemover
	Inspector   video.Inspector
	Clock       func() time.Time
}

// NewCondenseDependencies wires the production implementations selected by cfg.
// Transcoder stderr is streamed to stderr.
func NewCondenseDependencies(cfg config.Config, stderr io.Writer) CondenseDependencies {
	runner := &ffmpeg.ExecCommandRunner{Stderr: stderr}
	libraryProber := ffmpeg.NewLibraryProber()
	checker := filesystem.NewChecker()

	var retimer video.Retimer
	switch cfg.Backend {
	case config.BackendLibrary:
		retimer = ffmpeg.NewLibraryRetimer(cfg.Library,
			ffmpeg.WithLibraryFFmpegPath(cfg.FFmpeg.FFmpegPath),
			ffmpeg.WithLibraryCommandRunner(runner),
			ffmpeg.WithStreamInspector(libraryProber),
		)
	default:
		retimer = ffmpeg.NewTranscoder(cfg.FFmpeg, ffmpeg.WithCommandRunner(runner))
	}

	var prober video.DurationProber
	switch cfg.ProbeName() {
	case config.ProbeLibrary:
		prober = libraryProber
	case config.ProbeOpenCV:
		prober = opencv.NewProber()
	default:
		prober = ffmpeg.NewFFprobe(
			ffmpeg.WithFFprobePath(cfg.FFmpeg.FFprobePath),
			ffmpeg.WithFFprobeCommandRunner(runner),
		)
	}

	return CondenseDependencies{
		Prober:      prober,
		Retimer:     retimer,
		FileChecker: checker,
		Remover:     checker,
		Inspector:   libraryProber,
	}
}

// RunCondenseWithDependencies runs the condense command with injected dependencies (for testing)
func RunCondenseWithDependencies(
	ctx context.Context,
	deps CondenseDependencies,
	sourcePath string,
	removeAudio bool,
	output OutputWriter,
) error {
	// Nothing else runs for a missing input
	if !deps.FileChecker.Exists(sourcePath) {
		return &video.InputNotFoundError{Path: sourcePath}
	}

	// Verify ffmpeg is available if retimer supports it
	if verifiable, ok := deps.Retimer.(interface{ VerifyInstalled(context.Context) error }); ok {
		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
			return fmt.Errorf("ffmpeg verification failed: %w", err)
		}
	}

	var opts []appvideo.CondenseOption
	if deps.Remover != nil {
		opts = append(opts, appvideo.WithRemover(deps.Remover))
	}
	if deps.Inspector != nil {
		opts = append(opts, appvideo.WithInspector(deps.Inspector))
	}
	if deps.Clock != nil {
		opts = append(opts, appvideo.WithClock(deps.Clock))
	}

	service := appvideo.NewCondenseService(deps.Prober, deps.Retimer, deps.FileChecker, opts...)

	fmt.Fprintf(output, "Processing %s with %s... This may take a while depending on the video size.\n", sourcePath, deps.Retimer.Name())
	fmt.Fprintf(output, "Remove sound: %t\n", removeAudio)

	result, err := service.Condense(ctx, appvideo.CondenseInput{
		SourcePath:  sourcePath,
		RemoveAudio: removeAudio,
	})
	if err != nil {
		return err
	}

	printReport(output, result, removeAudio)
	return nil
}

func printReport(output OutputWriter, result *appvideo.CondenseResult, removeAudio bool) {
	fmt.Fprintf(output, "\nSuccess! Video has been condensed to 1 minute.\n")
	fmt.Fprintf(output, "Original duration: %.2f seconds\n", result.OriginalDuration)
	fmt.Fprintf(output, "Speed multiplier: %.2fx\n", result.SpeedFactor)

	switch {
	case result.AudioRemoved && !removeAudio:
		fmt.Fprintf(output, "Audio: None (the source has no audio track)\n")
	case result.AudioRemoved:
		fmt.Fprintf(output, "Audio: Removed\n")
	default:
		fmt.Fprintf(output, "Audio: Preserved (tempo %.2fx)\n", result.AudioTempo)
	}
	if result.AudioMismatch {
		fmt.Fprintf(output, "Warning: audio tempo is capped at %.2fx, so the audio track runs %.2f seconds against %.2f seconds of video\n",
			video.MaxTempoFactor, result.ClampedAudioDuration, video.TargetDuration)
	}

	if result.Output != nil {
		fmt.Fprintf(output, "Output duration: %.2f seconds (%d video, %d audio streams)\n",
			result.Output.Duration, result.Output.VideoStreams, result.Output.AudioStreams)
	}
	fmt.Fprintf(output, "Output saved as: %s\n", result.OutputPath)
	fmt.Fprintf(output, "\n%s processing time: %.2f seconds\n", result.Backend, result.Elapsed.Seconds())
}
