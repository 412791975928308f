package video

import (
	"context"
	"errors"
	"fmt"
	"time"

	"minute-condenser/domain/video"
)

// CondenseResult contains the result of a condense operation
type CondenseResult struct {
	Backend          string
	OutputPath       string
	OriginalDuration float64
	SpeedFactor      float64
	AudioRemoved     bool
	AudioTempo       float64
	// AudioMismatch is set when the audio track will run longer than the video;
	// ClampedAudioDuration is then the audio length the backend produced
	AudioMismatch        bool
	ClampedAudioDuration float64
	// Output is what the inspector read back from the written file, nil when
	// no inspector is configured or the file could not be read
	Output  *video.MediaInfo
	Elapsed time.Duration
}

// CondenseInput represents the input for a condense operation
type CondenseInput struct {
	SourcePath  string
	RemoveAudio bool
}

// CondenseService coordinates probing and retiming a single file
type CondenseService struct {
	prober      video.DurationProber
	retimer     video.Retimer
	fileChecker video.FileChecker
	remover     video.FileRemover
	inspector   video.Inspector
	now         func() time.Time
}

// CondenseOption is a functional option for configuring CondenseService
type CondenseOption func(*CondenseService)

// WithRemover sets the remover used to clear partial output after a failed retime
func WithRemover(remover video.FileRemover) CondenseOption {
	return func(s *CondenseService) {
		s.remover = remover
	}
}

// WithInspector sets the inspector used to read back the written file
func WithInspector(inspector video.Inspector) CondenseOption {
	return func(s *CondenseService) {
		s.inspector = inspector
	}
}

// WithClock sets the time source for elapsed-time reporting (for testing)
func WithClock(now func() time.Time) CondenseOption {
	return func(s *CondenseService) {
		s.now = now
	}
}

// NewCondenseService creates a new CondenseService
func NewCondenseService(prober video.DurationProber, retimer video.Retimer, fileChecker video.FileChecker, opts ...CondenseOption) *CondenseService {
	s := &CondenseService{
		prober:      prober,
		retimer:     retimer,
		fileChecker: fileChecker,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Condense retimes the source to video.TargetDuration. Any failure aborts the job.
func (s *CondenseService) Condense(ctx context.Context, input CondenseInput) (*CondenseResult, error) {
	start := s.now()

	// Verify source file exists before touching any media tool
	if !s.fileChecker.Exists(input.SourcePath) {
		return nil, &video.InputNotFoundError{Path: input.SourcePath}
	}

	job, err := video.NewMediaJob(input.SourcePath, input.RemoveAudio, s.retimer.OutputMarker())
	if err != nil {
		return nil, err
	}

	duration, err := s.prober.Duration(ctx, job.InputPath)
	if err != nil {
		if !errors.Is(err, video.ErrProbe) {
			err = &video.ProbeError{Path: job.InputPath, Err: err}
		}
		return nil, err
	}

	plan, err := video.NewRetimePlan(duration)
	if err != nil {
		return nil, err
	}

	outputExisted := s.fileChecker.Exists(job.OutputPath)

	artifact, err := s.retimer.Retime(ctx, job, plan)
	if err != nil {
		if !errors.Is(err, video.ErrTranscode) {
			err = &video.TranscodeError{Backend: s.retimer.Name(), OutputPath: job.OutputPath, Err: err}
		}
		// Only clear files this job created
		if !outputExisted && s.remover != nil {
			if rmErr := s.remover.Remove(job.OutputPath); rmErr != nil {
				err = errors.Join(err, fmt.Errorf("failed to remove partial output %s: %w", job.OutputPath, rmErr))
			}
		}
		return nil, err
	}

	result := &CondenseResult{
		Backend:          s.retimer.Name(),
		OutputPath:       artifact.Path,
		OriginalDuration: plan.SourceDuration,
		SpeedFactor:      plan.Factor,
		AudioRemoved:     !artifact.AudioRetained,
		AudioTempo:       artifact.AudioTempo,
		AudioMismatch:    artifact.AudioMismatch,
		Elapsed:          s.now().Sub(start),
	}
	if artifact.AudioMismatch {
		result.ClampedAudioDuration = plan.SourceDuration / artifact.AudioTempo
	}

	if s.inspector != nil {
		if info, err := s.inspector.Inspect(ctx, artifact.Path); err == nil {
			result.Output = info
		}
	}

	return result, nil
}
