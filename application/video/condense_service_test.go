package video

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"minute-condenser/domain/video"
)

// --- Mock implementations for testing ---

type mockProber struct {
	duration float64
	err      error
	calls    int
}

func (m *mockProber) Duration(ctx context.Context, path string) (float64, error) {
	m.calls++
	return m.duration, m.err
}

// mockRetimer mirrors the external backend's clamped tempo
type mockRetimer struct {
	err      error
	calls    int
	lastJob  *video.MediaJob
	lastPlan video.RetimePlan
}

func (m *mockRetimer) Name() string         { return "mock" }
func (m *mockRetimer) OutputMarker() string { return "_1min" }

func (m *mockRetimer) Retime(ctx context.Context, job *video.MediaJob, plan video.RetimePlan) (*video.Artifact, error) {
	m.calls++
	m.lastJob = job
	m.lastPlan = plan
	if m.err != nil {
		return nil, m.err
	}
	artifact := &video.Artifact{Path: job.OutputPath, AudioRetained: !job.RemoveAudio}
	if !job.RemoveAudio {
		artifact.AudioTempo = plan.ClampedTempo()
		artifact.AudioMismatch = plan.AudioMismatch()
	}
	return artifact, nil
}

type mockFileChecker struct {
	existingFiles map[string]bool
}

func (m *mockFileChecker) Exists(path string) bool {
	return m.existingFiles[path]
}

type mockRemover struct {
	removed []string
	err     error
}

func (m *mockRemover) Remove(path string) error {
	m.removed = append(m.removed, path)
	return m.err
}

type mockInspector struct {
	info *video.MediaInfo
	err  error
}

func (m *mockInspector) Inspect(ctx context.Context, path string) (*video.MediaInfo, error) {
	return m.info, m.err
}

// steppingClock advances by step on every call
func steppingClock(step time.Duration) func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

type fixture struct {
	prober    *mockProber
	retimer   *mockRetimer
	checker   *mockFileChecker
	remover   *mockRemover
	inspector *mockInspector
	service   *CondenseService
}

func newFixture(duration float64) *fixture {
	f := &fixture{
		prober:  &mockProber{duration: duration},
		retimer: &mockRetimer{},
		checker: &mockFileChecker{existingFiles: map[string]bool{"/videos/clip.mp4": true}},
		remover: &mockRemover{},
	}
	f.service = NewCondenseService(f.prober, f.retimer, f.checker,
		WithRemover(f.remover),
		WithClock(steppingClock(1500*time.Millisecond)),
	)
	return f
}

func TestCondense_Success(t *testing.T) {
	f := newFixture(120)

	result, err := f.service.Condense(context.Background(), CondenseInput{SourcePath: "/videos/clip.mp4"})
	if err != nil {
		t.Fatalf("Condense() unexpected error: %v", err)
	}

	if result.OutputPath != "/videos/clip_1min.mp4" {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, "/videos/clip_1min.mp4")
	}
	if math.Abs(result.SpeedFactor-2.0) > 1e-6 {
		t.Errorf("SpeedFactor = %v, want 2.0", result.SpeedFactor)
	}
	if result.OriginalDuration != 120 {
		t.Errorf("OriginalDuration = %v, want 120", result.OriginalDuration)
	}
	if result.AudioRemoved {
		t.Error("AudioRemoved = true, want false")
	}
	if result.AudioMismatch {
		t.Error("AudioMismatch = true for a 2x factor")
	}
	if result.Elapsed != 1500*time.Millisecond {
		t.Errorf("Elapsed = %v, want 1.5s", result.Elapsed)
	}
	if result.Backend != "mock" {
		t.Errorf("Backend = %q, want mock", result.Backend)
	}
	if f.prober.calls != 1 || f.retimer.calls != 1 {
		t.Errorf("prober calls = %d, retimer calls = %d, want 1 each", f.prober.calls, f.retimer.calls)
	}
}

func TestCondense_SpeedFactorMatchesDuration(t *testing.T) {
	for _, d := range []float64{1, 30, 59.94, 60, 61, 600, 7200} {
		f := newFixture(d)
		result, err := f.service.Condense(context.Background(), CondenseInput{SourcePath: "/videos/clip.mp4"})
		if err != nil {
			t.Fatalf("Condense(duration=%v) unexpected error: %v", d, err)
		}
		if math.Abs(result.SpeedFactor-d/60.0) > 1e-6 {
			t.Errorf("SpeedFactor for %v = %v, want %v", d, result.SpeedFactor, d/60.0)
		}
	}
}

func TestCondense_ClampedAudioMismatch(t *testing.T) {
	f := newFixture(300)

	result, err := f.service.Condense(context.Background(), CondenseInput{SourcePath: "/videos/clip.mp4"})
	if err != nil {
		t.Fatalf("Condense() unexpected error: %v", err)
	}

	if result.AudioTempo != 2.0 {
		t.Errorf("AudioTempo = %v, want 2.0", result.AudioTempo)
	}
	if !result.AudioMismatch {
		t.Error("AudioMismatch = false, want true for a 5x factor")
	}
	if result.ClampedAudioDuration != 150 {
		t.Errorf("ClampedAudioDuration = %v, want 150", result.ClampedAudioDuration)
	}
}

func TestCondense_NoSound(t *testing.T) {
	f := newFixture(300)

	result, err := f.service.Condense(context.Background(), CondenseInput{SourcePath: "/videos/clip.mp4", RemoveAudio: true})
	if err != nil {
		t.Fatalf("Condense() unexpected error: %v", err)
	}

	if !f.retimer.lastJob.RemoveAudio {
		t.Error("job passed to retimer should have RemoveAudio set")
	}
	if !result.AudioRemoved || result.AudioMismatch || result.AudioTempo != 0 {
		t.Errorf("result = %+v, want audio removed without tempo", result)
	}
}

func TestCondense_MissingInput(t *testing.T) {
	f := newFixture(120)

	_, err := f.service.Condense(context.Background(), CondenseInput{SourcePath: "/videos/missing.mp4"})

	if !errors.Is(err, video.ErrInputNotFound) {
		t.Fatalf("Condense() error = %v, want ErrInputNotFound", err)
	}
	if err.Error() != "The file '/videos/missing.mp4' does not exist." {
		t.Errorf("Condense() error = %q", err.Error())
	}
	if f.prober.calls != 0 || f.retimer.calls != 0 {
		t.Errorf("prober calls = %d, retimer calls = %d, want none", f.prober.calls, f.retimer.calls)
	}
}

func TestCondense_ProbeFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "typed probe error", err: &video.ProbeError{Path: "/videos/clip.mp4", Err: errors.New("moov atom not found")}},
		{name: "plain error is wrapped", err: errors.New("ffprobe crashed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(0)
			f.prober.err = tt.err

			_, err := f.service.Condense(context.Background(), CondenseInput{SourcePath: "/videos/clip.mp4"})

			if !errors.Is(err, video.ErrProbe) {
				t.Fatalf("Condense() error = %v, want ErrProbe", err)
			}
			if f.retimer.calls != 0 {
				t.Error("retimer should not run after a probe failure")
			}
		})
	}
}

func TestCondense_InvalidDuration(t *testing.T) {
	for _, d := range []float64{0, -12.5} {
		f := newFixture(d)

		_, err := f.service.Condense(context.Background(), CondenseInput{SourcePath: "/videos/clip.mp4"})

		if !errors.Is(err, video.ErrInvalidDuration) {
			t.Fatalf("Condense(duration=%v) error = %v, want ErrInvalidDuration", d, err)
		}
		if f.retimer.calls != 0 {
			t.Error("retimer should not run for an invalid duration")
		}
	}
}

func TestCondense_RetimeFailure(t *testing.T) {
	t.Run("new output is removed", func(t *testing.T) {
		f := newFixture(120)
		f.retimer.err = errors.New("encoder exploded")

		_, err := f.service.Condense(context.Background(), CondenseInput{SourcePath: "/videos/clip.mp4"})

		if !errors.Is(err, video.ErrTranscode) {
			t.Fatalf("Condense() error = %v, want ErrTranscode", err)
		}
		if len(f.remover.removed) != 1 || f.remover.removed[0] != "/videos/clip_1min.mp4" {
			t.Errorf("removed = %v, want the output path", f.remover.removed)
		}
	})

	t.Run("cleanup failure is reported with the encoder error", func(t *testing.T) {
		f := newFixture(120)
		f.retimer.err = errors.New("encoder exploded")
		f.remover.err = errors.New("permission denied")

		_, err := f.service.Condense(context.Background(), CondenseInput{SourcePath: "/videos/clip.mp4"})

		if !errors.Is(err, video.ErrTranscode) {
			t.Fatalf("Condense() error = %v, want ErrTranscode", err)
		}
		if !errors.Is(err, f.remover.err) {
			t.Errorf("Condense() error = %v, want it to wrap the remove error", err)
		}
		if !strings.Contains(err.Error(), "failed to remove partial output /videos/clip_1min.mp4") {
			t.Errorf("Condense() error = %q, want the partial output named", err.Error())
		}
		if !strings.Contains(err.Error(), "encoder exploded") {
			t.Errorf("Condense() error = %q, want the encoder error kept", err.Error())
		}
	})

	t.Run("pre-existing output is kept", func(t *testing.T) {
		f := newFixture(120)
		f.checker.existingFiles["/videos/clip_1min.mp4"] = true
		f.retimer.err = &video.TranscodeError{Backend: "mock", Err: video.ErrOutputExists}

		_, err := f.service.Condense(context.Background(), CondenseInput{SourcePath: "/videos/clip.mp4"})

		if !errors.Is(err, video.ErrOutputExists) {
			t.Fatalf("Condense() error = %v, want ErrOutputExists", err)
		}
		if len(f.remover.removed) != 0 {
			t.Errorf("removed = %v, want nothing", f.remover.removed)
		}
	})
}

func TestCondense_Inspection(t *testing.T) {
	t.Run("attached when readable", func(t *testing.T) {
		f := newFixture(120)
		inspector := &mockInspector{info: &video.MediaInfo{Duration: 60.02, VideoStreams: 1}}
		service := NewCondenseService(f.prober, f.retimer, f.checker, WithInspector(inspector))

		result, err := service.Condense(context.Background(), CondenseInput{SourcePath: "/videos/clip.mp4"})
		if err != nil {
			t.Fatalf("Condense() unexpected error: %v", err)
		}
		if result.Output == nil || result.Output.Duration != 60.02 {
			t.Errorf("Output = %+v, want inspected info", result.Output)
		}
	})

	t.Run("failure is not fatal", func(t *testing.T) {
		f := newFixture(120)
		inspector := &mockInspector{err: errors.New("unreadable")}
		service := NewCondenseService(f.prober, f.retimer, f.checker, WithInspector(inspector))

		result, err := service.Condense(context.Background(), CondenseInput{SourcePath: "/videos/clip.mp4"})
		if err != nil {
			t.Fatalf("Condense() unexpected error: %v", err)
		}
		if result.Output != nil {
			t.Errorf("Output = %+v, want nil", result.Output)
		}
	})
}
