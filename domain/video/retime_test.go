package video

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-6

func TestSpeedFactor(t *testing.T) {
	tests := []struct {
		name     string
		original float64
		target   float64
		want     float64
		wantErr  bool
	}{
		{name: "one minute is a no-op", original: 60, target: 60, want: 1.0},
		{name: "two minutes doubles speed", original: 120, target: 60, want: 2.0},
		{name: "five minutes", original: 300, target: 60, want: 5.0},
		{name: "short clip slows down", original: 15, target: 60, want: 0.25},
		{name: "fractional duration", original: 93.7, target: 60, want: 93.7 / 60.0},
		{name: "zero duration", original: 0, target: 60, wantErr: true},
		{name: "negative duration", original: -4, target: 60, wantErr: true},
		{name: "NaN duration", original: math.NaN(), target: 60, wantErr: true},
		{name: "infinite duration", original: math.Inf(1), target: 60, wantErr: true},
		{name: "zero target", original: 60, target: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SpeedFactor(tt.original, tt.target)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("SpeedFactor(%v, %v) expected error, got %v", tt.original, tt.target, got)
				}
				if !errors.Is(err, ErrInvalidDuration) {
					t.Errorf("SpeedFactor() error = %v, want ErrInvalidDuration", err)
				}
				var durErr *InvalidDurationError
				if !errors.As(err, &durErr) {
					t.Errorf("SpeedFactor() error type = %T, want *InvalidDurationError", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("SpeedFactor() unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > tolerance {
				t.Errorf("SpeedFactor(%v, %v) = %v, want %v", tt.original, tt.target, got, tt.want)
			}
		})
	}
}

func TestNewRetimePlan(t *testing.T) {
	plan, err := NewRetimePlan(120)
	if err != nil {
		t.Fatalf("NewRetimePlan() unexpected error: %v", err)
	}
	if plan.TargetDuration != TargetDuration {
		t.Errorf("TargetDuration = %v, want %v", plan.TargetDuration, TargetDuration)
	}
	if math.Abs(plan.Factor-2.0) > tolerance {
		t.Errorf("Factor = %v, want 2.0", plan.Factor)
	}
	if math.Abs(plan.PTSMultiplier()-0.5) > tolerance {
		t.Errorf("PTSMultiplier() = %v, want 0.5", plan.PTSMultiplier())
	}
	if got := plan.SourceDuration / plan.Factor; math.Abs(got-60.0) > 0.5 {
		t.Errorf("retimed duration = %v, want 60 +/- 0.5", got)
	}

	if _, err := NewRetimePlan(0); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("NewRetimePlan(0) error = %v, want ErrInvalidDuration", err)
	}
}

func TestRetimePlan_NoOpAtTarget(t *testing.T) {
	plan, err := NewRetimePlan(60)
	if err != nil {
		t.Fatalf("NewRetimePlan() unexpected error: %v", err)
	}
	if plan.Factor != 1.0 {
		t.Errorf("Factor = %v, want 1.0", plan.Factor)
	}
	if plan.SourceDuration/plan.Factor != plan.SourceDuration {
		t.Errorf("retimed duration should equal source duration")
	}
	if plan.AudioMismatch() {
		t.Error("AudioMismatch() = true for factor 1.0")
	}
}

func TestRetimePlan_ClampedTempo(t *testing.T) {
	tests := []struct {
		name         string
		duration     float64
		wantTempo    float64
		wantMismatch bool
	}{
		{name: "slow down passes through", duration: 45, wantTempo: 0.75},
		{name: "exact target", duration: 60, wantTempo: 1.0},
		{name: "at the clamp", duration: 120, wantTempo: 2.0},
		{name: "five minutes is clamped", duration: 300, wantTempo: 2.0, wantMismatch: true},
		{name: "an hour is clamped", duration: 3600, wantTempo: 2.0, wantMismatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := NewRetimePlan(tt.duration)
			if err != nil {
				t.Fatalf("NewRetimePlan() unexpected error: %v", err)
			}
			if math.Abs(plan.ClampedTempo()-tt.wantTempo) > tolerance {
				t.Errorf("ClampedTempo() = %v, want %v", plan.ClampedTempo(), tt.wantTempo)
			}
			if plan.AudioMismatch() != tt.wantMismatch {
				t.Errorf("AudioMismatch() = %v, want %v", plan.AudioMismatch(), tt.wantMismatch)
			}
		})
	}
}

// A single clamped tempo stage on a five minute clip leaves 150s of audio
// under 60s of video.
func TestRetimePlan_ClampedAudioDurationMismatch(t *testing.T) {
	plan, err := NewRetimePlan(300)
	if err != nil {
		t.Fatalf("NewRetimePlan() unexpected error: %v", err)
	}
	if got := plan.ClampedAudioDuration(); math.Abs(got-150) > tolerance {
		t.Errorf("ClampedAudioDuration() = %v, want 150", got)
	}
}

func TestRetimePlan_TempoChain(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		want     []float64
	}{
		{name: "identity", duration: 60, want: []float64{1}},
		{name: "within range", duration: 90, want: []float64{1.5}},
		{name: "exactly two", duration: 120, want: []float64{2}},
		{name: "five times", duration: 300, want: []float64{2, 2, 1.25}},
		{name: "slow down below half", duration: 12, want: []float64{0.5, 0.5, 0.8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := NewRetimePlan(tt.duration)
			if err != nil {
				t.Fatalf("NewRetimePlan() unexpected error: %v", err)
			}
			got := plan.TempoChain()
			if len(got) != len(tt.want) {
				t.Fatalf("TempoChain() = %v, want %v", got, tt.want)
			}
			product := 1.0
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > tolerance {
					t.Errorf("TempoChain()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
				if got[i] < MinTempoFactor-tolerance || got[i] > MaxTempoFactor+tolerance {
					t.Errorf("TempoChain()[%d] = %v outside [%v, %v]", i, got[i], MinTempoFactor, MaxTempoFactor)
				}
				product *= got[i]
			}
			if math.Abs(product-plan.Factor) > tolerance {
				t.Errorf("product of TempoChain() = %v, want %v", product, plan.Factor)
			}
		})
	}
}

func TestFormatFactor(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.5, "0.5"},
		{2, "2"},
		{1.25, "1.25"},
		{1.0 / 3.0, "0.3333333333333333"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatFactor(tt.in); got != tt.want {
				t.Errorf("FormatFactor(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
