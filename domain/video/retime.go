package video

import (
	"math"
	"strconv"
)

// TargetDuration is the playback length every condensed video is retimed to, in seconds
const TargetDuration = 60.0

// MaxTempoFactor is the largest multiplier a single atempo filter is given
const MaxTempoFactor = 2.0

// MinTempoFactor is the smallest multiplier a single atempo filter is given
const MinTempoFactor = 0.5

// SpeedFactor returns original/target, the uniform playback multiplier that
// turns a clip of the original duration into one of the target duration
func SpeedFactor(original, target float64) (float64, error) {
	if !isPositive(original) {
		return 0, &InvalidDurationError{Duration: original}
	}
	if !isPositive(target) {
		return 0, &InvalidDurationError{Duration: target}
	}
	return original / target, nil
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// RetimePlan holds the measured source duration and the derived speed factor
type RetimePlan struct {
	SourceDuration float64
	TargetDuration float64
	Factor         float64
}

// NewRetimePlan builds a plan that retimes a clip of the given duration to TargetDuration
func NewRetimePlan(sourceDuration float64) (RetimePlan, error) {
	factor, err := SpeedFactor(sourceDuration, TargetDuration)
	if err != nil {
		return RetimePlan{}, err
	}
	return RetimePlan{
		SourceDuration: sourceDuration,
		TargetDuration: TargetDuration,
		Factor:         factor,
	}, nil
}

// PTSMultiplier is the factor presentation timestamps are multiplied by
func (p RetimePlan) PTSMultiplier() float64 {
	return 1 / p.Factor
}

// ClampedTempo returns min(MaxTempoFactor, Factor), the value passed to a
// single atempo filter
func (p RetimePlan) ClampedTempo() float64 {
	return math.Min(MaxTempoFactor, p.Factor)
}

// AudioMismatch reports whether a single clamped atempo stage leaves the audio
// longer than the retimed video
func (p RetimePlan) AudioMismatch() bool {
	return p.Factor > MaxTempoFactor
}

// ClampedAudioDuration is the audio length produced by a single clamped atempo stage
func (p RetimePlan) ClampedAudioDuration() float64 {
	return p.SourceDuration / p.ClampedTempo()
}

// TempoChain splits Factor into atempo stages each within
// [MinTempoFactor, MaxTempoFactor] whose product is Factor
func (p RetimePlan) TempoChain() []float64 {
	remaining := p.Factor
	var chain []float64
	for remaining > MaxTempoFactor {
		chain = append(chain, MaxTempoFactor)
		remaining /= MaxTempoFactor
	}
	for remaining < MinTempoFactor {
		chain = append(chain, MinTempoFactor)
		remaining /= MinTempoFactor
	}
	return append(chain, remaining)
}

// FormatFactor renders a factor for use inside an ffmpeg filter expression
func FormatFactor(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
