//go:build !opencv

package opencv

import (
	"context"
	"errors"

	"minute-condenser/domain/video"
)

// Prober is a stub when OpenCV is not compiled in
type Prober struct{}

// NewProber creates a stub prober (requires building with -tags=opencv)
func NewProber() *Prober {
	return &Prober{}
}

// Duration returns a ProbeError indicating OpenCV probing is not available
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	return 0, &video.ProbeError{
		Path: path,
		Err:  errors.New("opencv probe requires -tags=opencv build and OpenCV 4 installed"),
	}
}

// Available reports whether this build can decode with OpenCV
func Available() bool {
	return false
}

// Ensure Prober implements video.DurationProber
var _ video.DurationProber = (*Prober)(nil)
