//go:build opencv

package opencv

import (
	"context"
	"fmt"

	"minute-condenser/domain/video"

	"gocv.io/x/gocv"
)

// Prober implements video.DurationProber by decoding the file with OpenCV
// and dividing its frame count by its frame rate
type Prober struct{}

// NewProber creates an OpenCV-backed prober
func NewProber() *Prober {
	return &Prober{}
}

// Duration implements video.DurationProber
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, &video.ProbeError{Path: path, Err: err}
	}

	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return 0, &video.ProbeError{Path: path, Err: err}
	}
	defer capture.Close()

	if !capture.IsOpened() {
		return 0, &video.ProbeError{Path: path, Err: fmt.Errorf("could not open video stream")}
	}

	frames := capture.Get(gocv.VideoCaptureFrameCount)
	fps := capture.Get(gocv.VideoCaptureFPS)
	return durationFromFrames(frames, fps, path)
}

// Available reports whether this build can decode with OpenCV
func Available() bool {
	return true
}

// Ensure Prober implements video.DurationProber
var _ video.DurationProber = (*Prober)(nil)
