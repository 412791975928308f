package opencv

import (
	"fmt"

	"minute-condenser/domain/video"
)

// durationFromFrames converts capture properties into seconds. Containers that
// do not report a frame rate or frame count cannot be measured this way.
func durationFromFrames(frames, fps float64, path string) (float64, error) {
	if fps <= 0 {
		return 0, &video.ProbeError{Path: path, Err: fmt.Errorf("no frame rate reported")}
	}
	if frames <= 0 {
		return 0, &video.ProbeError{Path: path, Err: fmt.Errorf("no frame count reported")}
	}
	return frames / fps, nil
}
