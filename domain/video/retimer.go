package video

import "context"

// DurationProber reports the total duration of a media file in seconds
// This is a port that can be implemented by different infrastructure adapters
type DurationProber interface {
	// Duration returns the media duration or a *ProbeError
	Duration(ctx context.Context, path string) (float64, error)
}

// Artifact describes the file a Retimer produced
type Artifact struct {
	Path          string
	AudioRetained bool
	// AudioTempo is the tempo applied to the audio stream, 0 when audio was dropped
	AudioTempo float64
	// AudioMismatch is set when the audio track will not match the video duration
	AudioMismatch bool
}

// Retimer produces a retimed copy of a job's input
type Retimer interface {
	// Name identifies the backend in reports
	Name() string

	// OutputMarker is inserted between the input stem and extension to name the output
	OutputMarker() string

	// Retime writes the retimed file to job.OutputPath or returns a *TranscodeError
	Retime(ctx context.Context, job *MediaJob, plan RetimePlan) (*Artifact, error)
}

// MediaInfo is what an inspector reads back from a written file
type MediaInfo struct {
	Duration     float64
	VideoStreams int
	AudioStreams int
}

// Inspector reads stream information from a media file
type Inspector interface {
	Inspect(ctx context.Context, path string) (*MediaInfo, error)
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}

// FileRemover deletes files left behind by a failed job
type FileRemover interface {
	Remove(path string) error
}
