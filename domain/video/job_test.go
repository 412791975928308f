package video

import (
	"errors"
	"strings"
	"testing"
)

func TestNewMediaJob(t *testing.T) {
	tests := []struct {
		name        string
		inputPath   string
		removeAudio bool
		marker      string
		wantOutput  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "library marker",
			inputPath:  "clip.mp4",
			marker:     "_1min",
			wantOutput: "clip_1min.mp4",
		},
		{
			name:        "external marker without audio",
			inputPath:   "clip.mp4",
			removeAudio: true,
			marker:      "_1min_ffmpeg_fast",
			wantOutput:  "clip_1min_ffmpeg_fast.mp4",
		},
		{
			name:       "nested directory keeps directory",
			inputPath:  "/videos/2025/holiday.mov",
			marker:     "_1min",
			wantOutput: "/videos/2025/holiday_1min.mov",
		},
		{
			name:        "empty input path",
			inputPath:   "",
			marker:      "_1min",
			wantErr:     true,
			errContains: "input path is required",
		},
		{
			name:        "empty marker",
			inputPath:   "clip.mp4",
			wantErr:     true,
			errContains: "output marker is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewMediaJob(tt.inputPath, tt.removeAudio, tt.marker)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewMediaJob() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewMediaJob() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewMediaJob() unexpected error: %v", err)
			}
			if got.OutputPath != tt.wantOutput {
				t.Errorf("NewMediaJob() OutputPath = %q, want %q", got.OutputPath, tt.wantOutput)
			}
			if got.RemoveAudio != tt.removeAudio {
				t.Errorf("NewMediaJob() RemoveAudio = %v, want %v", got.RemoveAudio, tt.removeAudio)
			}
			if got.InputPath != tt.inputPath {
				t.Errorf("NewMediaJob() InputPath = %q, want %q", got.InputPath, tt.inputPath)
			}
		})
	}
}

func TestSplitExt(t *testing.T) {
	tests := []struct {
		path     string
		wantStem string
		wantExt  string
	}{
		{"clip.mp4", "clip", ".mp4"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"/a/b/clip.MOV", "/a/b/clip", ".MOV"},
		{"noext", "noext", ""},
		{".hidden", ".hidden", ""},
		{"/a/.hidden", "/a/.hidden", ""},
		{".hidden.mp4", ".hidden", ".mp4"},
		{"dir.d/clip", "dir.d/clip", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			stem, ext := SplitExt(tt.path)
			if stem != tt.wantStem || ext != tt.wantExt {
				t.Errorf("SplitExt(%q) = (%q, %q), want (%q, %q)", tt.path, stem, ext, tt.wantStem, tt.wantExt)
			}
		})
	}
}

func TestErrorTaxonomy(t *testing.T) {
	cause := errors.New("exit status 1")

	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "input not found",
			err:      &InputNotFoundError{Path: "missing.mp4"},
			sentinel: ErrInputNotFound,
			message:  "The file 'missing.mp4' does not exist.",
		},
		{
			name:     "probe",
			err:      &ProbeError{Path: "clip.mp4", Err: cause},
			sentinel: ErrProbe,
			message:  "failed to probe duration of clip.mp4: exit status 1",
		},
		{
			name:     "invalid duration",
			err:      &InvalidDurationError{Duration: 0},
			sentinel: ErrInvalidDuration,
			message:  "invalid duration 0: must be greater than zero",
		},
		{
			name:     "transcode with diagnostic",
			err:      &TranscodeError{Backend: "ffmpeg", OutputPath: "out.mp4", Diagnostic: "Unknown encoder", Err: cause},
			sentinel: ErrTranscode,
			message:  "ffmpeg transcode to out.mp4 failed: exit status 1\nUnknown encoder",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%T, sentinel) = false", tt.err)
			}
			if tt.err.Error() != tt.message {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.message)
			}
		})
	}

	if !errors.Is(&TranscodeError{Err: cause}, cause) {
		t.Error("TranscodeError should unwrap to its cause")
	}
	if !errors.Is(&TranscodeError{Err: ErrOutputExists}, ErrOutputExists) {
		t.Error("TranscodeError should unwrap to ErrOutputExists")
	}
}
