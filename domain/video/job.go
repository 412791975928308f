package video

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MediaJob describes a single condense invocation
type MediaJob struct {
	InputPath   string
	RemoveAudio bool
	OutputPath  string
}

// NewMediaJob creates a MediaJob whose output path carries the given marker
// between the input's stem and extension
func NewMediaJob(inputPath string, removeAudio bool, marker string) (*MediaJob, error) {
	if inputPath == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if marker == "" {
		return nil, fmt.Errorf("output marker is required")
	}

	return &MediaJob{
		InputPath:   inputPath,
		RemoveAudio: removeAudio,
		OutputPath:  OutputPathFor(inputPath, marker),
	}, nil
}

// OutputPathFor returns <stem><marker><ext> for the given input path
func OutputPathFor(inputPath, marker string) string {
	stem, ext := SplitExt(inputPath)
	return stem + marker + ext
}

// SplitExt splits a path into stem and extension. Leading dots of the base
// name never start an extension, so ".profile" has no extension.
func SplitExt(path string) (stem, ext string) {
	base := filepath.Base(path)
	if !strings.Contains(strings.TrimLeft(base, "."), ".") {
		return path, ""
	}
	ext = filepath.Ext(path)
	return strings.TrimSuffix(path, ext), ext
}
