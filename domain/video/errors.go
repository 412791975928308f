package video

import (
	"errors"
	"fmt"
)

var (
	// ErrInputNotFound is returned when the input file does not exist
	ErrInputNotFound = errors.New("input file does not exist")

	// ErrProbe is returned when the media duration cannot be determined
	ErrProbe = errors.New("could not determine media duration")

	// ErrInvalidDuration is returned when a measured duration is not positive
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrTranscode is returned when the encoding step fails
	ErrTranscode = errors.New("transcode failed")

	// ErrOutputExists is returned when a backend refuses to replace an existing output
	ErrOutputExists = errors.New("output file already exists")
)

// InputNotFoundError reports a missing input path
type InputNotFoundError struct {
	Path string
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("The file '%s' does not exist.", e.Path)
}

func (e *InputNotFoundError) Is(target error) bool {
	return target == ErrInputNotFound
}

// ProbeError reports a failed duration probe
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("failed to probe duration of %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Is(target error) bool {
	return target == ErrProbe
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// InvalidDurationError reports a non-positive or non-finite duration
type InvalidDurationError struct {
	Duration float64
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration %v: must be greater than zero", e.Duration)
}

func (e *InvalidDurationError) Is(target error) bool {
	return target == ErrInvalidDuration
}

// TranscodeError reports a failed retime. Diagnostic holds the transcoder's own
// error output when there is any.
type TranscodeError struct {
	Backend    string
	OutputPath string
	Diagnostic string
	Err        error
}

func (e *TranscodeError) Error() string {
	msg := fmt.Sprintf("%s transcode to %s failed: %v", e.Backend, e.OutputPath, e.Err)
	if e.Diagnostic != "" {
		msg += "\n" + e.Diagnostic
	}
	return msg
}

func (e *TranscodeError) Is(target error) bool {
	return target == ErrTranscode
}

func (e *TranscodeError) Unwrap() error {
	return e.Err
}
