package filesystem

import (
	"errors"
	"io/fs"
	"os"

	"minute-condenser/domain/video"
)

// Checker implements video.FileChecker and video.FileRemover using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if the file exists
func (c *Checker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes path; a path that is already gone is not an error
func (c *Checker) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Ensure Checker implements the filesystem ports
var (
	_ video.FileChecker = (*Checker)(nil)
	_ video.FileRemover = (*Checker)(nil)
)
