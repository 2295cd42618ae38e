package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingArgument is returned when the command line lacks an input path.
	ErrMissingArgument = errors.New("missing argument")
	// ErrFileNotFound matches every *FileNotFoundError.
	ErrFileNotFound = errors.New("file not found")
)

// FileNotFoundError names the input that does not exist.
type FileNotFoundError struct {
	Role string // "metadata" or "documentation"
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("%s file not found: %s", e.Role, e.Path)
}

func (e *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}
