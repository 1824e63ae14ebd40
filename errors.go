// Package treefs contains the core error kinds shared by the immutable
// in-memory filesystem packages.
package treefs

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRoot indicates a path that ascends above the root (e.g. a leading "..")
	ErrOutOfRoot = errors.New("path ascends past root")

	// ErrNotFound indicates a required path component does not exist
	ErrNotFound = errors.New("not found")

	// ErrNotADirectory indicates a directory was required but a file was found
	ErrNotADirectory = errors.New("not a directory")

	// ErrNotAFile indicates file contents were requested from a directory
	ErrNotAFile = errors.New("not a file")

	// ErrAlreadyExists indicates a directory was requested where a file already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidPath indicates a malformed path component or an operation
	// that cannot target the root
	ErrInvalidPath = errors.New("invalid path")
)

// Common operation names used in [PathError]
const (
	OpResolve     = "resolve"
	OpReadFile    = "readfile"
	OpReadDir     = "readdir"
	OpWriteFile   = "writefile"
	OpMkdir       = "mkdir"
	OpRemove      = "remove"
	OpSetMetadata = "setmetadata"
	OpSetNode     = "setnode"
)

// PathError records the operation and the root-relative path that caused
// one of the error kinds above.
type PathError struct {
	Op   string // Operation that failed (e.g. "resolve", "mkdir")
	Path string // Offending path; root-relative, "" for the root itself
	Err  error  // One of the sentinel error kinds
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for the errors.Is/As functions
func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError creates a new PathError with the given operation, path, and underlying error
func NewPathError(op, path string, err error) *PathError {
	return &PathError{Op: op, Path: path, Err: err}
}

// ErrorPath returns the path carried by err if it is (or wraps) a
// [PathError], and false otherwise.
func ErrorPath(err error) (string, bool) {
	var pathErr *PathError
	if errors.As(err, &pathErr) {
		return pathErr.Path, true
	}
	return "", false
}
