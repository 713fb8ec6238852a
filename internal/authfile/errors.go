package authfile

import (
	"errors"
	"fmt"
	"io/fs"
)

// Error kinds. Match them with errors.Is.
var (
	ErrParse      = errors.New("malformed source descriptor")
	ErrNotFound   = errors.New("source descriptor not found")
	ErrPermission = errors.New("permission denied")
	ErrRead       = errors.New("read failed")
	ErrWrite      = errors.New("write failed")
)

// FileError ties a failure to the file and step that produced it.
type FileError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func readError(path string, err error) error {
	kind := ErrRead
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermission
	}
	return &FileError{Op: "read", Path: path, Kind: kind, Err: err}
}

func writeError(op, path string, err error) error {
	return &FileError{Op: op, Path: path, Kind: ErrWrite, Err: err}
}
