package fileutil

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/seraphim/pkg/failure"
)

type FileErrorCause string

const (
	ErrCausePathError  FileErrorCause = "path error"
	ErrCauseWriteError FileErrorCause = "write error"
	ErrCauseDiskFull   FileErrorCause = "disk is full"
)

type FileError struct {
	Message   string
	Retryable bool
	Cause     FileErrorCause
	Path      string
}

func (e *FileError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("file error: %s: %s", e.Cause, e.Message)
	}
	return fmt.Sprintf("file error: %s: %s (%s)", e.Cause, e.Message, e.Path)
}

// IsDiskFull reports whether err is a FileError caused by a full disk.
func IsDiskFull(err error) bool {
	var fe *FileError
	return errors.As(err, &fe) && fe.Cause == ErrCauseDiskFull
}

func (e *FileError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
