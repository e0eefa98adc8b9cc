package cache

import (
	"fmt"

	"github.com/rohmanhakim/seraphim/internal/metadata"
	"github.com/rohmanhakim/seraphim/pkg/failure"
)

type StorageErrorCause string

const (
	ErrCauseQuotaExceeded StorageErrorCause = "quota exceeded"
	ErrCauseUnavailable   StorageErrorCause = "storage unavailable"
	ErrCauseReadFailure   StorageErrorCause = "read failure"
	ErrCauseWriteFailure  StorageErrorCause = "write failure"
	ErrCauseCorruptEntry  StorageErrorCause = "corrupt entry"
	ErrCauseEncodeFailure StorageErrorCause = "encode failure"
)

// StorageError is a durable tier failure. Under BestEffort it never leaves
// the cache.
type StorageError struct {
	Message   string
	Retryable bool
	Cause     StorageErrorCause
	Key       string
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage error: %s: %s", e.Cause, e.Message)
	}
	return fmt.Sprintf("storage error: %s: %s (key %q)", e.Cause, e.Message, e.Key)
}

func (e *StorageError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *StorageError) IsRetryable() bool {
	return e.Retryable
}

// mapStorageErrorToMetadataCause is observational only.
func mapStorageErrorToMetadataCause(err *StorageError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseCorruptEntry, ErrCauseEncodeFailure:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseStorageFailure
	}
}
