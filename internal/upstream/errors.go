package upstream

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/seraphim/internal/metadata"
	"github.com/rohmanhakim/seraphim/pkg/failure"
)

type UpstreamErrorCause string

const (
	ErrCauseNotFound         UpstreamErrorCause = "not found"
	ErrCauseUnauthorized     UpstreamErrorCause = "missing or invalid credentials"
	ErrCauseRateLimited      UpstreamErrorCause = "rate limited"
	ErrCauseServerError      UpstreamErrorCause = "5xx"
	ErrCauseUnexpectedStatus UpstreamErrorCause = "unexpected status"
	ErrCauseNetworkFailure   UpstreamErrorCause = "network issues"
	ErrCauseCancelled        UpstreamErrorCause = "cancelled"
	ErrCauseReadBody         UpstreamErrorCause = "failed to read response body"
	ErrCauseInvalidListing   UpstreamErrorCause = "invalid directory listing"
	ErrCauseConversion       UpstreamErrorCause = "html conversion failed"
)

type UpstreamError struct {
	Message    string
	Retryable  bool
	Cause      UpstreamErrorCause
	StatusCode int
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream error: %s (HTTP %d): %s", e.Cause, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream error: %s: %s", e.Cause, e.Message)
}

func (e *UpstreamError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *UpstreamError) IsRetryable() bool {
	return e.Retryable
}

// IsNotFound reports whether err, or anything it wraps, is an upstream 404.
func IsNotFound(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr) && upstreamErr.Cause == ErrCauseNotFound
}

// mapUpstreamErrorToMetadataCause is observational only.
func mapUpstreamErrorToMetadataCause(err *UpstreamError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNotFound:
		return metadata.CauseNotFound
	case ErrCauseUnauthorized:
		return metadata.CauseAccessDenied
	case ErrCauseRateLimited, ErrCauseServerError, ErrCauseNetworkFailure, ErrCauseReadBody:
		return metadata.CauseNetworkFailure
	case ErrCauseInvalidListing, ErrCauseConversion:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
