package catalog

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/seraphim/internal/metadata"
	"github.com/rohmanhakim/seraphim/internal/upstream"
	"github.com/rohmanhakim/seraphim/pkg/failure"
)

type ErrorKind int

const (
	// KindNotFound: the brand is not in the listing or its document is gone.
	KindNotFound ErrorKind = iota + 1
	// KindUpstreamUnavailable: network failure, rate limiting or credentials.
	KindUpstreamUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindUpstreamUnavailable:
		return "upstream unavailable"
	default:
		return "unknown"
	}
}

// Error is the only failure the catalog hands to its callers.
type Error struct {
	Kind    ErrorKind
	Slug    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Slug != "" {
		return fmt.Sprintf("catalog error: %s: %s: %s", e.Kind, e.Slug, e.Message)
	}
	return fmt.Sprintf("catalog error: %s: %s", e.Kind, e.Message)
}

// Severity is recoverable for unavailability since the caller may retry by hand.
func (e *Error) Severity() failure.Severity {
	if e.Kind == KindUpstreamUnavailable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func IsNotFound(err error) bool {
	var catalogErr *Error
	return errors.As(err, &catalogErr) && catalogErr.Kind == KindNotFound
}

func IsUnavailable(err error) bool {
	var catalogErr *Error
	return errors.As(err, &catalogErr) && catalogErr.Kind == KindUpstreamUnavailable
}

// fromUpstream classifies a fetch failure for slug. Only a 404 on a brand
// document is NotFound; a missing listing means the source is unusable.
func fromUpstream(slug string, err error) *Error {
	kind := KindUpstreamUnavailable
	if slug != "" && upstream.IsNotFound(err) {
		kind = KindNotFound
	}
	return &Error{
		Kind:    kind,
		Slug:    slug,
		Message: err.Error(),
		Cause:   err,
	}
}

func mapCatalogErrorToMetadataCause(err *Error) metadata.ErrorCause {
	switch err.Kind {
	case KindNotFound:
		return metadata.CauseNotFound
	case KindUpstreamUnavailable:
		return metadata.CauseNetworkFailure
	default:
		return metadata.CauseUnknown
	}
}
