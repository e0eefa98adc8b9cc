package failure

import "errors"

type Severity int

// caller control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityRecoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

type ClassifiedError interface {
	error
	Severity() Severity
}

// IsRecoverable reports whether err carries a recoverable severity anywhere in its chain.
// Errors that are not classified are treated as fatal.
func IsRecoverable(err error) bool {
	var classified ClassifiedError
	if errors.As(err, &classified) {
		return classified.Severity() == SeverityRecoverable
	}
	return false
}
