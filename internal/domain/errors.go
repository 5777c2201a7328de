package domain

import "errors"

// Domain errors
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrCorruptSignature  = errors.New("file signature does not match format")
	ErrExtractionTimeout = errors.New("extraction timed out")
	ErrExtractionFailed  = errors.New("extraction failed")
	ErrBinaryLeakage     = errors.New("binary content leaked into extracted text")
	ErrNotFound          = errors.New("record not found")
	ErrCacheMiss         = errors.New("cache miss")
	ErrCacheUnavailable  = errors.New("cache unavailable")
	ErrOverloaded        = errors.New("too many concurrent extractions")
	ErrInvalidPricing    = errors.New("invalid pricing table")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
