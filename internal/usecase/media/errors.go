package media

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthenticated is returned when no actor identity was supplied.
	ErrUnauthenticated = errors.New("media: unauthenticated")
	// ErrRateLimited wraps RateLimitedError for errors.Is checks.
	ErrRateLimited = errors.New("media: rate limited")
	// ErrValidationFailed wraps ValidationError for errors.Is checks.
	ErrValidationFailed = errors.New("media: validation failed")
	// ErrCompressionFailed signals a corrupt or unsupported image payload.
	ErrCompressionFailed = errors.New("media: compression failed")
	// ErrUploadFailed signals an object-store write failure; no record is
	// created when it occurs.
	ErrUploadFailed = errors.New("media: upload failed")
	// ErrVariantGenerationFailed signals a worker-side failure; it is never
	// surfaced to a user, only converted into status=failed plus a log line.
	ErrVariantGenerationFailed = errors.New("media: variant generation failed")

	ErrObjectNotFound = errors.New("storage: object not found")
	ErrBucketNotFound = errors.New("storage: bucket not found")
	ErrUnauthorized   = errors.New("storage: unauthorized")
	ErrInternal       = errors.New("storage: internal error")
)

// RateLimitedError carries the ceiling and window for a user-facing message.
type RateLimitedError struct {
	Ceiling int
	Window  time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("media: rate limited: more than %d uploads in %s", e.Ceiling, e.Window)
}

func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }

// ValidationError carries the concrete limit that was exceeded, or a zero
// limit for unsupported types.
type ValidationError struct {
	Reason     string
	LimitBytes int64
}

func (e *ValidationError) Error() string {
	if e.LimitBytes > 0 {
		return fmt.Sprintf("media: validation failed: %s (limit %d bytes)", e.Reason, e.LimitBytes)
	}
	return "media: validation failed: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
