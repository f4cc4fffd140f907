package prediction

import "errors"

var (
	// ErrInvalidInput marks a clinical input with at least one out-of-domain
	// field. Rejected before any scoring work starts.
	ErrInvalidInput = errors.New("invalid clinical input")

	// ErrScoringUnavailable marks any failure of the external scorer:
	// process start failure, crash, malformed output, or deadline overrun.
	// Internal only; the caller sees a fallback-sourced result instead.
	ErrScoringUnavailable = errors.New("external scoring unavailable")

	// ErrPersistenceFailed marks a prediction that was computed but could
	// not be stored. The result is not returned to the caller in this case.
	ErrPersistenceFailed = errors.New("prediction persistence failed")

	// ErrNotFound is returned when a record or annotation target does not
	// exist.
	ErrNotFound = errors.New("prediction not found")
)
