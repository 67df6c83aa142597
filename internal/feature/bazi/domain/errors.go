// Package domain defines domain-level errors for the bazi feature.
package domain

import "errors"

// Domain errors for profile computation.
// Callers should match them with errors.Is; adapters and usecases wrap them with context.
var (
	// ErrMalformedInput indicates that the birth time or gender could not be parsed.
	// It is never retried.
	ErrMalformedInput = errors.New("malformed input")

	// ErrReferenceDataMissing indicates that the calendar reference data has no entry for the request:
	// no day record for the date, no governing or following solar term, or an empty hour value.
	ErrReferenceDataMissing = errors.New("reference data not available")

	// ErrProviderUnavailable indicates that the calendar provider itself cannot serve requests
	// (not loaded yet, database unreachable). The serving layer reports it as temporarily unavailable.
	ErrProviderUnavailable = errors.New("calendar provider not ready")
)
