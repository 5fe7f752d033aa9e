// Package common defines shared sentinel errors used across the derivation
// engine and its collaborators. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Store-level errors.
	ErrUniqueViolation = errors.New("unique constraint violation")

	// Fetch-level errors. A 404-equivalent response maps to ErrNotFound;
	// loaders treat it as "no data available", never as a failure.
	ErrNotFound = errors.New("not found")

	// Metadata structure errors (fatal for the current unit).
	ErrMissingRights   = errors.New("mandatory dataset rights element absent")
	ErrMalformedRecord = errors.New("malformed legacy record")

	// Loader flow control.
	ErrUnitSkipped = errors.New("unit skipped")
)
