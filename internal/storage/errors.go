package storage

import "errors"

// Sentinel errors returned by repositories. Callers classify them with
// errors.Is to choose the right API failure mode.
var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists indicates a uniqueness conflict
	ErrAlreadyExists = errors.New("record already exists")
)
