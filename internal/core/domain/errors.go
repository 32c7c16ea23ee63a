package domain

import "errors"

var (
	// ErrInvalidCoordinate marks an out-of-range or non-numeric latitude/longitude.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrInvalidRadius marks a non-positive, non-numeric or out-of-bounds radius.
	ErrInvalidRadius = errors.New("invalid radius")
	// ErrSamplingFailure is reserved for numeric faults inside the sampler.
	ErrSamplingFailure = errors.New("sampling failure")
	// ErrInvalidUnit marks an unknown distance unit tag.
	ErrInvalidUnit = errors.New("invalid unit")

	ErrSessionNotFound = errors.New("session not found")

	// ErrLocationUnavailable is a soft failure: the caller keeps the previous origin.
	ErrLocationUnavailable = errors.New("location unavailable")
)
