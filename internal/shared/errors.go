package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidPeriod indicates a malformed or unsupported reporting period.
	ErrInvalidPeriod = errors.New("invalid period")
)
