package errors

import "errors"

var (
	ErrNotFound = errors.New("prescription not found")

	ErrInvalidID = errors.New("invalid prescription ID format")
)
