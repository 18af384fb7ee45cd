package utils

import "errors"

var (
	// ErrInvalidInput marks a precondition failure on caller supplied data:
	// vertex count mismatch, non-spherical input, missing area data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDimension marks a malformed matrix or volume shape.
	ErrDimension = errors.New("dimension error")
)
