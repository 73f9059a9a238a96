package errors

import "errors"

var (
	ErrNotFound = errors.New("experience not found")

	ErrInvalidID = errors.New("invalid experience ID format")
)
