package repository

import "errors"

// Sentinel kinds for state store errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidEntity = errors.New("invalid entity reference")
)
