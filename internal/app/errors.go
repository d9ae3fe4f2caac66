package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrUnknownCard  = errors.New("unknown card")
	ErrInvalidState = errors.New("invalid state")
	ErrNotStarted   = errors.New("service not started")
)
