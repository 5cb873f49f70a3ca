package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidQuery  = errors.New("invalid conditions query")
	ErrBatchTooLarge = errors.New("batch too large")
	ErrNoProvider    = errors.New("no weather provider configured")
)
