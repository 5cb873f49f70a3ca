package weather

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUpstream    = errors.New("weather provider request failed")
	ErrUnavailable = errors.New("weather provider unavailable")
	ErrRateLimited = errors.New("weather provider rate limited")
	ErrDecode      = errors.New("weather provider response malformed")
)
