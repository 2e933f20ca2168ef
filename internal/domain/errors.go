package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidBulletin = errors.New("invalid or missing bulletin data")
	ErrInvalidAQI      = errors.New("aqi must not be negative")
	ErrInvalidStation  = errors.New("station name must not be empty")
	ErrRateLimited     = errors.New("too many notifications, try again later")
	ErrDispatchFull    = errors.New("dispatch queue is at capacity")
)
