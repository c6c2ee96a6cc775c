package domain

import "errors"

var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)
