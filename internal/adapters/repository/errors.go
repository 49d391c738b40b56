package repository

import "errors"

// Sentinel kinds for result store errors.
var (
	ErrInvalidResult     = errors.New("invalid result")
	ErrUnsupportedDriver = errors.New("unsupported store driver")
)
