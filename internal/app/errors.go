package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrDocumentUnavailable = errors.New("daily document unavailable")
	ErrInvalidUser         = errors.New("invalid user")
	ErrInvalidGuessCount   = errors.New("guess count must be at least 1")
)
