package queue

import "errors"

var (
	// ErrClosed is returned by Enqueue once the service has stopped.
	ErrClosed = errors.New("refresh queue closed")
	// ErrFull is returned when the refresh backlog is at capacity.
	ErrFull = errors.New("refresh queue full")
)
