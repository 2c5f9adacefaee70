package domain

import "errors"

var (
	// ErrHubClosed is returned by hub operations after shutdown has begun.
	ErrHubClosed = errors.New("hub is closed")

	// ErrUnknownChannel is returned when a producer broadcasts to a channel
	// name that was never configured. This indicates a programming error,
	// not runtime load, so unlike drops it is surfaced to the caller.
	ErrUnknownChannel = errors.New("unknown channel")
)
