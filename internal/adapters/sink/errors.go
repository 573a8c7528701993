package sink

import "errors"

// Sentinel errors for the persistence sink.
var (
	// ErrClosed reports an operation against a sink that already shut down.
	ErrClosed = errors.New("sink closed")

	// ErrWrite reports a failed persistence attempt for one result.
	ErrWrite = errors.New("sink write failed")
)
