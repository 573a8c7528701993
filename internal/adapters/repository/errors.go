package repository

import "errors"

// Sentinel kinds for result store errors.
var (
	ErrNotFound     = errors.New("lead not found")
	ErrInvalidLimit = errors.New("invalid top-n limit")
)
