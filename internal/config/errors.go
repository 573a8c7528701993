package config

import "errors"

// Sentinel errors so callers can distinguish a bad value from a failed load.
var (
	// ErrInvalidConfig marks a configuration that parsed but fails
	// validation, such as an unknown provider or a non-positive limit.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig marks a failure to read or parse configuration input.
	ErrLoadConfig = errors.New("load config failed")
)
