package provider

import (
	"errors"
	"fmt"
)

// Sentinel kinds for provider errors.
var (
	ErrEndpoint        = errors.New("endpoint error")
	ErrInternal        = errors.New("internal scorer fault")
	ErrUnknownProvider = errors.New("unknown provider")
)

// ErrorKind classifies an endpoint failure.
type ErrorKind string

const (
	// Unavailable covers connection failures and 5xx responses; transient,
	// retried at most once.
	Unavailable ErrorKind = "unavailable"
	// Timeout means the bounded call deadline expired; transient, retried
	// at most once.
	Timeout ErrorKind = "timeout"
	// InvalidResponse covers 4xx rejections and undecodable or malformed
	// payloads; permanent for the request, never retried.
	InvalidResponse ErrorKind = "invalid_response"
)

// EndpointError is the uniform error shape for remote provider failures.
type EndpointError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *EndpointError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s endpoint %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s endpoint %s", e.Provider, e.Kind)
}

func (e *EndpointError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrEndpoint) match any endpoint failure.
func (e *EndpointError) Is(target error) bool {
	return target == ErrEndpoint
}

// retryable reports whether the failure may be retried once.
func (e *EndpointError) retryable() bool {
	return e.Kind == Unavailable || e.Kind == Timeout
}
