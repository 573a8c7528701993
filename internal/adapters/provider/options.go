package provider

import (
	"net/http"
	"time"
)

// Option configures a remote endpoint provider.
type Option func(*endpoint)

// WithTimeout sets the per-attempt request timeout. Zero or negative values
// keep the default.
func WithTimeout(d time.Duration) Option {
	return func(e *endpoint) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithDeployment pins Azure requests to a specific deployment behind the
// endpoint. Ignored by providers that have no deployment concept.
func WithDeployment(name string) Option {
	return func(e *endpoint) {
		e.deployment = name
	}
}

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(e *endpoint) {
		if c != nil {
			e.client = c
		}
	}
}
