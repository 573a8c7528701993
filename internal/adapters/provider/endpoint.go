package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/convertly/leadscore/internal/domain/model"
	"github.com/convertly/leadscore/internal/domain/schema"
)

// endpoint is the shared remote-provider core. The concrete providers differ
// only in how a request is built and how the response body is decoded; the
// transport, timeout and retry behavior is identical.
type endpoint struct {
	provider   string
	url        string
	apiKey     string
	deployment string
	timeout    time.Duration
	client     *http.Client
	identity   model.ModelIdentity

	encode func(vec schema.FeatureVector) ([]byte, error)
	decode func(body []byte) (float64, error)
	header func(h http.Header)
}

// maxResponseBytes bounds how much of a remote response is read. Scores are
// tiny; anything bigger is a malformed response.
const maxResponseBytes = 1 << 16

// Predict posts one feature vector to the remote endpoint. Transport faults
// and 5xx answers are retried once; timeouts are retried once against a fresh
// deadline; malformed or 4xx answers fail immediately.
func (e *endpoint) Predict(ctx context.Context, vec schema.FeatureVector) (float64, error) {
	payload, err := e.encode(vec)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	var lastErr *EndpointError
	for attempt := 0; attempt <= maxRetries; attempt++ {
		score, endpointErr := e.attempt(ctx, payload)
		if endpointErr == nil {
			return score, nil
		}
		lastErr = endpointErr
		if !endpointErr.retryable() {
			break
		}
		// Do not burn the second attempt when the caller is already gone.
		if ctx.Err() != nil {
			break
		}
	}
	return 0, lastErr
}

func (e *endpoint) attempt(ctx context.Context, payload []byte) (float64, *EndpointError) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return 0, e.fail(InvalidResponse, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.header != nil {
		e.header(req.Header)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() == context.DeadlineExceeded {
			return 0, e.fail(Timeout, err)
		}
		return 0, e.fail(Unavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if attemptCtx.Err() == context.DeadlineExceeded {
			return 0, e.fail(Timeout, err)
		}
		return 0, e.fail(Unavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return 0, e.fail(Unavailable, fmt.Errorf("endpoint returned %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return 0, e.fail(InvalidResponse, fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, truncate(body)))
	}

	score, err := e.decode(body)
	if err != nil {
		return 0, e.fail(InvalidResponse, err)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, e.fail(InvalidResponse, fmt.Errorf("non-finite score %v", score))
	}
	return score, nil
}

func (e *endpoint) fail(kind ErrorKind, err error) *EndpointError {
	return &EndpointError{Provider: e.provider, Kind: kind, Err: err}
}

// Identity names the remote model as configured.
func (e *endpoint) Identity() model.ModelIdentity { return e.identity }

// Healthy probes the endpoint with a short GET. Any answer below 500 counts
// as reachable; some serving stacks reject GET on the scoring path with 4xx
// while still being up.
func (e *endpoint) Healthy(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, e.url, nil)
	if err != nil {
		return false
	}
	if e.header != nil {
		e.header(req.Header)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	return resp.StatusCode < 500
}

func truncate(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
