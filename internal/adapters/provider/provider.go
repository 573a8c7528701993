// Package provider defines the inference capability and its three variants:
// an in-process model, a SageMaker endpoint and an Azure ML endpoint. The
// orchestrator depends only on the Predictor interface; the concrete variant
// is chosen once at startup and never changes for the process lifetime.
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/convertly/leadscore/internal/domain/model"
	"github.com/convertly/leadscore/internal/domain/schema"
)

// Provider name constants; the closed set of selectable variants.
const (
	NameLocal     = "local"
	NameSageMaker = "sagemaker"
	NameAzure     = "azure"
)

// Default endpoint call behavior.
const (
	defaultTimeout = 5 * time.Second
	maxRetries     = 1
)

// Predictor is the inference capability: a validated vector in, a raw
// conversion probability out.
type Predictor interface {
	// Predict scores one validated vector, honoring ctx for cancellation.
	Predict(ctx context.Context, vec schema.FeatureVector) (float64, error)

	// Identity names the model behind this provider.
	Identity() model.ModelIdentity

	// Healthy reports whether the provider can currently serve.
	Healthy(ctx context.Context) bool
}

// Settings carries the static provider identity resolved at process start.
// Immutable afterwards; swapping providers requires a restart.
type Settings struct {
	// Provider selects the variant: "local", "sagemaker" or "azure".
	Provider string

	// ModelPath optionally overrides the baked-in local model parameters
	// with a JSON parameter file.
	ModelPath string

	// EndpointURL is the invocation URL for remote variants.
	EndpointURL string

	// APIKey authenticates against the Azure ML endpoint.
	APIKey string

	// Deployment optionally pins a specific Azure ML deployment.
	Deployment string

	// Timeout bounds each remote call. Zero means the default.
	Timeout time.Duration
}

// New resolves the configured provider variant. The returned Predictor is
// safe for concurrent use.
func New(s Settings) (Predictor, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "", NameLocal:
		if s.ModelPath != "" {
			return NewLocalFromFile(s.ModelPath)
		}
		return NewLocal(), nil
	case NameSageMaker:
		return NewSageMaker(s.EndpointURL, WithTimeout(s.Timeout))
	case NameAzure:
		return NewAzure(s.EndpointURL, s.APIKey, WithTimeout(s.Timeout), WithDeployment(s.Deployment))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, s.Provider)
	}
}
