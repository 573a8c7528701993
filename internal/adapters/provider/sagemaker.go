package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/convertly/leadscore/internal/domain/model"
	"github.com/convertly/leadscore/internal/domain/schema"
)

// NewSageMaker creates a provider that scores against a SageMaker inference
// endpoint. The request body is the ordered feature vector; the response is
// either a bare number or a predictions array.
func NewSageMaker(url string, opts ...Option) (Predictor, error) {
	if url == "" {
		return nil, fmt.Errorf("sagemaker provider: endpoint url is required")
	}
	e := &endpoint{
		provider: NameSageMaker,
		url:      url,
		timeout:  defaultTimeout,
		client:   &http.Client{},
		identity: model.ModelIdentity{Name: "sagemaker-endpoint", Version: "remote"},
		encode:   encodeVector,
		decode:   decodeSageMaker,
		header: func(h http.Header) {
			h.Set("Accept", "application/json")
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.client.Timeout = e.timeout + time.Second
	return e, nil
}

func encodeVector(vec schema.FeatureVector) ([]byte, error) {
	return json.Marshal(vec.Values())
}

// decodeSageMaker accepts the shapes SageMaker containers commonly emit:
// a bare number, {"predictions": [x]}, or {"score": x}.
func decodeSageMaker(body []byte) (float64, error) {
	var bare float64
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Predictions []float64 `json:"predictions"`
		Score       *float64  `json:"score"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if len(wrapped.Predictions) > 0 {
		return wrapped.Predictions[0], nil
	}
	if wrapped.Score != nil {
		return *wrapped.Score, nil
	}
	return 0, fmt.Errorf("response carries no score: %s", truncate(body))
}
