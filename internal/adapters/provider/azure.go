package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/convertly/leadscore/internal/domain/model"
	"github.com/convertly/leadscore/internal/domain/schema"
)

// NewAzure creates a provider that scores against an Azure ML online
// endpoint. Requests carry the vector inside a "data" batch of one and
// authenticate with a bearer key; responses are a one-element array.
func NewAzure(url, apiKey string, opts ...Option) (Predictor, error) {
	if url == "" {
		return nil, fmt.Errorf("azure provider: endpoint url is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("azure provider: api key is required")
	}
	e := &endpoint{
		provider: NameAzure,
		url:      strings.TrimSuffix(url, "/") + "/score",
		apiKey:   apiKey,
		timeout:  defaultTimeout,
		client:   &http.Client{},
		identity: model.ModelIdentity{Name: "azureml-endpoint", Version: "remote"},
		encode:   encodeAzure,
		decode:   decodeAzure,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.header = func(h http.Header) {
		h.Set("Authorization", "Bearer "+e.apiKey)
		h.Set("Accept", "application/json")
		if e.deployment != "" {
			h.Set("azureml-model-deployment", e.deployment)
		}
	}
	e.client.Timeout = e.timeout + time.Second
	return e, nil
}

func encodeAzure(vec schema.FeatureVector) ([]byte, error) {
	return json.Marshal(map[string][][]float64{
		"data": {vec.Values()},
	})
}

// decodeAzure accepts the one-row batch answer, bare ([x]) or wrapped
// ({"result": [x]}).
func decodeAzure(body []byte) (float64, error) {
	var rows []float64
	if err := json.Unmarshal(body, &rows); err == nil {
		if len(rows) == 0 {
			return 0, fmt.Errorf("response carries no score: %s", truncate(body))
		}
		return rows[0], nil
	}

	var wrapped struct {
		Result []float64 `json:"result"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if len(wrapped.Result) == 0 {
		return 0, fmt.Errorf("response carries no score: %s", truncate(body))
	}
	return wrapped.Result[0], nil
}
