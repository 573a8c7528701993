// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load to layer overrides.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Provider selects the inference variant: local, sagemaker or azure.
	Provider string `koanf:"provider"`

	// ModelPath optionally points the local provider at a JSON parameter
	// file instead of the baked-in model.
	ModelPath string `koanf:"model_path"`

	// EndpointURL is the invocation URL for remote providers.
	EndpointURL string `koanf:"endpoint_url"`

	// EndpointAPIKey authenticates against the Azure ML endpoint.
	EndpointAPIKey string `koanf:"endpoint_api_key"`

	// EndpointDeployment optionally pins an Azure ML deployment.
	EndpointDeployment string `koanf:"endpoint_deployment"`

	// EndpointTimeoutMS bounds each remote inference call.
	EndpointTimeoutMS int `koanf:"endpoint_timeout_ms"`

	// StrictValidation rejects unknown feature fields when true.
	StrictValidation bool `koanf:"strict_validation"`

	// BatchMaxSize caps the number of leads in one batch request.
	BatchMaxSize int `koanf:"batch_max_size"`

	// BatchConcurrency bounds concurrently scored leads per batch.
	BatchConcurrency int `koanf:"batch_concurrency"`

	// SinkCapacity bounds the asynchronous persistence queue.
	SinkCapacity int `koanf:"sink_capacity"`

	// SinkWorkers sets the number of persistence workers.
	SinkWorkers int `koanf:"sink_workers"`

	// SinkWriter selects the persistence backend: file or noop.
	SinkWriter string `koanf:"sink_writer"`

	// SinkDir roots the file writer's date partitions.
	SinkDir string `koanf:"sink_dir"`

	// ShardCount configures the number of shards in the result store.
	ShardCount int `koanf:"shard_count"`

	// MaxTopLeadsLimit caps GET /api/v1/leads/top?limit.
	MaxTopLeadsLimit int `koanf:"max_top_leads_limit"`

	// APIKeys lists accepted client keys. Empty disables authentication.
	APIKeys []string `koanf:"api_keys"`
}

// New creates a Config holding the service defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "json",
		Addr:              ":8000",
		Provider:          "local",
		EndpointTimeoutMS: 5000,
		StrictValidation:  true,
		BatchMaxSize:      100,
		BatchConcurrency:  runtime.NumCPU() * 2,
		SinkCapacity:      10_000,
		SinkWorkers:       4,
		SinkWriter:        "noop",
		SinkDir:           "./data/results",
		ShardCount:        16,
		MaxTopLeadsLimit:  100,
	}
}

// Validate reports the first structural problem with the configuration.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Provider) {
	case "", "local", "sagemaker", "azure":
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
	if c.BatchMaxSize < 1 {
		return fmt.Errorf("%w: batch_max_size must be positive", ErrInvalidConfig)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("%w: batch_concurrency must be positive", ErrInvalidConfig)
	}
	if c.SinkCapacity < 1 {
		return fmt.Errorf("%w: sink_capacity must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.SinkWriter) {
	case "file", "noop":
	default:
		return fmt.Errorf("%w: unknown sink_writer %q", ErrInvalidConfig, c.SinkWriter)
	}
	if strings.ToLower(c.SinkWriter) == "file" && c.SinkDir == "" {
		return fmt.Errorf("%w: sink_dir required for the file writer", ErrInvalidConfig)
	}
	return nil
}
