package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/convertly/leadscore/internal/adapters/http/api"
	"github.com/convertly/leadscore/internal/adapters/http/site"
	"github.com/convertly/leadscore/internal/adapters/http/swagger"
	"github.com/convertly/leadscore/internal/adapters/provider"
	"github.com/convertly/leadscore/internal/adapters/sink"
	app "github.com/convertly/leadscore/internal/app"
	"github.com/convertly/leadscore/internal/config"
	"github.com/convertly/leadscore/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics;
	// the service pushes its own system gauges.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize logging before anything that logs
	if err := logger.Init(cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	writer, err := buildWriter(cfg)
	if err != nil {
		log.Error(ctx, "failed to build result writer", logger.Error(err))
		os.Exit(1)
	}

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithProviderSettings(provider.Settings{
			Provider:    cfg.Provider,
			ModelPath:   cfg.ModelPath,
			EndpointURL: cfg.EndpointURL,
			APIKey:      cfg.EndpointAPIKey,
			Deployment:  cfg.EndpointDeployment,
			Timeout:     time.Duration(cfg.EndpointTimeoutMS) * time.Millisecond,
		}),
		app.WithStrictValidation(cfg.StrictValidation),
		app.WithBatchMaxSize(cfg.BatchMaxSize),
		app.WithBatchConcurrency(cfg.BatchConcurrency),
		app.WithSinkCapacity(cfg.SinkCapacity),
		app.WithSinkWorkers(cfg.SinkWorkers),
		app.WithWriter(writer),
		app.WithShardCount(cfg.ShardCount),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	site.Register(mux)
	swagger.Register(mux)

	apiServer := api.NewServer(svc, svc,
		api.WithMaxTopLeadsLimit(cfg.MaxTopLeadsLimit),
		api.WithAPIKeys(cfg.APIKeys),
	)
	apiServer.Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("provider", cfg.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildWriter resolves the configured persistence backend.
func buildWriter(cfg *config.Config) (sink.Writer, error) {
	if strings.EqualFold(cfg.SinkWriter, "file") {
		return sink.NewFileWriter(cfg.SinkDir)
	}
	return sink.NewNoopWriter(), nil
}

// startSystemMetricsUpdater pushes process gauges on a fixed cadence.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.SystemSnapshot()
		}
	}
}
