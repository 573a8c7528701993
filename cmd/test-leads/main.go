package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/convertly/leadscore/internal/testleads"
)

// Default configuration constants.
const (
	defaultNumLeads         = 1000
	defaultBatchSize        = 25
	defaultTopN             = 20
	defaultWorkerMultiplier = 2
	defaultTimeout          = 30 * time.Second
	defaultTestTimeout      = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8000", "Base URL of the service")
		numLeads  = flag.Int("leads", defaultNumLeads, "Number of leads to generate and score")
		batchSize = flag.Int("batch", defaultBatchSize, "Batch size for batch scoring requests, 0 disables batches")
		topN      = flag.Int("top", defaultTopN, "Number of top leads to fetch after scoring")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkerMultiplier, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		apiKey    = flag.String("key", "", "API key sent in the X-API-Key header")
		logFile   = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testleads.ShowHelp()
		return
	}

	// Setup logging
	if err := testleads.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &testleads.Config{
		BaseURL:   *baseURL,
		APIKey:    *apiKey,
		NumLeads:  *numLeads,
		BatchSize: *batchSize,
		TopN:      *topN,
		Workers:   *workers,
		Timeout:   *timeout,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}

	// Run the test
	if err := testleads.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
