package testleads

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/convertly/leadscore/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init("console"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "test_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the test leads tool.
func ShowHelp() {
	os.Stdout.WriteString(`Lead Scoring Test Tool
======================

A concurrent tool for exercising the lead conversion scoring service.

Usage:
  go run cmd/test-leads/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -leads int
        Number of leads to generate and score (default 1000)
  -batch int
        Batch size for batch scoring requests, 0 disables batches (default 25)
  -top int
        Number of top leads to fetch after scoring (default 20)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -key string
        API key sent in the X-API-Key header (default: none)
  -log string
        Log file for test output (default: test_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/test-leads/main.go

  # Test with custom parameters
  go run cmd/test-leads/main.go -leads 50000 -workers 16 -url http://localhost:8080

  # Test a service with authentication enabled
  go run cmd/test-leads/main.go -key secret-key -leads 1000

  # Singles only, no batch requests
  go run cmd/test-leads/main.go -batch 0 -verbose
`)
}
