package teststates

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/okian/plantcard/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends progress output to stdout and, when logFile is set, to that file too.
func SetupLogging(logFile string) error {
	var out io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return nil
}

// ShowHelp prints usage information for the state test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Plantcard State Test Tool
=========================

Feeds simulated plant sensor states to a running plantcard service, then checks
that the latest state of every entity was stored and that every card evaluates.

Usage:
  go run ./cmd/test-states [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -states int
        Number of states to generate and submit (default 10000)
  -plants int
        Number of simulated plants (default 20)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -settle duration
        Wait before verification (default 2s)
  -output string
        Write generated states to this JSON file
  -log string
        Also write test output to this file
  -verbose
        Log every submitted state and card row
  -help
        Show this help message

Examples:
  go run ./cmd/test-states -states 50000 -workers 16 -url http://localhost:8080
`)
}
