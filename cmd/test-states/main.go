package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/plantcard/internal/teststates"
)

// Default configuration constants.
const (
	defaultNumStates   = 10000
	defaultNumPlants   = 20
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numStates  = flag.Int("states", defaultNumStates, "Number of states to generate and submit")
		numPlants  = flag.Int("plants", defaultNumPlants, "Number of simulated plants")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", teststates.DefaultSettleDelay, "Wait before verification")
		outputFile = flag.String("output", "", "Output file for generated states")
		logFile    = flag.String("log", "", "Log file for test output")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		teststates.ShowHelp()
		return
	}

	if err := teststates.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &teststates.Config{
		BaseURL:    *baseURL,
		NumStates:  *numStates,
		NumPlants:  *numPlants,
		Workers:    *workers,
		Timeout:    *timeout,
		Settle:     *settle,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := teststates.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
