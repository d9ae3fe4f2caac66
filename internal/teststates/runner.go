package teststates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/plantcard/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete state feed test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting plantcard state test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("states", config.NumStates),
		logger.Int("plants", config.NumPlants),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.String("logFile", config.LogFile),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate states
	states, err := generateStates(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("state generation failed: %w", err)
	}

	// Step 3: Submit states concurrently
	accepted, err := submitStates(ctx, config, states, stats)
	if err != nil {
		return fmt.Errorf("state submission failed: %w", err)
	}

	// Step 4: Wait for the workers to drain the queue
	logger.Get().Info(ctx, "waiting for states to be applied", logger.Duration("settle", config.Settle))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(config.Settle):
	}

	// Step 5: Verify stored states
	if err := verifyStates(ctx, config, accepted, stats); err != nil {
		return fmt.Errorf("state verification failed: %w", err)
	}

	// Step 6: Evaluate cards
	if err := checkCards(ctx, config, stats); err != nil {
		return fmt.Errorf("card evaluation failed: %w", err)
	}

	// Step 7: Save states to file
	if config.OutputFile != "" {
		if err := saveStatesToFile(ctx, config.OutputFile, states); err != nil {
			logger.Get().Warn(ctx, "failed to save states to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// The health endpoint serves Prometheus metrics; any 200 is healthy.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveStatesToFile writes the generated states as a JSON array.
func saveStatesToFile(ctx context.Context, filename string, states []State) error {
	if len(states) == 0 {
		return fmt.Errorf("no states to save")
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal states: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), logFilePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "states saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(stats *Stats) {
	var acceptRate, statesPerSecond float64

	if stats.StatesSubmitted > 0 {
		acceptRate = float64(stats.StatesAccepted) / float64(stats.StatesSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		statesPerSecond = float64(stats.StatesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("statesGenerated", stats.StatesGenerated),
		logger.Int("statesSubmitted", stats.StatesSubmitted),
		logger.Int("statesAccepted", stats.StatesAccepted),
		logger.Int("statesThrottled", stats.StatesThrottled),
		logger.Int("statesFailed", stats.StatesFailed),
		logger.Int("entitiesVerified", stats.EntitiesVerified),
		logger.Int("cardsEvaluated", stats.CardsEvaluated),
		logger.Int("cardsDry", stats.CardsDry),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("statesPerSecond", statesPerSecond))
}
