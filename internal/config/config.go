// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig; provider failures wrap ErrLoadConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/plantcard/internal/domain/icon"
	"github.com/okian/plantcard/internal/domain/model"
	"github.com/okian/plantcard/internal/domain/relative"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory state update queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of state update workers.
	WorkerCount int `koanf:"worker_count"`

	// IconStrategy selects battery tier bucketing: nearest_ten or floored_offset.
	IconStrategy string `koanf:"icon_strategy"`

	// DateLayout is the Go time layout for timestamps older than a week.
	DateLayout string `koanf:"date_layout"`

	// Timezone names the zone calendar dates are shown in, e.g. "Europe/Berlin".
	Timezone string `koanf:"timezone"`

	// Cards lists the configured sensor cards.
	Cards []model.CardConfig `koanf:"cards"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":9080",
		QueueSize:    10_000,
		WorkerCount:  runtime.NumCPU(),
		IconStrategy: icon.NearestTen.String(),
		DateLayout:   relative.DefaultDateLayout,
		Timezone:     "Local",
	}
}

// Strategy returns the parsed icon strategy.
func (c *Config) Strategy() (icon.Strategy, error) {
	return icon.ParseStrategy(c.IconStrategy)
}

// Location returns the configured calendar zone.
func (c *Config) Location() (*time.Location, error) {
	switch strings.TrimSpace(c.Timezone) {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(c.Timezone)
	}
}

// Validate checks the configuration and every card in it.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := c.Strategy(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: timezone: %w", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Cards))
	for _, card := range c.Cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		if seen[card.ID] {
			return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, model.ErrDuplicate, card.ID)
		}
		seen[card.ID] = true
	}
	return nil
}
