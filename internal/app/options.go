package service

import (
	"time"

	"github.com/okian/plantcard/internal/domain/icon"
	"github.com/okian/plantcard/internal/domain/model"
	"github.com/okian/plantcard/internal/domain/relative"
	"github.com/okian/plantcard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of state update workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending state updates.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCards registers card configurations. Later calls append.
func WithCards(cards ...model.CardConfig) Option {
	return func(s *Service) {
		s.pending = append(s.pending, cards...)
	}
}

// WithIconStrategy sets the battery tier strategy.
func WithIconStrategy(strategy icon.Strategy) Option {
	return func(s *Service) {
		s.strategy = strategy
	}
}

// WithRelativeFormatter sets the formatter used for "Updated ..." lines.
func WithRelativeFormatter(f *relative.Formatter) Option {
	return func(s *Service) {
		if f != nil {
			s.formatter = f
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}
