// Package service wires the card evaluator to the live state pipeline and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	statequeue "github.com/okian/plantcard/internal/adapters/mq/queue"
	workerpool "github.com/okian/plantcard/internal/adapters/mq/worker"
	"github.com/okian/plantcard/internal/adapters/repository"
	"github.com/okian/plantcard/internal/domain/icon"
	"github.com/okian/plantcard/internal/domain/model"
	"github.com/okian/plantcard/internal/domain/relative"
	"github.com/okian/plantcard/pkg/logger"
	"github.com/okian/plantcard/pkg/metrics"
)

// Service evaluates configured cards against the live state store.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     *repository.MemoryStore
	queue     statequeue.Queue
	pool      *workerpool.Pool
	evaluator *Evaluator

	// Cards
	pending  []model.CardConfig
	cards    map[string]model.CardConfig
	order    []string
	byEntity map[string][]string
	dry      map[string]bool

	// Configuration
	workerCount int
	queueSize   int
	strategy    icon.Strategy
	formatter   *relative.Formatter
	clock       func() time.Time

	started bool

	logger logger.Logger
}

// New constructs a Service and registers its cards. A card with no items, no id or a
// repeated id is rejected.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
		strategy:    icon.NearestTen,
		clock:       time.Now,
		cards:       make(map[string]model.CardConfig),
		byEntity:    make(map[string][]string),
		dry:         make(map[string]bool),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.formatter == nil {
		s.formatter = relative.New()
	}
	s.evaluator = NewEvaluator(s.strategy, s.formatter, s.logger.Named("evaluator"))

	for _, card := range s.pending {
		if err := s.register(card); err != nil {
			return nil, err
		}
	}
	s.pending = nil
	metrics.UpdateConfiguredCards(len(s.cards))

	return s, nil
}

func (s *Service) register(card model.CardConfig) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("register card: %w", err)
	}
	if _, exists := s.cards[card.ID]; exists {
		return fmt.Errorf("register card: %w: %q", model.ErrDuplicate, card.ID)
	}
	s.cards[card.ID] = card
	s.order = append(s.order, card.ID)

	seen := make(map[string]bool, len(card.Entities))
	for _, item := range card.Entities {
		if seen[item.Entity] {
			continue
		}
		seen[item.Entity] = true
		s.byEntity[item.Entity] = append(s.byEntity[item.Entity], card.ID)
	}
	return nil
}

// Start initializes and starts the state pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting plant card service...")

	s.store = repository.NewMemoryStore(ctx, repository.WithCapacityHint(len(s.byEntity)))
	s.queue = statequeue.NewInMemoryQueue(statequeue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store,
		workerpool.WithAppliedHook(s.onStateApplied),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "plant card service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("cards", len(s.cards)),
		logger.String("iconStrategy", s.strategy.String()),
	)

	return nil
}

// Stop drains pending updates and shuts the pipeline down.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	// Workers call back into the service while draining, so the lock is released first.
	s.started = false
	pool, store := s.pool, s.store
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping plant card service...")

	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	_ = store.Close()

	s.logger.Info(ctx, "plant card service stopped")
}

// RecordState submits a state for asynchronous application and returns its update id.
// A full queue surfaces as statequeue.ErrFull.
func (s *Service) RecordState(ctx context.Context, st model.State) (string, error) {
	st.Entity = strings.TrimSpace(st.Entity)
	if st.Entity == "" {
		return "", fmt.Errorf("%w: entity must not be empty", ErrInvalidState)
	}

	s.mu.RLock()
	q, started := s.queue, s.started
	s.mu.RUnlock()
	if !started {
		return "", ErrNotStarted
	}

	u := model.StateUpdate{
		UpdateID:   uuid.NewString(),
		State:      st,
		ReceivedAt: s.clock(),
	}
	if err := q.TryEnqueue(ctx, u); err != nil {
		s.logger.Debug(ctx, "state update rejected",
			logger.String("entity", st.Entity),
			logger.Error(err),
		)
		return "", fmt.Errorf("enqueue state: %w", err)
	}
	return u.UpdateID, nil
}

// State returns the stored entry for an entity.
func (s *Service) State(ctx context.Context, entity string) (repository.Entry, error) {
	store, err := s.liveStore()
	if err != nil {
		return repository.Entry{}, err
	}
	return store.Get(ctx, entity)
}

// Cards returns the registered cards in registration order.
func (s *Service) Cards() []model.CardConfig {
	out := make([]model.CardConfig, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.cards[id])
	}
	return out
}

// Evaluate computes the presentation of a card against the current states.
func (s *Service) Evaluate(ctx context.Context, cardID string) (model.CardPresentation, error) {
	card, ok := s.cards[cardID]
	if !ok {
		return model.CardPresentation{}, fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	store, err := s.liveStore()
	if err != nil {
		return model.CardPresentation{}, err
	}
	return s.evaluator.EvaluateCard(ctx, card, StateMap(store.Snapshot(ctx)), s.clock()), nil
}

func (s *Service) liveStore() (*repository.MemoryStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// onStateApplied re-evaluates the cards showing the updated entity and tracks
// dry badge transitions.
func (s *Service) onStateApplied(ctx context.Context, u model.StateUpdate) {
	ids := s.byEntity[u.State.Entity]
	if len(ids) == 0 {
		return
	}
	states := StateMap(s.store.Snapshot(ctx))
	now := s.clock()

	for _, id := range ids {
		pres := s.evaluator.EvaluateCard(ctx, s.cards[id], states, now)

		s.mu.Lock()
		was := s.dry[id]
		s.dry[id] = pres.Dry
		dryCount := 0
		for _, d := range s.dry {
			if d {
				dryCount++
			}
		}
		s.mu.Unlock()

		metrics.UpdateDryCards(dryCount)
		if was != pres.Dry {
			if pres.Dry {
				s.logger.Warn(ctx, "card is dry", logger.String("card", id), logger.String("entity", u.State.Entity))
			} else {
				s.logger.Info(ctx, "card recovered", logger.String("card", id), logger.String("entity", u.State.Entity))
			}
		}
	}
}

// DryCards returns the ids of cards whose last evaluation raised the dry badge.
func (s *Service) DryCards() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, id := range s.order {
		if s.dry[id] {
			out = append(out, id)
		}
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"cards":        len(s.cards),
		"iconStrategy": s.strategy.String(),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		entities := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["entities"] = entities
		stats["processed"] = s.pool.Processed()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoreEntities(entities)
	}

	return stats
}
