package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/plantcard/internal/domain/model"
	"github.com/okian/plantcard/pkg/metrics"
)

// MemoryStore is a map-backed Store guarded by a RWMutex.
//
// Ordering: an update replaces the stored entry unless it was received earlier than
// the entry already held, so late deliveries from a slow worker never roll a state back.
type MemoryStore struct {
	mu                    sync.RWMutex
	byEntity              map[string]Entry
	metricsUpdateInterval time.Duration
	capacityHint          int

	wg       sync.WaitGroup
	stopChan chan struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs a store and starts its metrics updater.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		metricsUpdateInterval: 5 * time.Second,
		capacityHint:          64,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.byEntity = make(map[string]Entry, s.capacityHint)

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)

	return s
}

// Close stops the background metrics goroutine.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, u model.StateUpdate) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	entity := strings.TrimSpace(u.State.Entity)
	if entity == "" {
		return false, fmt.Errorf("%w: empty entity", ErrInvalidEntity)
	}
	u.State.Entity = entity

	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.byEntity[entity]; ok && u.ReceivedAt.Before(cur.ReceivedAt) {
		return false, nil
	}
	s.byEntity[entity] = Entry{
		State:      u.State,
		UpdateID:   u.UpdateID,
		ReceivedAt: u.ReceivedAt,
	}
	return true, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, entity string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	s.mu.RLock()
	e, ok := s.byEntity[strings.TrimSpace(entity)]
	s.mu.RUnlock()
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, entity)
	}
	return e, nil
}

// Snapshot implements Store.
func (s *MemoryStore) Snapshot(_ context.Context) map[string]model.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.State, len(s.byEntity))
	for k, e := range s.byEntity {
		out[k] = e.State
	}
	return out
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byEntity)
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateStoreEntities(s.Count(ctx))
			}
		}
	}()
}
