// Package repository holds the live entity states cards are evaluated against.
package repository

import (
	"context"
	"time"

	"github.com/okian/plantcard/internal/domain/model"
)

// Entry is a stored state plus bookkeeping.
type Entry struct {
	State      model.State `json:"state"`
	UpdateID   string      `json:"update_id,omitempty"`
	ReceivedAt time.Time   `json:"received_at"`
}

// Store provides read/write access to live entity states.
type Store interface {
	// Put stores the update unless a newer one for the same entity is already held.
	// Returns true if the stored state changed.
	Put(ctx context.Context, u model.StateUpdate) (bool, error)

	// Get returns the latest entry for an entity.
	// Returns ErrNotFound if the entity is unknown.
	Get(ctx context.Context, entity string) (Entry, error)

	// Snapshot returns a copy of every stored state keyed by entity.
	Snapshot(ctx context.Context) map[string]model.State

	// Count returns the number of entities tracked.
	Count(ctx context.Context) int
}
