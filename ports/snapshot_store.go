package ports

import (
	"context"

	"aivaceo/domain/core"
	"aivaceo/domain/dataset"
)

// SnapshotStore holds the datasets available for scanning
type SnapshotStore interface {
	// Save stores snap, replacing any snapshot with the same ID
	Save(ctx context.Context, snap *dataset.Snapshot) error
	// Get returns a NOT_FOUND error for unknown or expired IDs
	Get(ctx context.Context, id core.ID) (*dataset.Snapshot, error)
	// List returns snapshots in the order they were first saved
	List(ctx context.Context) ([]*dataset.Snapshot, error)
	// Update atomically replaces the snapshot stored under id with fn's result.
	// It returns NOT_FOUND, without calling fn, when id is unknown or expired.
	Update(ctx context.Context, id core.ID, fn func(old *dataset.Snapshot) (*dataset.Snapshot, error)) (*dataset.Snapshot, error)
	Delete(ctx context.Context, id core.ID) error
}
