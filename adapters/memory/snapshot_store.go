package memory

import (
	"context"
	"fmt"
	"time"

	"aivaceo/domain/core"
	"aivaceo/domain/dataset"
	"aivaceo/internal/cache"
	apperrors "aivaceo/internal/errors"
	"aivaceo/ports"
)

// snapshotStore implements ports.SnapshotStore on the TTL cache
type snapshotStore struct {
	entries *cache.Cache[core.ID, *dataset.Snapshot]
}

// NewSnapshotStore creates an in-memory store; snapshots expire ttl after their last save
func NewSnapshotStore(ttl time.Duration, opts ...cache.Option) ports.SnapshotStore {
	return &snapshotStore{entries: cache.New[core.ID, *dataset.Snapshot](ttl, opts...)}
}

func (s *snapshotStore) Save(ctx context.Context, snap *dataset.Snapshot) error {
	if snap == nil || snap.ID.IsEmpty() || snap.Data == nil {
		return apperrors.InvalidInput("snapshot requires an ID and data")
	}
	s.entries.Set(snap.ID, snap)
	return nil
}

func (s *snapshotStore) Get(ctx context.Context, id core.ID) (*dataset.Snapshot, error) {
	snap, ok := s.entries.Get(id)
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("dataset %s", id))
	}
	return snap, nil
}

func (s *snapshotStore) List(ctx context.Context) ([]*dataset.Snapshot, error) {
	return s.entries.Values(), nil
}

func (s *snapshotStore) Update(ctx context.Context, id core.ID, fn func(old *dataset.Snapshot) (*dataset.Snapshot, error)) (*dataset.Snapshot, error) {
	snap, ok, err := s.entries.Update(id, func(old *dataset.Snapshot) (*dataset.Snapshot, error) {
		next, err := fn(old)
		if err != nil {
			return nil, err
		}
		if next == nil || next.ID != id || next.Data == nil {
			return nil, apperrors.InvalidInput("replacement snapshot must keep the ID and carry data")
		}
		return next, nil
	})
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("dataset %s", id))
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *snapshotStore) Delete(ctx context.Context, id core.ID) error {
	if !s.entries.Delete(id) {
		return apperrors.NotFound(fmt.Sprintf("dataset %s", id))
	}
	return nil
}
