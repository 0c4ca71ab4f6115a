package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aivaceo/domain/dataset"
	"aivaceo/internal/cache"
	apperrors "aivaceo/internal/errors"
)

func snapshot(name string) *dataset.Snapshot {
	ds := dataset.MustNew(dataset.NewNumeric("x", []float64{1, 2, 3}))
	return dataset.NewSnapshot(name, dataset.SourceDemo, "", ds)
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore(0)

	first, second := snapshot("first"), snapshot("second")
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Same(t, first, got)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Name)

	require.NoError(t, store.Delete(ctx, first.ID))
	_, err = store.Get(ctx, first.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.True(t, apperrors.HasCode(store.Delete(ctx, first.ID), apperrors.CodeNotFound))

	assert.True(t, apperrors.HasCode(store.Save(ctx, nil), apperrors.CodeInvalidInput))
}

func TestSnapshotStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewSnapshotStore(time.Hour, cache.WithClock(func() time.Time { return now }))

	snap := snapshot("sales")
	require.NoError(t, store.Save(ctx, snap))

	now = now.Add(2 * time.Hour)
	_, err := store.Get(ctx, snap.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestSnapshotStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore(0)

	snap := snapshot("sales")
	require.NoError(t, store.Save(ctx, snap))

	next := snapshot("sales")
	next.ID = snap.ID
	got, err := store.Update(ctx, snap.ID, func(old *dataset.Snapshot) (*dataset.Snapshot, error) {
		assert.Same(t, snap, old)
		return next, nil
	})
	require.NoError(t, err)
	assert.Same(t, next, got)

	_, err = store.Update(ctx, snap.ID, func(*dataset.Snapshot) (*dataset.Snapshot, error) {
		return snapshot("other"), nil
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput), "the ID cannot change")
	current, err := store.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Same(t, next, current)

	require.NoError(t, store.Delete(ctx, snap.ID))
	_, err = store.Update(ctx, snap.ID, func(*dataset.Snapshot) (*dataset.Snapshot, error) {
		t.Fatal("update of a deleted snapshot must not run")
		return nil, nil
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	_, err = store.Get(ctx, snap.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
