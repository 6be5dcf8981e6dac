package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/aggregates"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func sampleSnapshot(t *testing.T) aggregates.WorkspaceSnapshot {
	t.Helper()
	ws, err := aggregates.NewWorkspace(valueobjects.WorkspaceID{}, "Stored workspace", nil)
	require.NoError(t, err)
	ws.SetInstructions("keep it short")
	return ws.Snapshot()
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	snap := sampleSnapshot(t)

	require.NoError(t, store.Write(ctx, snap))

	got, err := store.Read(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, snap.Name, got.Name)
	assert.Equal(t, snap.Instructions, got.Instructions)

	// Overwrite replaces, not appends
	snap.Name = "Renamed"
	require.NoError(t, store.Write(ctx, snap))
	got, err = store.Read(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestFileStoreListIDs(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	a := sampleSnapshot(t)
	b := sampleSnapshot(t)
	require.NoError(t, store.Write(ctx, a))
	require.NoError(t, store.Write(ctx, b))

	ids, err = store.ListIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids)
}

func TestFileStoreRemove(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	snap := sampleSnapshot(t)

	require.NoError(t, store.Write(ctx, snap))
	require.NoError(t, store.Remove(ctx, snap.ID))

	_, err := store.Read(ctx, snap.ID)
	assert.True(t, pkgerrors.IsNotFound(err))

	err = store.Remove(ctx, snap.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestFileStoreMissingWorkspace(t *testing.T) {
	store := newStore(t)
	_, err := store.Read(context.Background(), valueobjects.NewWorkspaceID().String())
	assert.True(t, pkgerrors.IsNotFound(err))
}
