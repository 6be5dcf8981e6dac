package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/aggregates"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/entities"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/persistence/snapshot"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

func newWorkspace(t *testing.T) *aggregates.Workspace {
	t.Helper()
	ws, err := aggregates.NewWorkspace(valueobjects.WorkspaceID{}, "Repo tests", nil)
	require.NoError(t, err)
	return ws
}

func TestRepositoryWithoutStore(t *testing.T) {
	repo := NewWorkspaceRepository(nil, nil, zap.NewNop())
	ctx := context.Background()
	ws := newWorkspace(t)

	require.NoError(t, repo.Save(ctx, ws))

	got, err := repo.GetByID(ctx, ws.ID())
	require.NoError(t, err)
	assert.Same(t, ws, got, "the live aggregate is handed out, not a copy")

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, ws.ID()))
	_, err = repo.GetByID(ctx, ws.ID())
	assert.True(t, pkgerrors.IsNotFound(err))

	assert.True(t, pkgerrors.IsNotFound(repo.Delete(ctx, ws.ID())))
}

func TestRepositoryWritesThroughToStore(t *testing.T) {
	ctx := context.Background()
	store, err := snapshot.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	repo := NewWorkspaceRepository(store, nil, zap.NewNop())

	ws := newWorkspace(t)
	card, err := entities.NewRootCard(valueobjects.CardID{}, ws.ID(), valueobjects.NewPosition(0, 0))
	require.NoError(t, err)
	require.NoError(t, ws.AddCard(card))
	require.NoError(t, repo.Save(ctx, ws))

	snap, err := store.Read(ctx, ws.ID().String())
	require.NoError(t, err)
	assert.Len(t, snap.Cards, 1)
}

func TestRepositoryLazyLoadsFromStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := snapshot.NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	ws := newWorkspace(t)
	first := NewWorkspaceRepository(store, nil, zap.NewNop())
	require.NoError(t, first.Save(ctx, ws))

	// A fresh repository over the same directory restores the workspace
	// from its snapshot
	reopened, err := snapshot.NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)
	second := NewWorkspaceRepository(reopened, nil, zap.NewNop())

	got, err := second.GetByID(ctx, ws.ID())
	require.NoError(t, err)
	assert.Equal(t, ws.Name(), got.Name())

	all, err := second.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRepositoryDeleteRemovesSnapshot(t *testing.T) {
	ctx := context.Background()
	store, err := snapshot.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	repo := NewWorkspaceRepository(store, nil, zap.NewNop())

	ws := newWorkspace(t)
	require.NoError(t, repo.Save(ctx, ws))
	require.NoError(t, repo.Delete(ctx, ws.ID()))

	_, err = store.Read(ctx, ws.ID().String())
	assert.True(t, pkgerrors.IsNotFound(err))
}
