package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/entities"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

func TestHistoryUndoRedoRoundTrip(t *testing.T) {
	ws := testWorkspace(t)
	h := NewHistory(nil, zap.NewNop())

	card := rootWithMessages(t, ws)
	pre := card.Snapshot()
	require.NoError(t, card.Rename("After", ws.Config()))
	post := card.Snapshot()

	h.Record(ws.ID(), &Entry{
		Label: "Rename card",
		Pre:   []entities.CardSnapshot{pre},
		Post:  []entities.CardSnapshot{post},
	})

	label, err := h.Undo(ws)
	require.NoError(t, err)
	assert.Equal(t, "Rename card", label)

	reverted, err := ws.Card(card.ID())
	require.NoError(t, err)
	assert.Equal(t, "New conversation", reverted.Title())
	assert.True(t, h.CanRedo(ws.ID()))

	_, err = h.Redo(ws)
	require.NoError(t, err)

	redone, err := ws.Card(card.ID())
	require.NoError(t, err)
	assert.Equal(t, "After", redone.Title())
}

func TestHistoryUndoCreation(t *testing.T) {
	ws := testWorkspace(t)
	h := NewHistory(nil, zap.NewNop())

	card := rootWithMessages(t, ws)
	h.Record(ws.ID(), &Entry{
		Label:   "Create card",
		Post:    []entities.CardSnapshot{card.Snapshot()},
		Created: []valueobjects.CardID{card.ID()},
	})

	_, err := h.Undo(ws)
	require.NoError(t, err)
	assert.False(t, ws.HasCard(card.ID()))

	_, err = h.Redo(ws)
	require.NoError(t, err)
	assert.True(t, ws.HasCard(card.ID()))
}

func TestHistoryUndoDeletion(t *testing.T) {
	ws := testWorkspace(t)
	h := NewHistory(nil, zap.NewNop())

	card := rootWithMessages(t, ws, "kept message")
	pre := card.Snapshot()
	_, err := ws.DeleteCard(card.ID())
	require.NoError(t, err)

	h.Record(ws.ID(), &Entry{
		Label:   "Delete card",
		Pre:     []entities.CardSnapshot{pre},
		Deleted: []valueobjects.CardID{card.ID()},
	})

	_, err = h.Undo(ws)
	require.NoError(t, err)
	restored, err := ws.Card(card.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, restored.MessageCount())

	_, err = h.Redo(ws)
	require.NoError(t, err)
	assert.False(t, ws.HasCard(card.ID()))
}

func TestHistoryNewMutationClearsRedo(t *testing.T) {
	ws := testWorkspace(t)
	h := NewHistory(nil, zap.NewNop())

	card := rootWithMessages(t, ws)
	h.Record(ws.ID(), &Entry{Label: "first", Post: []entities.CardSnapshot{card.Snapshot()}, Created: []valueobjects.CardID{card.ID()}})

	_, err := h.Undo(ws)
	require.NoError(t, err)
	require.True(t, h.CanRedo(ws.ID()))

	h.Record(ws.ID(), &Entry{Label: "second"})
	assert.False(t, h.CanRedo(ws.ID()))

	_, err = h.Redo(ws)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestHistoryDepthEviction(t *testing.T) {
	ws := testWorkspace(t)
	cfg := config.DefaultDomainConfig()
	cfg.UndoDepth = 3
	h := NewHistory(config.StaticProvider(cfg), zap.NewNop())

	for i := 0; i < 5; i++ {
		h.Record(ws.ID(), &Entry{Label: fmt.Sprintf("entry %d", i)})
	}

	for i := 4; i >= 2; i-- {
		label, err := h.Undo(ws)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("entry %d", i), label)
	}

	// Entries 0 and 1 were evicted by the depth bound
	_, err := h.Undo(ws)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestHistoryEmptyStacks(t *testing.T) {
	ws := testWorkspace(t)
	h := NewHistory(nil, zap.NewNop())

	_, err := h.Undo(ws)
	assert.True(t, pkgerrors.IsValidation(err))
	_, err = h.Redo(ws)
	assert.True(t, pkgerrors.IsValidation(err))

	assert.False(t, h.CanUndo(ws.ID()))
	assert.False(t, h.CanRedo(ws.ID()))

	_, ok := h.NextUndoLabel(ws.ID())
	assert.False(t, ok)
}

func TestHistoryLabels(t *testing.T) {
	ws := testWorkspace(t)
	h := NewHistory(nil, zap.NewNop())

	h.Record(ws.ID(), &Entry{Label: "Create card"})
	label, ok := h.NextUndoLabel(ws.ID())
	require.True(t, ok)
	assert.Equal(t, "Create card", label)

	_, err := h.Undo(ws)
	require.NoError(t, err)
	label, ok = h.NextRedoLabel(ws.ID())
	require.True(t, ok)
	assert.Equal(t, "Create card", label)
}

func TestHistoryDrop(t *testing.T) {
	ws := testWorkspace(t)
	h := NewHistory(nil, zap.NewNop())

	h.Record(ws.ID(), &Entry{Label: "kept"})
	require.True(t, h.CanUndo(ws.ID()))

	h.Drop(ws.ID())
	assert.False(t, h.CanUndo(ws.ID()))
}
