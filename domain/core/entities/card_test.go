package entities

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

func newRoot(t *testing.T) *Card {
	t.Helper()
	card, err := NewRootCard(valueobjects.CardID{}, valueobjects.NewWorkspaceID(), valueobjects.NewPosition(10, 20))
	require.NoError(t, err)
	return card
}

func TestNewRootCard(t *testing.T) {
	card := newRoot(t)

	assert.Equal(t, "New conversation", card.Title())
	assert.True(t, card.IsAutoTitle())
	assert.False(t, card.IsMergeNode())
	assert.Equal(t, 0, card.ParentCount())
	assert.Equal(t, -1, card.BranchCut())
	assert.Equal(t, valueobjects.InheritFull, card.InheritanceMode())

	_, ok := card.PrimaryParentID()
	assert.False(t, ok)

	_, err := NewRootCard(valueobjects.CardID{}, valueobjects.WorkspaceID{}, valueobjects.NewPosition(0, 0))
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestNewBranchCard(t *testing.T) {
	wsID := valueobjects.NewWorkspaceID()
	source := valueobjects.NewCardID()

	t.Run("reason becomes the title", func(t *testing.T) {
		bp, err := valueobjects.NewBranchPoint(source, 2, valueobjects.InheritFull, "Explore pricing")
		require.NoError(t, err)
		card, err := NewBranchCard(valueobjects.CardID{}, wsID, bp, valueobjects.EmptyInheritedContext(), valueobjects.NewPosition(0, 0))
		require.NoError(t, err)

		assert.Equal(t, "Explore pricing", card.Title())
		assert.False(t, card.IsAutoTitle())
		assert.Equal(t, 2, card.BranchCut())
		assert.False(t, card.IsMergeNode())

		primary, ok := card.PrimaryParentID()
		require.True(t, ok)
		assert.True(t, primary.Equals(source))
	})

	t.Run("missing reason falls back to an auto title", func(t *testing.T) {
		bp, err := valueobjects.NewBranchPoint(source, 0, valueobjects.InheritSummary, "")
		require.NoError(t, err)
		card, err := NewBranchCard(valueobjects.CardID{}, wsID, bp, valueobjects.EmptyInheritedContext(), valueobjects.NewPosition(0, 0))
		require.NoError(t, err)

		assert.Equal(t, "Branch", card.Title())
		assert.True(t, card.IsAutoTitle())
		assert.Equal(t, valueobjects.InheritSummary, card.InheritanceMode())
	})
}

func TestNewMergeCard(t *testing.T) {
	wsID := valueobjects.NewWorkspaceID()
	cfg := config.DefaultDomainConfig()

	parents := func(n int) []valueobjects.CardID {
		out := make([]valueobjects.CardID, n)
		for i := range out {
			out[i] = valueobjects.NewCardID()
		}
		return out
	}

	t.Run("combines lineages in attachment order", func(t *testing.T) {
		ids := parents(3)
		card, err := NewMergeCard(valueobjects.CardID{}, wsID, ids, valueobjects.EmptyInheritedContext(), valueobjects.NewPosition(0, 0), cfg)
		require.NoError(t, err)

		assert.True(t, card.IsMergeNode())
		assert.Equal(t, "Merged conversation", card.Title())
		assert.Equal(t, -1, card.BranchCut())
		got := card.ParentCardIDs()
		require.Len(t, got, 3)
		for i := range ids {
			assert.True(t, got[i].Equals(ids[i]))
		}
	})

	t.Run("needs at least two sources", func(t *testing.T) {
		_, err := NewMergeCard(valueobjects.CardID{}, wsID, parents(1), valueobjects.EmptyInheritedContext(), valueobjects.NewPosition(0, 0), cfg)
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("rejects more sources than the ceiling", func(t *testing.T) {
		_, err := NewMergeCard(valueobjects.CardID{}, wsID, parents(cfg.MaxMergeParents+1), valueobjects.EmptyInheritedContext(), valueobjects.NewPosition(0, 0), cfg)
		assert.True(t, pkgerrors.IsMergeLimit(err))
	})

	t.Run("rejects duplicate sources", func(t *testing.T) {
		id := valueobjects.NewCardID()
		_, err := NewMergeCard(valueobjects.CardID{}, wsID, []valueobjects.CardID{id, id}, valueobjects.EmptyInheritedContext(), valueobjects.NewPosition(0, 0), cfg)
		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestAttachParent(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	card := newRoot(t)

	first := valueobjects.NewCardID()
	require.NoError(t, card.AttachParent(first, cfg))
	assert.False(t, card.IsMergeNode(), "one parent is a branch, not a merge")

	require.NoError(t, card.AttachParent(valueobjects.NewCardID(), cfg))
	assert.True(t, card.IsMergeNode())

	t.Run("self reference", func(t *testing.T) {
		err := card.AttachParent(card.ID(), cfg)
		assert.True(t, pkgerrors.IsSelfReference(err))
	})

	t.Run("duplicate", func(t *testing.T) {
		err := card.AttachParent(first, cfg)
		assert.True(t, pkgerrors.IsConflict(err))
	})

	t.Run("ceiling", func(t *testing.T) {
		for card.ParentCount() < cfg.MaxMergeParents {
			require.NoError(t, card.AttachParent(valueobjects.NewCardID(), cfg))
		}
		err := card.AttachParent(valueobjects.NewCardID(), cfg)
		require.True(t, pkgerrors.IsMergeLimit(err))
		assert.Equal(t, cfg.MaxMergeParents, card.ParentCount())
	})
}

func TestDetachParent(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	card := newRoot(t)
	a := valueobjects.NewCardID()
	b := valueobjects.NewCardID()
	require.NoError(t, card.AttachParent(a, cfg))
	require.NoError(t, card.AttachParent(b, cfg))
	require.True(t, card.IsMergeNode())

	require.NoError(t, card.DetachParent(a))
	assert.False(t, card.IsMergeNode())

	primary, ok := card.PrimaryParentID()
	require.True(t, ok)
	assert.True(t, primary.Equals(b))

	assert.True(t, pkgerrors.IsNotFound(card.DetachParent(a)))
}

func TestRename(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	card := newRoot(t)

	require.NoError(t, card.Rename("Budget discussion", cfg))
	assert.Equal(t, "Budget discussion", card.Title())
	assert.False(t, card.IsAutoTitle())

	assert.True(t, pkgerrors.IsValidation(card.Rename("   ", cfg)))
	assert.True(t, pkgerrors.IsValidation(card.Rename(strings.Repeat("x", cfg.MaxTitleLength+1), cfg)))
}

func TestAppendMessage(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxMessagesPerCard = 2
	card := newRoot(t)

	msg, err := valueobjects.NewMessage(valueobjects.RoleUser, "first")
	require.NoError(t, err)
	require.NoError(t, card.AppendMessage(msg, cfg))
	require.NoError(t, card.AppendMessage(msg, cfg))
	assert.Equal(t, 2, card.MessageCount())

	assert.True(t, pkgerrors.IsValidation(card.AppendMessage(msg, cfg)))
}

func TestTags(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	card := newRoot(t)

	require.NoError(t, card.AddTag("pricing", cfg))
	require.NoError(t, card.AddTag("pricing", cfg)) // idempotent
	assert.Equal(t, []string{"pricing"}, card.Tags())

	require.NoError(t, card.RemoveTag("pricing"))
	assert.Empty(t, card.Tags())
	assert.True(t, pkgerrors.IsNotFound(card.RemoveTag("pricing")))
}

func TestCardSnapshotRoundTrip(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	card := newRoot(t)
	require.NoError(t, card.Rename("Kept", cfg))
	msg, err := valueobjects.NewMessage(valueobjects.RoleAssistant, "reply")
	require.NoError(t, err)
	require.NoError(t, card.AppendMessage(msg, cfg))
	require.NoError(t, card.AttachParent(valueobjects.NewCardID(), cfg))

	restored, err := ReconstructCard(card.Snapshot())
	require.NoError(t, err)

	assert.True(t, restored.ID().Equals(card.ID()))
	assert.Equal(t, card.Title(), restored.Title())
	assert.Equal(t, card.MessageCount(), restored.MessageCount())
	assert.Equal(t, card.ParentCount(), restored.ParentCount())
	assert.Equal(t, card.BranchCut(), restored.BranchCut())
	assert.Equal(t, card.Version(), restored.Version())
	assert.Empty(t, restored.GetUncommittedEvents())
}
