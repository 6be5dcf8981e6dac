package services

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/entities"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
)

func TestComputePicksTreeForForests(t *testing.T) {
	ws := testWorkspace(t)
	engine := NewLayoutEngine(config.StaticProvider(ws.Config()), zap.NewNop())

	root := rootWithMessages(t, ws, "m0")
	left := branchFrom(t, ws, root, 0, valueobjects.InheritFull)
	right := branchFrom(t, ws, root, 0, valueobjects.InheritFull)

	result := engine.Compute(ws)
	assert.Equal(t, LayoutModeTree, result.Mode)
	require.Len(t, result.Positions, 3)

	// Children sit one rank below their parent
	rootPos := result.Positions[root.ID()]
	leftPos := result.Positions[left.ID()]
	rightPos := result.Positions[right.ID()]
	assert.Greater(t, leftPos.Y, rootPos.Y)
	assert.InDelta(t, leftPos.Y, rightPos.Y, 0.01, "siblings share a rank")
	assert.NotEqual(t, leftPos.X, rightPos.X, "siblings do not stack")
}

func TestComputeFallsBackToSpreadWithMergeNodes(t *testing.T) {
	ws := testWorkspace(t)
	engine := NewLayoutEngine(config.StaticProvider(ws.Config()), zap.NewNop())

	a := rootWithMessages(t, ws, "a")
	b := rootWithMessages(t, ws, "b")
	merge, err := entities.NewMergeCard(
		valueobjects.CardID{}, ws.ID(),
		[]valueobjects.CardID{a.ID(), b.ID()},
		valueobjects.EmptyInheritedContext(),
		valueobjects.NewPosition(0, 0), ws.Config(),
	)
	require.NoError(t, err)
	require.NoError(t, ws.AddCard(merge))

	result := engine.Compute(ws)
	assert.Equal(t, LayoutModeSpread, result.Mode)
	assert.Len(t, result.Positions, 3)
}

func TestComputeIsDeterministic(t *testing.T) {
	ws := testWorkspace(t)
	engine := NewLayoutEngine(config.StaticProvider(ws.Config()), zap.NewNop())

	root := rootWithMessages(t, ws, "m0")
	branchFrom(t, ws, root, 0, valueobjects.InheritFull)
	branchFrom(t, ws, root, 0, valueobjects.InheritFull)

	first := engine.Compute(ws)
	second := engine.Compute(ws)

	require.Equal(t, len(first.Positions), len(second.Positions))
	for id, pos := range first.Positions {
		assert.Equal(t, pos, second.Positions[id])
	}
}

func TestComputeHasChanges(t *testing.T) {
	ws := testWorkspace(t)
	engine := NewLayoutEngine(config.StaticProvider(ws.Config()), zap.NewNop())

	root := rootWithMessages(t, ws, "m0")
	branchFrom(t, ws, root, 0, valueobjects.InheritFull)

	result := engine.Compute(ws)
	require.True(t, result.HasChanges)

	// Apply the computed positions, then a second pass is a no-op
	for _, card := range ws.Cards() {
		card.MoveTo(result.Positions[card.ID()])
	}
	assert.False(t, engine.Compute(ws).HasChanges)
}

func TestComputeCardsNeverOverlap(t *testing.T) {
	ws := testWorkspace(t)
	cfg := ws.Config()
	engine := NewLayoutEngine(config.StaticProvider(cfg), zap.NewNop())

	root := rootWithMessages(t, ws, "m0")
	for i := 0; i < 6; i++ {
		branchFrom(t, ws, root, 0, valueobjects.InheritFull)
	}

	result := engine.Compute(ws)
	type box struct{ x, y float64 }
	var boxes []box
	for _, pos := range result.Positions {
		boxes = append(boxes, box{pos.X, pos.Y})
	}
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			overlapX := boxes[i].x < boxes[j].x+cfg.CardWidth && boxes[j].x < boxes[i].x+cfg.CardWidth
			overlapY := boxes[i].y < boxes[j].y+cfg.CardHeight && boxes[j].y < boxes[i].y+cfg.CardHeight
			assert.False(t, overlapX && overlapY, "cards %d and %d overlap", i, j)
		}
	}
}

func TestBranchPositionIsStablePerCard(t *testing.T) {
	engine := NewLayoutEngine(nil, zap.NewNop())
	source := valueobjects.NewPosition(100, 100)
	id := valueobjects.NewCardID()

	first := engine.BranchPosition(source, id)
	second := engine.BranchPosition(source, id)
	assert.Equal(t, first, second)

	// Always lands offset from the source card itself
	assert.NotEqual(t, source, first)
}

func TestMergePosition(t *testing.T) {
	engine := NewLayoutEngine(nil, zap.NewNop())

	pos := engine.MergePosition([]valueobjects.Position{
		valueobjects.NewPosition(0, 0),
		valueobjects.NewPosition(200, 100),
	})
	assert.InDelta(t, 100, pos.X, 0.01)
	assert.Greater(t, pos.Y, 100.0)

	assert.Equal(t, valueobjects.Position{}, engine.MergePosition(nil))
}

func TestComputeLargeTreeNeverOverlaps(t *testing.T) {
	ws := testWorkspace(t)
	cfg := ws.Config()
	engine := NewLayoutEngine(config.StaticProvider(cfg), zap.NewNop())

	// A jagged sixty-card tree grown from a fixed seed
	rng := rand.New(rand.NewSource(11))
	cards := []*entities.Card{rootWithMessages(t, ws, "m0")}
	for i := 1; i < 60; i++ {
		source := cards[rng.Intn(len(cards))]
		branch := branchFrom(t, ws, source, 0, valueobjects.InheritFull)
		msg, err := valueobjects.NewMessage(valueobjects.RoleUser, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
		require.NoError(t, branch.AppendMessage(msg, cfg))
		cards = append(cards, branch)
	}

	result := engine.Compute(ws)
	require.Equal(t, LayoutModeTree, result.Mode)
	require.Len(t, result.Positions, len(cards))

	type box struct{ x, y float64 }
	var boxes []box
	for _, pos := range result.Positions {
		boxes = append(boxes, box{pos.X, pos.Y})
	}
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			overlapX := boxes[i].x < boxes[j].x+cfg.CardWidth && boxes[j].x < boxes[i].x+cfg.CardWidth
			overlapY := boxes[i].y < boxes[j].y+cfg.CardHeight && boxes[j].y < boxes[i].y+cfg.CardHeight
			assert.False(t, overlapX && overlapY, "cards %d and %d overlap", i, j)
		}
	}
}
