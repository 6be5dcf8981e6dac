package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/aggregates"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/entities"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

func testWorkspace(t *testing.T) *aggregates.Workspace {
	t.Helper()
	ws, err := aggregates.NewWorkspace(valueobjects.WorkspaceID{}, "Resolver tests", nil)
	require.NoError(t, err)
	return ws
}

func rootWithMessages(t *testing.T, ws *aggregates.Workspace, texts ...string) *entities.Card {
	t.Helper()
	card, err := entities.NewRootCard(valueobjects.CardID{}, ws.ID(), valueobjects.NewPosition(0, 0))
	require.NoError(t, err)
	require.NoError(t, ws.AddCard(card))
	for _, text := range texts {
		msg, err := valueobjects.NewMessage(valueobjects.RoleUser, text)
		require.NoError(t, err)
		require.NoError(t, card.AppendMessage(msg, ws.Config()))
	}
	return card
}

func branchFrom(t *testing.T, ws *aggregates.Workspace, source *entities.Card, cut int, mode valueobjects.InheritanceMode) *entities.Card {
	t.Helper()
	bp, err := valueobjects.NewBranchPoint(source.ID(), cut, mode, "")
	require.NoError(t, err)
	resolver := NewContextResolver(zap.NewNop())
	inherited, err := resolver.ResolveUpTo(ws, source.ID(), cut)
	require.NoError(t, err)
	card, err := entities.NewBranchCard(valueobjects.CardID{}, ws.ID(), bp, inherited, valueobjects.NewPosition(0, 100))
	require.NoError(t, err)
	require.NoError(t, ws.AddCard(card))
	return card
}

func segmentTexts(segments []valueobjects.ContextSegment) []string {
	var out []string
	for _, seg := range segments {
		for _, msg := range seg.Messages {
			out = append(out, msg.Text)
		}
	}
	return out
}

func TestResolveFullLineage(t *testing.T) {
	ws := testWorkspace(t)
	resolver := NewContextResolver(zap.NewNop())

	root := rootWithMessages(t, ws, "m0", "m1", "m2")
	branch := branchFrom(t, ws, root, 1, valueobjects.InheritFull)

	ctx, err := resolver.Resolve(ws, branch.ID())
	require.NoError(t, err)

	// Cut at index 1 keeps messages 0..1 and drops m2
	assert.Equal(t, []string{"m0", "m1"}, segmentTexts(ctx.Segments()))
}

func TestResolveGrandchildLineage(t *testing.T) {
	ws := testWorkspace(t)
	resolver := NewContextResolver(zap.NewNop())

	root := rootWithMessages(t, ws, "r0", "r1")
	child := branchFrom(t, ws, root, 1, valueobjects.InheritFull)
	msg, err := valueobjects.NewMessage(valueobjects.RoleAssistant, "c0")
	require.NoError(t, err)
	require.NoError(t, child.AppendMessage(msg, ws.Config()))

	grand := branchFrom(t, ws, child, 0, valueobjects.InheritFull)

	ctx, err := resolver.Resolve(ws, grand.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"r0", "r1", "c0"}, segmentTexts(ctx.Segments()))
}

func TestResolveSummaryMode(t *testing.T) {
	ws := testWorkspace(t)
	resolver := NewContextResolver(zap.NewNop())

	root := rootWithMessages(t, ws, "long discussion")
	branch := branchFrom(t, ws, root, 0, valueobjects.InheritSummary)
	branch.SetContextSummary("they discussed pricing")

	ctx, err := resolver.Resolve(ws, branch.ID())
	require.NoError(t, err)

	segs := ctx.Segments()
	require.Len(t, segs, 1)
	assert.Equal(t, valueobjects.InheritSummary, segs[0].Mode)
	assert.Equal(t, "they discussed pricing", segs[0].Summary)
	assert.Empty(t, segs[0].Messages)
}

func TestResolveCustomMode(t *testing.T) {
	ws := testWorkspace(t)
	resolver := NewContextResolver(zap.NewNop())

	root := rootWithMessages(t, ws, "m0", "m1", "m2")
	bp, err := valueobjects.NewBranchPoint(root.ID(), 2, valueobjects.InheritCustom, "")
	require.NoError(t, err)
	bp.CustomSelection = []int{0, 2}
	inherited, err := resolver.ResolveUpTo(ws, root.ID(), 2)
	require.NoError(t, err)
	branch, err := entities.NewBranchCard(valueobjects.CardID{}, ws.ID(), bp, inherited, valueobjects.NewPosition(0, 100))
	require.NoError(t, err)
	require.NoError(t, ws.AddCard(branch))

	ctx, err := resolver.Resolve(ws, branch.ID())
	require.NoError(t, err)

	segs := ctx.Segments()
	require.Len(t, segs, 1)
	assert.Equal(t, valueobjects.InheritCustom, segs[0].Mode)
	assert.Equal(t, []string{"m0", "m2"}, segmentTexts(segs))
}

func TestResolveWorkspaceInstructionsComeFirst(t *testing.T) {
	ws := testWorkspace(t)
	ws.SetInstructions("Answer tersely")
	resolver := NewContextResolver(zap.NewNop())

	root := rootWithMessages(t, ws, "m0")
	branch := branchFrom(t, ws, root, 0, valueobjects.InheritFull)

	ctx, err := resolver.Resolve(ws, branch.ID())
	require.NoError(t, err)

	segs := ctx.Segments()
	require.NotEmpty(t, segs)
	assert.Equal(t, valueobjects.InheritSummary, segs[0].Mode)
	assert.Equal(t, "Answer tersely", segs[0].Summary)
}

func TestResolveMergeConcatenatesInAttachmentOrder(t *testing.T) {
	ws := testWorkspace(t)
	resolver := NewContextResolver(zap.NewNop())

	a := rootWithMessages(t, ws, "a0")
	b := rootWithMessages(t, ws, "b0")
	merge, err := entities.NewMergeCard(
		valueobjects.CardID{}, ws.ID(),
		[]valueobjects.CardID{a.ID(), b.ID()},
		resolver.ResolveParents(ws, []valueobjects.CardID{a.ID(), b.ID()}, -1),
		valueobjects.NewPosition(0, 200), ws.Config(),
	)
	require.NoError(t, err)
	require.NoError(t, ws.AddCard(merge))

	ctx, err := resolver.Resolve(ws, merge.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"a0", "b0"}, segmentTexts(ctx.Segments()))
}

func TestResolveMergeAppliesCutOnlyToPrimaryParent(t *testing.T) {
	ws := testWorkspace(t)
	resolver := NewContextResolver(zap.NewNop())

	source := rootWithMessages(t, ws, "s0", "s1", "s2")
	branch := branchFrom(t, ws, source, 0, valueobjects.InheritFull)

	// Promote the branch to a merge by attaching a second parent with
	// its own transcript
	other := rootWithMessages(t, ws, "o0", "o1")
	_, err := ws.AddParent(branch.ID(), other.ID())
	require.NoError(t, err)

	ctx, err := resolver.Resolve(ws, branch.ID())
	require.NoError(t, err)

	// The branch cut truncates only the original source; the attached
	// parent contributes everything
	assert.Equal(t, []string{"s0", "o0", "o1"}, segmentTexts(ctx.Segments()))
}

func TestResolveUpToBounds(t *testing.T) {
	ws := testWorkspace(t)
	resolver := NewContextResolver(zap.NewNop())

	empty := rootWithMessages(t, ws)
	_, err := resolver.ResolveUpTo(ws, empty.ID(), 0)
	assert.True(t, pkgerrors.IsEmptySource(err))

	full := rootWithMessages(t, ws, "m0")
	_, err = resolver.ResolveUpTo(ws, full.ID(), 5)
	assert.True(t, pkgerrors.IsEmptySource(err))

	_, err = resolver.ResolveUpTo(ws, valueobjects.NewCardID(), 0)
	assert.True(t, pkgerrors.IsNotFound(err))
}
