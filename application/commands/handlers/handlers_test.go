package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/application/commands"
	"github.com/modryn-studio/ProjectLoom-sub000/application/commands/bus"
	"github.com/modryn-studio/ProjectLoom-sub000/application/services"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/acl"
	infraconfig "github.com/modryn-studio/ProjectLoom-sub000/infrastructure/config"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/messaging"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/persistence/memory"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

type testEnv struct {
	bus         *bus.CommandBus
	deps        *Deps
	workspaceID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithRules(t, config.StaticProvider(config.DefaultDomainConfig()))
}

func newTestEnvWithRules(t *testing.T, rules config.Provider) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	assistant := acl.NewLocalAssistant()

	deps := &Deps{
		Repo:       memory.NewWorkspaceRepository(nil, rules, logger),
		History:    services.NewHistory(rules, logger),
		Resolver:   services.NewContextResolver(logger),
		Layout:     services.NewLayoutEngine(rules, logger),
		Events:     messaging.NewEventBus(logger),
		Chat:       assistant,
		Summarizer: assistant,
		Config:     rules,
		Logger:     logger,
	}

	b := bus.NewCommandBus()
	require.NoError(t, RegisterAll(b, deps))

	env := &testEnv{bus: b, deps: deps, workspaceID: uuid.New().String()}
	require.NoError(t, b.Send(context.Background(), commands.CreateWorkspaceCommand{
		WorkspaceID: env.workspaceID,
		Name:        "Handler tests",
	}))
	return env
}

func (e *testEnv) send(t *testing.T, cmd bus.Command) {
	t.Helper()
	require.NoError(t, e.bus.Send(context.Background(), cmd))
}

func (e *testEnv) createRoot(t *testing.T, messages ...string) string {
	t.Helper()
	id := uuid.New().String()
	e.send(t, commands.CreateRootCardCommand{
		WorkspaceID: e.workspaceID,
		CardID:      id,
		X:           0, Y: 0,
	})
	for _, text := range messages {
		e.send(t, commands.AppendMessageCommand{
			WorkspaceID: e.workspaceID,
			CardID:      id,
			Role:        "user",
			Text:        text,
		})
	}
	return id
}

func (e *testEnv) card(t *testing.T, id string) cardReader {
	t.Helper()
	ws, err := e.deps.workspace(context.Background(), e.workspaceID)
	require.NoError(t, err)
	cardID, err := valueobjects.NewCardIDFromString(id)
	require.NoError(t, err)
	card, err := ws.Card(cardID)
	require.NoError(t, err)
	return cardReader{card.Title(), card.MessageCount(), card.ParentCount(), card.IsMergeNode()}
}

type cardReader struct {
	title        string
	messageCount int
	parentCount  int
	mergeNode    bool
}

func (e *testEnv) hasCard(t *testing.T, id string) bool {
	t.Helper()
	ws, err := e.deps.workspace(context.Background(), e.workspaceID)
	require.NoError(t, err)
	cardID, err := valueobjects.NewCardIDFromString(id)
	require.NoError(t, err)
	return ws.HasCard(cardID)
}

func TestCreateRootCard(t *testing.T) {
	env := newTestEnv(t)
	id := env.createRoot(t)

	card := env.card(t, id)
	assert.Equal(t, "New conversation", card.title)
	assert.Equal(t, 0, card.parentCount)
}

func TestBranchCard(t *testing.T) {
	env := newTestEnv(t)
	source := env.createRoot(t, "first", "second", "third")

	branchID := uuid.New().String()
	env.send(t, commands.BranchCardCommand{
		WorkspaceID:     env.workspaceID,
		CardID:          branchID,
		SourceCardID:    source,
		MessageIndex:    1,
		InheritanceMode: "full",
		BranchReason:    "Try another angle",
	})

	card := env.card(t, branchID)
	assert.Equal(t, "Try another angle", card.title)
	assert.Equal(t, 1, card.parentCount)
	assert.False(t, card.mergeNode)
}

func TestBranchFromEmptyCardFails(t *testing.T) {
	env := newTestEnv(t)
	source := env.createRoot(t)

	err := env.bus.Send(context.Background(), commands.BranchCardCommand{
		WorkspaceID:  env.workspaceID,
		CardID:       uuid.New().String(),
		SourceCardID: source,
		MessageIndex: 0,
	})
	assert.True(t, pkgerrors.IsEmptySource(err))
}

func TestMergeCards(t *testing.T) {
	env := newTestEnv(t)
	a := env.createRoot(t, "alpha")
	b := env.createRoot(t, "bravo")

	mergeID := uuid.New().String()
	env.send(t, commands.MergeCardsCommand{
		WorkspaceID:   env.workspaceID,
		CardID:        mergeID,
		ParentCardIDs: []string{a, b},
	})

	card := env.card(t, mergeID)
	assert.True(t, card.mergeNode)
	assert.Equal(t, 2, card.parentCount)
	assert.Equal(t, "Merged conversation", card.title)
}

func TestMergeOverCeilingFails(t *testing.T) {
	env := newTestEnv(t)
	max := env.deps.rules().MaxMergeParents

	parents := make([]string, max+1)
	for i := range parents {
		parents[i] = env.createRoot(t, "p")
	}

	err := env.bus.Send(context.Background(), commands.MergeCardsCommand{
		WorkspaceID:   env.workspaceID,
		CardID:        uuid.New().String(),
		ParentCardIDs: parents,
	})
	require.True(t, pkgerrors.IsMergeLimit(err))
	assert.Equal(t, pkgerrors.CodeUseHierarchicalMerge, pkgerrors.GetAppError(err).Code)
}

func TestReloadedRulesGovernExistingWorkspaces(t *testing.T) {
	dynamic := infraconfig.NewDynamicConfig(nil)
	env := newTestEnvWithRules(t, dynamic)

	a := env.createRoot(t, "alpha")
	b := env.createRoot(t, "bravo")
	c := env.createRoot(t, "charlie")

	// Allowed under the default ceiling of five parents
	env.send(t, commands.MergeCardsCommand{
		WorkspaceID:   env.workspaceID,
		CardID:        uuid.New().String(),
		ParentCardIDs: []string{a, b, c},
	})

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxMergeParents: 2\n"), 0o600))
	require.NoError(t, dynamic.LoadFile(path))

	d := env.createRoot(t, "delta")
	e := env.createRoot(t, "echo")
	f := env.createRoot(t, "foxtrot")

	// The same merge shape is now over the reloaded ceiling, even
	// though the workspace aggregate predates the reload
	err := env.bus.Send(context.Background(), commands.MergeCardsCommand{
		WorkspaceID:   env.workspaceID,
		CardID:        uuid.New().String(),
		ParentCardIDs: []string{d, e, f},
	})
	require.True(t, pkgerrors.IsMergeLimit(err))
	assert.Equal(t, pkgerrors.CodeUseHierarchicalMerge, pkgerrors.GetAppError(err).Code)
}

func TestAddMergeParentRejectsCycle(t *testing.T) {
	env := newTestEnv(t)
	source := env.createRoot(t, "origin")

	branchID := uuid.New().String()
	env.send(t, commands.BranchCardCommand{
		WorkspaceID:  env.workspaceID,
		CardID:       branchID,
		SourceCardID: source,
		MessageIndex: 0,
	})

	err := env.bus.Send(context.Background(), commands.AddMergeParentCommand{
		WorkspaceID:  env.workspaceID,
		CardID:       source,
		ParentCardID: branchID,
	})
	assert.True(t, pkgerrors.IsCycle(err))
}

func TestDeleteCardDetachesChildren(t *testing.T) {
	env := newTestEnv(t)
	source := env.createRoot(t, "origin")

	branchID := uuid.New().String()
	env.send(t, commands.BranchCardCommand{
		WorkspaceID:  env.workspaceID,
		CardID:       branchID,
		SourceCardID: source,
		MessageIndex: 0,
	})

	env.send(t, commands.DeleteCardCommand{
		WorkspaceID: env.workspaceID,
		CardID:      source,
	})

	assert.False(t, env.hasCard(t, source))
	assert.True(t, env.hasCard(t, branchID))
	assert.Equal(t, 0, env.card(t, branchID).parentCount)
}

func TestSendMessageAppendsBothSides(t *testing.T) {
	env := newTestEnv(t)
	id := env.createRoot(t)

	env.send(t, commands.SendMessageCommand{
		WorkspaceID: env.workspaceID,
		CardID:      id,
		Text:        "hello there",
	})

	assert.Equal(t, 2, env.card(t, id).messageCount)
}

func TestUpdateCard(t *testing.T) {
	env := newTestEnv(t)
	id := env.createRoot(t)

	title := "Renamed by hand"
	env.send(t, commands.UpdateCardCommand{
		WorkspaceID: env.workspaceID,
		CardID:      id,
		Title:       &title,
	})
	assert.Equal(t, title, env.card(t, id).title)
}

func TestFailedUpdateLeavesCardUntouched(t *testing.T) {
	env := newTestEnv(t)
	id := env.createRoot(t)

	title := "Partially renamed"
	tags := []string{"ok", "   "}
	cmd := commands.UpdateCardCommand{
		WorkspaceID: env.workspaceID,
		CardID:      id,
		Title:       &title,
		Tags:        &tags,
	}
	assert.True(t, pkgerrors.IsValidation(cmd.Validate()))

	// Even when validation is bypassed, a failure mid-edit must not
	// leave the rename applied on the live aggregate
	err := NewUpdateCardHandler(env.deps).Handle(context.Background(), cmd)
	require.Error(t, err)
	assert.Equal(t, "New conversation", env.card(t, id).title)
}

func TestUndoRedoFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.createRoot(t)

	title := "Renamed"
	env.send(t, commands.UpdateCardCommand{
		WorkspaceID: env.workspaceID,
		CardID:      id,
		Title:       &title,
	})
	require.Equal(t, "Renamed", env.card(t, id).title)

	env.send(t, commands.UndoCommand{WorkspaceID: env.workspaceID})
	assert.Equal(t, "New conversation", env.card(t, id).title)

	env.send(t, commands.RedoCommand{WorkspaceID: env.workspaceID})
	assert.Equal(t, "Renamed", env.card(t, id).title)

	// Undo back to before the card existed
	env.send(t, commands.UndoCommand{WorkspaceID: env.workspaceID})
	env.send(t, commands.UndoCommand{WorkspaceID: env.workspaceID})
	assert.False(t, env.hasCard(t, id))

	err := env.bus.Send(ctx, commands.UndoCommand{WorkspaceID: env.workspaceID})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestUndoDeleteRestoresCardAndParents(t *testing.T) {
	env := newTestEnv(t)
	source := env.createRoot(t, "origin")

	branchID := uuid.New().String()
	env.send(t, commands.BranchCardCommand{
		WorkspaceID:  env.workspaceID,
		CardID:       branchID,
		SourceCardID: source,
		MessageIndex: 0,
	})

	env.send(t, commands.DeleteCardCommand{
		WorkspaceID: env.workspaceID,
		CardID:      source,
	})
	require.Equal(t, 0, env.card(t, branchID).parentCount)

	env.send(t, commands.UndoCommand{WorkspaceID: env.workspaceID})
	assert.True(t, env.hasCard(t, source))
	assert.Equal(t, 1, env.card(t, branchID).parentCount)
}

func TestApplyLayoutRecordsOnlyRealMoves(t *testing.T) {
	env := newTestEnv(t)
	env.createRoot(t, "a")
	env.createRoot(t, "b")

	env.send(t, commands.ApplyLayoutCommand{WorkspaceID: env.workspaceID})

	// A second pass finds everything already in place and records
	// nothing, so a single undo reverts the first pass
	env.send(t, commands.ApplyLayoutCommand{WorkspaceID: env.workspaceID})

	wsID, err := valueobjects.NewWorkspaceIDFromString(env.workspaceID)
	require.NoError(t, err)
	label, ok := env.deps.History.NextUndoLabel(wsID)
	require.True(t, ok)
	assert.Equal(t, "Apply layout", label)
}

func TestWorkspaceLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.send(t, commands.SetInstructionsCommand{
		WorkspaceID:  env.workspaceID,
		Instructions: "Be brief",
	})
	env.send(t, commands.AddKnowledgeDocumentCommand{
		WorkspaceID: env.workspaceID,
		Title:       "Glossary",
		Markdown:    "- term: meaning",
	})

	ws, err := env.deps.workspace(ctx, env.workspaceID)
	require.NoError(t, err)
	assert.Equal(t, "Be brief", ws.Instructions())
	assert.Len(t, ws.Documents(), 1)

	env.send(t, commands.DeleteWorkspaceCommand{WorkspaceID: env.workspaceID})
	_, err = env.deps.workspace(ctx, env.workspaceID)
	assert.True(t, pkgerrors.IsNotFound(err))
}
