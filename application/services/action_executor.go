package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/application/commands"
	"github.com/modryn-studio/ProjectLoom-sub000/application/commands/bus"
	"github.com/modryn-studio/ProjectLoom-sub000/application/ports"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/actions"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// ActionExecutor turns agent-proposed actions into graph commands. It
// is the only path by which automated suggestions mutate a workspace,
// so every action goes through the same validation and history capture
// as a user edit.
type ActionExecutor struct {
	bus    *bus.CommandBus
	repo   ports.WorkspaceRepository
	logger *zap.Logger
}

// NewActionExecutor creates an executor dispatching on the given bus
func NewActionExecutor(b *bus.CommandBus, repo ports.WorkspaceRepository, logger *zap.Logger) *ActionExecutor {
	return &ActionExecutor{bus: b, repo: repo, logger: logger}
}

// Execute applies one action to the workspace and returns the id of any
// card it created
func (e *ActionExecutor) Execute(ctx context.Context, workspaceID valueobjects.WorkspaceID, action actions.Action) (valueobjects.CardID, error) {
	e.logger.Info("executing action",
		zap.String("workspaceId", workspaceID.String()),
		zap.String("kind", string(action.Kind())),
		zap.String("description", action.Describe()),
	)

	switch a := action.(type) {
	case actions.DeleteCard:
		return valueobjects.CardID{}, e.bus.Send(ctx, commands.DeleteCardCommand{
			WorkspaceID: workspaceID.String(),
			CardID:      a.CardID,
		})

	case actions.RenameCard:
		title := a.NewTitle
		return valueobjects.CardID{}, e.bus.Send(ctx, commands.UpdateCardCommand{
			WorkspaceID: workspaceID.String(),
			CardID:      a.CardID,
			Title:       &title,
		})

	case actions.CreateBranch:
		cut, err := e.latestMessageIndex(ctx, workspaceID, a.ParentCardID)
		if err != nil {
			return valueobjects.CardID{}, err
		}
		newID := valueobjects.NewCardID()
		return newID, e.bus.Send(ctx, commands.BranchCardCommand{
			WorkspaceID:  workspaceID.String(),
			CardID:       newID.String(),
			SourceCardID: a.ParentCardID,
			MessageIndex: cut,
			BranchReason: a.BranchReason,
		})

	case actions.CreateDocument:
		return valueobjects.CardID{}, e.bus.Send(ctx, commands.AddKnowledgeDocumentCommand{
			WorkspaceID: workspaceID.String(),
			Title:       a.Title,
			Markdown:    a.Markdown,
		})
	}

	return valueobjects.CardID{}, pkgerrors.NewValidationError("unknown action kind: " + string(action.Kind()))
}

// latestMessageIndex finds the cut point for a branch proposed without
// one, i.e. the parent's final message
func (e *ActionExecutor) latestMessageIndex(ctx context.Context, workspaceID valueobjects.WorkspaceID, cardID string) (int, error) {
	id, err := valueobjects.NewCardIDFromString(cardID)
	if err != nil {
		return 0, err
	}
	ws, err := e.repo.GetByID(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	card, err := ws.Card(id)
	if err != nil {
		return 0, err
	}
	if card.MessageCount() == 0 {
		return 0, pkgerrors.NewEmptySourceError(cardID, 0, 0)
	}
	return card.MessageCount() - 1, nil
}
