package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/application/commands"
	"github.com/modryn-studio/ProjectLoom-sub000/application/commands/bus"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/aggregates"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/observability"
)

// CreateWorkspaceHandler creates workspaces
type CreateWorkspaceHandler struct {
	deps *Deps
}

// NewCreateWorkspaceHandler creates the handler
func NewCreateWorkspaceHandler(deps *Deps) *CreateWorkspaceHandler {
	return &CreateWorkspaceHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *CreateWorkspaceHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.CreateWorkspaceCommand)
	if !ok {
		return pkgerrors.NewValidationError("unexpected command type")
	}

	wsID, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID)
	if err != nil {
		return err
	}
	ws, err := aggregates.NewWorkspace(wsID, c.Name, h.deps.rules())
	if err != nil {
		return err
	}

	h.deps.Logger.Info("workspace created",
		zap.String("workspaceId", ws.ID().String()),
		zap.String("name", c.Name),
	)
	return h.deps.commit(ctx, ws, nil)
}

// DeleteWorkspaceHandler removes a workspace together with its undo log
type DeleteWorkspaceHandler struct {
	deps *Deps
}

// NewDeleteWorkspaceHandler creates the handler
func NewDeleteWorkspaceHandler(deps *Deps) *DeleteWorkspaceHandler {
	return &DeleteWorkspaceHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *DeleteWorkspaceHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.DeleteWorkspaceCommand)
	if !ok {
		return pkgerrors.NewValidationError("unexpected command type")
	}

	wsID, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID)
	if err != nil {
		return err
	}
	if err := h.deps.Repo.Delete(ctx, wsID); err != nil {
		return err
	}
	h.deps.History.Drop(wsID)
	observability.DropWorkspace(c.WorkspaceID)

	h.deps.Logger.Info("workspace deleted", zap.String("workspaceId", c.WorkspaceID))
	return nil
}

// SetInstructionsHandler updates workspace-level system instructions
type SetInstructionsHandler struct {
	deps *Deps
}

// NewSetInstructionsHandler creates the handler
func NewSetInstructionsHandler(deps *Deps) *SetInstructionsHandler {
	return &SetInstructionsHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *SetInstructionsHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.SetInstructionsCommand)
	if !ok {
		return pkgerrors.NewValidationError("unexpected command type")
	}

	ws, err := h.deps.workspace(ctx, c.WorkspaceID)
	if err != nil {
		return err
	}
	ws.SetInstructions(c.Instructions)
	return h.deps.commit(ctx, ws, nil)
}

// AddKnowledgeDocumentHandler attaches reference material to a workspace
type AddKnowledgeDocumentHandler struct {
	deps *Deps
}

// NewAddKnowledgeDocumentHandler creates the handler
func NewAddKnowledgeDocumentHandler(deps *Deps) *AddKnowledgeDocumentHandler {
	return &AddKnowledgeDocumentHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *AddKnowledgeDocumentHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.AddKnowledgeDocumentCommand)
	if !ok {
		return pkgerrors.NewValidationError("unexpected command type")
	}

	ws, err := h.deps.workspace(ctx, c.WorkspaceID)
	if err != nil {
		return err
	}
	if err := ws.AddDocument(aggregates.NewKnowledgeDocument(c.Title, c.Markdown)); err != nil {
		return err
	}
	return h.deps.commit(ctx, ws, nil)
}
