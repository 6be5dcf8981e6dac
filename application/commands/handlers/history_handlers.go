package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/application/commands"
	"github.com/modryn-studio/ProjectLoom-sub000/application/commands/bus"
	"github.com/modryn-studio/ProjectLoom-sub000/application/services"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/events"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// ApplyLayoutHandler recomputes the whole canvas. A pass that moves
// nothing records no history entry, so spamming the layout button does
// not bury the user's real undo history.
type ApplyLayoutHandler struct {
	deps *Deps
}

// NewApplyLayoutHandler creates the handler
func NewApplyLayoutHandler(deps *Deps) *ApplyLayoutHandler {
	return &ApplyLayoutHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *ApplyLayoutHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.ApplyLayoutCommand)
	if !ok {
		return pkgerrors.NewValidationError("unexpected command type")
	}

	ws, err := h.deps.workspace(ctx, c.WorkspaceID)
	if err != nil {
		return err
	}

	result := h.deps.Layout.Compute(ws)
	if !result.HasChanges {
		return nil
	}

	var ids []valueobjects.CardID
	for _, card := range ws.Cards() {
		ids = append(ids, card.ID())
	}
	pre := snapshots(ws, ids...)

	moved := 0
	for id, pos := range result.Positions {
		card, err := ws.Card(id)
		if err != nil {
			continue
		}
		if !card.Position().Equals(pos) {
			moved++
		}
		card.MoveTo(pos)
	}
	ws.RecordLayoutApplied(string(result.Mode), moved)

	entry := &services.Entry{
		Label: "Apply layout",
		Pre:   pre,
		Post:  snapshots(ws, ids...),
	}
	return h.deps.commit(ctx, ws, entry)
}

// UndoHandler reverts the latest recorded mutation
type UndoHandler struct {
	deps *Deps
}

// NewUndoHandler creates the handler
func NewUndoHandler(deps *Deps) *UndoHandler {
	return &UndoHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *UndoHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.UndoCommand)
	if !ok {
		return pkgerrors.NewValidationError("unexpected command type")
	}

	ws, err := h.deps.workspace(ctx, c.WorkspaceID)
	if err != nil {
		return err
	}
	label, err := h.deps.History.Undo(ws)
	if err != nil {
		return err
	}
	if err := h.deps.commit(ctx, ws, nil); err != nil {
		return err
	}

	h.deps.Events.Publish(ctx, events.NewHistoryReverted(ws.ID(), "undo", label, time.Now()))
	h.deps.Logger.Info("mutation undone",
		zap.String("workspaceId", c.WorkspaceID),
		zap.String("label", label),
	)
	return nil
}

// RedoHandler re-applies the latest undone mutation
type RedoHandler struct {
	deps *Deps
}

// NewRedoHandler creates the handler
func NewRedoHandler(deps *Deps) *RedoHandler {
	return &RedoHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *RedoHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.RedoCommand)
	if !ok {
		return pkgerrors.NewValidationError("unexpected command type")
	}

	ws, err := h.deps.workspace(ctx, c.WorkspaceID)
	if err != nil {
		return err
	}
	label, err := h.deps.History.Redo(ws)
	if err != nil {
		return err
	}
	if err := h.deps.commit(ctx, ws, nil); err != nil {
		return err
	}

	h.deps.Events.Publish(ctx, events.NewHistoryReverted(ws.ID(), "redo", label, time.Now()))
	h.deps.Logger.Info("mutation redone",
		zap.String("workspaceId", c.WorkspaceID),
		zap.String("label", label),
	)
	return nil
}
