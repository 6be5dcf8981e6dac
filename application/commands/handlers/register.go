package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/application/commands"
	"github.com/modryn-studio/ProjectLoom-sub000/application/commands/bus"
)

// RegisterAll wires every command to its handler on the bus
func RegisterAll(b *bus.CommandBus, deps *Deps) error {
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateWorkspaceCommand{}, NewCreateWorkspaceHandler(deps)},
		{commands.DeleteWorkspaceCommand{}, NewDeleteWorkspaceHandler(deps)},
		{commands.SetInstructionsCommand{}, NewSetInstructionsHandler(deps)},
		{commands.AddKnowledgeDocumentCommand{}, NewAddKnowledgeDocumentHandler(deps)},
		{commands.CreateRootCardCommand{}, NewCreateRootCardHandler(deps)},
		{commands.BranchCardCommand{}, NewBranchCardHandler(deps)},
		{commands.MergeCardsCommand{}, NewMergeCardsHandler(deps)},
		{commands.AddMergeParentCommand{}, NewAddMergeParentHandler(deps)},
		{commands.DeleteCardCommand{}, NewDeleteCardHandler(deps)},
		{commands.UpdateCardCommand{}, NewUpdateCardHandler(deps)},
		{commands.AppendMessageCommand{}, NewAppendMessageHandler(deps)},
		{commands.SendMessageCommand{}, NewSendMessageHandler(deps)},
		{commands.ApplyLayoutCommand{}, NewApplyLayoutHandler(deps)},
		{commands.UndoCommand{}, NewUndoHandler(deps)},
		{commands.RedoCommand{}, NewRedoHandler(deps)},
	}

	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return fmt.Errorf("register command handlers: %w", err)
		}
	}
	return nil
}

// LoggingMiddleware logs every dispatched command with its outcome and
// duration
func LoggingMiddleware(logger *zap.Logger) bus.Middleware {
	return func(next bus.CommandHandler) bus.CommandHandler {
		return bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
			start := time.Now()
			err := next.Handle(ctx, cmd)
			fields := []zap.Field{
				zap.String("command", fmt.Sprintf("%T", cmd)),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("command failed", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("command handled", fields...)
			}
			return err
		})
	}
}
