package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/application/commands"
	"github.com/modryn-studio/ProjectLoom-sub000/application/commands/bus"
	"github.com/modryn-studio/ProjectLoom-sub000/application/services"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/entities"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// AppendMessageHandler adds a single message to a card without asking
// the assistant for a reply; importers and tooling use it
type AppendMessageHandler struct {
	deps *Deps
}

// NewAppendMessageHandler creates the handler
func NewAppendMessageHandler(deps *Deps) *AppendMessageHandler {
	return &AppendMessageHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *AppendMessageHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.AppendMessageCommand)
	if !ok {
		return pkgerrors.NewValidationError("unexpected command type")
	}

	ws, err := h.deps.workspace(ctx, c.WorkspaceID)
	if err != nil {
		return err
	}
	cardID, err := valueobjects.NewCardIDFromString(c.CardID)
	if err != nil {
		return err
	}
	card, err := ws.Card(cardID)
	if err != nil {
		return err
	}

	msg, err := valueobjects.NewMessage(valueobjects.MessageRole(c.Role), c.Text)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	pre := snapshots(ws, cardID)
	if err := card.AppendMessage(msg, h.deps.rules()); err != nil {
		return err
	}

	entry := &services.Entry{
		Label: "Add message",
		Pre:   pre,
		Post:  snapshots(ws, cardID),
	}
	return h.deps.commit(ctx, ws, entry)
}

// SendMessageHandler appends the user's message and obtains the
// assistant reply through the completion port, grounded in the card's
// resolved context. The reply lands on the same card, so undoing a send
// removes both messages at once.
type SendMessageHandler struct {
	deps *Deps
}

// NewSendMessageHandler creates the handler
func NewSendMessageHandler(deps *Deps) *SendMessageHandler {
	return &SendMessageHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *SendMessageHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.SendMessageCommand)
	if !ok {
		return pkgerrors.NewValidationError("unexpected command type")
	}

	ws, err := h.deps.workspace(ctx, c.WorkspaceID)
	if err != nil {
		return err
	}
	cardID, err := valueobjects.NewCardIDFromString(c.CardID)
	if err != nil {
		return err
	}
	card, err := ws.Card(cardID)
	if err != nil {
		return err
	}

	inherited, err := h.deps.Resolver.Resolve(ws, cardID)
	if err != nil {
		return err
	}

	userMsg, err := valueobjects.NewMessage(valueobjects.RoleUser, c.Text)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	pre := snapshots(ws, cardID)
	if err := card.AppendMessage(userMsg, h.deps.rules()); err != nil {
		return err
	}

	reply, err := h.deps.Chat.Complete(ctx, inherited, card.Messages(), c.Text)
	if err != nil {
		// Roll the user message back so a failed completion leaves the
		// transcript untouched.
		for _, snap := range pre {
			if restored, rerr := entities.ReconstructCard(snap); rerr == nil {
				ws.PutCard(restored)
			}
		}
		return pkgerrors.Wrap(err, pkgerrors.ErrorTypeExternal, "chat completion failed")
	}
	if err := card.AppendMessage(reply, h.deps.rules()); err != nil {
		return err
	}

	entry := &services.Entry{
		Label: "Send message",
		Pre:   pre,
		Post:  snapshots(ws, cardID),
	}

	h.deps.Logger.Info("message exchange completed",
		zap.String("workspaceId", c.WorkspaceID),
		zap.String("cardId", c.CardID),
		zap.Int("contextMessages", inherited.MessageCount()),
		zap.Int("transcriptLength", card.MessageCount()),
	)
	return h.deps.commit(ctx, ws, entry)
}
