package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/application/commands"
	"github.com/modryn-studio/ProjectLoom-sub000/application/commands/bus"
	"github.com/modryn-studio/ProjectLoom-sub000/application/services"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/entities"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// CreateRootCardHandler places new parentless cards
type CreateRootCardHandler struct {
	deps *Deps
}

// NewCreateRootCardHandler creates the handler
func NewCreateRootCardHandler(deps *Deps) *CreateRootCardHandler {
	return &CreateRootCardHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *CreateRootCardHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.CreateRootCardCommand)
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

	card, err := entities.NewRootCard(cardID, ws.ID(), valueobjects.Position{X: c.X, Y: c.Y})
	if err != nil {
		return err
	}
	if c.Title != "" {
		if err := card.Rename(c.Title, h.deps.rules()); err != nil {
			return err
		}
	}
	if err := ws.AddCard(card); err != nil {
		return err
	}

	entry := &services.Entry{
		Label:   fmt.Sprintf("Create %q", card.Title()),
		Post:    snapshots(ws, card.ID()),
		Created: []valueobjects.CardID{card.ID()},
	}
	return h.deps.commit(ctx, ws, entry)
}

// DeleteCardHandler removes cards. Descendants always survive: the
// deleted card is struck from their parent lists and their cached
// context is recomputed from what remains.
type DeleteCardHandler struct {
	deps *Deps
}

// NewDeleteCardHandler creates the handler
func NewDeleteCardHandler(deps *Deps) *DeleteCardHandler {
	return &DeleteCardHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *DeleteCardHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.DeleteCardCommand)
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
	title := card.Title()

	var affected []valueobjects.CardID
	for _, child := range ws.ChildrenOf(cardID) {
		affected = append(affected, child.ID())
	}
	pre := snapshots(ws, append([]valueobjects.CardID{cardID}, affected...)...)

	detached, err := ws.DeleteCard(cardID)
	if err != nil {
		return err
	}
	for _, childID := range detached {
		child, err := ws.Card(childID)
		if err != nil {
			continue
		}
		child.SetInheritedContext(
			h.deps.Resolver.ResolveParents(ws, child.ParentCardIDs(), child.BranchCut()),
		)
	}

	entry := &services.Entry{
		Label:   fmt.Sprintf("Delete %q", title),
		Pre:     pre,
		Post:    snapshots(ws, affected...),
		Deleted: []valueobjects.CardID{cardID},
	}

	h.deps.Logger.Info("card deleted",
		zap.String("workspaceId", c.WorkspaceID),
		zap.String("cardId", c.CardID),
		zap.Int("detachedChildren", len(detached)),
	)
	return h.deps.commit(ctx, ws, entry)
}

// UpdateCardHandler applies partial edits: title, tags, position
type UpdateCardHandler struct {
	deps *Deps
}

// NewUpdateCardHandler creates the handler
func NewUpdateCardHandler(deps *Deps) *UpdateCardHandler {
	return &UpdateCardHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *UpdateCardHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.UpdateCardCommand)
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

	pre := snapshots(ws, cardID)
	label := "Edit card"

	apply := func() error {
		if c.Title != nil {
			if err := card.Rename(*c.Title, h.deps.rules()); err != nil {
				return err
			}
			label = fmt.Sprintf("Rename to %q", card.Title())
		}
		if c.Tags != nil {
			if err := replaceTags(card, *c.Tags, h.deps); err != nil {
				return err
			}
		}
		if c.X != nil && c.Y != nil {
			card.MoveTo(valueobjects.Position{X: *c.X, Y: *c.Y})
			label = "Move card"
		}
		return nil
	}
	if err := apply(); err != nil {
		// The repository hands out the live aggregate, so fields edited
		// before the failing one must be rolled back to the snapshot
		if restored, rerr := entities.ReconstructCard(pre[0]); rerr == nil {
			ws.PutCard(restored)
		}
		return err
	}

	entry := &services.Entry{
		Label: label,
		Pre:   pre,
		Post:  snapshots(ws, cardID),
	}
	return h.deps.commit(ctx, ws, entry)
}

func replaceTags(card *entities.Card, tags []string, deps *Deps) error {
	for _, t := range card.Tags() {
		if err := card.RemoveTag(t); err != nil {
			return err
		}
	}
	for _, t := range tags {
		if err := card.AddTag(t, deps.rules()); err != nil {
			return err
		}
	}
	return nil
}
