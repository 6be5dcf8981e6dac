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

// BranchCardHandler forks a new card from a cut point in an existing
// transcript. The child's cached context is resolved here, at creation;
// summary mode additionally asks the summarization service for the
// condensed text.
type BranchCardHandler struct {
	deps *Deps
}

// NewBranchCardHandler creates the handler
func NewBranchCardHandler(deps *Deps) *BranchCardHandler {
	return &BranchCardHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *BranchCardHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.BranchCardCommand)
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
	sourceID, err := valueobjects.NewCardIDFromString(c.SourceCardID)
	if err != nil {
		return err
	}
	source, err := ws.Card(sourceID)
	if err != nil {
		return err
	}

	mode := valueobjects.InheritanceMode(c.InheritanceMode)
	if c.InheritanceMode == "" {
		mode = valueobjects.InheritFull
	}
	bp, err := valueobjects.NewBranchPoint(sourceID, c.MessageIndex, mode, c.BranchReason)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	bp.CustomSelection = append([]int(nil), c.CustomSelection...)

	inherited, err := h.deps.Resolver.ResolveUpTo(ws, sourceID, c.MessageIndex)
	if err != nil {
		return err
	}

	pos := h.deps.Layout.BranchPosition(source.Position(), cardID)
	if c.X != nil && c.Y != nil {
		pos = valueobjects.Position{X: *c.X, Y: *c.Y}
	}

	card, err := entities.NewBranchCard(cardID, ws.ID(), bp, inherited, pos)
	if err != nil {
		return err
	}
	if mode == valueobjects.InheritSummary {
		summary, err := h.deps.Summarizer.Summarize(ctx, inherited.Messages())
		if err != nil {
			// Summary text is regenerable; a summarizer outage should not
			// block branching.
			h.deps.Logger.Warn("summarization failed, branch keeps empty summary",
				zap.String("cardId", c.CardID),
				zap.Error(err),
			)
		} else {
			card.SetContextSummary(summary)
		}
	}
	if err := ws.AddCard(card); err != nil {
		return err
	}

	entry := &services.Entry{
		Label:   fmt.Sprintf("Branch from %q", source.Title()),
		Post:    snapshots(ws, card.ID()),
		Created: []valueobjects.CardID{card.ID()},
	}

	h.deps.Logger.Info("card branched",
		zap.String("workspaceId", c.WorkspaceID),
		zap.String("cardId", c.CardID),
		zap.String("sourceCardId", c.SourceCardID),
		zap.Int("messageIndex", c.MessageIndex),
		zap.String("mode", string(mode)),
	)
	return h.deps.commit(ctx, ws, entry)
}

// MergeCardsHandler creates a card that joins two or more lineages.
// The ceiling on parents and the distinctness rules live on the entity
// constructor; this handler resolves the combined context and places
// the card between its parents.
type MergeCardsHandler struct {
	deps *Deps
}

// NewMergeCardsHandler creates the handler
func NewMergeCardsHandler(deps *Deps) *MergeCardsHandler {
	return &MergeCardsHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *MergeCardsHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.MergeCardsCommand)
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

	parentIDs := make([]valueobjects.CardID, 0, len(c.ParentCardIDs))
	parentPositions := make([]valueobjects.Position, 0, len(c.ParentCardIDs))
	for _, pidStr := range c.ParentCardIDs {
		pid, err := valueobjects.NewCardIDFromString(pidStr)
		if err != nil {
			return err
		}
		parent, err := ws.Card(pid)
		if err != nil {
			return err
		}
		parentIDs = append(parentIDs, pid)
		parentPositions = append(parentPositions, parent.Position())
	}

	inherited := h.deps.Resolver.ResolveParents(ws, parentIDs, -1)

	pos := h.deps.Layout.MergePosition(parentPositions)
	if c.X != nil && c.Y != nil {
		pos = valueobjects.Position{X: *c.X, Y: *c.Y}
	}

	card, err := entities.NewMergeCard(cardID, ws.ID(), parentIDs, inherited, pos, h.deps.rules())
	if err != nil {
		return err
	}
	if err := ws.AddCard(card); err != nil {
		return err
	}

	entry := &services.Entry{
		Label:   fmt.Sprintf("Merge %d cards", len(parentIDs)),
		Post:    snapshots(ws, card.ID()),
		Created: []valueobjects.CardID{card.ID()},
	}

	h.deps.Logger.Info("cards merged",
		zap.String("workspaceId", c.WorkspaceID),
		zap.String("cardId", c.CardID),
		zap.Int("parents", len(parentIDs)),
	)
	return h.deps.commit(ctx, ws, entry)
}

// AddMergeParentHandler attaches one more lineage to an existing card.
// The store enforces the parent ceiling, self-reference and acyclicity;
// on success the card's cached context is recomputed to include the new
// parent's lineage.
type AddMergeParentHandler struct {
	deps *Deps
}

// NewAddMergeParentHandler creates the handler
func NewAddMergeParentHandler(deps *Deps) *AddMergeParentHandler {
	return &AddMergeParentHandler{deps: deps}
}

// Handle implements bus.CommandHandler
func (h *AddMergeParentHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.AddMergeParentCommand)
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
	parentID, err := valueobjects.NewCardIDFromString(c.ParentCardID)
	if err != nil {
		return err
	}

	pre := snapshots(ws, cardID)

	if _, err := ws.AddParent(cardID, parentID); err != nil {
		return err
	}
	card, err := ws.Card(cardID)
	if err != nil {
		return err
	}
	card.SetInheritedContext(
		h.deps.Resolver.ResolveParents(ws, card.ParentCardIDs(), card.BranchCut()),
	)

	entry := &services.Entry{
		Label: "Add merge parent",
		Pre:   pre,
		Post:  snapshots(ws, cardID),
	}

	h.deps.Logger.Info("merge parent added",
		zap.String("workspaceId", c.WorkspaceID),
		zap.String("cardId", c.CardID),
		zap.String("parentCardId", c.ParentCardID),
		zap.Int("parentCount", card.ParentCount()),
	)
	return h.deps.commit(ctx, ws, entry)
}
