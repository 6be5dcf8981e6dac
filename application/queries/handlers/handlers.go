package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/application/ports"
	"github.com/modryn-studio/ProjectLoom-sub000/application/queries"
	"github.com/modryn-studio/ProjectLoom-sub000/application/queries/bus"
	"github.com/modryn-studio/ProjectLoom-sub000/application/queries/models"
	"github.com/modryn-studio/ProjectLoom-sub000/application/services"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/aggregates"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/entities"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// Deps bundles the read-side collaborators
type Deps struct {
	Repo     ports.WorkspaceRepository
	Resolver *services.ContextResolver
	History  *services.History
	Logger   *zap.Logger
}

// RegisterAll wires every query to its handler on the bus
func RegisterAll(b *bus.QueryBus, deps *Deps) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.GetCardQuery{}, NewGetCardHandler(deps)},
		{queries.GetGraphDataQuery{}, NewGetGraphDataHandler(deps)},
		{queries.GetInheritedContextQuery{}, NewGetInheritedContextHandler(deps)},
		{queries.ListWorkspacesQuery{}, NewListWorkspacesHandler(deps)},
		{queries.GetWorkspaceQuery{}, NewGetWorkspaceHandler(deps)},
		{queries.GetHistoryStatusQuery{}, NewGetHistoryStatusHandler(deps)},
	}
	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return fmt.Errorf("register query handlers: %w", err)
		}
	}
	return nil
}

// GetCardHandler serves single cards with full transcripts
type GetCardHandler struct {
	deps *Deps
}

// NewGetCardHandler creates the handler
func NewGetCardHandler(deps *Deps) *GetCardHandler {
	return &GetCardHandler{deps: deps}
}

// Handle implements bus.QueryHandler
func (h *GetCardHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetCardQuery)
	if !ok {
		return nil, pkgerrors.NewValidationError("unexpected query type")
	}
	_, card, err := h.deps.card(ctx, q.WorkspaceID, q.CardID)
	if err != nil {
		return nil, err
	}
	return cardView(card), nil
}

// GetGraphDataHandler serves the whole canvas in one payload
type GetGraphDataHandler struct {
	deps *Deps
}

// NewGetGraphDataHandler creates the handler
func NewGetGraphDataHandler(deps *Deps) *GetGraphDataHandler {
	return &GetGraphDataHandler{deps: deps}
}

// Handle implements bus.QueryHandler
func (h *GetGraphDataHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetGraphDataQuery)
	if !ok {
		return nil, pkgerrors.NewValidationError("unexpected query type")
	}
	ws, err := h.deps.workspace(ctx, q.WorkspaceID)
	if err != nil {
		return nil, err
	}

	view := &models.GraphView{
		WorkspaceID: ws.ID().String(),
		Cards:       make([]models.CardSummary, 0, ws.CardCount()),
		Edges:       make([]models.EdgeView, 0, len(ws.Edges())),
	}
	for _, card := range ws.Cards() {
		view.Cards = append(view.Cards, models.CardSummary{
			ID:           card.ID().String(),
			Title:        card.Title(),
			Tags:         card.Tags(),
			MessageCount: card.MessageCount(),
			ParentCount:  card.ParentCount(),
			IsMergeNode:  card.IsMergeNode(),
			X:            card.Position().X,
			Y:            card.Position().Y,
		})
	}
	for _, edge := range ws.Edges() {
		view.Edges = append(view.Edges, models.EdgeView{
			ID:       edge.ID,
			SourceID: edge.SourceID.String(),
			TargetID: edge.TargetID.String(),
			Kind:     string(edge.Kind),
		})
	}
	return view, nil
}

// GetInheritedContextHandler resolves a card's effective context on
// demand. This is the read path the UI uses for the context inspector;
// the completion service resolves the same way at send time.
type GetInheritedContextHandler struct {
	deps *Deps
}

// NewGetInheritedContextHandler creates the handler
func NewGetInheritedContextHandler(deps *Deps) *GetInheritedContextHandler {
	return &GetInheritedContextHandler{deps: deps}
}

// Handle implements bus.QueryHandler
func (h *GetInheritedContextHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetInheritedContextQuery)
	if !ok {
		return nil, pkgerrors.NewValidationError("unexpected query type")
	}
	ws, card, err := h.deps.card(ctx, q.WorkspaceID, q.CardID)
	if err != nil {
		return nil, err
	}

	inherited, err := h.deps.Resolver.Resolve(ws, card.ID())
	if err != nil {
		return nil, err
	}

	view := &models.ContextView{
		CardID:       card.ID().String(),
		Segments:     make([]models.SegmentView, 0, len(inherited.Segments())),
		MessageCount: inherited.MessageCount(),
	}
	for _, seg := range inherited.Segments() {
		sv := models.SegmentView{
			Mode:    string(seg.Mode),
			Summary: seg.Summary,
		}
		if !seg.SourceCardID.IsZero() {
			sv.SourceCardID = seg.SourceCardID.String()
		}
		for _, msg := range seg.Messages {
			sv.Messages = append(sv.Messages, messageView(msg))
		}
		view.Segments = append(view.Segments, sv)
	}
	return view, nil
}

// ListWorkspacesHandler serves workspace summaries
type ListWorkspacesHandler struct {
	deps *Deps
}

// NewListWorkspacesHandler creates the handler
func NewListWorkspacesHandler(deps *Deps) *ListWorkspacesHandler {
	return &ListWorkspacesHandler{deps: deps}
}

// Handle implements bus.QueryHandler
func (h *ListWorkspacesHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	if _, ok := query.(queries.ListWorkspacesQuery); !ok {
		return nil, pkgerrors.NewValidationError("unexpected query type")
	}
	all, err := h.deps.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.WorkspaceSummary, 0, len(all))
	for _, ws := range all {
		out = append(out, models.WorkspaceSummary{
			ID:        ws.ID().String(),
			Name:      ws.Name(),
			CardCount: ws.CardCount(),
			UpdatedAt: ws.UpdatedAt(),
		})
	}
	return out, nil
}

// GetWorkspaceHandler serves one workspace's detail view
type GetWorkspaceHandler struct {
	deps *Deps
}

// NewGetWorkspaceHandler creates the handler
func NewGetWorkspaceHandler(deps *Deps) *GetWorkspaceHandler {
	return &GetWorkspaceHandler{deps: deps}
}

// Handle implements bus.QueryHandler
func (h *GetWorkspaceHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetWorkspaceQuery)
	if !ok {
		return nil, pkgerrors.NewValidationError("unexpected query type")
	}
	ws, err := h.deps.workspace(ctx, q.WorkspaceID)
	if err != nil {
		return nil, err
	}

	detail := &models.WorkspaceDetail{
		ID:           ws.ID().String(),
		Name:         ws.Name(),
		Instructions: ws.Instructions(),
		CardCount:    ws.CardCount(),
		CreatedAt:    ws.CreatedAt(),
		UpdatedAt:    ws.UpdatedAt(),
	}
	for _, doc := range ws.Documents() {
		detail.Documents = append(detail.Documents, models.DocumentView{
			Title:     doc.Title,
			Markdown:  doc.Markdown,
			CreatedAt: doc.CreatedAt,
		})
	}
	return detail, nil
}

// GetHistoryStatusHandler reports undo and redo availability
type GetHistoryStatusHandler struct {
	deps *Deps
}

// NewGetHistoryStatusHandler creates the handler
func NewGetHistoryStatusHandler(deps *Deps) *GetHistoryStatusHandler {
	return &GetHistoryStatusHandler{deps: deps}
}

// Handle implements bus.QueryHandler
func (h *GetHistoryStatusHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetHistoryStatusQuery)
	if !ok {
		return nil, pkgerrors.NewValidationError("unexpected query type")
	}
	wsID, err := valueobjects.NewWorkspaceIDFromString(q.WorkspaceID)
	if err != nil {
		return nil, err
	}

	status := &models.HistoryStatus{
		CanUndo: h.deps.History.CanUndo(wsID),
		CanRedo: h.deps.History.CanRedo(wsID),
	}
	if label, ok := h.deps.History.NextUndoLabel(wsID); ok {
		status.UndoLabel = label
	}
	if label, ok := h.deps.History.NextRedoLabel(wsID); ok {
		status.RedoLabel = label
	}
	return status, nil
}

func (d *Deps) workspace(ctx context.Context, id string) (*aggregates.Workspace, error) {
	wsID, err := valueobjects.NewWorkspaceIDFromString(id)
	if err != nil {
		return nil, err
	}
	return d.Repo.GetByID(ctx, wsID)
}

func (d *Deps) card(ctx context.Context, wsID, cardID string) (*aggregates.Workspace, *entities.Card, error) {
	ws, err := d.workspace(ctx, wsID)
	if err != nil {
		return nil, nil, err
	}
	id, err := valueobjects.NewCardIDFromString(cardID)
	if err != nil {
		return nil, nil, err
	}
	card, err := ws.Card(id)
	if err != nil {
		return nil, nil, err
	}
	return ws, card, nil
}

func cardView(card *entities.Card) *models.CardView {
	view := &models.CardView{
		ID:              card.ID().String(),
		WorkspaceID:     card.WorkspaceID().String(),
		Title:           card.Title(),
		AutoTitle:       card.IsAutoTitle(),
		Tags:            card.Tags(),
		IsMergeNode:     card.IsMergeNode(),
		InheritanceMode: string(card.InheritanceMode()),
		BranchReason:    card.BranchReason(),
		X:               card.Position().X,
		Y:               card.Position().Y,
		CreatedAt:       card.CreatedAt(),
		UpdatedAt:       card.UpdatedAt(),
		Version:         card.Version(),
	}
	view.Messages = make([]models.MessageView, 0, card.MessageCount())
	for _, msg := range card.Messages() {
		view.Messages = append(view.Messages, messageView(msg))
	}
	for _, pid := range card.ParentCardIDs() {
		view.ParentCardIDs = append(view.ParentCardIDs, pid.String())
	}
	return view
}

func messageView(msg valueobjects.Message) models.MessageView {
	return models.MessageView{
		Role:      string(msg.Role),
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
	}
}
