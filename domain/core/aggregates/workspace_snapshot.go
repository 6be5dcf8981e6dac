package aggregates

import (
	"time"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/entities"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// WorkspaceSnapshot is the serializable form of a workspace: its
// metadata plus a complete card set. Edges are omitted on purpose; they
// are derived state and are regenerated on restore.
type WorkspaceSnapshot struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Instructions string                  `json:"instructions,omitempty"`
	Documents    []KnowledgeDocument     `json:"documents,omitempty"`
	Cards        []entities.CardSnapshot `json:"cards,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
	Version      int                     `json:"version"`
}

// Snapshot captures the workspace's complete current state
func (w *Workspace) Snapshot() WorkspaceSnapshot {
	cards := make([]entities.CardSnapshot, 0, len(w.cards))
	for _, card := range w.Cards() {
		cards = append(cards, card.Snapshot())
	}

	return WorkspaceSnapshot{
		ID:           w.id.String(),
		Name:         w.name,
		Instructions: w.instructions,
		Documents:    append([]KnowledgeDocument(nil), w.documents...),
		Cards:        cards,
		CreatedAt:    w.createdAt,
		UpdatedAt:    w.updatedAt,
		Version:      w.version,
	}
}

// ReconstructWorkspace rebuilds a workspace from a snapshot. The derived
// edge set is regenerated and the invariants re-checked, so a corrupted
// snapshot is rejected here rather than admitted into the store.
func ReconstructWorkspace(snap WorkspaceSnapshot, cfg *config.DomainConfig) (*Workspace, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	id, err := valueobjects.NewWorkspaceIDFromString(snap.ID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	if snap.Name == "" {
		return nil, pkgerrors.NewValidationError("workspace name cannot be empty")
	}

	ws := &Workspace{
		id:           id,
		name:         snap.Name,
		instructions: snap.Instructions,
		documents:    append([]KnowledgeDocument(nil), snap.Documents...),
		cards:        make(map[valueobjects.CardID]*entities.Card, len(snap.Cards)),
		cfg:          cfg,
		createdAt:    snap.CreatedAt,
		updatedAt:    snap.UpdatedAt,
		version:      snap.Version,
	}

	for _, cs := range snap.Cards {
		card, err := entities.ReconstructCard(cs)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrorTypeValidation, "reconstruct card "+cs.ID)
		}
		ws.cards[card.ID()] = card
	}

	ws.rebuildEdges()
	if err := ws.Validate(); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrorTypeValidation, "snapshot failed invariant check")
	}

	return ws, nil
}
