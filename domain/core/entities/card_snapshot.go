package entities

import (
	"time"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// CardSnapshot is a complete, serializable copy of a card's state. It is
// the currency of the undo/redo log (pre/post mutation pairs) and of the
// persistence codecs. Restoring a snapshot yields a card byte-for-byte
// equivalent to the original, minus uncommitted events.
type CardSnapshot struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	Title       string `json:"title"`
	AutoTitle   bool   `json:"autoTitle"`

	Tags     []string               `json:"tags,omitempty"`
	Messages []valueobjects.Message `json:"messages,omitempty"`

	ParentCardIDs []string `json:"parentCardIds,omitempty"`

	InheritanceMode   string                        `json:"inheritanceMode"`
	BranchReason      string                        `json:"branchReason,omitempty"`
	BranchCut         int                           `json:"branchCut"`
	ContextSummary    string                        `json:"contextSummary,omitempty"`
	CustomSelection   []int                         `json:"customSelection,omitempty"`
	InheritedSegments []valueobjects.ContextSegment `json:"inheritedSegments,omitempty"`

	X float64 `json:"x"`
	Y float64 `json:"y"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"version"`
}

// IsMergeNode reports the flag implied by the snapshot's parent list
func (s CardSnapshot) IsMergeNode() bool {
	return len(s.ParentCardIDs) > 1
}

// Snapshot captures the card's complete current state
func (c *Card) Snapshot() CardSnapshot {
	parents := make([]string, len(c.parentIDs))
	for i, pid := range c.parentIDs {
		parents[i] = pid.String()
	}

	return CardSnapshot{
		ID:                c.id.String(),
		WorkspaceID:       c.workspaceID.String(),
		Title:             c.title,
		AutoTitle:         c.autoTitle,
		Tags:              append([]string(nil), c.tags...),
		Messages:          valueobjects.CopyMessages(c.messages),
		ParentCardIDs:     parents,
		InheritanceMode:   string(c.inheritanceMode),
		BranchReason:      c.branchReason,
		BranchCut:         c.branchCut,
		ContextSummary:    c.contextSummary,
		CustomSelection:   append([]int(nil), c.customSelection...),
		InheritedSegments: c.inherited.Segments(),
		X:                 c.position.X,
		Y:                 c.position.Y,
		CreatedAt:         c.createdAt,
		UpdatedAt:         c.updatedAt,
		Version:           c.version,
	}
}

// ReconstructCard rebuilds a card from a snapshot with timestamps and
// version preserved. No domain events are raised.
func ReconstructCard(snap CardSnapshot) (*Card, error) {
	id, err := valueobjects.NewCardIDFromString(snap.ID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	workspaceID, err := valueobjects.NewWorkspaceIDFromString(snap.WorkspaceID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	mode := valueobjects.InheritanceMode(snap.InheritanceMode)
	if !mode.IsValid() {
		return nil, pkgerrors.NewValidationError("snapshot carries an unknown inheritance mode")
	}

	parents := make([]valueobjects.CardID, len(snap.ParentCardIDs))
	for i, raw := range snap.ParentCardIDs {
		pid, err := valueobjects.NewCardIDFromString(raw)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		parents[i] = pid
	}

	return &Card{
		id:              id,
		workspaceID:     workspaceID,
		title:           snap.Title,
		autoTitle:       snap.AutoTitle,
		tags:            append([]string(nil), snap.Tags...),
		messages:        valueobjects.CopyMessages(snap.Messages),
		parentIDs:       parents,
		mergeNode:       len(parents) > 1,
		inheritanceMode: mode,
		branchReason:    snap.BranchReason,
		branchCut:       snap.BranchCut,
		contextSummary:  snap.ContextSummary,
		customSelection: append([]int(nil), snap.CustomSelection...),
		inherited:       valueobjects.NewInheritedContext(snap.InheritedSegments),
		position:        valueobjects.NewPosition(snap.X, snap.Y),
		createdAt:       snap.CreatedAt,
		updatedAt:       snap.UpdatedAt,
		version:         snap.Version,
	}, nil
}

// Clone returns a deep copy of the card without uncommitted events
func (c *Card) Clone() *Card {
	clone, _ := ReconstructCard(c.Snapshot())
	return clone
}
