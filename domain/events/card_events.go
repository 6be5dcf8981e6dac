package events

import (
	"time"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
)

// Event type names, used by subscribers to filter
const (
	TypeCardCreated            = "card.created"
	TypeCardBranched           = "card.branched"
	TypeCardsMerged            = "card.merged"
	TypeMergeParentAdded       = "card.merge_parent_added"
	TypeCardDeleted            = "card.deleted"
	TypeCardRenamed            = "card.renamed"
	TypeCardMoved              = "card.moved"
	TypeMessageAppended        = "card.message_appended"
	TypeLayoutApplied          = "workspace.layout_applied"
	TypeWorkspaceCreated       = "workspace.created"
	TypeKnowledgeDocumentAdded = "workspace.document_added"
	TypeHistoryReverted        = "workspace.history_reverted"
)

// CardCreated is raised when a fresh root card is created
type CardCreated struct {
	BaseEvent
	CardID      valueobjects.CardID      `json:"card_id"`
	WorkspaceID valueobjects.WorkspaceID `json:"workspace_id"`
}

// NewCardCreated creates a CardCreated event
func NewCardCreated(cardID valueobjects.CardID, workspaceID valueobjects.WorkspaceID, ts time.Time) CardCreated {
	return CardCreated{
		BaseEvent:   newBase(cardID.String(), TypeCardCreated, ts),
		CardID:      cardID,
		WorkspaceID: workspaceID,
	}
}

// CardBranched is raised when a card is forked from a cut point
type CardBranched struct {
	BaseEvent
	CardID       valueobjects.CardID          `json:"card_id"`
	SourceCardID valueobjects.CardID          `json:"source_card_id"`
	MessageIndex int                          `json:"message_index"`
	Mode         valueobjects.InheritanceMode `json:"mode"`
	BranchReason string                       `json:"branch_reason"`
}

// NewCardBranched creates a CardBranched event
func NewCardBranched(cardID valueobjects.CardID, bp valueobjects.BranchPoint, ts time.Time) CardBranched {
	return CardBranched{
		BaseEvent:    newBase(cardID.String(), TypeCardBranched, ts),
		CardID:       cardID,
		SourceCardID: bp.SourceCardID,
		MessageIndex: bp.MessageIndex,
		Mode:         bp.InheritanceMode,
		BranchReason: bp.BranchReason,
	}
}

// CardsMerged is raised when a multi-parent merge node is created
type CardsMerged struct {
	BaseEvent
	CardID       valueobjects.CardID   `json:"card_id"`
	ParentIDs    []valueobjects.CardID `json:"parent_ids"`
	ComplexMerge bool                  `json:"complex_merge"`
}

// NewCardsMerged creates a CardsMerged event. complexMerge marks the
// advisory signal raised at three or more parents.
func NewCardsMerged(cardID valueobjects.CardID, parentIDs []valueobjects.CardID, complexMerge bool, ts time.Time) CardsMerged {
	return CardsMerged{
		BaseEvent:    newBase(cardID.String(), TypeCardsMerged, ts),
		CardID:       cardID,
		ParentIDs:    parentIDs,
		ComplexMerge: complexMerge,
	}
}

// MergeParentAdded is raised when an additional parent is attached to an
// existing card
type MergeParentAdded struct {
	BaseEvent
	CardID      valueobjects.CardID `json:"card_id"`
	ParentID    valueobjects.CardID `json:"parent_id"`
	ParentCount int                 `json:"parent_count"`
}

// NewMergeParentAdded creates a MergeParentAdded event
func NewMergeParentAdded(cardID, parentID valueobjects.CardID, parentCount int, ts time.Time) MergeParentAdded {
	return MergeParentAdded{
		BaseEvent:   newBase(cardID.String(), TypeMergeParentAdded, ts),
		CardID:      cardID,
		ParentID:    parentID,
		ParentCount: parentCount,
	}
}

// CardDeleted is raised when a card is removed. Orphaned children stay
// alive with the deleted parent stripped from their parent lists.
type CardDeleted struct {
	BaseEvent
	CardID           valueobjects.CardID   `json:"card_id"`
	DetachedChildren []valueobjects.CardID `json:"detached_children"`
}

// NewCardDeleted creates a CardDeleted event
func NewCardDeleted(cardID valueobjects.CardID, detached []valueobjects.CardID, ts time.Time) CardDeleted {
	return CardDeleted{
		BaseEvent:        newBase(cardID.String(), TypeCardDeleted, ts),
		CardID:           cardID,
		DetachedChildren: detached,
	}
}

// CardRenamed is raised when a card's title changes
type CardRenamed struct {
	BaseEvent
	CardID   valueobjects.CardID `json:"card_id"`
	OldTitle string              `json:"old_title"`
	NewTitle string              `json:"new_title"`
}

// NewCardRenamed creates a CardRenamed event
func NewCardRenamed(cardID valueobjects.CardID, oldTitle, newTitle string, ts time.Time) CardRenamed {
	return CardRenamed{
		BaseEvent: newBase(cardID.String(), TypeCardRenamed, ts),
		CardID:    cardID,
		OldTitle:  oldTitle,
		NewTitle:  newTitle,
	}
}

// CardMoved is raised when a card's canvas position changes
type CardMoved struct {
	BaseEvent
	CardID      valueobjects.CardID   `json:"card_id"`
	OldPosition valueobjects.Position `json:"old_position"`
	NewPosition valueobjects.Position `json:"new_position"`
}

// NewCardMoved creates a CardMoved event
func NewCardMoved(cardID valueobjects.CardID, oldPos, newPos valueobjects.Position, ts time.Time) CardMoved {
	return CardMoved{
		BaseEvent:   newBase(cardID.String(), TypeCardMoved, ts),
		CardID:      cardID,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// MessageAppended is raised when a message is added to a card's transcript
type MessageAppended struct {
	BaseEvent
	CardID       valueobjects.CardID      `json:"card_id"`
	Role         valueobjects.MessageRole `json:"role"`
	MessageCount int                      `json:"message_count"`
}

// NewMessageAppended creates a MessageAppended event
func NewMessageAppended(cardID valueobjects.CardID, role valueobjects.MessageRole, count int, ts time.Time) MessageAppended {
	return MessageAppended{
		BaseEvent:    newBase(cardID.String(), TypeMessageAppended, ts),
		CardID:       cardID,
		Role:         role,
		MessageCount: count,
	}
}

// LayoutApplied is raised when computed positions are committed
type LayoutApplied struct {
	BaseEvent
	WorkspaceID valueobjects.WorkspaceID `json:"workspace_id"`
	Mode        string                   `json:"mode"`
	MovedCards  int                      `json:"moved_cards"`
}

// NewLayoutApplied creates a LayoutApplied event
func NewLayoutApplied(workspaceID valueobjects.WorkspaceID, mode string, moved int, ts time.Time) LayoutApplied {
	return LayoutApplied{
		BaseEvent:   newBase(workspaceID.String(), TypeLayoutApplied, ts),
		WorkspaceID: workspaceID,
		Mode:        mode,
		MovedCards:  moved,
	}
}

// WorkspaceCreated is raised when a workspace is created
type WorkspaceCreated struct {
	BaseEvent
	WorkspaceID valueobjects.WorkspaceID `json:"workspace_id"`
	Name        string                   `json:"name"`
}

// NewWorkspaceCreated creates a WorkspaceCreated event
func NewWorkspaceCreated(workspaceID valueobjects.WorkspaceID, name string, ts time.Time) WorkspaceCreated {
	return WorkspaceCreated{
		BaseEvent:   newBase(workspaceID.String(), TypeWorkspaceCreated, ts),
		WorkspaceID: workspaceID,
		Name:        name,
	}
}

// KnowledgeDocumentAdded is raised when a document joins the workspace
// knowledge base
type KnowledgeDocumentAdded struct {
	BaseEvent
	WorkspaceID valueobjects.WorkspaceID `json:"workspace_id"`
	Title       string                   `json:"title"`
}

// NewKnowledgeDocumentAdded creates a KnowledgeDocumentAdded event
func NewKnowledgeDocumentAdded(workspaceID valueobjects.WorkspaceID, title string, ts time.Time) KnowledgeDocumentAdded {
	return KnowledgeDocumentAdded{
		BaseEvent:   newBase(workspaceID.String(), TypeKnowledgeDocumentAdded, ts),
		WorkspaceID: workspaceID,
		Title:       title,
	}
}

// HistoryReverted is raised after an undo or redo replays against the store
type HistoryReverted struct {
	BaseEvent
	WorkspaceID valueobjects.WorkspaceID `json:"workspace_id"`
	Direction   string                   `json:"direction"` // undo or redo
	Label       string                   `json:"label"`
}

// NewHistoryReverted creates a HistoryReverted event
func NewHistoryReverted(workspaceID valueobjects.WorkspaceID, direction, label string, ts time.Time) HistoryReverted {
	return HistoryReverted{
		BaseEvent:   newBase(workspaceID.String(), TypeHistoryReverted, ts),
		WorkspaceID: workspaceID,
		Direction:   direction,
		Label:       label,
	}
}
