package queries

import (
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
)

// GetCardQuery fetches one card with its full transcript
type GetCardQuery struct {
	WorkspaceID string
	CardID      string
}

func (q GetCardQuery) Validate() error {
	if _, err := valueobjects.NewWorkspaceIDFromString(q.WorkspaceID); err != nil {
		return err
	}
	_, err := valueobjects.NewCardIDFromString(q.CardID)
	return err
}

// GetGraphDataQuery fetches the whole canvas: card summaries plus the
// derived edge set
type GetGraphDataQuery struct {
	WorkspaceID string
}

func (q GetGraphDataQuery) Validate() error {
	_, err := valueobjects.NewWorkspaceIDFromString(q.WorkspaceID)
	return err
}

// GetInheritedContextQuery resolves what a card inherits from its
// ancestry, exactly as the completion service would see it
type GetInheritedContextQuery struct {
	WorkspaceID string
	CardID      string
}

func (q GetInheritedContextQuery) Validate() error {
	if _, err := valueobjects.NewWorkspaceIDFromString(q.WorkspaceID); err != nil {
		return err
	}
	_, err := valueobjects.NewCardIDFromString(q.CardID)
	return err
}

// ListWorkspacesQuery fetches summaries of every workspace
type ListWorkspacesQuery struct{}

func (q ListWorkspacesQuery) Validate() error { return nil }

// GetWorkspaceQuery fetches one workspace's detail view
type GetWorkspaceQuery struct {
	WorkspaceID string
}

func (q GetWorkspaceQuery) Validate() error {
	_, err := valueobjects.NewWorkspaceIDFromString(q.WorkspaceID)
	return err
}

// GetHistoryStatusQuery reports undo and redo availability
type GetHistoryStatusQuery struct {
	WorkspaceID string
}

func (q GetHistoryStatusQuery) Validate() error {
	_, err := valueobjects.NewWorkspaceIDFromString(q.WorkspaceID)
	return err
}
