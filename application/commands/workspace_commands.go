package commands

import (
	"strings"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// CreateWorkspaceCommand creates an empty workspace
type CreateWorkspaceCommand struct {
	WorkspaceID string
	Name        string
}

func (c CreateWorkspaceCommand) Validate() error {
	if _, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID); err != nil {
		return err
	}
	if strings.TrimSpace(c.Name) == "" {
		return pkgerrors.NewValidationError("workspace name is required")
	}
	return nil
}

// DeleteWorkspaceCommand removes a workspace and its history
type DeleteWorkspaceCommand struct {
	WorkspaceID string
}

func (c DeleteWorkspaceCommand) Validate() error {
	_, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID)
	return err
}

// SetInstructionsCommand replaces the workspace-level system instructions
// that lead every resolved context
type SetInstructionsCommand struct {
	WorkspaceID  string
	Instructions string
}

func (c SetInstructionsCommand) Validate() error {
	_, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID)
	return err
}

// AddKnowledgeDocumentCommand attaches a markdown reference document to
// the workspace
type AddKnowledgeDocumentCommand struct {
	WorkspaceID string
	Title       string
	Markdown    string
}

func (c AddKnowledgeDocumentCommand) Validate() error {
	if _, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID); err != nil {
		return err
	}
	if strings.TrimSpace(c.Title) == "" {
		return pkgerrors.NewValidationError("document title is required")
	}
	return nil
}

// ApplyLayoutCommand recomputes positions for every card in the workspace
type ApplyLayoutCommand struct {
	WorkspaceID string
}

func (c ApplyLayoutCommand) Validate() error {
	_, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID)
	return err
}

// UndoCommand reverts the latest recorded mutation
type UndoCommand struct {
	WorkspaceID string
}

func (c UndoCommand) Validate() error {
	_, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID)
	return err
}

// RedoCommand re-applies the latest undone mutation
type RedoCommand struct {
	WorkspaceID string
}

func (c RedoCommand) Validate() error {
	_, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID)
	return err
}
