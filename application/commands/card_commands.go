package commands

import (
	"strings"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// CreateRootCardCommand places a new parentless card on the canvas.
// The caller allocates CardID so the API can return it without the bus
// having to carry results.
type CreateRootCardCommand struct {
	WorkspaceID string
	CardID      string
	Title       string
	X           float64
	Y           float64
}

func (c CreateRootCardCommand) Validate() error {
	if _, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID); err != nil {
		return err
	}
	_, err := valueobjects.NewCardIDFromString(c.CardID)
	return err
}

// BranchCardCommand forks a new card from a message in an existing one
type BranchCardCommand struct {
	WorkspaceID     string
	CardID          string
	SourceCardID    string
	MessageIndex    int
	InheritanceMode string
	BranchReason    string
	CustomSelection []int
	X               *float64
	Y               *float64
}

func (c BranchCardCommand) Validate() error {
	if _, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID); err != nil {
		return err
	}
	if _, err := valueobjects.NewCardIDFromString(c.CardID); err != nil {
		return err
	}
	if _, err := valueobjects.NewCardIDFromString(c.SourceCardID); err != nil {
		return err
	}
	if c.MessageIndex < 0 {
		return pkgerrors.NewValidationError("message index cannot be negative")
	}
	mode := valueobjects.InheritanceMode(c.InheritanceMode)
	if c.InheritanceMode != "" && !mode.IsValid() {
		return pkgerrors.NewValidationError("unknown inheritance mode: " + c.InheritanceMode)
	}
	if mode == valueobjects.InheritCustom && len(c.CustomSelection) == 0 {
		return pkgerrors.NewValidationError("custom inheritance requires a message selection")
	}
	return nil
}

// MergeCardsCommand creates a card whose context joins two or more
// existing lineages
type MergeCardsCommand struct {
	WorkspaceID   string
	CardID        string
	ParentCardIDs []string
	X             *float64
	Y             *float64
}

func (c MergeCardsCommand) Validate() error {
	if _, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID); err != nil {
		return err
	}
	if _, err := valueobjects.NewCardIDFromString(c.CardID); err != nil {
		return err
	}
	if len(c.ParentCardIDs) < 2 {
		return pkgerrors.NewValidationError("a merge needs at least two parents")
	}
	seen := make(map[string]bool, len(c.ParentCardIDs))
	for _, pid := range c.ParentCardIDs {
		if _, err := valueobjects.NewCardIDFromString(pid); err != nil {
			return err
		}
		if seen[pid] {
			return pkgerrors.NewValidationError("duplicate merge parent: " + pid)
		}
		seen[pid] = true
	}
	return nil
}

// AddMergeParentCommand attaches one more parent to an existing card,
// promoting it to a merge node when it gains a second lineage
type AddMergeParentCommand struct {
	WorkspaceID  string
	CardID       string
	ParentCardID string
}

func (c AddMergeParentCommand) Validate() error {
	if _, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID); err != nil {
		return err
	}
	if _, err := valueobjects.NewCardIDFromString(c.CardID); err != nil {
		return err
	}
	_, err := valueobjects.NewCardIDFromString(c.ParentCardID)
	return err
}

// DeleteCardCommand removes a card. Children survive with the deleted
// parent struck from their parent lists.
type DeleteCardCommand struct {
	WorkspaceID string
	CardID      string
}

func (c DeleteCardCommand) Validate() error {
	if _, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID); err != nil {
		return err
	}
	_, err := valueobjects.NewCardIDFromString(c.CardID)
	return err
}

// UpdateCardCommand applies a partial edit. Nil fields are untouched.
type UpdateCardCommand struct {
	WorkspaceID string
	CardID      string
	Title       *string
	Tags        *[]string
	X           *float64
	Y           *float64
}

func (c UpdateCardCommand) Validate() error {
	if _, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID); err != nil {
		return err
	}
	if _, err := valueobjects.NewCardIDFromString(c.CardID); err != nil {
		return err
	}
	if c.Title == nil && c.Tags == nil && c.X == nil && c.Y == nil {
		return pkgerrors.NewValidationError("update has no fields to apply")
	}
	if c.Title != nil && strings.TrimSpace(*c.Title) == "" {
		return pkgerrors.NewValidationError("card title cannot be blank")
	}
	if c.Tags != nil {
		for _, tag := range *c.Tags {
			if strings.TrimSpace(tag) == "" {
				return pkgerrors.NewValidationError("tags cannot be blank")
			}
		}
	}
	if (c.X == nil) != (c.Y == nil) {
		return pkgerrors.NewValidationError("position update requires both coordinates")
	}
	return nil
}

// AppendMessageCommand adds one message to a card's transcript without
// invoking the assistant
type AppendMessageCommand struct {
	WorkspaceID string
	CardID      string
	Role        string
	Text        string
}

func (c AppendMessageCommand) Validate() error {
	if _, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID); err != nil {
		return err
	}
	if _, err := valueobjects.NewCardIDFromString(c.CardID); err != nil {
		return err
	}
	if !valueobjects.MessageRole(c.Role).IsValid() {
		return pkgerrors.NewValidationError("unknown message role: " + c.Role)
	}
	if strings.TrimSpace(c.Text) == "" {
		return pkgerrors.NewValidationError("message text is required")
	}
	return nil
}

// SendMessageCommand appends the user's message and asks the completion
// service for the assistant's reply, grounded in the card's inherited
// context
type SendMessageCommand struct {
	WorkspaceID string
	CardID      string
	Text        string
}

func (c SendMessageCommand) Validate() error {
	if _, err := valueobjects.NewWorkspaceIDFromString(c.WorkspaceID); err != nil {
		return err
	}
	if _, err := valueobjects.NewCardIDFromString(c.CardID); err != nil {
		return err
	}
	if strings.TrimSpace(c.Text) == "" {
		return pkgerrors.NewValidationError("message text is required")
	}
	return nil
}
