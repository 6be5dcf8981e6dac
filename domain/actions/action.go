package actions

import "fmt"

// ActionKind discriminates agent-proposed actions
type ActionKind string

const (
	KindDeleteCard     ActionKind = "delete_card"
	KindRenameCard     ActionKind = "rename_card"
	KindCreateBranch   ActionKind = "create_branch"
	KindCreateDocument ActionKind = "create_document"
)

// Action is a graph mutation proposed by the agent runner. Each kind is
// its own struct so executors can match exhaustively instead of probing
// untyped payload maps.
type Action interface {
	Kind() ActionKind
	Describe() string
}

// DeleteCard proposes removing a card
type DeleteCard struct {
	CardID    string
	CardTitle string
}

func (a DeleteCard) Kind() ActionKind { return KindDeleteCard }

func (a DeleteCard) Describe() string {
	return fmt.Sprintf("delete card %q", a.CardTitle)
}

// RenameCard proposes a new title for a card
type RenameCard struct {
	CardID   string
	NewTitle string
}

func (a RenameCard) Kind() ActionKind { return KindRenameCard }

func (a RenameCard) Describe() string {
	return fmt.Sprintf("rename card to %q", a.NewTitle)
}

// CreateBranch proposes forking a card at its latest message
type CreateBranch struct {
	ParentCardID string
	BranchReason string
}

func (a CreateBranch) Kind() ActionKind { return KindCreateBranch }

func (a CreateBranch) Describe() string {
	return fmt.Sprintf("branch %q", a.BranchReason)
}

// CreateDocument proposes adding a knowledge document to the workspace
type CreateDocument struct {
	Title    string
	Markdown string
}

func (a CreateDocument) Kind() ActionKind { return KindCreateDocument }

func (a CreateDocument) Describe() string {
	return fmt.Sprintf("create document %q", a.Title)
}
