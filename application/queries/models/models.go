// Package models holds the read-side view types returned by queries.
// They are plain serializable structs, decoupled from the domain
// entities so the API surface can evolve without touching the graph.
package models

import "time"

// MessageView is one transcript entry
type MessageView struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// CardView is the full read model of one card
type CardView struct {
	ID              string        `json:"id"`
	WorkspaceID     string        `json:"workspaceId"`
	Title           string        `json:"title"`
	AutoTitle       bool          `json:"autoTitle"`
	Tags            []string      `json:"tags,omitempty"`
	Messages        []MessageView `json:"messages"`
	ParentCardIDs   []string      `json:"parentCardIds,omitempty"`
	IsMergeNode     bool          `json:"isMergeNode"`
	InheritanceMode string        `json:"inheritanceMode"`
	BranchReason    string        `json:"branchReason,omitempty"`
	X               float64       `json:"x"`
	Y               float64       `json:"y"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	Version         int           `json:"version"`
}

// CardSummary is the trimmed card shape used inside graph payloads,
// where full transcripts would bloat the response
type CardSummary struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Tags         []string `json:"tags,omitempty"`
	MessageCount int      `json:"messageCount"`
	ParentCount  int      `json:"parentCount"`
	IsMergeNode  bool     `json:"isMergeNode"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
}

// EdgeView is one derived parent-child connection
type EdgeView struct {
	ID       string `json:"id"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Kind     string `json:"kind"`
}

// GraphView is the whole canvas in one payload
type GraphView struct {
	WorkspaceID string        `json:"workspaceId"`
	Cards       []CardSummary `json:"cards"`
	Edges       []EdgeView    `json:"edges"`
}

// SegmentView is one ancestor's contribution to a resolved context
type SegmentView struct {
	SourceCardID string        `json:"sourceCardId,omitempty"`
	Mode         string        `json:"mode"`
	Messages     []MessageView `json:"messages,omitempty"`
	Summary      string        `json:"summary,omitempty"`
}

// ContextView is a card's fully resolved inherited context
type ContextView struct {
	CardID       string        `json:"cardId"`
	Segments     []SegmentView `json:"segments"`
	MessageCount int           `json:"messageCount"`
}

// WorkspaceSummary is the list-view shape of a workspace
type WorkspaceSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CardCount int       `json:"cardCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentView is one knowledge-base entry
type DocumentView struct {
	Title     string    `json:"title"`
	Markdown  string    `json:"markdown"`
	CreatedAt time.Time `json:"createdAt"`
}

// WorkspaceDetail is the full read model of a workspace, minus the
// graph itself, which GetGraphData serves separately
type WorkspaceDetail struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Instructions string         `json:"instructions,omitempty"`
	Documents    []DocumentView `json:"documents,omitempty"`
	CardCount    int            `json:"cardCount"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// HistoryStatus reports what undo and redo would currently do
type HistoryStatus struct {
	CanUndo   bool   `json:"canUndo"`
	CanRedo   bool   `json:"canRedo"`
	UndoLabel string `json:"undoLabel,omitempty"`
	RedoLabel string `json:"redoLabel,omitempty"`
}
