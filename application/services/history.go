package services

import (
	"sync"

	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/aggregates"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/entities"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// Entry is one reversible mutation. Pre holds the snapshots of every
// card the mutation touched, taken before it ran; Post holds the same
// cards after. Created and Deleted list the ids the forward direction
// added or removed, so replay knows which cards to evict rather than
// restore.
type Entry struct {
	Label   string
	Pre     []entities.CardSnapshot
	Post    []entities.CardSnapshot
	Created []valueobjects.CardID
	Deleted []valueobjects.CardID
}

func (e *Entry) applyBackward(ws *aggregates.Workspace) error {
	for _, id := range e.Created {
		ws.EvictCard(id)
	}
	for _, snap := range e.Pre {
		card, err := entities.ReconstructCard(snap)
		if err != nil {
			return pkgerrors.Wrap(err, pkgerrors.ErrorTypeInternal, "undo replay failed")
		}
		ws.PutCard(card)
	}
	return nil
}

func (e *Entry) applyForward(ws *aggregates.Workspace) error {
	for _, id := range e.Deleted {
		ws.EvictCard(id)
	}
	for _, snap := range e.Post {
		card, err := entities.ReconstructCard(snap)
		if err != nil {
			return pkgerrors.Wrap(err, pkgerrors.ErrorTypeInternal, "redo replay failed")
		}
		ws.PutCard(card)
	}
	return nil
}

type wsHistory struct {
	undo []*Entry
	redo []*Entry
}

// History keeps a bounded per-workspace log of reversible mutations.
// Record pushes a forward mutation and clears the redo stack; Undo and
// Redo move entries between the two stacks while replaying snapshots
// into the workspace. The log is in-memory only and is dropped with the
// workspace.
type History struct {
	mu     sync.Mutex
	rules  config.Provider
	stacks map[string]*wsHistory
	logger *zap.Logger
}

// NewHistory creates a log bounded by the provider's UndoDepth. The
// depth is read on every Record, so a reloaded limit trims from the
// next mutation on.
func NewHistory(rules config.Provider, logger *zap.Logger) *History {
	if rules == nil {
		rules = config.StaticProvider(nil)
	}
	return &History{
		rules:  rules,
		stacks: make(map[string]*wsHistory),
		logger: logger,
	}
}

// Record registers a completed forward mutation. Any redoable entries
// are discarded: after a new mutation the old future is unreachable.
func (h *History) Record(workspaceID valueobjects.WorkspaceID, entry *Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	depth := h.rules.Current().UndoDepth
	if depth <= 0 {
		depth = 1
	}
	s := h.stack(workspaceID)
	s.undo = append(s.undo, entry)
	s.redo = nil
	if len(s.undo) > depth {
		s.undo = s.undo[len(s.undo)-depth:]
	}
}

// Undo reverts the latest recorded mutation against ws and returns its
// label for display.
func (h *History) Undo(ws *aggregates.Workspace) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.stack(ws.ID())
	if len(s.undo) == 0 {
		return "", pkgerrors.NewValidationError("nothing to undo")
	}
	entry := s.undo[len(s.undo)-1]
	if err := entry.applyBackward(ws); err != nil {
		return "", err
	}
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, entry)

	h.logger.Debug("undid mutation",
		zap.String("workspaceId", ws.ID().String()),
		zap.String("label", entry.Label),
	)
	return entry.Label, nil
}

// Redo re-applies the latest undone mutation against ws.
func (h *History) Redo(ws *aggregates.Workspace) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.stack(ws.ID())
	if len(s.redo) == 0 {
		return "", pkgerrors.NewValidationError("nothing to redo")
	}
	entry := s.redo[len(s.redo)-1]
	if err := entry.applyForward(ws); err != nil {
		return "", err
	}
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, entry)

	h.logger.Debug("redid mutation",
		zap.String("workspaceId", ws.ID().String()),
		zap.String("label", entry.Label),
	)
	return entry.Label, nil
}

// CanUndo reports whether the workspace has at least one undoable entry.
func (h *History) CanUndo(workspaceID valueobjects.WorkspaceID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stack(workspaceID).undo) > 0
}

// CanRedo reports whether the workspace has at least one redoable entry.
func (h *History) CanRedo(workspaceID valueobjects.WorkspaceID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stack(workspaceID).redo) > 0
}

// NextUndoLabel returns the label that Undo would revert, if any.
func (h *History) NextUndoLabel(workspaceID valueobjects.WorkspaceID) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.stack(workspaceID)
	if len(s.undo) == 0 {
		return "", false
	}
	return s.undo[len(s.undo)-1].Label, true
}

// NextRedoLabel returns the label that Redo would re-apply, if any.
func (h *History) NextRedoLabel(workspaceID valueobjects.WorkspaceID) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.stack(workspaceID)
	if len(s.redo) == 0 {
		return "", false
	}
	return s.redo[len(s.redo)-1].Label, true
}

// Drop discards both stacks for a workspace, used when it is deleted.
func (h *History) Drop(workspaceID valueobjects.WorkspaceID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.stacks, workspaceID.String())
}

func (h *History) stack(workspaceID valueobjects.WorkspaceID) *wsHistory {
	key := workspaceID.String()
	s, ok := h.stacks[key]
	if !ok {
		s = &wsHistory{}
		h.stacks[key] = s
	}
	return s
}
