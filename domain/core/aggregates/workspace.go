package aggregates

import (
	"sort"
	"time"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/entities"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/events"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// KnowledgeDocument is an entry in the workspace knowledge base
type KnowledgeDocument struct {
	Title     string    `json:"title"`
	Markdown  string    `json:"markdown"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewKnowledgeDocument creates a document stamped with the current time
func NewKnowledgeDocument(title, markdown string) KnowledgeDocument {
	return KnowledgeDocument{Title: title, Markdown: markdown, CreatedAt: time.Now()}
}

// Workspace is the aggregate root for the conversation graph: a named,
// flat container of cards and their derived edges, plus workspace-level
// context (instructions and knowledge documents). It is the single
// source of truth; every mutation goes through its methods and leaves
// the graph invariants intact or fails without touching state.
type Workspace struct {
	id           valueobjects.WorkspaceID
	name         string
	instructions string
	documents    []KnowledgeDocument

	cards map[valueobjects.CardID]*entities.Card
	edges []Edge

	cfg       *config.DomainConfig
	createdAt time.Time
	updatedAt time.Time
	version   int

	events []events.DomainEvent
}

// NewWorkspace creates an empty workspace. A zero id gets generated;
// callers that need to reference the workspace up front allocate it.
func NewWorkspace(id valueobjects.WorkspaceID, name string, cfg *config.DomainConfig) (*Workspace, error) {
	if name == "" {
		return nil, pkgerrors.NewValidationError("workspace name cannot be empty")
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if id.IsZero() {
		id = valueobjects.NewWorkspaceID()
	}

	now := time.Now()
	ws := &Workspace{
		id:        id,
		name:      name,
		cards:     make(map[valueobjects.CardID]*entities.Card),
		cfg:       cfg,
		createdAt: now,
		updatedAt: now,
		version:   1,
	}

	ws.addEvent(events.NewWorkspaceCreated(ws.id, name, now))
	return ws, nil
}

// Accessors

// ID returns the workspace identifier
func (w *Workspace) ID() valueobjects.WorkspaceID { return w.id }

// Name returns the workspace name
func (w *Workspace) Name() string { return w.name }

// Instructions returns the workspace-level instructions text
func (w *Workspace) Instructions() string { return w.instructions }

// Documents returns a copy of the knowledge base entries
func (w *Workspace) Documents() []KnowledgeDocument {
	return append([]KnowledgeDocument(nil), w.documents...)
}

// CreatedAt returns when the workspace was created
func (w *Workspace) CreatedAt() time.Time { return w.createdAt }

// UpdatedAt returns when the workspace was last updated
func (w *Workspace) UpdatedAt() time.Time { return w.updatedAt }

// Version returns the workspace version
func (w *Workspace) Version() int { return w.version }

// Config returns the business-rule configuration in force
func (w *Workspace) Config() *config.DomainConfig { return w.cfg }

// SetConfig swaps the rule set in force. The repository calls it on
// every load so reloaded limits bind cached aggregates too. A nil cfg
// restores the defaults.
func (w *Workspace) SetConfig(cfg *config.DomainConfig) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	w.cfg = cfg
}

// Card retrieves a card by id
func (w *Workspace) Card(id valueobjects.CardID) (*entities.Card, error) {
	card, ok := w.cards[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("card " + id.String())
	}
	return card, nil
}

// HasCard checks existence without an error
func (w *Workspace) HasCard(id valueobjects.CardID) bool {
	_, ok := w.cards[id]
	return ok
}

// Cards returns all cards ordered by creation time then id, so every
// walk over the workspace is deterministic.
func (w *Workspace) Cards() []*entities.Card {
	out := make([]*entities.Card, 0, len(w.cards))
	for _, card := range w.cards {
		out = append(out, card)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().Before(out[j].CreatedAt())
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out
}

// CardCount returns the number of cards
func (w *Workspace) CardCount() int { return len(w.cards) }

// Edges returns a copy of the derived edge set
func (w *Workspace) Edges() []Edge {
	return append([]Edge(nil), w.edges...)
}

// Mutations

// SetInstructions replaces the workspace instructions text
func (w *Workspace) SetInstructions(text string) {
	if text == w.instructions {
		return
	}
	w.instructions = text
	w.touch()
}

// AddDocument appends a knowledge document
func (w *Workspace) AddDocument(doc KnowledgeDocument) error {
	if doc.Title == "" {
		return pkgerrors.NewValidationError("document title cannot be empty")
	}
	for _, d := range w.documents {
		if d.Title == doc.Title {
			return pkgerrors.NewConflictError("document title already exists")
		}
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	w.documents = append(w.documents, doc)
	w.touch()

	w.addEvent(events.NewKnowledgeDocumentAdded(w.id, doc.Title, w.updatedAt))
	return nil
}

// RecordLayoutApplied marks a completed layout pass. Positions are
// already moved card by card; this stamps the aggregate and raises the
// workspace-level event.
func (w *Workspace) RecordLayoutApplied(mode string, moved int) {
	w.touch()
	w.addEvent(events.NewLayoutApplied(w.id, mode, moved, w.updatedAt))
}

// AddCard admits a newly constructed card into the store. Every parent
// the card names must already exist; a brand-new card cannot close a
// cycle because nothing references it yet.
func (w *Workspace) AddCard(card *entities.Card) error {
	if card == nil {
		return pkgerrors.NewValidationError("card cannot be nil")
	}
	if !card.WorkspaceID().Equals(w.id) {
		return pkgerrors.NewValidationError("card belongs to a different workspace")
	}
	if _, exists := w.cards[card.ID()]; exists {
		return pkgerrors.NewConflictError("card already exists in workspace")
	}
	if len(w.cards) >= w.cfg.MaxCardsPerWorkspace {
		return pkgerrors.NewValidationError("maximum cards per workspace reached")
	}
	for _, pid := range card.ParentCardIDs() {
		if !w.HasCard(pid) {
			return pkgerrors.NewNotFoundError("parent card " + pid.String())
		}
	}

	w.cards[card.ID()] = card
	w.rebuildEdges()
	w.touch()
	return nil
}

// AddParent is the sole path by which a new parent edge comes into
// being. It checks existence, self-reference, reachability (the target
// must not be an ancestor of the candidate parent, or the edge would
// close a cycle) and the merge ceiling, in that order; on any failure
// the store is unchanged.
func (w *Workspace) AddParent(cardID, parentID valueobjects.CardID) (*Edge, error) {
	card, err := w.Card(cardID)
	if err != nil {
		return nil, err
	}
	if _, err := w.Card(parentID); err != nil {
		return nil, err
	}
	if cardID.Equals(parentID) {
		return nil, pkgerrors.NewSelfReferenceError(cardID.String())
	}
	if w.IsAncestor(cardID, parentID) {
		return nil, pkgerrors.NewCycleError(cardID.String(), parentID.String())
	}

	if err := card.AttachParent(parentID, w.cfg); err != nil {
		return nil, err
	}

	w.rebuildEdges()
	w.touch()

	for i := range w.edges {
		if w.edges[i].SourceID.Equals(parentID) && w.edges[i].TargetID.Equals(cardID) {
			edge := w.edges[i]
			return &edge, nil
		}
	}
	// Unreachable: AttachParent succeeded, so the rebuilt set contains it.
	return nil, pkgerrors.NewInternalError("edge missing after rebuild")
}

// DeleteCard removes a card. Descendants are never deleted: each card
// naming the deleted id as a parent has that entry stripped, which may
// demote a merge node to a branch node or to a root. Returns the ids of
// the detached children.
func (w *Workspace) DeleteCard(id valueobjects.CardID) ([]valueobjects.CardID, error) {
	if _, err := w.Card(id); err != nil {
		return nil, err
	}

	var detached []valueobjects.CardID
	for _, child := range w.Cards() {
		if child.HasParent(id) {
			if err := child.DetachParent(id); err != nil {
				return nil, err
			}
			detached = append(detached, child.ID())
		}
	}

	delete(w.cards, id)
	w.rebuildEdges()
	w.touch()

	w.addEvent(events.NewCardDeleted(id, detached, w.updatedAt))
	return detached, nil
}

// PutCard upserts a card wholesale. This is the restore path used by the
// undo/redo log and the persistence layer; it bypasses the creation
// checks because the incoming state is a previously valid snapshot.
func (w *Workspace) PutCard(card *entities.Card) {
	w.cards[card.ID()] = card
	w.rebuildEdges()
	w.touch()
}

// EvictCard removes a card without cascading. Restore path counterpart
// of PutCard; callers are responsible for re-establishing a valid state
// before control returns to readers.
func (w *Workspace) EvictCard(id valueobjects.CardID) {
	delete(w.cards, id)
	w.rebuildEdges()
	w.touch()
}

// Graph queries

// IsAncestor reports whether ancestorID is reachable from cardID by
// walking parent links transitively. Carries a visited set so a
// corrupted snapshot terminates instead of looping.
func (w *Workspace) IsAncestor(ancestorID, cardID valueobjects.CardID) bool {
	visited := make(map[valueobjects.CardID]bool)
	stack := []valueobjects.CardID{cardID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true

		card, ok := w.cards[current]
		if !ok {
			continue
		}
		for _, pid := range card.ParentCardIDs() {
			if pid.Equals(ancestorID) {
				return true
			}
			stack = append(stack, pid)
		}
	}
	return false
}

// Roots returns cards with no parents, in deterministic order
func (w *Workspace) Roots() []*entities.Card {
	var roots []*entities.Card
	for _, card := range w.Cards() {
		if card.ParentCount() == 0 {
			roots = append(roots, card)
		}
	}
	return roots
}

// ChildrenOf returns cards naming id as a direct parent, in
// deterministic order
func (w *Workspace) ChildrenOf(id valueobjects.CardID) []*entities.Card {
	var children []*entities.Card
	for _, card := range w.Cards() {
		if card.HasParent(id) {
			children = append(children, card)
		}
	}
	return children
}

// HasMergeNodes reports whether any card combines multiple lineages
func (w *Workspace) HasMergeNodes() bool {
	for _, card := range w.cards {
		if card.IsMergeNode() {
			return true
		}
	}
	return false
}

// Validate checks every graph invariant. A healthy store passes after
// each mutation; a failure indicates corruption, not a rejected call.
func (w *Workspace) Validate() error {
	// No dangling parent references
	for _, card := range w.cards {
		for _, pid := range card.ParentCardIDs() {
			if !w.HasCard(pid) {
				return pkgerrors.NewInternalError("card " + card.ID().String() + " references missing parent " + pid.String())
			}
		}
	}

	// Parent count bounds and merge flag consistency
	for _, card := range w.cards {
		if card.ParentCount() > w.cfg.MaxMergeParents {
			return pkgerrors.NewInternalError("card " + card.ID().String() + " exceeds the parent ceiling")
		}
		if card.IsMergeNode() != (card.ParentCount() > 1) {
			return pkgerrors.NewInternalError("card " + card.ID().String() + " has an inconsistent merge flag")
		}
	}

	// Acyclicity over parent links
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[valueobjects.CardID]int, len(w.cards))
	var visit func(id valueobjects.CardID) bool
	visit = func(id valueobjects.CardID) bool {
		color[id] = grey
		card := w.cards[id]
		for _, pid := range card.ParentCardIDs() {
			switch color[pid] {
			case grey:
				return false
			case white:
				if !visit(pid) {
					return false
				}
			}
		}
		color[id] = black
		return true
	}
	for id := range w.cards {
		if color[id] == white {
			if !visit(id) {
				return pkgerrors.NewInternalError("parent graph contains a cycle")
			}
		}
	}

	// Edge set is exactly the image of parentCardIDs
	expected := make(map[string]bool)
	for _, card := range w.cards {
		for _, pid := range card.ParentCardIDs() {
			expected[edgeID(pid, card.ID())] = true
		}
	}
	if len(expected) != len(w.edges) {
		return pkgerrors.NewInternalError("edge set diverged from parent lists")
	}
	for _, e := range w.edges {
		if !expected[e.ID] {
			return pkgerrors.NewInternalError("orphan edge " + e.ID)
		}
	}

	return nil
}

// Events

// GetUncommittedEvents returns workspace events plus every card's events
func (w *Workspace) GetUncommittedEvents() []events.DomainEvent {
	all := append([]events.DomainEvent(nil), w.events...)
	for _, card := range w.Cards() {
		all = append(all, card.GetUncommittedEvents()...)
	}
	return all
}

// MarkEventsAsCommitted clears all uncommitted events
func (w *Workspace) MarkEventsAsCommitted() {
	w.events = nil
	for _, card := range w.cards {
		card.MarkEventsAsCommitted()
	}
}

// Internal helpers

// rebuildEdges regenerates the derived edge set from the authoritative
// parent lists. Iteration is over deterministically ordered cards so the
// edge slice is stable for equal input.
func (w *Workspace) rebuildEdges() {
	var edges []Edge
	now := time.Now()
	for _, card := range w.Cards() {
		kind := EdgeKindReference
		if card.IsMergeNode() {
			kind = EdgeKindMerge
		}
		for _, pid := range card.ParentCardIDs() {
			edges = append(edges, Edge{
				ID:        edgeID(pid, card.ID()),
				SourceID:  pid,
				TargetID:  card.ID(),
				Kind:      kind,
				CreatedAt: now,
			})
		}
	}
	w.edges = edges
}

func (w *Workspace) addEvent(event events.DomainEvent) {
	w.events = append(w.events, event)
}

func (w *Workspace) touch() {
	w.updatedAt = time.Now()
	w.version++
}
