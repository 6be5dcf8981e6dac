package entities

import (
	"strings"
	"time"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/events"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// Card is a conversation node on the canvas. It owns its transcript, its
// ordered parent list and its cached inherited context. All mutation goes
// through methods; the workspace aggregate is the only writer.
type Card struct {
	id          valueobjects.CardID
	workspaceID valueobjects.WorkspaceID
	title       string
	autoTitle   bool
	tags        []string
	messages    []valueobjects.Message

	// parentIDs is authoritative; edges are derived from it, never the
	// reverse. Index 0 is the primary lineage.
	parentIDs []valueobjects.CardID
	mergeNode bool

	inheritanceMode valueobjects.InheritanceMode
	branchReason    string
	// branchCut is the message index in the primary parent up to which
	// context is inherited. -1 means the whole transcript (roots, merges).
	branchCut       int
	contextSummary  string
	customSelection []int
	inherited       valueobjects.InheritedContext

	position  valueobjects.Position
	createdAt time.Time
	updatedAt time.Time
	version   int

	events []events.DomainEvent
}

// NewRootCard creates a fresh zero-parent conversation card. A zero id
// means callers do not care and one is generated; the API layer passes
// a pre-allocated id so it can reference the card before the command
// completes.
func NewRootCard(id valueobjects.CardID, workspaceID valueobjects.WorkspaceID, position valueobjects.Position) (*Card, error) {
	if workspaceID.IsZero() {
		return nil, pkgerrors.NewValidationError("workspaceID cannot be empty")
	}
	if id.IsZero() {
		id = valueobjects.NewCardID()
	}

	now := time.Now()
	card := &Card{
		id:              id,
		workspaceID:     workspaceID,
		title:           "New conversation",
		autoTitle:       true,
		inheritanceMode: valueobjects.InheritFull,
		branchCut:       -1,
		position:        position,
		createdAt:       now,
		updatedAt:       now,
		version:         1,
	}

	card.addEvent(events.NewCardCreated(card.id, workspaceID, now))
	return card, nil
}

// NewBranchCard creates a single-parent card forked at a cut point. The
// inherited context is resolved by the caller before construction; on
// success the new card's ancestry is the source's ancestry plus the source.
func NewBranchCard(
	id valueobjects.CardID,
	workspaceID valueobjects.WorkspaceID,
	bp valueobjects.BranchPoint,
	inherited valueobjects.InheritedContext,
	position valueobjects.Position,
) (*Card, error) {
	if workspaceID.IsZero() {
		return nil, pkgerrors.NewValidationError("workspaceID cannot be empty")
	}
	if err := bp.Validate(); err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	if id.IsZero() {
		id = valueobjects.NewCardID()
	}

	title := strings.TrimSpace(bp.BranchReason)
	autoTitle := false
	if title == "" {
		title = "Branch"
		autoTitle = true
	}

	now := time.Now()
	card := &Card{
		id:              id,
		workspaceID:     workspaceID,
		title:           title,
		autoTitle:       autoTitle,
		parentIDs:       []valueobjects.CardID{bp.SourceCardID},
		inheritanceMode: bp.InheritanceMode,
		branchReason:    bp.BranchReason,
		branchCut:       bp.MessageIndex,
		customSelection: append([]int(nil), bp.CustomSelection...),
		inherited:       inherited,
		position:        position,
		createdAt:       now,
		updatedAt:       now,
		version:         1,
	}

	card.addEvent(events.NewCardBranched(card.id, bp, now))
	return card, nil
}

// NewMergeCard creates a multi-parent card combining several lineages.
// Parent order is attachment order and is preserved for deterministic
// display; the first parent is the primary lineage.
func NewMergeCard(
	id valueobjects.CardID,
	workspaceID valueobjects.WorkspaceID,
	parentIDs []valueobjects.CardID,
	inherited valueobjects.InheritedContext,
	position valueobjects.Position,
	cfg *config.DomainConfig,
) (*Card, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if workspaceID.IsZero() {
		return nil, pkgerrors.NewValidationError("workspaceID cannot be empty")
	}
	if len(parentIDs) < 2 {
		return nil, pkgerrors.NewValidationError("a merge needs at least two source cards")
	}
	if len(parentIDs) > cfg.MaxMergeParents {
		return nil, pkgerrors.NewMergeLimitError("(new merge)", cfg.MaxMergeParents)
	}
	seen := make(map[valueobjects.CardID]bool, len(parentIDs))
	for _, pid := range parentIDs {
		if pid.IsZero() {
			return nil, pkgerrors.NewValidationError("merge source id cannot be empty")
		}
		if seen[pid] {
			return nil, pkgerrors.NewValidationError("merge sources must be distinct")
		}
		seen[pid] = true
	}
	if id.IsZero() {
		id = valueobjects.NewCardID()
	}

	now := time.Now()
	card := &Card{
		id:              id,
		workspaceID:     workspaceID,
		title:           "Merged conversation",
		autoTitle:       true,
		parentIDs:       append([]valueobjects.CardID(nil), parentIDs...),
		mergeNode:       true,
		inheritanceMode: valueobjects.InheritFull,
		branchCut:       -1,
		inherited:       inherited,
		position:        position,
		createdAt:       now,
		updatedAt:       now,
		version:         1,
	}

	complex := len(parentIDs) >= cfg.ComplexMergeThreshold
	card.addEvent(events.NewCardsMerged(card.id, card.ParentCardIDs(), complex, now))
	return card, nil
}

// Accessors

// ID returns the card's unique identifier
func (c *Card) ID() valueobjects.CardID { return c.id }

// WorkspaceID returns the containing workspace
func (c *Card) WorkspaceID() valueobjects.WorkspaceID { return c.workspaceID }

// Title returns the card's title
func (c *Card) Title() string { return c.title }

// IsAutoTitle reports whether the title was generated rather than set by hand
func (c *Card) IsAutoTitle() bool { return c.autoTitle }

// Position returns the card's canvas position
func (c *Card) Position() valueobjects.Position { return c.position }

// IsMergeNode reports whether the card combines multiple lineages.
// Holds exactly when the parent count is greater than one.
func (c *Card) IsMergeNode() bool { return c.mergeNode }

// InheritanceMode returns the mode chosen at branch time
func (c *Card) InheritanceMode() valueobjects.InheritanceMode { return c.inheritanceMode }

// BranchReason returns the reason supplied when the card was branched
func (c *Card) BranchReason() string { return c.branchReason }

// BranchCut returns the message index in the primary parent up to which
// context is inherited, or -1 for the whole transcript
func (c *Card) BranchCut() int { return c.branchCut }

// ContextSummary returns the opaque summary text supplied out-of-band
func (c *Card) ContextSummary() string { return c.contextSummary }

// CustomSelection returns the caller-supplied message indices for custom mode
func (c *Card) CustomSelection() []int {
	return append([]int(nil), c.customSelection...)
}

// InheritedContext returns the cached resolved context
func (c *Card) InheritedContext() valueobjects.InheritedContext { return c.inherited }

// Messages returns a copy of the card's own transcript
func (c *Card) Messages() []valueobjects.Message {
	return valueobjects.CopyMessages(c.messages)
}

// MessageCount returns the transcript length
func (c *Card) MessageCount() int { return len(c.messages) }

// ParentCardIDs returns a copy of the ordered parent list
func (c *Card) ParentCardIDs() []valueobjects.CardID {
	return append([]valueobjects.CardID(nil), c.parentIDs...)
}

// ParentCount returns the number of parents
func (c *Card) ParentCount() int { return len(c.parentIDs) }

// PrimaryParentID returns the first-attached parent, the documented
// tie-break for lineage walks. The second return is false for roots.
func (c *Card) PrimaryParentID() (valueobjects.CardID, bool) {
	if len(c.parentIDs) == 0 {
		return valueobjects.CardID{}, false
	}
	return c.parentIDs[0], true
}

// HasParent reports whether id is a direct parent
func (c *Card) HasParent(id valueobjects.CardID) bool {
	for _, pid := range c.parentIDs {
		if pid.Equals(id) {
			return true
		}
	}
	return false
}

// Tags returns a copy of the card's tags
func (c *Card) Tags() []string {
	return append([]string(nil), c.tags...)
}

// CreatedAt returns when the card was created
func (c *Card) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns when the card was last updated
func (c *Card) UpdatedAt() time.Time { return c.updatedAt }

// Version returns the card's version
func (c *Card) Version() int { return c.version }

// Mutations

// AppendMessage adds a message to the end of the transcript
func (c *Card) AppendMessage(msg valueobjects.Message, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if !msg.Role.IsValid() {
		return pkgerrors.NewValidationError("message role must be user, assistant or system")
	}
	if len(c.messages) >= cfg.MaxMessagesPerCard {
		return pkgerrors.NewValidationError("maximum messages per card reached")
	}

	c.messages = append(c.messages, msg)
	c.touch()

	c.addEvent(events.NewMessageAppended(c.id, msg.Role, len(c.messages), c.updatedAt))
	return nil
}

// Rename sets a manual title
func (c *Card) Rename(title string, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return pkgerrors.NewValidationError("title cannot be empty")
	}
	if len(title) > cfg.MaxTitleLength {
		return pkgerrors.NewValidationError("title exceeds maximum length")
	}
	if title == c.title {
		return nil
	}

	oldTitle := c.title
	c.title = title
	c.autoTitle = false
	c.touch()

	c.addEvent(events.NewCardRenamed(c.id, oldTitle, title, c.updatedAt))
	return nil
}

// MoveTo moves the card to a new canvas position
func (c *Card) MoveTo(position valueobjects.Position) {
	if position.Equals(c.position) {
		return
	}
	oldPos := c.position
	c.position = position
	c.touch()

	c.addEvent(events.NewCardMoved(c.id, oldPos, position, c.updatedAt))
}

// AddTag adds a tag if not already present
func (c *Card) AddTag(tag string, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return pkgerrors.NewValidationError("tag cannot be empty")
	}
	for _, t := range c.tags {
		if t == tag {
			return nil
		}
	}
	if len(c.tags) >= cfg.MaxTagsPerCard {
		return pkgerrors.NewValidationError("maximum tags per card reached")
	}
	c.tags = append(c.tags, tag)
	c.touch()
	return nil
}

// RemoveTag removes a tag
func (c *Card) RemoveTag(tag string) error {
	for i, t := range c.tags {
		if t == tag {
			c.tags = append(c.tags[:i], c.tags[i+1:]...)
			c.touch()
			return nil
		}
	}
	return pkgerrors.NewNotFoundError("tag")
}

// AttachParent appends a parent to the ordered list. It rejects, never
// truncates: a parent beyond the ceiling returns MergeLimitError and
// leaves the list untouched. Cycle checking against the wider graph is
// the workspace's responsibility; the card can only see itself.
func (c *Card) AttachParent(parentID valueobjects.CardID, cfg *config.DomainConfig) error {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if parentID.IsZero() {
		return pkgerrors.NewValidationError("parent id cannot be empty")
	}
	if parentID.Equals(c.id) {
		return pkgerrors.NewSelfReferenceError(c.id.String())
	}
	if c.HasParent(parentID) {
		return pkgerrors.NewConflictError("parent already attached")
	}
	if len(c.parentIDs) >= cfg.MaxMergeParents {
		return pkgerrors.NewMergeLimitError(c.id.String(), cfg.MaxMergeParents)
	}

	c.parentIDs = append(c.parentIDs, parentID)
	c.mergeNode = len(c.parentIDs) > 1
	c.touch()

	c.addEvent(events.NewMergeParentAdded(c.id, parentID, len(c.parentIDs), c.updatedAt))
	return nil
}

// DetachParent removes a parent entry, demoting a merge node to a branch
// node or a root as the count drops. Used by cascading delete.
func (c *Card) DetachParent(parentID valueobjects.CardID) error {
	for i, pid := range c.parentIDs {
		if pid.Equals(parentID) {
			c.parentIDs = append(c.parentIDs[:i], c.parentIDs[i+1:]...)
			c.mergeNode = len(c.parentIDs) > 1
			c.touch()
			return nil
		}
	}
	return pkgerrors.NewNotFoundError("parent")
}

// SetInheritedContext replaces the cached resolved context
func (c *Card) SetInheritedContext(ctx valueobjects.InheritedContext) {
	c.inherited = ctx
	c.touch()
}

// SetContextSummary stores the opaque summary text produced by the
// external summarization service. The engine never derives or validates
// it, only stores and propagates it.
func (c *Card) SetContextSummary(text string) {
	c.contextSummary = text
	c.touch()
}

// Events

// GetUncommittedEvents returns all uncommitted domain events
func (c *Card) GetUncommittedEvents() []events.DomainEvent {
	return c.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (c *Card) MarkEventsAsCommitted() {
	c.events = nil
}

func (c *Card) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}

func (c *Card) touch() {
	c.updatedAt = time.Now()
	c.version++
}
