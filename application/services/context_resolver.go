package services

import (
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/aggregates"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// ContextResolver computes the effective inherited context for a card
// from its ancestry. It is a pure function of the workspace state: it
// never mutates the store, and callers cache the result on the card.
type ContextResolver struct {
	logger *zap.Logger
}

// NewContextResolver creates a resolver
func NewContextResolver(logger *zap.Logger) *ContextResolver {
	return &ContextResolver{logger: logger}
}

// Resolve walks the card's ancestry and returns the context it inherits.
// For a branch card this is the primary lineage to the root; for a merge
// card it is the per-parent resolution concatenated in attachment order,
// so the LLM-facing caller sees every lineage, not just the breadcrumb
// one. The walk carries a visited set: a cycle should be impossible
// given the store invariants, but a corrupted snapshot must terminate
// rather than loop.
func (r *ContextResolver) Resolve(ws *aggregates.Workspace, cardID valueobjects.CardID) (valueobjects.InheritedContext, error) {
	card, err := ws.Card(cardID)
	if err != nil {
		return valueobjects.EmptyInheritedContext(), err
	}

	visited := map[valueobjects.CardID]bool{cardID: true}

	var segments []valueobjects.ContextSegment
	if ws.Instructions() != "" {
		segments = append(segments, valueobjects.ContextSegment{
			Mode:    valueobjects.InheritSummary,
			Summary: ws.Instructions(),
		})
	}

	for i, pid := range card.ParentCardIDs() {
		segments = append(segments, r.lineage(ws, pid, cutFor(i, card.BranchCut()), visited)...)
	}

	return r.applyMode(card, segments)
}

// ResolveUpTo resolves the context a prospective child would inherit if
// it branched from sourceID at messageIndex. Used by the branch operator
// before the child exists.
func (r *ContextResolver) ResolveUpTo(ws *aggregates.Workspace, sourceID valueobjects.CardID, messageIndex int) (valueobjects.InheritedContext, error) {
	source, err := ws.Card(sourceID)
	if err != nil {
		return valueobjects.EmptyInheritedContext(), err
	}
	if messageIndex < 0 || messageIndex >= source.MessageCount() {
		return valueobjects.EmptyInheritedContext(),
			pkgerrors.NewEmptySourceError(sourceID.String(), messageIndex, source.MessageCount())
	}

	visited := make(map[valueobjects.CardID]bool)
	segments := r.lineage(ws, sourceID, messageIndex, visited)
	return valueobjects.NewInheritedContext(segments), nil
}

// ResolveParents concatenates the full lineage of each parent in order,
// without applying any child-side mode. This is the raw context cached
// on a card at creation; cut applies to the parents' own transcripts
// and is negative for merges, which take whole transcripts.
func (r *ContextResolver) ResolveParents(ws *aggregates.Workspace, parentIDs []valueobjects.CardID, cut int) valueobjects.InheritedContext {
	visited := make(map[valueobjects.CardID]bool)
	var segments []valueobjects.ContextSegment
	for i, pid := range parentIDs {
		segments = append(segments, r.lineage(ws, pid, cutFor(i, cut), visited)...)
	}
	return valueobjects.NewInheritedContext(segments)
}

// cutFor limits only the primary lineage: the branch cut indexes into
// the card's original source; parents attached later contribute their
// whole transcripts.
func cutFor(i, branchCut int) int {
	if i == 0 {
		return branchCut
	}
	return -1
}

// lineage returns the context contribution of the card at id, cut at
// messageIndex (negative means the whole transcript), preceded by its
// own ancestors' contributions. Each ancestor contributes according to
// its own stored inheritance mode.
func (r *ContextResolver) lineage(ws *aggregates.Workspace, id valueobjects.CardID, cut int, visited map[valueobjects.CardID]bool) []valueobjects.ContextSegment {
	if visited[id] {
		r.logger.Warn("context walk revisited a card, short-circuiting",
			zap.String("cardId", id.String()),
		)
		return nil
	}
	visited[id] = true

	card, err := ws.Card(id)
	if err != nil {
		// Dangling reference: invariant 4 makes this unreachable, but the
		// walk must fail safe under a corrupted snapshot.
		r.logger.Warn("context walk hit a missing card", zap.String("cardId", id.String()))
		return nil
	}

	var segments []valueobjects.ContextSegment
	for i, pid := range card.ParentCardIDs() {
		segments = append(segments, r.lineage(ws, pid, cutFor(i, card.BranchCut()), visited)...)
	}

	messages := card.Messages()
	if cut >= 0 && cut < len(messages) {
		messages = messages[:cut+1]
	}

	switch card.InheritanceMode() {
	case valueobjects.InheritSummary:
		segments = append(segments, valueobjects.ContextSegment{
			SourceCardID: id,
			Mode:         valueobjects.InheritSummary,
			Summary:      card.ContextSummary(),
		})
	case valueobjects.InheritCustom:
		segments = append(segments, valueobjects.ContextSegment{
			SourceCardID: id,
			Mode:         valueobjects.InheritCustom,
			Messages:     selectMessages(messages, card.CustomSelection()),
		})
	default:
		segments = append(segments, valueobjects.ContextSegment{
			SourceCardID: id,
			Mode:         valueobjects.InheritFull,
			Messages:     messages,
		})
	}

	return segments
}

// applyMode decides how much of the concatenation the card itself
// exposes. Full passes everything through; summary replaces it with the
// opaque pre-computed condensation; custom filters to the caller's
// selection.
func (r *ContextResolver) applyMode(card cardView, segments []valueobjects.ContextSegment) (valueobjects.InheritedContext, error) {
	switch card.InheritanceMode() {
	case valueobjects.InheritFull:
		return valueobjects.NewInheritedContext(segments), nil

	case valueobjects.InheritSummary:
		primary, _ := card.PrimaryParentID()
		return valueobjects.NewInheritedContext([]valueobjects.ContextSegment{{
			SourceCardID: primary,
			Mode:         valueobjects.InheritSummary,
			Summary:      card.ContextSummary(),
		}}), nil

	case valueobjects.InheritCustom:
		var all []valueobjects.Message
		for _, seg := range segments {
			all = append(all, seg.Messages...)
		}
		primary, _ := card.PrimaryParentID()
		return valueobjects.NewInheritedContext([]valueobjects.ContextSegment{{
			SourceCardID: primary,
			Mode:         valueobjects.InheritCustom,
			Messages:     selectMessages(all, card.CustomSelection()),
		}}), nil
	}

	return valueobjects.EmptyInheritedContext(),
		pkgerrors.NewValidationError("unknown inheritance mode")
}

// cardView is the slice of the card surface the resolver needs
type cardView interface {
	InheritanceMode() valueobjects.InheritanceMode
	PrimaryParentID() (valueobjects.CardID, bool)
	ContextSummary() string
	CustomSelection() []int
}

func selectMessages(messages []valueobjects.Message, indices []int) []valueobjects.Message {
	var out []valueobjects.Message
	for _, i := range indices {
		if i >= 0 && i < len(messages) {
			out = append(out, messages[i])
		}
	}
	return out
}
