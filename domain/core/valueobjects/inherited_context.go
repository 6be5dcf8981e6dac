package valueobjects

// ContextSegment is one ancestor's contribution to a card's inherited
// context, tagged with the mode that produced it and where it came from.
// A zero SourceCardID marks the workspace-level instructions segment.
type ContextSegment struct {
	SourceCardID CardID          `json:"sourceCardId"`
	Mode         InheritanceMode `json:"mode"`
	Messages     []Message       `json:"messages,omitempty"`
	Summary      string          `json:"summary,omitempty"`
}

// MessageCount returns the number of messages carried by the segment
func (s ContextSegment) MessageCount() int {
	return len(s.Messages)
}

// InheritedContext is the resolved set of ancestor content visible to a
// card, ordered by lineage then parent attachment order.
type InheritedContext struct {
	segments []ContextSegment
}

// NewInheritedContext builds a context from resolved segments
func NewInheritedContext(segments []ContextSegment) InheritedContext {
	return InheritedContext{segments: copySegments(segments)}
}

// EmptyInheritedContext returns a context with no ancestor content
func EmptyInheritedContext() InheritedContext {
	return InheritedContext{}
}

// Segments returns a copy of the ordered segments
func (c InheritedContext) Segments() []ContextSegment {
	return copySegments(c.segments)
}

// Messages flattens every segment's messages in order. Summary segments
// contribute no messages; their text is opaque to the engine.
func (c InheritedContext) Messages() []Message {
	var out []Message
	for _, seg := range c.segments {
		out = append(out, seg.Messages...)
	}
	return out
}

// MessageCount returns the total number of inherited messages
func (c InheritedContext) MessageCount() int {
	n := 0
	for _, seg := range c.segments {
		n += len(seg.Messages)
	}
	return n
}

// IsEmpty reports whether any ancestor content is present
func (c InheritedContext) IsEmpty() bool {
	return len(c.segments) == 0
}

// AncestorIDs returns the distinct source card ids in segment order
func (c InheritedContext) AncestorIDs() []CardID {
	seen := make(map[CardID]bool)
	var out []CardID
	for _, seg := range c.segments {
		if seg.SourceCardID.IsZero() || seen[seg.SourceCardID] {
			continue
		}
		seen[seg.SourceCardID] = true
		out = append(out, seg.SourceCardID)
	}
	return out
}

func copySegments(segments []ContextSegment) []ContextSegment {
	if len(segments) == 0 {
		return nil
	}
	out := make([]ContextSegment, len(segments))
	for i, seg := range segments {
		out[i] = seg
		out[i].Messages = CopyMessages(seg.Messages)
	}
	return out
}
