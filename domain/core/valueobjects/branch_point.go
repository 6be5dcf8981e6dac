package valueobjects

import "errors"

// InheritanceMode governs how much ancestor content a card's
// inherited context includes.
type InheritanceMode string

const (
	// InheritFull exposes every ancestor message up to the branch point
	InheritFull InheritanceMode = "full"
	// InheritSummary exposes an opaque pre-computed condensation. The
	// summary text is produced outside the engine and never re-derived here.
	InheritSummary InheritanceMode = "summary"
	// InheritCustom exposes an explicit caller-supplied subset of messages
	InheritCustom InheritanceMode = "custom"
)

// IsValid reports whether the mode is one of the known modes
func (m InheritanceMode) IsValid() bool {
	switch m {
	case InheritFull, InheritSummary, InheritCustom:
		return true
	}
	return false
}

// BranchPoint specifies how a new card is forked from a cut point in an
// existing card's transcript.
type BranchPoint struct {
	SourceCardID    CardID
	MessageIndex    int
	InheritanceMode InheritanceMode
	BranchReason    string
	// CustomSelection holds message indices into the resolved concatenation,
	// only meaningful when InheritanceMode is custom.
	CustomSelection []int
}

// NewBranchPoint creates a validated branch point
func NewBranchPoint(sourceCardID CardID, messageIndex int, mode InheritanceMode, reason string) (BranchPoint, error) {
	bp := BranchPoint{
		SourceCardID:    sourceCardID,
		MessageIndex:    messageIndex,
		InheritanceMode: mode,
		BranchReason:    reason,
	}
	if err := bp.Validate(); err != nil {
		return BranchPoint{}, err
	}
	return bp, nil
}

// Validate checks the branch point's internal consistency. Bounds against
// the source card's actual message count are checked by the store, which
// owns the card.
func (bp BranchPoint) Validate() error {
	if bp.SourceCardID.IsZero() {
		return errors.New("branch point requires a source card")
	}
	if bp.MessageIndex < 0 {
		return errors.New("message index cannot be negative")
	}
	if !bp.InheritanceMode.IsValid() {
		return errors.New("inheritance mode must be full, summary or custom")
	}
	return nil
}
