package aggregates

import (
	"time"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
)

// EdgeKind classifies a parent relation for rendering
type EdgeKind string

const (
	// EdgeKindReference links a single-parent branch card to its source
	EdgeKindReference EdgeKind = "reference"
	// EdgeKindMerge links a multi-parent merge node to one of its sources
	EdgeKindMerge EdgeKind = "merge"
)

// Edge is a directed parent→child relation. Edges are a derived view of
// each card's parent list: the workspace regenerates them from
// parentCardIDs after every mutation and never edits them independently,
// so the two can never diverge.
type Edge struct {
	ID        string              `json:"id"`
	SourceID  valueobjects.CardID `json:"sourceCardId"`
	TargetID  valueobjects.CardID `json:"targetCardId"`
	Kind      EdgeKind            `json:"kind"`
	CreatedAt time.Time           `json:"createdAt"`
}

// edgeID is deterministic so regeneration is stable across rebuilds
func edgeID(sourceID, targetID valueobjects.CardID) string {
	return sourceID.String() + "->" + targetID.String()
}
