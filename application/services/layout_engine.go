package services

import (
	"hash/fnv"
	"math"

	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/aggregates"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/entities"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
)

// LayoutMode names the algorithm a layout pass used
type LayoutMode string

const (
	// LayoutModeTree ranks cards by depth and packs subtrees side by side.
	// Only valid when the graph is a forest, i.e. no merge nodes.
	LayoutModeTree LayoutMode = "tree"
	// LayoutModeSpread falls back to a deterministic grid when merge
	// nodes make tree ranks ambiguous.
	LayoutModeSpread LayoutMode = "spread"
)

// LayoutResult is the outcome of a layout pass. Positions maps every
// card to its computed coordinates; HasChanges is false when every card
// already sits within tolerance of its computed spot, letting callers
// skip a no-op history entry.
type LayoutResult struct {
	Positions  map[valueobjects.CardID]valueobjects.Position
	Mode       LayoutMode
	HasChanges bool
}

// LayoutEngine computes canvas positions for a whole workspace. It is
// deterministic: the same graph always yields the same coordinates,
// including the per-card jitter, which is derived from the card id
// rather than a random source. Geometry comes from the rule provider on
// every pass, so reloaded dimensions take effect immediately.
type LayoutEngine struct {
	rules  config.Provider
	logger *zap.Logger
}

// NewLayoutEngine creates a layout engine
func NewLayoutEngine(rules config.Provider, logger *zap.Logger) *LayoutEngine {
	if rules == nil {
		rules = config.StaticProvider(nil)
	}
	return &LayoutEngine{rules: rules, logger: logger}
}

// Compute lays out every card in the workspace. Tree layout applies
// when the graph has at least one edge and no merge nodes; otherwise
// the cards spread onto a grid in stable creation order.
func (e *LayoutEngine) Compute(ws *aggregates.Workspace) LayoutResult {
	cards := ws.Cards()
	result := LayoutResult{
		Positions: make(map[valueobjects.CardID]valueobjects.Position, len(cards)),
		Mode:      LayoutModeSpread,
	}
	if len(cards) == 0 {
		return result
	}

	cfg := e.rules.Current()
	if len(ws.Edges()) > 0 && !ws.HasMergeNodes() {
		result.Mode = LayoutModeTree
		e.layoutTree(ws, cards, cfg, result.Positions)
	} else {
		e.layoutSpread(cards, cfg, result.Positions)
	}

	for _, card := range cards {
		if !card.Position().Equals(result.Positions[card.ID()]) {
			result.HasChanges = true
			break
		}
	}

	e.logger.Debug("computed layout",
		zap.String("workspaceId", ws.ID().String()),
		zap.String("mode", string(result.Mode)),
		zap.Int("cards", len(cards)),
		zap.Bool("hasChanges", result.HasChanges),
	)
	return result
}

// layoutTree places each root's subtree in a packed horizontal band.
// A parent is centered over its children; leaves take one card width.
// Depth sets the vertical rank. Gaps exceed twice the jitter amplitude,
// so the jittered cards still never overlap.
func (e *LayoutEngine) layoutTree(ws *aggregates.Workspace, cards []*entities.Card, cfg *config.DomainConfig, out map[valueobjects.CardID]valueobjects.Position) {
	children := make(map[valueobjects.CardID][]*entities.Card, len(cards))
	for _, card := range cards {
		if pid, ok := card.PrimaryParentID(); ok {
			children[pid] = append(children[pid], card)
		}
	}

	widths := make(map[valueobjects.CardID]float64, len(cards))
	visited := make(map[valueobjects.CardID]bool, len(cards))

	var measure func(card *entities.Card) float64
	measure = func(card *entities.Card) float64 {
		if visited[card.ID()] {
			return 0
		}
		visited[card.ID()] = true
		kids := children[card.ID()]
		if len(kids) == 0 {
			widths[card.ID()] = cfg.CardWidth
			return cfg.CardWidth
		}
		var w float64
		for i, kid := range kids {
			if i > 0 {
				w += cfg.LayoutGapX
			}
			w += measure(kid)
		}
		if w < cfg.CardWidth {
			w = cfg.CardWidth
		}
		widths[card.ID()] = w
		return w
	}

	var place func(card *entities.Card, left float64, depth int)
	place = func(card *entities.Card, left float64, depth int) {
		w := widths[card.ID()]
		x := left + w/2 - cfg.CardWidth/2 + jitter(cfg, card.ID())
		y := float64(depth) * (cfg.CardHeight + cfg.LayoutGapY)
		out[card.ID()] = valueobjects.Position{X: x, Y: y}

		offset := left
		for _, kid := range children[card.ID()] {
			place(kid, offset, depth+1)
			offset += widths[kid.ID()] + cfg.LayoutGapX
		}
	}

	var cursor float64
	for _, root := range ws.Roots() {
		w := measure(root)
		place(root, cursor, 0)
		cursor += w + cfg.LayoutGapX
	}
}

// layoutSpread arranges cards on a near-square grid in creation order
func (e *LayoutEngine) layoutSpread(cards []*entities.Card, cfg *config.DomainConfig, out map[valueobjects.CardID]valueobjects.Position) {
	cols := int(math.Ceil(math.Sqrt(float64(len(cards)))))
	for i, card := range cards {
		col := i % cols
		row := i / cols
		out[card.ID()] = valueobjects.Position{
			X: float64(col)*(cfg.CardWidth+cfg.LayoutGapX) + jitter(cfg, card.ID()),
			Y: float64(row) * (cfg.CardHeight + cfg.LayoutGapY),
		}
	}
}

// BranchPosition suggests where a freshly branched card should land
// relative to its source, spread on a ring so sibling branches from the
// same card fan out instead of stacking.
func (e *LayoutEngine) BranchPosition(source valueobjects.Position, id valueobjects.CardID) valueobjects.Position {
	cfg := e.rules.Current()
	angle := float64(hashID(id)%360) * math.Pi / 180
	return valueobjects.Position{
		X: source.X + cfg.CardWidth + cfg.BranchSpawnRadius*math.Cos(angle)/2,
		Y: source.Y + cfg.CardHeight + cfg.BranchSpawnRadius*math.Sin(angle)/2,
	}
}

// MergePosition suggests where a merge card should land: below the
// lowest parent, centered horizontally between them.
func (e *LayoutEngine) MergePosition(parents []valueobjects.Position) valueobjects.Position {
	if len(parents) == 0 {
		return valueobjects.Position{}
	}
	cfg := e.rules.Current()
	var sumX, maxY float64
	maxY = math.Inf(-1)
	for _, p := range parents {
		sumX += p.X
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return valueobjects.Position{
		X: sumX / float64(len(parents)),
		Y: maxY + cfg.CardHeight + cfg.LayoutGapY,
	}
}

func jitter(cfg *config.DomainConfig, id valueobjects.CardID) float64 {
	if cfg.LayoutJitter <= 0 {
		return 0
	}
	span := int(cfg.LayoutJitter*2) + 1
	return float64(int(hashID(id))%span) - cfg.LayoutJitter
}

func hashID(id valueobjects.CardID) uint32 {
	h := fnv.New32a()
	h.Write([]byte(id.String()))
	return h.Sum32()
}
