package valueobjects

import "math"

// Position is a 2D coordinate on the infinite canvas.
// Placement is presentation state, not a graph invariant.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition creates a position
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Equals checks positional equality within a small tolerance
func (p Position) Equals(other Position) bool {
	const epsilon = 0.5
	return math.Abs(p.X-other.X) < epsilon && math.Abs(p.Y-other.Y) < epsilon
}

// Translate returns a position offset by dx, dy
func (p Position) Translate(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}
