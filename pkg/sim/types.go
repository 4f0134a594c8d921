package sim

import "math"

// Size2D defines the rectangular size in 2D.
type Size2D struct {
	CX, CY float64
}

// Pos2D defines the position in 2D.
type Pos2D struct {
	X, Y float64
}

// Rect defines a rectangle in 2D.
type Rect struct {
	Pos2D
	Size2D
}

// Pose2D defines the pose in 2D.
type Pose2D struct {
	Pos2D
	Orientation Angle
}

// Angle is the common representation of angle,
// supporting multiple units.
type Angle float64

// DistanceTo gets the euclidean distance.
func (p Pos2D) DistanceTo(p1 Pos2D) float64 {
	return math.Hypot(p1.X-p.X, p1.Y-p.Y)
}

// Contains tells whether the point is inside the rectangle.
func (r Rect) Contains(p Pos2D) bool {
	return p.X >= r.X && p.X <= r.X+r.CX && p.Y >= r.Y && p.Y <= r.Y+r.CY
}

// Local converts a point in the body frame (X forward, Y left)
// into the world frame.
func (p Pose2D) Local(offset Pos2D) Pos2D {
	c, s := p.Orientation.Cos(), p.Orientation.Sin()
	return Pos2D{
		X: p.X + c*offset.X - s*offset.Y,
		Y: p.Y + s*offset.X + c*offset.Y,
	}
}
