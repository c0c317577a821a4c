// Package core provides the fundamental types shared by the layout engine,
// the widget store and the platform front-ends. It has no external
// dependencies so the engine packages stay pure and testable.
package core

import "math"

// Point is a pointer position in pixels.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned box in pixels.
type Rect struct {
	X, Y float64 // Top-left corner
	W, H float64 // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Area returns W*H.
func (r Rect) Area() float64 {
	return r.W * r.H
}

// Grow returns the rectangle expanded by d on every side.
func (r Rect) Grow(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// Epsilon is the pixel tolerance used when comparing edges. Fractional grid
// sizes and offsets make edges that should coincide differ in the last bits.
const Epsilon = 1e-6

// Intersects reports whether two rectangles overlap.
// Rectangles that only share an edge (within Epsilon) do not intersect.
func (r Rect) Intersects(other Rect) bool {
	// No overlap if one rect is completely to the left, right, above, or below
	if r.X >= other.Right()-Epsilon || other.X >= r.Right()-Epsilon {
		return false
	}
	if r.Y >= other.Bottom()-Epsilon || other.Y >= r.Bottom()-Epsilon {
		return false
	}
	return true
}

// Contains returns true if the point (x, y) is inside this rectangle.
// The right and bottom edges are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// ContainsRect reports whether other lies fully inside r. Shared edges count
// as inside.
func (r Rect) ContainsRect(other Rect) bool {
	return other.X >= r.X-Epsilon && other.Y >= r.Y-Epsilon &&
		other.Right() <= r.Right()+Epsilon && other.Bottom() <= r.Bottom()+Epsilon
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Bounds is a min/max form of a rectangle, used for clamping.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Rect converts the bounds back to a Rect.
func (b Bounds) Rect() Rect {
	return Rect{X: b.MinX, Y: b.MinY, W: b.MaxX - b.MinX, H: b.MaxY - b.MinY}
}

// Clamp restricts a value to be within [min, max].
// When max < min the lower bound wins.
func Clamp(val, min, max float64) float64 {
	if val > max {
		val = max
	}
	if val < min {
		val = min
	}
	return val
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Distance returns the euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// NearlyEqual compares pixel coordinates with a tolerance that absorbs
// floating point noise from repeated snapping.
func NearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}
