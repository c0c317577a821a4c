// Package collision detects overlapping widgets and searches for nearby
// collision-free positions and sizes. Every function works on a snapshot of
// the widget list and never mutates it.
//
// Widgets are compared by their padded boxes (the visible box grown by the
// grid padding), so two widgets that are visually adjacent always keep a
// 2*Padding gap.
package collision

import (
	"github.com/vovakirdan/gridfolio/internal/core"
	"github.com/vovakirdan/gridfolio/internal/grid"
)

// DefaultSearchRadius is the largest ring, in grid cells, the spiral search visits.
const DefaultSearchRadius = 20

// CheckCollision reports whether two rectangles overlap. Rectangles that only
// touch along an edge do not collide. The test is symmetric.
func CheckCollision(a, b core.Rect) bool {
	return a.Intersects(b)
}

// HasCollisionWithOthers reports whether r overlaps any widget other than
// excludeID. Both r and every widget are grown by padding first.
func HasCollisionWithOthers(r core.Rect, widgets []core.Widget, excludeID string, padding float64) bool {
	padded := r.Grow(padding)
	for i := range widgets {
		if widgets[i].ID == excludeID {
			continue
		}
		if CheckCollision(padded, widgets[i].Rect().Grow(padding)) {
			return true
		}
	}
	return false
}

// Resolver bundles the grid and search bounds the search functions share.
type Resolver struct {
	Grid   grid.Grid
	Center core.Point // Centering offset of the usable area
	Radius int        // Spiral search bound in cells; <= 0 means DefaultSearchRadius
}

// NewResolver creates a resolver for the grid's current centering offset.
func NewResolver(g grid.Grid, radius int) Resolver {
	return Resolver{Grid: g, Center: g.CalculateCenterOffset(), Radius: radius}
}

func (r Resolver) radius() int {
	if r.Radius <= 0 {
		return DefaultSearchRadius
	}
	return r.Radius
}

// Collides reports whether the box (x, y, w, h) overlaps any widget except excludeID.
func (r Resolver) Collides(x, y, w, h float64, widgets []core.Widget, excludeID string) bool {
	return HasCollisionWithOthers(core.NewRect(x, y, w, h), widgets, excludeID, r.Grid.Padding())
}

// constrain clamps a snapped position into the usable area.
func (r Resolver) constrain(x, y, w, h float64) (float64, float64) {
	return r.Grid.ConstrainToViewport(x, y, w, h, r.Center, true)
}

// FindNearestValidPosition snaps (x, y) to the grid and clamps it into the
// usable area. When that spot is free it is returned directly. Otherwise the
// rings of cells at Chebyshev distance 1..Radius around it are scanned in
// raster order (rows top to bottom, cells left to right) and the first free
// candidate wins, which is not necessarily the geometrically nearest one.
//
// When nothing is free within the radius the constrained original is returned
// with ok == false; callers decide whether to keep or revert it.
func (r Resolver) FindNearestValidPosition(x, y, w, h float64, widgets []core.Widget, excludeID string) (nx, ny float64, ok bool) {
	sx, sy := r.Grid.SnapPoint(x, y, r.Center)
	cx, cy := r.constrain(sx, sy, w, h)
	if !r.Collides(cx, cy, w, h, widgets, excludeID) {
		return cx, cy, true
	}

	size := r.Grid.Size()
	maxRadius := r.radius()
	for radius := 1; radius <= maxRadius; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				// Perimeter cells only
				if max(core.Abs(dx), core.Abs(dy)) != radius {
					continue
				}
				px, py := r.constrain(cx+float64(dx)*size, cy+float64(dy)*size, w, h)
				if !r.Collides(px, py, w, h, widgets, excludeID) {
					return px, py, true
				}
			}
		}
	}
	return cx, cy, false
}

// FindValidSize searches for the largest collision-free size at (x, y), no
// larger than the snapped desired size and no smaller than (minW, minH).
// Candidates are tried in this order: the snapped size, width-only
// reductions, height-only reductions, then both (width outer, height inner),
// always in whole grid units. When no candidate fits the original size is
// returned with ok == false.
func (r Resolver) FindValidSize(x, y, w, h float64, widgets []core.Widget, excludeID string, origW, origH, minW, minH float64) (fw, fh float64, ok bool) {
	rect, ok := r.findSize(core.NewRect(x, y, w, h), core.HandleSE, widgets, excludeID, minW, minH)
	if !ok {
		return origW, origH, false
	}
	return rect.W, rect.H, true
}

// FindValidSizeAnchored is FindValidSize for a resize in progress: reductions
// of a west or north handle keep the right or bottom edge fixed and move the
// origin instead. On failure it returns the original size anchored the same way.
func (r Resolver) FindValidSizeAnchored(rect core.Rect, handle core.Handle, widgets []core.Widget, excludeID string, origW, origH, minW, minH float64) (core.Rect, bool) {
	found, ok := r.findSize(rect, handle, widgets, excludeID, minW, minH)
	if ok {
		return found, true
	}
	return handle.Anchor(rect, origW, origH), false
}

func (r Resolver) findSize(rect core.Rect, handle core.Handle, widgets []core.Widget, excludeID string, minW, minH float64) (core.Rect, bool) {
	g := r.Grid
	size := g.Size()

	sw := max(g.SnapSizeToGrid(rect.W), minW)
	sh := max(g.SnapSizeToGrid(rect.H), minH)

	try := func(w, h float64) (core.Rect, bool) {
		c := handle.Anchor(rect, w, h)
		return c, !r.Collides(c.X, c.Y, c.W, c.H, widgets, excludeID)
	}

	if c, free := try(sw, sh); free {
		return c, true
	}
	for w := sw - size; w >= minW-core.Epsilon; w -= size {
		if c, free := try(w, sh); free {
			return c, true
		}
	}
	for h := sh - size; h >= minH-core.Epsilon; h -= size {
		if c, free := try(sw, h); free {
			return c, true
		}
	}
	for w := sw - size; w >= minW-core.Epsilon; w -= size {
		for h := sh - size; h >= minH-core.Epsilon; h -= size {
			if c, free := try(w, h); free {
				return c, true
			}
		}
	}
	return core.Rect{}, false
}
