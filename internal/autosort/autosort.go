// Package autosort packs widgets into the usable grid area with a greedy
// bottom-left-fill heuristic. Locked and pinned widgets keep their place and
// act as obstacles; every other widget is placed largest first at the
// top-most, then left-most free spot derived from the edges of the widgets
// already placed. The result is deterministic for a given input order.
package autosort

import (
	"cmp"
	"slices"

	"github.com/vovakirdan/gridfolio/internal/collision"
	"github.com/vovakirdan/gridfolio/internal/core"
	"github.com/vovakirdan/gridfolio/internal/grid"
)

// Reason tells how a widget got its position.
type Reason int

const (
	ReasonFixed     Reason = iota // Locked or pinned, left in place
	ReasonCandidate               // First free edge-derived candidate
	ReasonRaster                  // Found by the cell-by-cell scan
	ReasonFallback                // No free spot; placed at the area origin
)

func (r Reason) String() string {
	switch r {
	case ReasonFixed:
		return "fixed"
	case ReasonCandidate:
		return "candidate"
	case ReasonRaster:
		return "raster"
	case ReasonFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Placement records the outcome for one widget.
type Placement struct {
	ID     string
	Reason Reason
}

// Autosort returns a packed copy of widgets in the original order, plus one
// Placement per widget (also in input order). The input is not modified.
func Autosort(g grid.Grid, widgets []core.Widget, center core.Point) ([]core.Widget, []Placement) {
	out := core.CloneWidgets(widgets)
	placements := make([]Placement, len(out))

	var occupied []core.Widget
	var movable []int
	for i := range out {
		placements[i] = Placement{ID: out[i].ID, Reason: ReasonFixed}
		if out[i].Fixed() {
			occupied = append(occupied, out[i])
			continue
		}
		movable = append(movable, i)
	}

	// Largest first, original order on ties
	slices.SortStableFunc(movable, func(a, b int) int {
		return cmp.Compare(out[b].Rect().Area(), out[a].Rect().Area())
	})

	p := packer{grid: g, center: center, bounds: g.UsableAreaBounds(center)}
	for _, i := range movable {
		w := &out[i]
		w.Width = g.SnapSizeToGrid(w.Width)
		w.Height = g.SnapSizeToGrid(w.Height)

		x, y, reason := p.place(w.Width, w.Height, occupied)
		w.X, w.Y = x, y
		placements[i].Reason = reason
		occupied = append(occupied, *w)
	}
	return out, placements
}

type packer struct {
	grid   grid.Grid
	center core.Point
	bounds core.Bounds
}

func (p packer) fits(x, y, w, h float64, occupied []core.Widget) bool {
	if !p.grid.IsWithinUsableArea(x, y, w, h, p.center) {
		return false
	}
	return !collision.HasCollisionWithOthers(core.NewRect(x, y, w, h), occupied, "", p.grid.Padding())
}

func (p packer) place(w, h float64, occupied []core.Widget) (float64, float64, Reason) {
	for _, c := range p.candidates(occupied) {
		if p.fits(c.X, c.Y, w, h, occupied) {
			return c.X, c.Y, ReasonCandidate
		}
	}

	cols, rows := p.grid.Dimensions()
	for row := range rows {
		for col := range cols {
			x, y := p.grid.CellOrigin(col, row, p.center)
			if p.fits(x, y, w, h, occupied) {
				return x, y, ReasonRaster
			}
		}
	}

	x, y := p.grid.CellOrigin(0, 0, p.center)
	return x, y, ReasonFallback
}

// candidates builds the snapped cross product of the area's top-left edge
// and every occupied widget's left/right and top/bottom edges, ordered by y
// then x.
func (p packer) candidates(occupied []core.Widget) []core.Point {
	origin := p.grid.Origin(p.center)
	xs := []float64{p.grid.SnapToGrid(p.bounds.MinX, origin.X)}
	ys := []float64{p.grid.SnapToGrid(p.bounds.MinY, origin.Y)}
	for _, o := range occupied {
		r := o.Rect()
		xs = append(xs, p.grid.SnapToGrid(r.X, origin.X), p.grid.SnapToGrid(r.Right(), origin.X))
		ys = append(ys, p.grid.SnapToGrid(r.Y, origin.Y), p.grid.SnapToGrid(r.Bottom(), origin.Y))
	}
	slices.Sort(xs)
	xs = slices.Compact(xs)
	slices.Sort(ys)
	ys = slices.Compact(ys)

	points := make([]core.Point, 0, len(xs)*len(ys))
	for _, y := range ys {
		for _, x := range xs {
			points = append(points, core.Point{X: x, Y: y})
		}
	}
	return points
}
