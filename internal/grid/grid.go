// Package grid implements the pure coordinate math of the widget layout:
// snapping positions and sizes to grid cells, computing the usable area and
// its centering offset, and clamping widgets into it.
//
// Positions are the top-left corner of a widget's visible box. The visible
// box is surrounded by Padding on every side; the padded box always tiles
// exactly into whole grid cells:
//
//	x - Padding = OffsetX + center.X + k*GridSize
//	width + 2*Padding = n*GridSize, n >= 1
//
// A Grid is an immutable value; use WithViewport to derive a grid for a new
// window size.
package grid

import (
	"math"

	"github.com/vovakirdan/gridfolio/internal/config"
	"github.com/vovakirdan/gridfolio/internal/core"
)

// Grid binds the grid constants to a viewport size.
type Grid struct {
	cfg      config.GridConfig
	viewport core.Viewport
}

// New creates a grid for the given configuration and viewport.
func New(cfg config.GridConfig, vp core.Viewport) Grid {
	return Grid{cfg: cfg, viewport: vp}
}

// WithViewport returns a copy of g bound to another viewport.
func (g Grid) WithViewport(vp core.Viewport) Grid {
	g.viewport = vp
	return g
}

// Config returns the grid constants.
func (g Grid) Config() config.GridConfig { return g.cfg }

// Viewport returns the viewport the grid is bound to.
func (g Grid) Viewport() core.Viewport { return g.viewport }

// Size returns the cell side in pixels.
func (g Grid) Size() float64 { return g.cfg.GridSize }

// Padding returns the gap reserved around each widget's visible box.
func (g Grid) Padding() float64 { return g.cfg.Padding }

// IsMobile reports whether the viewport is narrower than the mobile breakpoint.
func (g Grid) IsMobile() bool {
	return g.viewport.Width > 0 && g.viewport.Width < g.cfg.MobileBreakpoint
}

// Dimensions returns the usable area size in cells for the current viewport.
func (g Grid) Dimensions() (cols, rows int) {
	if g.IsMobile() {
		return g.cfg.MobileUsableWidth, g.cfg.MobileUsableHeight
	}
	return g.cfg.UsableWidth, g.cfg.UsableHeight
}

// SnapToGrid snaps coord to the nearest grid line relative to offset and
// returns that line plus Padding. Halves round to even. The result is a fixed
// point: SnapToGrid(SnapToGrid(c, o), o) == SnapToGrid(c, o).
func (g Grid) SnapToGrid(coord, offset float64) float64 {
	size := g.cfg.GridSize
	cells := math.RoundToEven((coord - offset - g.cfg.Padding) / size)
	return cells*size + offset + g.cfg.Padding
}

// SnapSizeToGrid rounds a visible size so that size + 2*Padding is a whole,
// positive number of cells.
func (g Grid) SnapSizeToGrid(size float64) float64 {
	return g.UnitsToSize(g.SizeToUnits(size))
}

// SizeToUnits returns the number of cells a visible size occupies, at least 1.
func (g Grid) SizeToUnits(size float64) int {
	units := int(math.RoundToEven((size + 2*g.cfg.Padding) / g.cfg.GridSize))
	return max(units, 1)
}

// UnitsToSize converts a cell count to a visible size in pixels.
func (g Grid) UnitsToSize(units int) float64 {
	return float64(units)*g.cfg.GridSize - 2*g.cfg.Padding
}

// Origin returns the grid origin (the top-left grid line) for a centering offset.
func (g Grid) Origin(center core.Point) core.Point {
	return core.Point{X: g.cfg.OffsetX + center.X, Y: g.cfg.OffsetY + center.Y}
}

// SnapPoint snaps both coordinates of a widget position.
func (g Grid) SnapPoint(x, y float64, center core.Point) (float64, float64) {
	o := g.Origin(center)
	return g.SnapToGrid(x, o.X), g.SnapToGrid(y, o.Y)
}

// CellOrigin returns the widget position for the cell at (col, row).
func (g Grid) CellOrigin(col, row int, center core.Point) (float64, float64) {
	o := g.Origin(center)
	return o.X + float64(col)*g.cfg.GridSize + g.cfg.Padding,
		o.Y + float64(row)*g.cfg.GridSize + g.cfg.Padding
}

// RawUsableAreaBounds returns the canonical grid rectangle: the grid origin
// plus the grid dimensions in cells, translated by the centering offset.
func (g Grid) RawUsableAreaBounds(center core.Point) core.Bounds {
	o := g.Origin(center)
	cols, rows := g.Dimensions()
	return core.Bounds{
		MinX: o.X,
		MinY: o.Y,
		MaxX: o.X + float64(cols)*g.cfg.GridSize,
		MaxY: o.Y + float64(rows)*g.cfg.GridSize,
	}
}

// UsableAreaBounds returns the raw bounds shrunk by Padding on all sides:
// the region a widget's visible box may occupy.
func (g Grid) UsableAreaBounds(center core.Point) core.Bounds {
	b := g.RawUsableAreaBounds(center)
	p := g.cfg.Padding
	return core.Bounds{MinX: b.MinX + p, MinY: b.MinY + p, MaxX: b.MaxX - p, MaxY: b.MaxY - p}
}

// IsWithinUsableArea reports whether the widget's padded box lies inside the
// raw grid rectangle, i.e. its visible box lies inside UsableAreaBounds.
func (g Grid) IsWithinUsableArea(x, y, w, h float64, center core.Point) bool {
	return g.UsableAreaBounds(center).Rect().ContainsRect(core.NewRect(x, y, w, h))
}

// ConstrainToViewport clamps a widget position. With enforceBounds the whole
// widget is kept inside the usable area (a widget larger than the area is
// pinned to its top-left). Without it the position is only clamped so that
// at least one cell of the widget stays on screen, which is how restored
// layouts are treated.
func (g Grid) ConstrainToViewport(x, y, w, h float64, center core.Point, enforceBounds bool) (float64, float64) {
	if enforceBounds {
		b := g.UsableAreaBounds(center)
		return core.Clamp(x, b.MinX, b.MaxX-w), core.Clamp(y, b.MinY, b.MaxY-h)
	}
	if !g.viewport.Valid() {
		return x, y
	}
	size := g.cfg.GridSize
	x = core.Clamp(x, size-w, g.viewport.Width-size)
	y = core.Clamp(y, size-h, g.viewport.Height-size)
	return x, y
}

// ConstrainSizeToViewport clamps a size to [min, space available from (x, y)]
// inside the usable area. The minimum wins when the space is smaller.
func (g Grid) ConstrainSizeToViewport(x, y, w, h, minW, minH float64, center core.Point) (float64, float64) {
	b := g.UsableAreaBounds(center)
	return core.Clamp(w, minW, b.MaxX-x), core.Clamp(h, minH, b.MaxY-y)
}

// CalculateCenterOffset returns the grid-aligned translation that centers the
// usable area horizontally, and vertically on desktop viewports. Mobile
// layouts stay anchored to the top. The offset is never negative.
func (g Grid) CalculateCenterOffset() core.Point {
	if !g.viewport.Valid() {
		return core.Point{}
	}
	size := g.cfg.GridSize
	cols, rows := g.Dimensions()

	align := func(free float64) float64 {
		if free <= 0 {
			return 0
		}
		return math.Floor(free/size) * size
	}

	areaW := float64(cols) * size
	cx := align(g.viewport.Width/2 - areaW/2 - g.cfg.OffsetX)

	if g.IsMobile() {
		return core.Point{X: cx}
	}
	areaH := float64(rows) * size
	cy := align(g.viewport.Height/2 - areaH/2 - g.cfg.OffsetY)
	return core.Point{X: cx, Y: cy}
}

// IsAligned reports whether a widget rectangle satisfies the snapping
// invariants for the given centering offset.
func (g Grid) IsAligned(r core.Rect, center core.Point) bool {
	x, y := g.SnapPoint(r.X, r.Y, center)
	return core.NearlyEqual(x, r.X) && core.NearlyEqual(y, r.Y) &&
		core.NearlyEqual(g.SnapSizeToGrid(r.W), r.W) &&
		core.NearlyEqual(g.SnapSizeToGrid(r.H), r.H)
}
