package interact

import (
	"github.com/vovakirdan/gridfolio/internal/core"
)

// resizeRect applies the pointer delta to the edges the handle controls.
// Only the usable area bounds are enforced; size is kept at least 1px.
func (e *Engine) resizeRect(x, y float64) core.Rect {
	op := e.op
	start := op.start
	b := op.resolver.Grid.UsableAreaBounds(op.resolver.Center)
	dx, dy := x-op.pointer.X, y-op.pointer.Y
	h := op.handle

	r := start
	if h.East() {
		r.W = core.Clamp(start.W+dx, 1, b.MaxX-start.X)
	}
	if h.West() {
		r.X = core.Clamp(start.X+dx, b.MinX, start.Right()-1)
		r.W = start.Right() - r.X
	}
	if h.South() {
		r.H = core.Clamp(start.H+dy, 1, b.MaxY-start.Y)
	}
	if h.North() {
		r.Y = core.Clamp(start.Y+dy, b.MinY, start.Bottom()-1)
		r.H = start.Bottom() - r.Y
	}
	return r
}

// finishResize resolves a released resize. The steps are: snap the size,
// grow to the content minimum, fit the size and position into the usable
// area, shrink around other widgets, move to the nearest free spot, and
// finally revert to the start geometry. Edges the handle did not move keep
// their exact pixel position unless a later corrective step has to move
// the whole widget.
//
// The content minimum applies only to the axes the handle resizes. On the
// other axis the minimum is the start size, so shrinking around a collision
// never narrows a widget dragged by its south edge (or flattens one dragged
// by its east edge), even when that would free more of the requested size.
func (e *Engine) finishResize(x, y float64) {
	op := e.op
	if !op.moved {
		return
	}
	e.lastDrag[op.id] = true

	current := e.store.Snapshot()
	i := core.IndexOf(current, op.id)
	if i < 0 {
		return
	}

	r := op.resolver
	g := r.Grid
	h := op.handle
	start := op.start
	b := g.UsableAreaBounds(r.Center)
	raw := e.resizeRect(x, y)

	w, ht := start.W, start.H
	if h.Horizontal() {
		w = g.SnapSizeToGrid(raw.W)
	}
	if h.Vertical() {
		ht = g.SnapSizeToGrid(raw.H)
	}
	requested := h.Anchor(start, w, ht)

	// Content minimum and area limits, on the resized axes only
	minW, minH := start.W, start.H
	if h.Horizontal() {
		minW = op.minW
		maxW := b.MaxX - start.X
		if h.West() {
			maxW = start.Right() - b.MinX
		}
		w = core.Clamp(max(w, minW), minW, maxW)
	}
	if h.Vertical() {
		minH = op.minH
		maxH := b.MaxY - start.Y
		if h.North() {
			maxH = start.Bottom() - b.MinY
		}
		ht = core.Clamp(max(ht, minH), minH, maxH)
	}
	want := h.Anchor(start, w, ht)

	cx, cy := g.ConstrainToViewport(want.X, want.Y, want.W, want.H, r.Center, true)
	if h.West() {
		want.X = cx
	}
	if h.North() {
		want.Y = cy
	}

	final := want
	if r.Collides(final.X, final.Y, final.W, final.H, current, op.id) {
		final, _ = r.FindValidSizeAnchored(final, h, current, op.id, start.W, start.H, minW, minH)
	}
	if !g.IsWithinUsableArea(final.X, final.Y, final.W, final.H, r.Center) ||
		r.Collides(final.X, final.Y, final.W, final.H, current, op.id) {
		nx, ny, ok := r.FindNearestValidPosition(final.X, final.Y, final.W, final.H, current, op.id)
		if ok {
			final.X, final.Y = nx, ny
		} else {
			final = start
		}
	}

	current[i].SetRect(final)
	e.commitLocked(current)
	e.logger.Debug("resize committed", "widget", op.id, "handle", h, "width", final.W, "height", final.H)
	if final != requested {
		e.rejectLocked(op.id)
	}
}
