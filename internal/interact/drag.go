package interact

import (
	"github.com/vovakirdan/gridfolio/internal/core"
)

// hover tracks which widget the pointer itself is over and (re)arms the
// swap timer whenever that changes.
func (e *Engine) hover(x, y float64) {
	target := e.hoverTarget(x, y)
	if target == e.swapTarget {
		return
	}
	e.stopSwapTimer()
	e.swapTarget = target
	if target == "" {
		return
	}
	gen := e.gen
	e.swapTimer = e.sched.AfterFunc(e.cfg.SwapDelay, func() {
		e.swapElapsed(gen, target)
	})
}

// hoverTarget returns the top-most widget under the point, skipping the
// dragged widget and locked widgets.
func (e *Engine) hoverTarget(x, y float64) string {
	for i := len(e.working) - 1; i >= 0; i-- {
		w := e.working[i]
		if w.ID == e.op.id || w.Locked {
			continue
		}
		if w.Rect().Contains(x, y) {
			return w.ID
		}
	}
	return ""
}

func (e *Engine) stopSwapTimer() {
	if e.swapTimer != nil {
		e.swapTimer.Stop()
		e.swapTimer = nil
	}
}

// swapElapsed fires when a hover target was held for the swap delay.
func (e *Engine) swapElapsed(gen uint64, target string) {
	e.mu.Lock()
	if e.gen != gen || e.state != StateDragging || e.swapTarget != target {
		e.mu.Unlock()
		return
	}
	e.swapTimer = nil

	current := e.store.Snapshot()
	if core.IndexOf(current, e.op.id) < 0 {
		e.endLocked()
		e.mu.Unlock()
		e.notify()
		return
	}
	if !e.swap(current, e.op.id, target) {
		// Keep dragging; a release may still place the widget.
		e.rejectLocked(e.op.id)
		e.mu.Unlock()
		e.notify()
		return
	}
	e.lastDrag[e.op.id] = true
	e.endLocked()
	e.mu.Unlock()
	e.notify()
}

// finishDrag resolves a released drag: swap with the hover target, commit a
// free spot, pull an out-of-bounds drop back inside, or search the nearest
// free spot. When nothing fits the widget returns to its start position.
func (e *Engine) finishDrag(x, y float64) {
	op := e.op
	if !op.moved {
		e.logger.Debug("drag below threshold, treated as click", "widget", op.id)
		return
	}
	e.lastDrag[op.id] = true

	current := e.store.Snapshot()
	i := core.IndexOf(current, op.id)
	if i < 0 {
		return
	}
	if e.swapTarget != "" && e.swap(current, op.id, e.swapTarget) {
		return
	}

	r := op.resolver
	g := r.Grid
	w := current[i]
	sx, sy := g.SnapPoint(op.start.X+x-op.pointer.X, op.start.Y+y-op.pointer.Y, r.Center)

	fx, fy := sx, sy
	rejected := false
	inside := g.IsWithinUsableArea(sx, sy, w.Width, w.Height, r.Center)
	switch {
	case inside && !r.Collides(sx, sy, w.Width, w.Height, current, w.ID):
		// Free spot
	case !inside:
		rejected = true
		fx, fy = g.ConstrainToViewport(sx, sy, w.Width, w.Height, r.Center, true)
		if r.Collides(fx, fy, w.Width, w.Height, current, w.ID) {
			var ok bool
			if fx, fy, ok = r.FindNearestValidPosition(fx, fy, w.Width, w.Height, current, w.ID); !ok {
				fx, fy = op.start.X, op.start.Y
			}
		}
	default:
		var ok bool
		fx, fy, ok = r.FindNearestValidPosition(sx, sy, w.Width, w.Height, current, w.ID)
		if !ok {
			fx, fy = op.start.X, op.start.Y
		}
		rejected = !ok || fx != sx || fy != sy
	}

	current[i].X, current[i].Y = fx, fy
	e.commitLocked(current)
	e.logger.Debug("drag committed", "widget", w.ID, "x", fx, "y", fy, "rejected", rejected)
	if rejected {
		e.rejectLocked(w.ID)
	}
}

// swap exchanges the dragged widget's start geometry with the target's and
// commits the result. Both widgets get a click-suppression mark. A swap
// that would leave either widget outside the area or overlapping a third
// widget moves it to the nearest free spot; if there is none the swap is
// refused and nothing is committed.
func (e *Engine) swap(current []core.Widget, dragID, targetID string) bool {
	ai, bi := core.IndexOf(current, dragID), core.IndexOf(current, targetID)
	if ai < 0 || bi < 0 {
		return false
	}
	if current[ai].Locked || current[bi].Locked {
		e.logger.Debug("swap refused: locked widget", "widget", dragID, "target", targetID)
		return false
	}

	swapped := core.CloneWidgets(current)
	swapped[ai].SetRect(current[bi].Rect())
	swapped[bi].SetRect(e.op.start)

	r := e.op.resolver
	for _, idx := range []int{ai, bi} {
		w := &swapped[idx]
		if r.Grid.IsWithinUsableArea(w.X, w.Y, w.Width, w.Height, r.Center) &&
			!r.Collides(w.X, w.Y, w.Width, w.Height, swapped, w.ID) {
			continue
		}
		x, y, ok := r.FindNearestValidPosition(w.X, w.Y, w.Width, w.Height, swapped, w.ID)
		if !ok {
			e.logger.Debug("swap refused: no room", "widget", dragID, "target", targetID)
			return false
		}
		w.X, w.Y = x, y
	}

	e.commitLocked(swapped)
	e.suppress[dragID] = true
	e.suppress[targetID] = true
	e.logger.Debug("widgets swapped", "widget", dragID, "target", targetID)
	return true
}
