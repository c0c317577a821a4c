package interact

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/vovakirdan/gridfolio/internal/board"
	"github.com/vovakirdan/gridfolio/internal/collision"
	"github.com/vovakirdan/gridfolio/internal/config"
	"github.com/vovakirdan/gridfolio/internal/core"
	"github.com/vovakirdan/gridfolio/internal/grid"
	"github.com/vovakirdan/gridfolio/internal/kinds"
)

type harness struct {
	t      *testing.T
	grid   grid.Grid
	store  *board.Store
	engine *Engine
	clock  *ManualClock
}

// newHarness builds an engine over the default 16x10 grid (desktop viewport,
// zero centering offset) holding the given widgets.
func newHarness(t *testing.T, widgets ...core.Widget) *harness {
	t.Helper()
	g := grid.New(config.Default().Grid, core.DefaultViewport())
	store := board.New(g)
	if err := store.Commit(widgets); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	clock := NewManualClock()
	engine := New(store, config.Default().Interaction, WithScheduler(clock))
	return &harness{t: t, grid: g, store: store, engine: engine, clock: clock}
}

// cell returns a note widget at grid cell (col, row) spanning w x h cells.
func cell(id string, col, row, w, h int) core.Widget {
	g := grid.New(config.Default().Grid, core.DefaultViewport())
	x, y := g.CellOrigin(col, row, core.Point{})
	return core.Widget{ID: id, Type: kinds.Note, X: x, Y: y, Width: g.UnitsToSize(w), Height: g.UnitsToSize(h)}
}

func (h *harness) widget(id string) core.Widget {
	h.t.Helper()
	w, ok := h.store.Get(id)
	if !ok {
		h.t.Fatalf("widget %q not in store", id)
	}
	return w
}

func (h *harness) drag(id string, fromX, fromY, toX, toY float64) {
	h.t.Helper()
	if !h.engine.PointerDown(core.PointerDown{WidgetID: id, X: fromX, Y: fromY}) {
		h.t.Fatalf("PointerDown(%q) refused", id)
	}
	h.engine.PointerMove(toX, toY)
	h.engine.PointerUp(toX, toY)
}

func (h *harness) resize(id string, handle core.Handle, fromX, fromY, toX, toY float64) {
	h.t.Helper()
	if !h.engine.PointerDown(core.PointerDown{WidgetID: id, Handle: handle, X: fromX, Y: fromY}) {
		h.t.Fatalf("PointerDown(%q, %v) refused", id, handle)
	}
	h.engine.PointerMove(toX, toY)
	h.engine.PointerUp(toX, toY)
}

func (h *harness) assertAt(id string, x, y float64) {
	h.t.Helper()
	w := h.widget(id)
	if w.X != x || w.Y != y {
		h.t.Errorf("%s at (%v, %v), expected (%v, %v)", id, w.X, w.Y, x, y)
	}
}

func (h *harness) assertValidLayout() {
	h.t.Helper()
	ws := h.store.Snapshot()
	for _, w := range ws {
		if !h.grid.IsWithinUsableArea(w.X, w.Y, w.Width, w.Height, core.Point{}) {
			h.t.Errorf("%s out of bounds: %+v", w.ID, w.Rect())
		}
		if !h.grid.IsAligned(w.Rect(), core.Point{}) {
			h.t.Errorf("%s not aligned: %+v", w.ID, w.Rect())
		}
		if collision.HasCollisionWithOthers(w.Rect(), ws, w.ID, h.grid.Padding()) {
			h.t.Errorf("%s overlaps another widget", w.ID)
		}
	}
}

func TestDragCommitsSnappedPosition(t *testing.T) {
	h := newHarness(t, cell("a", 0, 0, 2, 2))
	changes := 0
	h.engine.OnChange(func() { changes++ })

	if !h.engine.PointerDown(core.PointerDown{WidgetID: "a", X: 100, Y: 100}) {
		t.Fatal("PointerDown refused")
	}
	h.engine.PointerMove(343, 105)
	if !h.engine.IsDragging() {
		t.Fatal("expected Dragging state")
	}
	// Unsnapped while moving; the store is untouched
	if got := h.engine.Widgets()[0].X; got != 271 {
		t.Errorf("working x = %v, expected 271", got)
	}
	h.assertAt("a", 28, 28)

	h.engine.PointerUp(343, 105)
	if h.engine.State() != StateIdle {
		t.Errorf("state after release = %v, expected idle", h.engine.State())
	}
	h.assertAt("a", 268, 28)
	if !h.engine.WasLastInteractionDrag("a") {
		t.Error("WasLastInteractionDrag = false after a drag")
	}
	if h.engine.RejectedID() != "" {
		t.Error("a free drop should not raise the rejected cue")
	}
	if changes != 3 {
		t.Errorf("OnChange fired %d times, expected 3", changes)
	}
}

func TestDragBelowThresholdIsClick(t *testing.T) {
	h := newHarness(t, cell("a", 0, 0, 2, 2))
	before := h.store.Revision()

	h.drag("a", 100, 100, 105, 100)

	h.assertAt("a", 28, 28)
	if h.engine.WasLastInteractionDrag("a") {
		t.Error("a 5px move must count as a click")
	}
	if h.engine.ShouldSuppressClick("a") {
		t.Error("a click must not be suppressed")
	}
	if h.store.Revision() != before {
		t.Error("a click must not commit")
	}
}

func TestDragOutOfBoundsIsClamped(t *testing.T) {
	h := newHarness(t, cell("a", 0, 0, 2, 2))
	b := h.grid.UsableAreaBounds(core.Point{})

	h.drag("a", 100, 100, 5100, 100)

	a := h.widget("a")
	if a.X != b.MaxX-a.Width || a.Right() > b.MaxX {
		t.Errorf("x = %v, expected %v", a.X, b.MaxX-a.Width)
	}
	if h.engine.RejectedID() != "a" {
		t.Error("expected the rejected cue")
	}
	h.clock.Advance(299 * time.Millisecond)
	if h.engine.RejectedID() != "a" {
		t.Error("rejected cue cleared too early")
	}
	h.clock.Advance(time.Millisecond)
	if h.engine.RejectedID() != "" {
		t.Error("rejected cue not cleared after 300ms")
	}
}

func TestDragOntoWidgetFindsNearest(t *testing.T) {
	h := newHarness(t, cell("a", 0, 0, 2, 2), cell("b", 3, 0, 2, 2))

	// Drop two cells right: overlaps b, pointer not over b
	h.drag("a", 40, 100, 200, 100)

	h.assertAt("a", 108, 28)
	h.assertAt("b", 268, 28)
	if h.engine.RejectedID() != "a" {
		t.Error("a corrected drop should raise the rejected cue")
	}
	h.assertValidLayout()
}

func TestSwapAfterHoverDelay(t *testing.T) {
	h := newHarness(t, cell("a", 0, 0, 2, 2), cell("b", 4, 0, 2, 2), cell("c", 0, 4, 3, 2))

	h.engine.PointerDown(core.PointerDown{WidgetID: "a", X: 100, Y: 100})
	h.engine.PointerMove(400, 100)
	if h.engine.SwapTargetID() != "b" {
		t.Fatalf("swap target = %q, expected b", h.engine.SwapTargetID())
	}

	h.clock.Advance(999 * time.Millisecond)
	if !h.engine.IsDragging() {
		t.Fatal("swap fired before the delay")
	}
	h.clock.Advance(time.Millisecond)
	if h.engine.State() != StateIdle {
		t.Fatal("swap should end the drag")
	}
	h.assertAt("a", 348, 28)
	h.assertAt("b", 28, 28)
	h.assertAt("c", 28, 348)

	if !h.engine.ShouldSuppressClick("b") {
		t.Error("click on swap target should be suppressed")
	}
	if h.engine.ShouldSuppressClick("b") {
		t.Error("suppression mark should be consumed")
	}

	// The trailing release is ignored
	h.engine.PointerUp(400, 100)
	h.assertAt("a", 348, 28)
}

func TestSwapTimerResetsOnHoverChange(t *testing.T) {
	h := newHarness(t, cell("a", 0, 0, 2, 2), cell("b", 4, 0, 2, 2))

	h.engine.PointerDown(core.PointerDown{WidgetID: "a", X: 100, Y: 100})
	h.engine.PointerMove(400, 100)
	h.clock.Advance(600 * time.Millisecond)
	h.engine.PointerMove(700, 100)
	if h.engine.SwapTargetID() != "" {
		t.Fatal("swap target should clear over empty space")
	}
	h.clock.Advance(600 * time.Millisecond)
	h.engine.PointerMove(400, 100)
	h.clock.Advance(600 * time.Millisecond)
	if !h.engine.IsDragging() {
		t.Fatal("swap fired although the hover was interrupted")
	}
	h.clock.Advance(400 * time.Millisecond)
	if h.engine.IsDragging() {
		t.Fatal("swap did not fire after a continuous hover")
	}
	h.assertAt("a", 348, 28)
}

func TestSwapOnRelease(t *testing.T) {
	h := newHarness(t, cell("a", 0, 0, 2, 2), cell("b", 4, 0, 2, 2))

	h.engine.PointerDown(core.PointerDown{WidgetID: "a", X: 100, Y: 100})
	h.engine.PointerMove(400, 100)
	h.clock.Advance(500 * time.Millisecond)
	h.engine.PointerUp(400, 100)

	h.assertAt("a", 348, 28)
	h.assertAt("b", 28, 28)
	if h.clock.Pending() != 0 {
		t.Errorf("%d timers still pending after release", h.clock.Pending())
	}
	if !h.engine.ShouldSuppressClick("a") {
		t.Error("click on dragged widget should be suppressed")
	}
}

func TestSwapExchangesSizes(t *testing.T) {
	h := newHarness(t, cell("a", 0, 0, 4, 2), cell("b", 5, 0, 1, 1), cell("c", 7, 0, 2, 2))
	a, b, c := h.widget("a"), h.widget("b"), h.widget("c")

	h.engine.PointerDown(core.PointerDown{WidgetID: "a", X: 100, Y: 100})
	h.engine.PointerMove(450, 60)
	h.engine.PointerUp(450, 60)

	if got := h.widget("a").Rect(); got != b.Rect() {
		t.Errorf("a = %+v, expected b's geometry %+v", got, b.Rect())
	}
	if got := h.widget("b").Rect(); got != a.Rect() {
		t.Errorf("b = %+v, expected a's geometry %+v", got, a.Rect())
	}
	if got := h.widget("c").Rect(); got != c.Rect() {
		t.Errorf("c moved to %+v", got)
	}
	h.assertValidLayout()
}

func TestPointerDownRefused(t *testing.T) {
	locked := cell("locked", 4, 0, 2, 2)
	locked.Locked = true
	h := newHarness(t, cell("a", 0, 0, 2, 2), locked)

	tests := []struct {
		name string
		ev   core.PointerDown
	}{
		{"locked widget", core.PointerDown{WidgetID: "locked", X: 400, Y: 100}},
		{"locked widget resize", core.PointerDown{WidgetID: "locked", Handle: core.HandleSE, X: 492, Y: 172}},
		{"unknown widget", core.PointerDown{WidgetID: "ghost"}},
		{"interactive child", core.PointerDown{WidgetID: "a", X: 100, Y: 100, Interactive: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if h.engine.PointerDown(tc.ev) {
				t.Error("PointerDown accepted")
			}
			if h.engine.State() != StateIdle {
				t.Errorf("state = %v, expected idle", h.engine.State())
			}
		})
	}

	h.engine.PointerDown(core.PointerDown{WidgetID: "a", X: 100, Y: 100})
	if h.engine.PointerDown(core.PointerDown{WidgetID: "a", Handle: core.HandleE, X: 172, Y: 100}) {
		t.Error("second operation accepted while dragging")
	}
}

func TestLockedWidgetIsNotASwapTarget(t *testing.T) {
	locked := cell("locked", 4, 0, 2, 2)
	locked.Locked = true
	h := newHarness(t, cell("a", 0, 0, 2, 2), locked)

	h.engine.PointerDown(core.PointerDown{WidgetID: "a", X: 100, Y: 100})
	h.engine.PointerMove(400, 100)
	if h.engine.SwapTargetID() != "" {
		t.Error("locked widget became a swap target")
	}
	h.clock.Advance(2 * time.Second)
	h.engine.PointerUp(400, 100)
	h.assertAt("locked", 348, 28)
	h.assertValidLayout()
}

func TestResizeEastBlockedByNeighbour(t *testing.T) {
	h := newHarness(t, cell("a", 0, 0, 2, 2), cell("b", 2, 0, 2, 2))

	h.resize("a", core.HandleE, 172, 100, 252, 100)

	a := h.widget("a")
	if a.Width != h.grid.UnitsToSize(2) {
		t.Errorf("width = %v, expected %v", a.Width, h.grid.UnitsToSize(2))
	}
	if h.engine.RejectedID() != "a" {
		t.Error("a shrunk resize should raise the rejected cue")
	}
	h.assertValidLayout()
}

func TestResizeSouthKeepsTopEdge(t *testing.T) {
	tests := []struct {
		name       string
		row        int
		dy         float64
		wantHeight float64
	}{
		{"grow", 2, 100, 224},
		{"shrink below one cell", 2, -130, 64},
		{"past the bottom edge", 7, 400, 224},
		{"odd delta", 3, 37, 144},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start := cell("a", 0, tc.row, 2, 2)
			start.Type = kinds.Clock // 2x1 minimum
			h := newHarness(t, start)

			h.resize("a", core.HandleS, 100, start.Y+start.Height, 100, start.Y+start.Height+tc.dy)

			a := h.widget("a")
			if a.Y != start.Y || a.X != start.X {
				t.Errorf("origin moved to (%v, %v), expected (%v, %v)", a.X, a.Y, start.X, start.Y)
			}
			if a.Height != tc.wantHeight {
				t.Errorf("height = %v, expected %v", a.Height, tc.wantHeight)
			}
			h.assertValidLayout()
		})
	}
}

func TestResizeShrinkKeepsUnmovedAxis(t *testing.T) {
	// Narrowing a to two columns would keep all four requested rows, but a
	// south handle must not change the width.
	h := newHarness(t, cell("a", 0, 0, 3, 2), cell("b", 2, 3, 1, 1))
	before := h.widget("a")

	h.resize("a", core.HandleS, 100, 172, 100, 332)

	a := h.widget("a")
	if a.Width != before.Width || a.X != before.X {
		t.Errorf("width changed: x=%v w=%v, expected x=%v w=%v", a.X, a.Width, before.X, before.Width)
	}
	if a.Height != 224 {
		t.Errorf("height = %v, expected three rows (224)", a.Height)
	}
	h.assertValidLayout()
}

func TestResizeWestKeepsRightEdge(t *testing.T) {
	h := newHarness(t, cell("a", 4, 0, 2, 2))
	right := h.widget("a").Right()

	h.resize("a", core.HandleW, 348, 100, 178, 100)

	a := h.widget("a")
	if a.Right() != right {
		t.Errorf("right edge moved from %v to %v", right, a.Right())
	}
	if a.X != 188 || a.Width != 304 {
		t.Errorf("geometry = %+v, expected x=188 w=304", a.Rect())
	}
	if h.engine.RejectedID() != "" {
		t.Error("an unobstructed resize should not raise the rejected cue")
	}
}

func TestResizeNorthWestMovesOrigin(t *testing.T) {
	h := newHarness(t, cell("a", 4, 4, 2, 2))
	before := h.widget("a")

	h.resize("a", core.HandleNW, before.X, before.Y, before.X-80, before.Y-160)

	a := h.widget("a")
	if a.Right() != before.Right() || a.Bottom() != before.Bottom() {
		t.Errorf("south-east corner moved: %+v -> %+v", before.Rect(), a.Rect())
	}
	if a.Width != h.grid.UnitsToSize(3) || a.Height != h.grid.UnitsToSize(4) {
		t.Errorf("size = %vx%v, expected 3x4 cells", a.Width, a.Height)
	}
}

func TestResizeEnforcesContentMinimum(t *testing.T) {
	profile := cell("p", 0, 0, 4, 4)
	profile.Type = kinds.Profile // 3x3 minimum
	h := newHarness(t, profile)

	h.resize("p", core.HandleSE, 332, 332, 132, 132)

	p := h.widget("p")
	if p.Width != 224 || p.Height != 224 {
		t.Errorf("size = %vx%v, expected the 3x3 minimum", p.Width, p.Height)
	}
	if p.X != 28 || p.Y != 28 {
		t.Errorf("origin moved to (%v, %v)", p.X, p.Y)
	}
	if h.engine.RejectedID() != "p" {
		t.Error("growing to the minimum should raise the rejected cue")
	}
}

func TestResizeWithoutRoomKeepsStartSize(t *testing.T) {
	wallRight := cell("wall-right", 2, 0, 14, 10)
	wallRight.Locked = true
	wallBelow := cell("wall-below", 0, 2, 2, 8)
	wallBelow.Locked = true
	h := newHarness(t, cell("a", 0, 0, 2, 2), wallRight, wallBelow)
	before := h.widget("a")

	h.resize("a", core.HandleSE, 172, 172, 252, 252)

	if got := h.widget("a"); got.Rect() != before.Rect() {
		t.Errorf("geometry = %+v, expected unchanged %+v", got.Rect(), before.Rect())
	}
	if h.engine.RejectedID() != "a" {
		t.Error("expected the rejected cue")
	}
	h.assertValidLayout()
}

func TestResizeBelowThresholdIgnored(t *testing.T) {
	h := newHarness(t, cell("a", 0, 0, 2, 2))
	before := h.store.Revision()
	h.resize("a", core.HandleE, 172, 100, 175, 100)
	if h.store.Revision() != before {
		t.Error("a tiny resize must not commit")
	}
}

func TestCancelStopsSwap(t *testing.T) {
	h := newHarness(t, cell("a", 0, 0, 2, 2), cell("b", 4, 0, 2, 2))

	h.engine.PointerDown(core.PointerDown{WidgetID: "a", X: 100, Y: 100})
	h.engine.PointerMove(400, 100)
	h.engine.Cancel()
	h.clock.Advance(2 * time.Second)

	h.assertAt("a", 28, 28)
	h.assertAt("b", 348, 28)
	if h.engine.State() != StateIdle {
		t.Error("Cancel should return to idle")
	}
	if h.clock.Pending() != 0 {
		t.Errorf("%d timers pending after Cancel", h.clock.Pending())
	}
}

func TestMissingWidgetIsNoop(t *testing.T) {
	h := newHarness(t, cell("a", 0, 0, 2, 2), cell("b", 4, 0, 2, 2))

	h.engine.PointerDown(core.PointerDown{WidgetID: "a", X: 100, Y: 100})
	h.engine.PointerMove(300, 300)
	if err := h.store.Remove("a"); err != nil {
		t.Fatal(err)
	}
	h.engine.PointerUp(300, 300)

	if _, ok := h.store.Get("a"); ok {
		t.Error("removed widget came back")
	}
	if h.engine.State() != StateIdle {
		t.Error("engine should return to idle")
	}
	h.assertAt("b", 348, 28)
}

func TestHandleDispatch(t *testing.T) {
	h := newHarness(t, cell("a", 0, 0, 2, 2))

	events := []core.Event{
		core.PointerDown{WidgetID: "a", X: 100, Y: 100},
		core.PointerMove{X: 200, Y: 100},
		core.PointerUp{X: 200, Y: 100},
	}
	if !h.engine.Handle(events[0]) {
		t.Fatal("Handle(PointerDown) should start a drag")
	}
	for _, ev := range events[1:] {
		h.engine.Handle(ev)
	}
	h.assertAt("a", 108, 28)
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	h := newHarness(t,
		cell("a", 0, 0, 2, 2),
		cell("b", 3, 0, 2, 2),
		cell("c", 6, 0, 3, 2),
		cell("d", 0, 3, 2, 3),
		cell("e", 3, 3, 4, 2),
	)
	rng := rand.New(rand.NewPCG(7, 11))
	ids := []string{"a", "b", "c", "d", "e"}
	handles := []core.Handle{
		core.HandleN, core.HandleS, core.HandleE, core.HandleW,
		core.HandleNE, core.HandleNW, core.HandleSE, core.HandleSW,
	}

	for range 300 {
		w := h.widget(ids[rng.IntN(len(ids))])
		c := w.Rect().Center()
		toX := rng.Float64()*1800 - 200
		toY := rng.Float64()*1200 - 200

		handle := core.HandleNone
		if rng.IntN(2) == 0 {
			handle = handles[rng.IntN(len(handles))]
		}
		if !h.engine.PointerDown(core.PointerDown{WidgetID: w.ID, Handle: handle, X: c.X, Y: c.Y}) {
			t.Fatalf("PointerDown(%q) refused", w.ID)
		}
		h.engine.PointerMove(toX, toY)
		if rng.IntN(4) == 0 {
			h.clock.Advance(time.Second)
		}
		h.engine.PointerUp(toX, toY)
		h.clock.Advance(time.Second)

		h.assertValidLayout()
		if t.Failed() {
			t.Fatalf("invariant broken after %s of %q (handle %v) to (%.0f, %.0f)", h.engine.State(), w.ID, handle, toX, toY)
		}
	}
}
