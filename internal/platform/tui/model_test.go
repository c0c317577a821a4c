package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/gridfolio/internal/board"
	"github.com/vovakirdan/gridfolio/internal/config"
	"github.com/vovakirdan/gridfolio/internal/core"
	"github.com/vovakirdan/gridfolio/internal/grid"
	"github.com/vovakirdan/gridfolio/internal/interact"
	"github.com/vovakirdan/gridfolio/internal/kinds"
)

var testMapper = MouseMapper{CellW: 10, CellH: 20}

func newTestModel(t *testing.T) (Model, *board.Store) {
	t.Helper()
	cfg := config.Default()
	store := board.New(grid.New(cfg.Grid, core.DefaultViewport()))
	err := store.Commit([]core.Widget{
		{ID: "a", Type: kinds.Note, X: 28, Y: 28, Width: 144, Height: 144},
		{ID: "b", Type: kinds.Note, X: 348, Y: 28, Width: 144, Height: 144},
	})
	if err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	engine := interact.New(store, cfg.Interaction, interact.WithScheduler(interact.NewManualClock()))

	m := NewModel(engine, cfg.Board)
	m.now = func() time.Time { return time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC) }
	// 144x47 cells is a 1440x900 pixel board plus the status rows
	m = send(t, m, tea.WindowSizeMsg{Width: 144, Height: 47})
	return m, store
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return model
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mouse(action tea.MouseAction, x, y int) tea.MouseMsg {
	button := tea.MouseButtonLeft
	if action == tea.MouseActionRelease {
		button = tea.MouseButtonNone
	}
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func widget(t *testing.T, s *board.Store, id string) core.Widget {
	t.Helper()
	w, ok := s.Get(id)
	if !ok {
		t.Fatalf("widget %q missing", id)
	}
	return w
}

func TestCellRect(t *testing.T) {
	tests := []struct {
		name       string
		r          core.Rect
		x, y, w, h int
	}{
		{"note", core.NewRect(28, 28, 144, 144), 2, 1, 16, 8},
		{"aligned", core.NewRect(0, 0, 100, 40), 0, 0, 10, 2},
		{"tiny", core.NewRect(5, 5, 1, 1), 0, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, w, h := testMapper.CellRect(tt.r)
			if x != tt.x || y != tt.y || w != tt.w || h != tt.h {
				t.Errorf("CellRect() = (%d,%d,%d,%d), expected (%d,%d,%d,%d)", x, y, w, h, tt.x, tt.y, tt.w, tt.h)
			}
		})
	}
}

func TestHitTest(t *testing.T) {
	ws := []core.Widget{{ID: "a", X: 28, Y: 28, Width: 144, Height: 144}}

	tests := []struct {
		name     string
		col, row int
		hit      bool
		handle   core.Handle
	}{
		{"body", 5, 4, true, core.HandleNone},
		{"north west", 2, 1, true, core.HandleNW},
		{"north east", 17, 1, true, core.HandleNE},
		{"south west", 2, 8, true, core.HandleSW},
		{"south east", 17, 8, true, core.HandleSE},
		{"north", 5, 1, true, core.HandleN},
		{"south", 5, 8, true, core.HandleS},
		{"west", 2, 4, true, core.HandleW},
		{"east", 17, 4, true, core.HandleE},
		{"outside", 30, 4, false, core.HandleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, h, ok := testMapper.HitTest(ws, tt.col, tt.row)
			if ok != tt.hit {
				t.Fatalf("HitTest() hit = %v, expected %v", ok, tt.hit)
			}
			if ok && id != "a" {
				t.Errorf("HitTest() id = %q", id)
			}
			if h != tt.handle {
				t.Errorf("HitTest() handle = %v, expected %v", h, tt.handle)
			}
		})
	}
}

func TestHitTestTopMost(t *testing.T) {
	ws := []core.Widget{
		{ID: "under", X: 0, Y: 0, Width: 200, Height: 200},
		{ID: "over", X: 40, Y: 40, Width: 100, Height: 100},
	}
	if id, _, _ := testMapper.HitTest(ws, 8, 4); id != "over" {
		t.Errorf("HitTest() = %q, expected the widget drawn last", id)
	}
}

func TestMouseDrag(t *testing.T) {
	m, store := newTestModel(t)

	m = send(t, m, mouse(tea.MouseActionPress, 5, 4))
	if !m.engine.IsDragging() {
		t.Fatal("press inside a widget should start a drag")
	}
	m = send(t, m, mouse(tea.MouseActionMotion, 13, 4))
	m = send(t, m, mouse(tea.MouseActionRelease, 13, 4))

	if m.engine.IsDragging() {
		t.Error("release should end the drag")
	}
	if a := widget(t, store, "a"); a.X != 108 || a.Y != 28 {
		t.Errorf("a at (%v,%v), expected (108,28)", a.X, a.Y)
	}
}

func TestMouseResize(t *testing.T) {
	m, store := newTestModel(t)

	m = send(t, m, mouse(tea.MouseActionPress, 17, 8))
	if !m.engine.IsResizing() {
		t.Fatal("press on a corner should start a resize")
	}
	m = send(t, m, mouse(tea.MouseActionMotion, 25, 8))
	send(t, m, mouse(tea.MouseActionRelease, 25, 8))

	a := widget(t, store, "a")
	if a.Width != 224 || a.Height != 144 {
		t.Errorf("a is %vx%v, expected 224x144", a.Width, a.Height)
	}
	if a.X != 28 || a.Y != 28 {
		t.Errorf("a moved to (%v,%v)", a.X, a.Y)
	}
}

func TestKeyActionEndsMouseDrag(t *testing.T) {
	m, store := newTestModel(t)

	m = send(t, m, mouse(tea.MouseActionPress, 5, 4))
	m = send(t, m, mouse(tea.MouseActionMotion, 13, 4))
	m = send(t, m, runes("l"))
	if m.engine.IsDragging() {
		t.Fatal("locking the selection should end the drag")
	}
	send(t, m, mouse(tea.MouseActionRelease, 13, 4))

	a := widget(t, store, "a")
	if !a.Locked {
		t.Error("a should be locked")
	}
	if a.X != 28 || a.Y != 28 {
		t.Errorf("locked a moved to (%v,%v)", a.X, a.Y)
	}
}

func TestKeyboardActions(t *testing.T) {
	m, store := newTestModel(t)
	if m.Selected() != "a" {
		t.Fatalf("initial selection = %q, expected a", m.Selected())
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if a := widget(t, store, "a"); a.X != 108 {
		t.Errorf("right arrow left a at x=%v, expected 108", a.X)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftDown})
	if a := widget(t, store, "a"); a.Height != 224 {
		t.Errorf("shift+down left a %v tall, expected 224", a.Height)
	}

	m = send(t, m, runes("l"))
	if !widget(t, store, "a").Locked {
		t.Fatal("l should lock the selection")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if a := widget(t, store, "a"); a.X != 108 {
		t.Errorf("locked widget moved to x=%v", a.X)
	}
	if !strings.Contains(m.status, "locked") {
		t.Errorf("status = %q, expected a locked message", m.status)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Selected() != "b" {
		t.Errorf("tab selected %q, expected b", m.Selected())
	}
	m = send(t, m, runes("p"))
	if !widget(t, store, "b").Pinned {
		t.Error("p should pin the selection")
	}

	m = send(t, m, runes("n"))
	if n := len(store.Snapshot()); n != 3 {
		t.Fatalf("n should add a note, got %d widgets", n)
	}
	added := m.Selected()
	if !strings.HasPrefix(added, kinds.Note+"-") {
		t.Errorf("selection after add = %q, expected the new note", added)
	}

	m = send(t, m, runes("x"))
	if _, ok := store.Get(added); ok {
		t.Error("x should remove the selection")
	}

	m = send(t, m, runes("e"))
	if !strings.Contains(m.status, "expand") {
		t.Errorf("expanding a note should fail, status = %q", m.status)
	}

	m = send(t, m, runes("a"))
	if m.status != "autosorted 2 widgets" {
		t.Errorf("status = %q", m.status)
	}

	m = send(t, m, runes("r"))
	if n := len(store.Snapshot()); n != 7 {
		t.Errorf("r should reset to the default layout, got %d widgets", n)
	}

	next, cmd := m.Update(runes("q"))
	if !next.(Model).IsQuitting() || cmd == nil {
		t.Error("q should quit")
	}
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t)

	view := m.View()
	for _, want := range []string{"Note", "(empty note)", "2 widgets", "selected: a"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q", want)
		}
	}

	m = send(t, m, runes("?"))
	if !strings.Contains(m.View(), "add clock") {
		t.Error("full help should list every binding")
	}
}

func TestResizeSwitchesToMobileGrid(t *testing.T) {
	m, store := newTestModel(t)

	// 60 columns of 10px is below the 768px breakpoint
	m = send(t, m, tea.WindowSizeMsg{Width: 60, Height: 47})
	if !store.Grid().IsMobile() {
		t.Fatal("narrow terminal should use the mobile grid")
	}
	if !strings.Contains(m.View(), "mobile grid") {
		t.Error("status line should mention the mobile grid")
	}
	for _, w := range store.Snapshot() {
		if !store.Grid().IsWithinUsableArea(w.X, w.Y, w.Width, w.Height, store.Center()) {
			t.Errorf("%s outside the mobile area: %+v", w.ID, w.Rect())
		}
	}
}
