package tui

import (
	"math"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/gridfolio/internal/core"
)

// KeyMap defines the key bindings for the board.
type KeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Grow     key.Binding
	Shrink   key.Binding
	Taller   key.Binding
	Shorter  key.Binding
	Autosort key.Binding
	Lock     key.Binding
	Pin      key.Binding
	Expand   key.Binding
	AddNote  key.Binding
	AddClock key.Binding
	Remove   key.Binding
	Reset    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Autosort, k.Lock, k.Pin, k.Expand, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Up, k.Down, k.Left, k.Right},
		{k.Grow, k.Shrink, k.Taller, k.Shorter},
		{k.Autosort, k.Lock, k.Pin, k.Expand},
		{k.AddNote, k.AddClock, k.Remove, k.Reset},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next widget"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "prev widget"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "move left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("right", "move right"),
		),
		Grow: key.NewBinding(
			key.WithKeys("shift+right", "L"),
			key.WithHelp("S-right", "wider"),
		),
		Shrink: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("S-left", "narrower"),
		),
		Taller: key.NewBinding(
			key.WithKeys("shift+down", "J"),
			key.WithHelp("S-down", "taller"),
		),
		Shorter: key.NewBinding(
			key.WithKeys("shift+up", "K"),
			key.WithHelp("S-up", "shorter"),
		),
		Autosort: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "autosort"),
		),
		Lock: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "lock"),
		),
		Pin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pin"),
		),
		Expand: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "expand"),
		),
		AddNote: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "add note"),
		),
		AddClock: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "add clock"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "remove"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// MouseMapper translates terminal cells to layout pixels and back.
// One column is CellW pixels wide, one row CellH pixels tall.
type MouseMapper struct {
	CellW float64
	CellH float64
}

// ToPixels returns the pixel at the center of the cell.
func (mm MouseMapper) ToPixels(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * mm.CellW, (float64(row) + 0.5) * mm.CellH
}

// CellRect returns the cells covered by a pixel rectangle as x, y, w, h.
// Every non-empty rectangle covers at least one cell.
func (mm MouseMapper) CellRect(r core.Rect) (int, int, int, int) {
	left := int(math.Floor(r.X / mm.CellW))
	top := int(math.Floor(r.Y / mm.CellH))
	right := max(int(math.Ceil(r.Right()/mm.CellW)), left+1)
	bottom := max(int(math.Ceil(r.Bottom()/mm.CellH)), top+1)
	return left, top, right - left, bottom - top
}

// HitTest returns the top-most widget drawn at the cell and the handle the
// cell represents: corners and edges of the drawn box resize, the interior
// drags.
func (mm MouseMapper) HitTest(widgets []core.Widget, col, row int) (string, core.Handle, bool) {
	for i := len(widgets) - 1; i >= 0; i-- {
		x, y, w, h := mm.CellRect(widgets[i].Rect())
		if col < x || col >= x+w || row < y || row >= y+h {
			continue
		}
		return widgets[i].ID, handleAt(col-x, row-y, w, h), true
	}
	return "", core.HandleNone, false
}

func handleAt(dx, dy, w, h int) core.Handle {
	// Boxes too small to have an interior can only be dragged
	if w < 3 || h < 3 {
		return core.HandleNone
	}
	north, south := dy == 0, dy == h-1
	west, east := dx == 0, dx == w-1
	switch {
	case north && west:
		return core.HandleNW
	case north && east:
		return core.HandleNE
	case south && west:
		return core.HandleSW
	case south && east:
		return core.HandleSE
	case north:
		return core.HandleN
	case south:
		return core.HandleS
	case west:
		return core.HandleW
	case east:
		return core.HandleE
	}
	return core.HandleNone
}

// isLeftPress reports whether the mouse message is a left-button press.
func isLeftPress(msg tea.MouseMsg) bool {
	return msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft
}
