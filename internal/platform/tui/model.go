package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/gridfolio/internal/board"
	"github.com/vovakirdan/gridfolio/internal/config"
	"github.com/vovakirdan/gridfolio/internal/core"
	"github.com/vovakirdan/gridfolio/internal/interact"
	"github.com/vovakirdan/gridfolio/internal/kinds"
)

// statusRows is the number of terminal rows below the board.
const statusRows = 2

// refreshRate is how often the board redraws to pick up timer-driven
// changes such as delayed swaps and the rejected cue.
const refreshRate = 10

// Model is the Bubble Tea model for the terminal board.
type Model struct {
	engine   *interact.Engine
	store    *board.Store
	mapper   MouseMapper
	screen   *core.Screen
	keys     KeyMap
	help     help.Model
	width    int
	height   int
	selected string
	status   string
	now      func() time.Time
	quitting bool
}

// NewModel creates a board model driving the given engine.
func NewModel(engine *interact.Engine, cfg config.BoardConfig) Model {
	h := help.New()
	h.ShowAll = false

	m := Model{
		engine: engine,
		store:  engine.Store(),
		mapper: MouseMapper{CellW: cfg.CellWidth, CellH: cfg.CellHeight},
		screen: core.NewScreen(0, 0),
		keys:   DefaultKeyMap(),
		help:   h,
		now:    time.Now,
	}
	if ws := m.store.Snapshot(); len(ws) > 0 {
		m.selected = ws[0].ID
	}
	return m
}

// Init starts the refresh loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(refreshRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m, tickCmd(refreshRate)
	}

	return m, nil
}

// handleResize binds the grid to the pixel size of the board area.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.screen.Resize(msg.Width, max(msg.Height-statusRows, 0))
	m.help.Width = msg.Width

	if vp := BoardViewport(m.mapper, msg.Width, msg.Height); vp.Valid() {
		m.engine.Cancel()
		m.store.SetViewport(vp)
	}
	return m, nil
}

// handleMouse feeds mouse events to the engine as pointer events.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	x, y := m.mapper.ToPixels(msg.X, msg.Y)

	switch {
	case isLeftPress(msg):
		id, handle, ok := m.mapper.HitTest(m.engine.Widgets(), msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.selected = id
		if !m.engine.PointerDown(core.PointerDown{WidgetID: id, Handle: handle, X: x, Y: y}) {
			m.status = fmt.Sprintf("%s is locked", id)
		}
	case msg.Action == tea.MouseActionMotion:
		m.engine.PointerMove(x, y)
	case msg.Action == tea.MouseActionRelease:
		m.engine.PointerUp(x, y)
		if id := m.engine.RejectedID(); id != "" {
			m.status = fmt.Sprintf("%s did not fit there", id)
		}
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.store.Grid().Size()
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.engine.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Next):
		m.cycle(1)
	case key.Matches(msg, m.keys.Prev):
		m.cycle(-1)
	case key.Matches(msg, m.keys.Up):
		m.nudge(core.HandleNone, 0, -g)
	case key.Matches(msg, m.keys.Down):
		m.nudge(core.HandleNone, 0, g)
	case key.Matches(msg, m.keys.Left):
		m.nudge(core.HandleNone, -g, 0)
	case key.Matches(msg, m.keys.Right):
		m.nudge(core.HandleNone, g, 0)
	case key.Matches(msg, m.keys.Grow):
		m.nudge(core.HandleE, g, 0)
	case key.Matches(msg, m.keys.Shrink):
		m.nudge(core.HandleE, -g, 0)
	case key.Matches(msg, m.keys.Taller):
		m.nudge(core.HandleS, 0, g)
	case key.Matches(msg, m.keys.Shorter):
		m.nudge(core.HandleS, 0, -g)
	case key.Matches(msg, m.keys.Autosort):
		m.engine.Cancel()
		placements := m.store.Autosort()
		m.status = fmt.Sprintf("autosorted %d widgets", len(placements))
	case key.Matches(msg, m.keys.Lock):
		m.toggle(func(w core.Widget) error { return m.store.SetLocked(w.ID, !w.Locked) })
	case key.Matches(msg, m.keys.Pin):
		m.toggle(func(w core.Widget) error { return m.store.SetPinned(w.ID, !w.Pinned) })
	case key.Matches(msg, m.keys.Expand):
		m.toggle(func(w core.Widget) error {
			_, err := m.store.ToggleExpanded(w.ID)
			return err
		})
	case key.Matches(msg, m.keys.AddNote):
		m.add(kinds.Note)
	case key.Matches(msg, m.keys.AddClock):
		m.add(kinds.Clock)
	case key.Matches(msg, m.keys.Remove):
		m.remove()
	case key.Matches(msg, m.keys.Reset):
		m.engine.Cancel()
		m.store.ResetDefault()
		m.selected = ""
		m.cycle(1)
		m.status = "layout reset"
	}

	return m, nil
}

// cycle moves the keyboard selection through the widget list.
func (m *Model) cycle(step int) {
	ws := m.store.Snapshot()
	if len(ws) == 0 {
		m.selected = ""
		return
	}
	i := core.IndexOf(ws, m.selected)
	if i < 0 {
		m.selected = ws[0].ID
		return
	}
	m.selected = ws[(i+step+len(ws))%len(ws)].ID
}

// nudge runs a complete pointer gesture on the selected widget, so keyboard
// moves and resizes resolve exactly like mouse ones.
func (m *Model) nudge(handle core.Handle, dx, dy float64) {
	w, ok := m.store.Get(m.selected)
	if !ok {
		return
	}
	c := w.Rect().Center()
	if !m.engine.PointerDown(core.PointerDown{WidgetID: w.ID, Handle: handle, X: c.X, Y: c.Y}) {
		m.status = fmt.Sprintf("%s is locked", w.ID)
		return
	}
	m.engine.PointerMove(c.X+dx, c.Y+dy)
	m.engine.PointerUp(c.X+dx, c.Y+dy)
	if m.engine.RejectedID() == w.ID {
		m.status = fmt.Sprintf("%s did not fit there", w.ID)
	}
}

func (m *Model) toggle(fn func(core.Widget) error) {
	w, ok := m.store.Get(m.selected)
	if !ok {
		m.status = "nothing selected"
		return
	}
	m.engine.Cancel()
	if err := fn(w); err != nil {
		m.status = err.Error()
	}
}

func (m *Model) add(kind string) {
	m.engine.Cancel()
	origin := m.store.Grid().UsableAreaBounds(m.store.Center())
	w, err := m.store.Add(kind, origin.MinX, origin.MinY)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.selected = w.ID
	m.status = "added " + w.ID
}

func (m *Model) remove() {
	id := m.selected
	if id == "" {
		return
	}
	m.engine.Cancel()
	m.cycle(1)
	if err := m.store.Remove(id); err != nil {
		m.status = err.Error()
		return
	}
	if m.selected == id {
		m.selected = ""
	}
	m.status = "removed " + id
}

// View renders the board, the status line and the help line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	drawBoard(m.screen, m.mapper, boardView{
		widgets:    m.engine.Widgets(),
		usable:     m.store.Grid().UsableAreaBounds(m.store.Center()),
		selected:   m.selected,
		active:     m.engine.ActiveID(),
		rejected:   m.engine.RejectedID(),
		swapTarget: m.engine.SwapTargetID(),
		now:        m.now(),
	})

	var sb strings.Builder
	sb.WriteString(RenderScreen(m.screen))
	sb.WriteRune('\n')
	sb.WriteString(statusStyle.Render(m.statusLine()))
	sb.WriteRune('\n')
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m Model) statusLine() string {
	parts := []string{fmt.Sprintf("%d widgets", len(m.store.Snapshot()))}
	if m.store.Grid().IsMobile() {
		parts = append(parts, "mobile grid")
	}
	if m.selected != "" {
		parts = append(parts, "selected: "+m.selected)
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return strings.Join(parts, "  |  ")
}

// Selected returns the id of the keyboard selection.
func (m Model) Selected() string {
	return m.selected
}

// IsQuitting returns true if the user requested to quit.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BoardViewport returns the pixel viewport of a terminal of cols x rows
// cells, leaving room for the status rows.
func BoardViewport(mm MouseMapper, cols, rows int) core.Viewport {
	return core.Viewport{
		Width:  float64(cols) * mm.CellW,
		Height: float64(max(rows-statusRows, 0)) * mm.CellH,
	}
}

// Run starts the Bubble Tea program for the board.
func Run(engine *interact.Engine, cfg config.BoardConfig) error {
	model := NewModel(engine, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Press, drag and release events
	)

	_, err := p.Run()
	return err
}
