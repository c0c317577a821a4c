package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/vovakirdan/gridfolio/internal/storage"
)

// pickerKeys are the bindings of the layout picker.
var pickerKeys = struct {
	Up, Down, Select, Quit key.Binding
}{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Select: key.NewBinding(key.WithKeys("enter", " ")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
}

// PickerModel is the Bubble Tea model for the stored layout picker.
type PickerModel struct {
	layouts  []storage.LayoutInfo
	cursor   int
	width    int
	quitting bool
	selected string
}

// NewPickerModel creates a picker over the given layouts, with the cursor
// on current when it is listed.
func NewPickerModel(layouts []storage.LayoutInfo, current string) PickerModel {
	m := PickerModel{layouts: layouts, width: 80}
	for i, l := range layouts {
		if l.Name == current {
			m.cursor = i
		}
	}
	return m
}

// Init initializes the picker model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the picker.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
	}

	return m, nil
}

// handleKey processes keyboard input for picker navigation.
func (m PickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, pickerKeys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, pickerKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, pickerKeys.Down):
		if m.cursor < len(m.layouts)-1 {
			m.cursor++
		}

	case key.Matches(msg, pickerKeys.Select):
		if len(m.layouts) > 0 {
			m.selected = m.layouts[m.cursor].Name
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the picker.
func (m PickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText("  G R I D F O L I O  ", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select a layout", m.width))
	b.WriteString("\n\n")

	if len(m.layouts) == 0 {
		b.WriteString(centerText("No layouts stored yet.", m.width))
		b.WriteString("\n")
	}
	for i, l := range m.layouts {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-20s %2d widgets  rev %d", cursor, l.Name, l.Widgets, l.Revision)
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText("Up/Down: Navigate  |  Enter: Open  |  Q: Quit", m.width))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the chosen layout name, or "" if none was chosen.
func (m PickerModel) Selected() string {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m PickerModel) IsQuitting() bool {
	return m.quitting
}

// centerText centers text within given width, measured in terminal cells.
func centerText(text string, width int) string {
	w := ansi.StringWidth(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}

// RunPicker shows the picker and returns the chosen layout name.
// ok is false when the user quit without choosing.
func RunPicker(layouts []storage.LayoutInfo, current string) (name string, ok bool, err error) {
	p := tea.NewProgram(NewPickerModel(layouts, current), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return "", false, err
	}
	m, isPicker := final.(PickerModel)
	if !isPicker || m.Selected() == "" {
		return "", false, nil
	}
	return m.Selected(), true, nil
}
