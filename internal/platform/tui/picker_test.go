package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/gridfolio/internal/storage"
)

var testLayouts = []storage.LayoutInfo{
	{Name: "default", Revision: 3, Widgets: 7},
	{Name: "work", Revision: 1, Widgets: 2},
	{Name: "zen", Revision: 9, Widgets: 1},
}

func pick(t *testing.T, m PickerModel, msgs ...tea.Msg) PickerModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		if m, ok = next.(PickerModel); !ok {
			t.Fatalf("Update() returned %T", next)
		}
	}
	return m
}

func TestPickerSelect(t *testing.T) {
	tests := []struct {
		name    string
		current string
		keys    []tea.Msg
		want    string
	}{
		{"first", "", []tea.Msg{tea.KeyMsg{Type: tea.KeyEnter}}, "default"},
		{"starts on current", "work", []tea.Msg{tea.KeyMsg{Type: tea.KeyEnter}}, "work"},
		{"down", "", []tea.Msg{runes("j"), runes("j"), tea.KeyMsg{Type: tea.KeyEnter}}, "zen"},
		{"stops at bottom", "zen", []tea.Msg{tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter}}, "zen"},
		{"up", "zen", []tea.Msg{tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyEnter}}, "work"},
		{"stops at top", "", []tea.Msg{runes("k"), tea.KeyMsg{Type: tea.KeyEnter}}, "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := pick(t, NewPickerModel(testLayouts, tt.current), tt.keys...)
			if m.Selected() != tt.want {
				t.Errorf("Selected() = %q, expected %q", m.Selected(), tt.want)
			}
		})
	}
}

func TestPickerQuit(t *testing.T) {
	m := NewPickerModel(testLayouts, "")
	next, cmd := m.Update(runes("q"))
	m = next.(PickerModel)
	if !m.IsQuitting() || cmd == nil {
		t.Error("q should quit")
	}
	if m.Selected() != "" {
		t.Errorf("quitting selected %q", m.Selected())
	}
}

func TestPickerView(t *testing.T) {
	m := pick(t, NewPickerModel(testLayouts, "work"), tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	if !strings.Contains(view, "> work") {
		t.Errorf("cursor should be on work:\n%s", view)
	}
	if !strings.Contains(view, "7 widgets") {
		t.Errorf("view should show widget counts:\n%s", view)
	}

	empty := NewPickerModel(nil, "")
	if !strings.Contains(empty.View(), "No layouts stored yet.") {
		t.Error("empty picker should say so")
	}
	if m := pick(t, empty, tea.KeyMsg{Type: tea.KeyEnter}); m.Selected() != "" {
		t.Error("enter on an empty picker should not select anything")
	}
}

func TestCenterText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"ab", 6, "  ab"},
		{"héllo", 9, "  héllo"},
		{"too wide", 4, "too wide"},
	}
	for _, tt := range tests {
		if got := centerText(tt.text, tt.width); got != tt.want {
			t.Errorf("centerText(%q, %d) = %q, expected %q", tt.text, tt.width, got, tt.want)
		}
	}
}
