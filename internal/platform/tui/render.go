package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/gridfolio/internal/core"
	"github.com/vovakirdan/gridfolio/internal/kinds"
	"github.com/vovakirdan/gridfolio/internal/registry"
)

// colorStyles maps cell roles to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:    lipgloss.NewStyle(),
	core.ColorText:       lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorOutline:    lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorMuted:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	core.ColorSelected:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorActive:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
	core.ColorSwapTarget: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorRejected:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	core.ColorBadge:      lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
}

var statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// boardView is everything drawBoard needs for one frame.
type boardView struct {
	widgets    []core.Widget
	usable     core.Bounds
	selected   string
	active     string
	rejected   string
	swapTarget string
	now        time.Time
}

// drawBoard draws the usable area corners and every widget box.
// Widgets later in the list are drawn on top.
func drawBoard(s *core.Screen, mm MouseMapper, v boardView) {
	s.Clear()

	x, y, w, h := mm.CellRect(v.usable.Rect())
	for _, c := range [][2]int{{x, y}, {x + w - 1, y}, {x, y + h - 1}, {x + w - 1, y + h - 1}} {
		s.SetCell(c[0], c[1], '+', core.ColorMuted)
	}

	for _, wd := range v.widgets {
		drawWidget(s, mm, wd, v)
	}
}

func drawWidget(s *core.Screen, mm MouseMapper, w core.Widget, v boardView) {
	x, y, cw, ch := mm.CellRect(w.Rect())
	color, heavy := widgetColor(w, v)

	s.FillRect(x, y, cw, ch, ' ', core.ColorDefault)
	s.DrawBox(x, y, cw, ch, color, heavy)
	if cw < 3 || ch < 3 {
		return
	}

	inner := cw - 2
	s.DrawText(x+1, y, " "+kindTitle(w.Type)+" ", color, inner)
	row := y + 1
	for _, line := range widgetLines(w, v.now) {
		if row >= y+ch-1 {
			break
		}
		s.DrawText(x+1, row, line, core.ColorText, inner)
		row++
	}
	if flags := widgetFlags(w); flags != "" {
		s.DrawText(x+max(cw-1-len(flags), 1), y+ch-1, flags, core.ColorBadge, inner)
	}
}

// widgetColor picks the outline: the rejected cue wins over the active
// operation, which wins over the swap target and the keyboard selection.
func widgetColor(w core.Widget, v boardView) (core.Color, bool) {
	switch w.ID {
	case v.rejected:
		return core.ColorRejected, true
	case v.active:
		return core.ColorActive, true
	case v.swapTarget:
		return core.ColorSwapTarget, true
	case v.selected:
		return core.ColorSelected, true
	}
	if w.Locked {
		return core.ColorMuted, false
	}
	return core.ColorOutline, false
}

func kindTitle(id string) string {
	if k, err := registry.Get(id); err == nil && k.Title != "" {
		return k.Title
	}
	return id
}

// widgetLines returns the body text of a widget.
func widgetLines(w core.Widget, now time.Time) []string {
	switch w.Type {
	case kinds.Note:
		text, _ := w.Settings["text"].(string)
		if text == "" {
			return []string{"(empty note)"}
		}
		return strings.Split(text, "\n")
	case kinds.Clock:
		tz, _ := w.Settings["timezone"].(string)
		loc, err := time.LoadLocation(tz)
		if err != nil {
			loc = time.UTC
		}
		return []string{now.In(loc).Format("15:04"), loc.String()}
	}
	return []string{fmt.Sprintf("%.0fx%.0f", w.Width, w.Height)}
}

func widgetFlags(w core.Widget) string {
	switch {
	case w.Locked:
		return "[locked]"
	case w.Pinned:
		return "[pinned]"
	}
	return ""
}
