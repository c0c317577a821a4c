package core

import "strings"

// Handle identifies which part of a widget a pointer-down landed on.
// HandleNone means the widget body (a drag); the eight compass handles
// start a resize.
type Handle int

const (
	HandleNone Handle = iota
	HandleN
	HandleS
	HandleE
	HandleW
	HandleNE
	HandleNW
	HandleSE
	HandleSW
)

// String returns the compass name of the handle.
func (h Handle) String() string {
	switch h {
	case HandleN:
		return "n"
	case HandleS:
		return "s"
	case HandleE:
		return "e"
	case HandleW:
		return "w"
	case HandleNE:
		return "ne"
	case HandleNW:
		return "nw"
	case HandleSE:
		return "se"
	case HandleSW:
		return "sw"
	default:
		return ""
	}
}

// ParseHandle converts a compass name ("n", "se", ...) to a Handle.
// Unknown or empty names yield HandleNone.
func ParseHandle(s string) Handle {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n":
		return HandleN
	case "s":
		return HandleS
	case "e":
		return HandleE
	case "w":
		return HandleW
	case "ne":
		return HandleNE
	case "nw":
		return HandleNW
	case "se":
		return HandleSE
	case "sw":
		return HandleSW
	default:
		return HandleNone
	}
}

// North reports whether the handle moves the top edge.
func (h Handle) North() bool { return h == HandleN || h == HandleNE || h == HandleNW }

// South reports whether the handle moves the bottom edge.
func (h Handle) South() bool { return h == HandleS || h == HandleSE || h == HandleSW }

// East reports whether the handle moves the right edge.
func (h Handle) East() bool { return h == HandleE || h == HandleNE || h == HandleSE }

// West reports whether the handle moves the left edge.
func (h Handle) West() bool { return h == HandleW || h == HandleNW || h == HandleSW }

// Horizontal reports whether the handle changes the width.
func (h Handle) Horizontal() bool { return h.East() || h.West() }

// Vertical reports whether the handle changes the height.
func (h Handle) Vertical() bool { return h.North() || h.South() }

// Event is a pointer event delivered to the interaction engine.
type Event interface {
	pointerEvent()
}

// PointerDown is a press on a widget body or one of its resize handles.
type PointerDown struct {
	WidgetID string
	Handle   Handle
	X, Y     float64
	// Interactive is set when the press landed on an interactive child
	// element (link, button, input) that must keep its own behavior.
	Interactive bool
}

func (PointerDown) pointerEvent() {}

// PointerMove is a pointer motion anywhere on the page.
type PointerMove struct {
	X, Y float64
}

func (PointerMove) pointerEvent() {}

// PointerUp is a release anywhere on the page.
type PointerUp struct {
	X, Y float64
}

func (PointerUp) pointerEvent() {}

// Anchor resizes r to (w, ht), keeping the edges the handle does not move.
func (h Handle) Anchor(r Rect, w, ht float64) Rect {
	out := NewRect(r.X, r.Y, w, ht)
	if h.West() {
		out.X = r.Right() - w
	}
	if h.North() {
		out.Y = r.Bottom() - ht
	}
	return out
}
