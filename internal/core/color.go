package core

// Color is the role of a screen cell. The terminal renderer maps each role
// to an ANSI 256-color style.
type Color uint8

const (
	ColorDefault    Color = iota
	ColorText             // widget body text
	ColorOutline          // border of an idle widget
	ColorMuted            // locked widgets and usable area marks
	ColorSelected         // keyboard selection
	ColorActive           // widget being dragged or resized
	ColorSwapTarget       // widget under a pending swap
	ColorRejected         // rejected placement cue
	ColorBadge            // [locked] and [pinned] badges
)
