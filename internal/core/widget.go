package core

// Settings is the opaque per-type configuration bag of a widget.
// The engine never reads it; renderers own its content.
type Settings map[string]any

// Clone returns a deep copy of the settings. Nested JSON objects and arrays
// (map[string]any, Settings and []any) are copied; other values are shared.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case Settings:
		return v.Clone()
	case map[string]any:
		if v == nil {
			return v
		}
		return map[string]any(Settings(v).Clone())
	case []any:
		if v == nil {
			return v
		}
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Widget is a placed rectangular panel.
// X/Y/Width/Height describe the visible box; the padded box extends it by
// the grid padding on every side.
type Widget struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Locked   bool     `json:"locked"`
	Pinned   bool     `json:"pinned"`
	Settings Settings `json:"settings"`
}

// Rect returns the visible box of the widget.
func (w Widget) Rect() Rect {
	return Rect{X: w.X, Y: w.Y, W: w.Width, H: w.Height}
}

// Right returns the x-coordinate of the visible box's right edge.
func (w Widget) Right() float64 { return w.X + w.Width }

// Bottom returns the y-coordinate of the visible box's bottom edge.
func (w Widget) Bottom() float64 { return w.Y + w.Height }

// SetRect overwrites the widget geometry.
func (w *Widget) SetRect(r Rect) {
	w.X, w.Y, w.Width, w.Height = r.X, r.Y, r.W, r.H
}

// Fixed reports whether autosort must leave the widget in place.
func (w Widget) Fixed() bool {
	return w.Locked || w.Pinned
}

// Clone returns a copy that shares nothing mutable with w.
func (w Widget) Clone() Widget {
	w.Settings = w.Settings.Clone()
	return w
}

// CloneWidgets deep-copies a widget list.
func CloneWidgets(ws []Widget) []Widget {
	if ws == nil {
		return nil
	}
	out := make([]Widget, len(ws))
	for i, w := range ws {
		out[i] = w.Clone()
	}
	return out
}

// IndexOf returns the position of the widget with the given id, or -1.
func IndexOf(ws []Widget, id string) int {
	for i := range ws {
		if ws[i].ID == id {
			return i
		}
	}
	return -1
}
