package core

// Viewport is the size of the visible page (or terminal) in pixels.
type Viewport struct {
	Width  float64
	Height float64
}

// DefaultViewport returns a desktop-sized viewport used when the front-end
// has not reported its size yet.
func DefaultViewport() Viewport {
	return Viewport{Width: 1440, Height: 900}
}

// Valid reports whether both dimensions are positive.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}
