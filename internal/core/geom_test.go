package core

import "testing"

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Rect
		expected bool
	}{
		{
			name:     "overlapping rects",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(5, 5, 10, 10),
			expected: true,
		},
		{
			name:     "non-overlapping horizontal",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(15, 0, 10, 10),
			expected: false,
		},
		{
			name:     "non-overlapping vertical",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(0, 15, 10, 10),
			expected: false,
		},
		{
			name:     "adjacent horizontal (no overlap)",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(10, 0, 10, 10),
			expected: false,
		},
		{
			name:     "adjacent vertical (no overlap)",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(0, 10, 10, 10),
			expected: false,
		},
		{
			name:     "contained rect",
			a:        NewRect(0, 0, 20, 20),
			b:        NewRect(5, 5, 5, 5),
			expected: true,
		},
		{
			name:     "edges touching after float rounding",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(10-1e-9, 0, 10, 10),
			expected: false,
		},
		{
			name:     "sub-pixel overlap",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(9.5, 9.5, 10, 10),
			expected: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := tc.a.Intersects(tc.b)
			if result != tc.expected {
				t.Errorf("Intersects() = %v, expected %v", result, tc.expected)
			}
			// Also test symmetry
			resultReverse := tc.b.Intersects(tc.a)
			if resultReverse != tc.expected {
				t.Errorf("Intersects() (reversed) = %v, expected %v", resultReverse, tc.expected)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 15)

	tests := []struct {
		name     string
		x, y     float64
		expected bool
	}{
		{"inside", 15, 15, true},
		{"top-left corner", 10, 10, true},
		{"bottom-right edge (exclusive)", 30, 25, false},
		{"left of rect", 5, 15, false},
		{"below rect", 15, 40, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Contains(tc.x, tc.y); got != tc.expected {
				t.Errorf("Contains(%v, %v) = %v, expected %v", tc.x, tc.y, got, tc.expected)
			}
		})
	}
}

func TestRectGrowAndContainsRect(t *testing.T) {
	r := NewRect(10, 10, 20, 20)
	g := r.Grow(5)
	if g != NewRect(5, 5, 30, 30) {
		t.Fatalf("Grow(5) = %+v", g)
	}
	if !g.ContainsRect(r) {
		t.Error("grown rect should contain the original")
	}
	if r.ContainsRect(g) {
		t.Error("original should not contain the grown rect")
	}
	if !r.ContainsRect(r) {
		t.Error("a rect contains itself")
	}
	if !r.ContainsRect(NewRect(10-1e-9, 10, 20, 20+1e-9)) {
		t.Error("edges within Epsilon count as inside")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected float64
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{5, 10, 0, 10}, // inverted range: lower bound wins
	}
	for _, tc := range tests {
		if got := Clamp(tc.val, tc.min, tc.max); got != tc.expected {
			t.Errorf("Clamp(%v, %v, %v) = %v, expected %v", tc.val, tc.min, tc.max, got, tc.expected)
		}
	}
}

func TestBoundsRect(t *testing.T) {
	b := Bounds{MinX: 1, MinY: 2, MaxX: 4, MaxY: 6}
	if got, want := b.Rect(), NewRect(1, 2, 3, 4); got != want {
		t.Errorf("Bounds.Rect() = %+v, expected %+v", got, want)
	}
}

func TestWidgetCloneIsolatesSettings(t *testing.T) {
	w := Widget{ID: "a", Settings: Settings{"game": "snake"}}
	c := w.Clone()
	c.Settings["game"] = "pong"
	if w.Settings["game"] != "snake" {
		t.Error("Clone() shares the settings map")
	}
	if IndexOf([]Widget{{ID: "x"}, w}, "a") != 1 {
		t.Error("IndexOf did not find widget")
	}
	if IndexOf(nil, "a") != -1 {
		t.Error("IndexOf on empty list should be -1")
	}
}

func TestHandleEdges(t *testing.T) {
	tests := []struct {
		h                        Handle
		north, south, east, west bool
	}{
		{HandleN, true, false, false, false},
		{HandleS, false, true, false, false},
		{HandleE, false, false, true, false},
		{HandleW, false, false, false, true},
		{HandleNE, true, false, true, false},
		{HandleNW, true, false, false, true},
		{HandleSE, false, true, true, false},
		{HandleSW, false, true, false, true},
		{HandleNone, false, false, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.h.String(), func(t *testing.T) {
			if tc.h.North() != tc.north || tc.h.South() != tc.south ||
				tc.h.East() != tc.east || tc.h.West() != tc.west {
				t.Errorf("edges of %q wrong", tc.h)
			}
			if tc.h != HandleNone && ParseHandle(tc.h.String()) != tc.h {
				t.Errorf("ParseHandle(%q) did not round-trip", tc.h)
			}
		})
	}
	if ParseHandle("bogus") != HandleNone {
		t.Error("unknown handle should parse as HandleNone")
	}
}

func TestHandleAnchor(t *testing.T) {
	r := NewRect(100, 100, 50, 40)
	tests := []struct {
		h    Handle
		want Rect
	}{
		{HandleSE, NewRect(100, 100, 30, 20)},
		{HandleW, NewRect(120, 100, 30, 20)},
		{HandleN, NewRect(100, 120, 30, 20)},
		{HandleNW, NewRect(120, 120, 30, 20)},
	}
	for _, tc := range tests {
		t.Run(tc.h.String(), func(t *testing.T) {
			if got := tc.h.Anchor(r, 30, 20); got != tc.want {
				t.Errorf("Anchor() = %+v, expected %+v", got, tc.want)
			}
		})
	}
}
