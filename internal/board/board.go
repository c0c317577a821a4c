// Package board owns the ordered widget list of one layout.
//
// The Store is the single writer of the list: the interaction engine reads a
// snapshot when an operation starts and commits the resolved list when it
// ends, while palette and toolbar actions (add, remove, lock, pin, expand,
// autosort, reset) mutate it directly. Every change is persisted in the
// background and never awaited.
package board

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/gridfolio/internal/autosort"
	"github.com/vovakirdan/gridfolio/internal/collision"
	"github.com/vovakirdan/gridfolio/internal/core"
	"github.com/vovakirdan/gridfolio/internal/grid"
	"github.com/vovakirdan/gridfolio/internal/registry"
)

// Errors returned by store operations.
var (
	ErrUnknownWidget  = errors.New("unknown widget")
	ErrUnknownKind    = errors.New("unknown widget kind")
	ErrSingleInstance = errors.New("kind allows a single instance")
	ErrNoSpace        = errors.New("no free space")
	ErrDuplicateID    = errors.New("duplicate widget id")
	ErrInvalidWidget  = errors.New("invalid widget")
	ErrNotExpandable  = errors.New("kind cannot expand")
)

// ExpandedSetting is the settings key the expand toggle maintains.
const ExpandedSetting = "expanded"

// Store holds the widget list, the grid it lives on and the persistence hook.
type Store struct {
	mu       sync.Mutex
	grid     grid.Grid
	center   core.Point
	widgets  []core.Widget
	radius   int
	revision uint64

	persister Persister
	layout    string
	seed      string
	logger    *log.Logger

	saveMu sync.Mutex
	saved  uint64
	wg     sync.WaitGroup
}

// Option configures a Store.
type Option func(*Store)

// WithPersister saves every committed list under the given layout name.
func WithPersister(p Persister, layout string) Option {
	return func(s *Store) {
		s.persister = p
		s.layout = layout
	}
}

// WithSeedLayout makes Load start a missing layout from a copy of the
// named layout instead of the default one.
func WithSeedLayout(name string) Option {
	return func(s *Store) { s.seed = name }
}

// WithLogger sets the logger for commits and persistence failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSearchRadius bounds the nearest-position search used for placement.
func WithSearchRadius(r int) Option {
	return func(s *Store) { s.radius = r }
}

// New creates an empty store on the given grid.
func New(g grid.Grid, opts ...Option) *Store {
	s := &Store{
		grid:   g,
		center: g.CalculateCenterOffset(),
		radius: collision.DefaultSearchRadius,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Grid returns the grid bound to the current viewport.
func (s *Store) Grid() grid.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid
}

// Center returns the current centering offset.
func (s *Store) Center() core.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center
}

// Resolver returns a collision resolver for the current grid and offset.
func (s *Store) Resolver() collision.Resolver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolverLocked()
}

func (s *Store) resolverLocked() collision.Resolver {
	return collision.Resolver{Grid: s.grid, Center: s.center, Radius: s.radius}
}

// Layout returns the name the store persists under.
func (s *Store) Layout() string { return s.layout }

// Revision counts commits since the store was created.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// MinSize returns the content minimum of a widget type in pixels.
func (s *Store) MinSize(widgetType string) (float64, float64) {
	s.mu.Lock()
	g := s.grid
	s.mu.Unlock()
	u := registry.MinUnits(widgetType)
	return g.UnitsToSize(u.W), g.UnitsToSize(u.H)
}

// Snapshot returns a deep copy of the widget list.
func (s *Store) Snapshot() []core.Widget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.CloneWidgets(s.widgets)
}

// Get returns a copy of one widget.
func (s *Store) Get(id string) (core.Widget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := core.IndexOf(s.widgets, id)
	if i < 0 {
		return core.Widget{}, false
	}
	return s.widgets[i].Clone(), true
}

// Commit replaces the widget list. Ids must be unique and non-empty.
func (s *Store) Commit(widgets []core.Widget) error {
	if err := validate(widgets); err != nil {
		return fmt.Errorf("board: commit: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(core.CloneWidgets(widgets))
	return nil
}

func (s *Store) commitLocked(widgets []core.Widget) {
	s.widgets = widgets
	s.revision++
	s.logger.Debug("layout committed", "layout", s.layout, "widgets", len(widgets), "revision", s.revision)
	s.persistLocked()
}

// Add places a new widget of the given kind as close to (x, y) as possible.
func (s *Store) Add(kind string, x, y float64) (core.Widget, error) {
	k, err := registry.Get(kind)
	if err != nil {
		return core.Widget{}, fmt.Errorf("board: add %q: %w", kind, ErrUnknownKind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !k.Multiple {
		for _, w := range s.widgets {
			if w.Type == kind {
				return core.Widget{}, fmt.Errorf("board: add %q: %w", kind, ErrSingleInstance)
			}
		}
	}

	widgets := core.CloneWidgets(s.widgets)
	s.settle(widgets)

	units := k.Default()
	w := core.Widget{
		ID:       kind + "-" + uuid.NewString(),
		Type:     kind,
		Width:    s.grid.UnitsToSize(units.W),
		Height:   s.grid.UnitsToSize(units.H),
		Settings: k.NewSettings(),
	}
	nx, ny, ok := s.resolverLocked().FindNearestValidPosition(x, y, w.Width, w.Height, widgets, w.ID)
	if !ok {
		return core.Widget{}, fmt.Errorf("board: add %q: %w", kind, ErrNoSpace)
	}
	w.X, w.Y = nx, ny

	s.commitLocked(append(widgets, w))
	return w.Clone(), nil
}

// Remove deletes a widget.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := core.IndexOf(s.widgets, id)
	if i < 0 {
		return fmt.Errorf("board: remove %q: %w", id, ErrUnknownWidget)
	}
	widgets := core.CloneWidgets(s.widgets)
	s.commitLocked(append(widgets[:i], widgets[i+1:]...))
	return nil
}

// SetLocked locks or unlocks a widget. Locking clears the pinned flag.
func (s *Store) SetLocked(id string, locked bool) error {
	return s.update(id, "lock", func(w *core.Widget) error {
		w.Locked = locked
		if locked {
			w.Pinned = false
		}
		return nil
	})
}

// SetPinned pins or unpins a widget. Pinning clears the locked flag.
func (s *Store) SetPinned(id string, pinned bool) error {
	return s.update(id, "pin", func(w *core.Widget) error {
		w.Pinned = pinned
		if pinned {
			w.Locked = false
		}
		return nil
	})
}

// UpdateSettings replaces the settings bag of a widget.
func (s *Store) UpdateSettings(id string, settings core.Settings) error {
	return s.update(id, "update settings", func(w *core.Widget) error {
		w.Settings = settings.Clone()
		return nil
	})
}

func (s *Store) update(id, op string, fn func(*core.Widget) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := core.IndexOf(s.widgets, id)
	if i < 0 {
		return fmt.Errorf("board: %s %q: %w", op, id, ErrUnknownWidget)
	}
	widgets := core.CloneWidgets(s.widgets)
	if err := fn(&widgets[i]); err != nil {
		return fmt.Errorf("board: %s %q: %w", op, id, err)
	}
	s.commitLocked(widgets)
	return nil
}

// ToggleExpanded switches a widget between its kind's default and expanded
// size. The widget keeps its position when the new size fits there and moves
// to the nearest free spot otherwise; when no spot exists nothing changes.
func (s *Store) ToggleExpanded(id string) (core.Widget, error) {
	var out core.Widget
	err := s.update(id, "expand", func(w *core.Widget) error {
		k, err := registry.Get(w.Type)
		if err != nil {
			return ErrUnknownKind
		}
		if !k.Expandable() {
			return ErrNotExpandable
		}

		expanded, _ := w.Settings[ExpandedSetting].(bool)
		units := k.ExpandedUnits
		if expanded {
			units = k.Default()
		}
		width, height := s.grid.UnitsToSize(units.W), s.grid.UnitsToSize(units.H)

		r := s.resolverLocked()
		x, y := s.grid.ConstrainToViewport(w.X, w.Y, width, height, s.center, true)
		if r.Collides(x, y, width, height, s.widgets, w.ID) {
			var ok bool
			x, y, ok = r.FindNearestValidPosition(x, y, width, height, s.widgets, w.ID)
			if !ok {
				return ErrNoSpace
			}
		}

		w.SetRect(core.NewRect(x, y, width, height))
		if w.Settings == nil {
			w.Settings = core.Settings{}
		}
		w.Settings[ExpandedSetting] = !expanded
		out = w.Clone()
		return nil
	})
	return out, err
}

// Autosort packs all movable widgets and commits the result.
func (s *Store) Autosort() []autosort.Placement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autosortLocked()
}

func (s *Store) autosortLocked() []autosort.Placement {
	sorted, placements := autosort.Autosort(s.grid, s.widgets, s.center)
	for _, p := range placements {
		if p.Reason == autosort.ReasonFallback {
			s.logger.Warn("autosort found no free spot", "widget", p.ID)
			continue
		}
		s.logger.Debug("autosort placed widget", "widget", p.ID, "reason", p.Reason)
	}
	s.commitLocked(sorted)
	return placements
}

// SetViewport rebinds the grid to a new viewport. Widgets follow the change
// of the centering offset and are constrained leniently; switching between
// the desktop and mobile grid re-packs the layout.
func (s *Store) SetViewport(vp core.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasMobile := s.grid.IsMobile()
	old := s.center
	s.grid = s.grid.WithViewport(vp)
	s.center = s.grid.CalculateCenterOffset()

	if wasMobile != s.grid.IsMobile() {
		s.logger.Debug("grid mode changed", "mobile", s.grid.IsMobile())
		s.autosortLocked()
		return
	}
	if s.center == old {
		return
	}

	dx, dy := s.center.X-old.X, s.center.Y-old.Y
	widgets := core.CloneWidgets(s.widgets)
	for i := range widgets {
		w := &widgets[i]
		w.X, w.Y = s.grid.ConstrainToViewport(w.X+dx, w.Y+dy, w.Width, w.Height, s.center, false)
	}
	s.commitLocked(widgets)
}

// Viewport returns the viewport the grid is bound to.
func (s *Store) Viewport() core.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Viewport()
}

// ResetDefault replaces the layout with one widget of every kind that
// belongs to the default layout, packed by autosort.
func (s *Store) ResetDefault() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widgets = s.defaultWidgets()
	s.autosortLocked()
}

func (s *Store) defaultWidgets() []core.Widget {
	var widgets []core.Widget
	for _, k := range registry.List() {
		if !k.InDefaultLayout {
			continue
		}
		units := k.Default()
		widgets = append(widgets, core.Widget{
			ID:       k.ID,
			Type:     k.ID,
			Width:    s.grid.UnitsToSize(units.W),
			Height:   s.grid.UnitsToSize(units.H),
			Settings: k.NewSettings(),
		})
	}
	return widgets
}

// settle moves widgets that lie outside the usable area (restored layouts,
// viewport changes) to the nearest valid spot. Widgets that fit nowhere are
// clamped in place.
func (s *Store) settle(widgets []core.Widget) {
	r := s.resolverLocked()
	for i := range widgets {
		w := &widgets[i]
		if !s.grid.IsAligned(w.Rect(), s.center) {
			s.logger.Debug("widget is off the grid", "widget", w.ID, "x", w.X, "y", w.Y)
		}
		if s.grid.IsWithinUsableArea(w.X, w.Y, w.Width, w.Height, s.center) {
			continue
		}
		x, y, ok := r.FindNearestValidPosition(w.X, w.Y, w.Width, w.Height, widgets, w.ID)
		if !ok {
			s.logger.Warn("widget has no free spot in the usable area", "widget", w.ID)
		}
		w.X, w.Y = x, y
	}
}

func validate(widgets []core.Widget) error {
	seen := make(map[string]struct{}, len(widgets))
	for _, w := range widgets {
		if w.ID == "" {
			return fmt.Errorf("%w: empty id", ErrInvalidWidget)
		}
		if w.Width <= 0 || w.Height <= 0 {
			return fmt.Errorf("%w: %q has no size", ErrInvalidWidget, w.ID)
		}
		if _, dup := seen[w.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, w.ID)
		}
		seen[w.ID] = struct{}{}
	}
	return nil
}
