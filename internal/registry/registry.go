// Package registry provides a global registry of widget kinds.
// Kinds register themselves in init() functions, allowing the board and the
// front-ends to discover sizes and titles without hardcoded tables.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/gridfolio/internal/core"
)

// Units is a widget size in grid cells.
type Units struct {
	W, H int
}

// FallbackMin is the minimum size used for types nobody registered.
var FallbackMin = Units{W: 2, H: 2}

// Kind describes one widget type.
type Kind struct {
	// ID is the widget type string stored in layouts (e.g. "profile").
	ID string

	// Title is a human-readable name for palettes and listings.
	Title string

	// MinUnits is the smallest size the content can render in.
	MinUnits Units

	// DefaultUnits is the size a freshly added widget gets.
	// Zero means MinUnits.
	DefaultUnits Units

	// ExpandedUnits is the size of the expanded state toggled by the
	// expand action. Zero means the kind cannot expand.
	ExpandedUnits Units

	// Multiple allows more than one widget of this kind per layout.
	Multiple bool

	// DefaultSettings seeds the settings of new widgets.
	DefaultSettings core.Settings

	// InDefaultLayout places one instance of the kind in the reset layout.
	InDefaultLayout bool
}

// Default returns the size for new widgets.
func (k Kind) Default() Units {
	if k.DefaultUnits.W <= 0 || k.DefaultUnits.H <= 0 {
		return k.MinUnits
	}
	return k.DefaultUnits
}

// Expandable reports whether the kind has an expanded size.
func (k Kind) Expandable() bool {
	return k.ExpandedUnits.W > 0 && k.ExpandedUnits.H > 0
}

// NewSettings returns a fresh copy of the default settings, or nil.
func (k Kind) NewSettings() core.Settings {
	return k.DefaultSettings.Clone()
}

var (
	kinds = make(map[string]Kind)
	mu    sync.RWMutex
)

// Register adds a kind to the registry.
// Typically called from an init() function.
// Panics if a kind with the same ID is already registered or its minimum
// size is not positive.
func Register(k Kind) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := kinds[k.ID]; exists {
		panic(fmt.Sprintf("registry: kind %q already registered", k.ID))
	}
	if k.MinUnits.W < 1 || k.MinUnits.H < 1 {
		panic(fmt.Sprintf("registry: kind %q has no minimum size", k.ID))
	}

	kinds[k.ID] = k
}

// List returns all registered kinds, sorted by ID.
func List() []Kind {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Kind, 0, len(kinds))
	for _, k := range kinds {
		result = append(result, k)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Get looks up a kind by its ID.
// Returns an error if the kind is not registered.
func Get(id string) (Kind, error) {
	mu.RLock()
	defer mu.RUnlock()

	k, ok := kinds[id]
	if !ok {
		return Kind{}, fmt.Errorf("registry: unknown kind %q", id)
	}

	return k, nil
}

// Exists checks if a kind with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := kinds[id]
	return ok
}

// MinUnits returns the content minimum for a widget type, or FallbackMin
// for unknown types.
func MinUnits(id string) Units {
	mu.RLock()
	defer mu.RUnlock()

	if k, ok := kinds[id]; ok {
		return k.MinUnits
	}
	return FallbackMin
}
