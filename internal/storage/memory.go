package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/vovakirdan/gridfolio/internal/core"
)

// MemoryStore keeps layouts in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	layouts map[string][]core.Widget
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{layouts: make(map[string][]core.Widget)}
}

// SaveLayout stores a deep copy of widgets under name.
func (m *MemoryStore) SaveLayout(_ context.Context, name string, widgets []core.Widget) error {
	ws := core.CloneWidgets(widgets)
	if ws == nil {
		ws = []core.Widget{}
	}
	m.mu.Lock()
	m.layouts[name] = ws
	m.mu.Unlock()
	return nil
}

// LoadLayout returns a deep copy of the named layout, or nil, nil.
func (m *MemoryStore) LoadLayout(_ context.Context, name string) ([]core.Widget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ws, ok := m.layouts[name]
	if !ok {
		return nil, nil
	}
	return core.CloneWidgets(ws), nil
}

// DeleteLayout forgets the named layout.
func (m *MemoryStore) DeleteLayout(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.layouts, name)
	m.mu.Unlock()
	return nil
}

// Names returns the stored layout names in sorted order.
func (m *MemoryStore) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.layouts))
	for name := range m.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
