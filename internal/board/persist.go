package board

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/vovakirdan/gridfolio/internal/core"
)

// saveTimeout bounds a single background save.
const saveTimeout = 5 * time.Second

// Persister stores named widget lists. LoadLayout returns a nil slice and no
// error when the layout does not exist yet.
type Persister interface {
	SaveLayout(ctx context.Context, name string, widgets []core.Widget) error
	LoadLayout(ctx context.Context, name string) ([]core.Widget, error)
}

// Load restores the layout from the persister. Restored positions are
// trusted as-is. A missing layout is replaced by the default one.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		s.ResetDefault()
		return nil
	}

	widgets, err := s.persister.LoadLayout(ctx, s.layout)
	if err != nil {
		return fmt.Errorf("board: load %q: %w", s.layout, err)
	}
	if widgets == nil {
		return s.seedLayout(ctx)
	}
	if err := validate(widgets); err != nil {
		return fmt.Errorf("board: load %q: %w", s.layout, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.widgets = widgets
	s.logger.Debug("layout restored", "layout", s.layout, "widgets", len(widgets))
	return nil
}

// seedLayout starts a missing layout from the seed layout, or from the
// default layout when there is no seed. The result is saved under the
// store's own name.
func (s *Store) seedLayout(ctx context.Context) error {
	if s.seed == "" || s.seed == s.layout {
		s.logger.Info("no saved layout, using default", "layout", s.layout)
		s.ResetDefault()
		return nil
	}

	widgets, err := s.persister.LoadLayout(ctx, s.seed)
	if err != nil {
		return fmt.Errorf("board: load seed %q: %w", s.seed, err)
	}
	if widgets == nil || validate(widgets) != nil {
		s.logger.Info("no usable seed layout, using default", "layout", s.layout, "seed", s.seed)
		s.ResetDefault()
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Debug("layout seeded", "layout", s.layout, "seed", s.seed, "widgets", len(widgets))
	s.commitLocked(widgets)
	return nil
}

// persistLocked saves a snapshot in the background. Saves are applied in
// commit order; a save that lost the race to a newer one is skipped.
func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	seq := s.revision
	snapshot := core.CloneWidgets(s.widgets)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.saveMu.Lock()
		defer s.saveMu.Unlock()
		if seq <= s.saved {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := s.persister.SaveLayout(ctx, s.layout, snapshot); err != nil {
			s.logger.Error("failed to persist layout", "layout", s.layout, "revision", seq, "err", err)
			return
		}
		s.saved = seq
	}()
}

// Wait blocks until every background save has finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Export writes the layout as an ordered JSON array of widgets.
func (s *Store) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Snapshot()); err != nil {
		return fmt.Errorf("board: export: %w", err)
	}
	return nil
}

// Import replaces the layout with a JSON array produced by Export.
func (s *Store) Import(r io.Reader) error {
	var widgets []core.Widget
	if err := json.NewDecoder(r).Decode(&widgets); err != nil {
		return fmt.Errorf("board: import: %w", err)
	}
	if widgets == nil {
		widgets = []core.Widget{}
	}
	if err := validate(widgets); err != nil {
		return fmt.Errorf("board: import: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(widgets)
	return nil
}
