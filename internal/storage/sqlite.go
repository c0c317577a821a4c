// Package storage persists widget layouts.
//
// Three backends implement the same Backend interface: SQLite (the
// pure-Go modernc.org/sqlite driver, durable named layouts with a revision
// history), Redis (per-session layouts that expire) and an in-memory map
// for tests and throwaway sessions.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/gridfolio/internal/config"
	"github.com/vovakirdan/gridfolio/internal/core"
)

// Store manages the SQLite database connection for layout persistence.
type Store struct {
	db *sql.DB
}

// LayoutInfo summarizes a stored layout.
type LayoutInfo struct {
	Name      string
	Revision  int64
	Widgets   int
	UpdatedAt time.Time
}

// Revision is one saved version of a layout.
type Revision struct {
	ID        int64
	Layout    string
	Revision  int64
	Widgets   []core.Widget
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := config.ExpandHome(dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// Background saves from several boards share one file
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS layouts (
			name TEXT PRIMARY KEY,
			revision INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS widgets (
			layout TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			id TEXT NOT NULL,
			type TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			width REAL NOT NULL,
			height REAL NOT NULL,
			locked INTEGER NOT NULL DEFAULT 0,
			pinned INTEGER NOT NULL DEFAULT 0,
			settings TEXT,
			PRIMARY KEY (layout, id)
		);
		CREATE INDEX IF NOT EXISTS idx_widgets_order ON widgets(layout, ordinal);

		CREATE TABLE IF NOT EXISTS layout_revisions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			layout TEXT NOT NULL,
			revision INTEGER NOT NULL,
			widgets TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_revisions_layout ON layout_revisions(layout, revision DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveLayout replaces the widgets of a layout and appends a revision.
func (s *Store) SaveLayout(ctx context.Context, name string, widgets []core.Widget) error {
	snapshot, err := json.Marshal(widgets)
	if err != nil {
		return fmt.Errorf("storage: cannot encode layout: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after Commit

	var revision int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO layouts (name, revision) VALUES (?, 1)
		 ON CONFLICT(name) DO UPDATE SET revision = revision + 1, updated_at = CURRENT_TIMESTAMP
		 RETURNING revision`,
		name,
	).Scan(&revision)
	if err != nil {
		return fmt.Errorf("storage: cannot save layout %q: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM widgets WHERE layout = ?", name); err != nil {
		return fmt.Errorf("storage: cannot clear widgets: %w", err)
	}

	for i, w := range widgets {
		settings, err := encodeSettings(w.Settings)
		if err != nil {
			return fmt.Errorf("storage: cannot encode settings of %q: %w", w.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO widgets (layout, ordinal, id, type, x, y, width, height, locked, pinned, settings)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			name, i, w.ID, w.Type, w.X, w.Y, w.Width, w.Height, w.Locked, w.Pinned, settings,
		)
		if err != nil {
			return fmt.Errorf("storage: cannot save widget %q: %w", w.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO layout_revisions (layout, revision, widgets) VALUES (?, ?, ?)",
		name, revision, string(snapshot),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit layout: %w", err)
	}
	return nil
}

// LoadLayout returns the widgets of a layout in their saved order.
// Returns nil, nil if the layout does not exist.
func (s *Store) LoadLayout(ctx context.Context, name string) ([]core.Widget, error) {
	var revision int64
	err := s.db.QueryRowContext(ctx, "SELECT revision FROM layouts WHERE name = ?", name).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query layout: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, x, y, width, height, locked, pinned, settings
		 FROM widgets
		 WHERE layout = ?
		 ORDER BY ordinal`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query widgets: %w", err)
	}
	defer rows.Close()

	widgets := []core.Widget{}
	for rows.Next() {
		var w core.Widget
		var settings sql.NullString
		if err := rows.Scan(&w.ID, &w.Type, &w.X, &w.Y, &w.Width, &w.Height, &w.Locked, &w.Pinned, &settings); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if w.Settings, err = decodeSettings(settings); err != nil {
			return nil, fmt.Errorf("storage: cannot decode settings of %q: %w", w.ID, err)
		}
		widgets = append(widgets, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return widgets, nil
}

// DeleteLayout removes a layout, its widgets and its history.
func (s *Store) DeleteLayout(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after Commit

	for _, q := range []string{
		"DELETE FROM widgets WHERE layout = ?",
		"DELETE FROM layout_revisions WHERE layout = ?",
		"DELETE FROM layouts WHERE name = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, name); err != nil {
			return fmt.Errorf("storage: cannot delete layout %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit delete: %w", err)
	}
	return nil
}

// ListLayouts returns every stored layout, sorted by name.
func (s *Store) ListLayouts(ctx context.Context) ([]LayoutInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT l.name, l.revision, l.updated_at, COUNT(w.id)
		 FROM layouts l
		 LEFT JOIN widgets w ON w.layout = l.name
		 GROUP BY l.name
		 ORDER BY l.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query layouts: %w", err)
	}
	defer rows.Close()

	var infos []LayoutInfo
	for rows.Next() {
		var info LayoutInfo
		var updatedAt any
		if err := rows.Scan(&info.Name, &info.Revision, &updatedAt, &info.Widgets); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		info.UpdatedAt = parseTime(updatedAt)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return infos, nil
}

// History retrieves the most recent revisions of a layout, newest first.
func (s *Store) History(ctx context.Context, name string, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, layout, revision, widgets, created_at
		 FROM layout_revisions
		 WHERE layout = ?
		 ORDER BY revision DESC
		 LIMIT ?`,
		name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query revisions: %w", err)
	}
	defer rows.Close()

	var revisions []Revision
	for rows.Next() {
		var r Revision
		var snapshot string
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Layout, &r.Revision, &snapshot, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(snapshot), &r.Widgets); err != nil {
			return nil, fmt.Errorf("storage: cannot decode revision %d: %w", r.Revision, err)
		}
		r.CreatedAt = parseTime(createdAt)
		revisions = append(revisions, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return revisions, nil
}

// LoadRevision returns the widgets of one saved revision.
// Returns nil, nil if the revision does not exist.
func (s *Store) LoadRevision(ctx context.Context, name string, revision int64) ([]core.Widget, error) {
	var snapshot string
	err := s.db.QueryRowContext(ctx,
		"SELECT widgets FROM layout_revisions WHERE layout = ? AND revision = ?",
		name, revision,
	).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query revision: %w", err)
	}

	widgets := []core.Widget{}
	if err := json.Unmarshal([]byte(snapshot), &widgets); err != nil {
		return nil, fmt.Errorf("storage: cannot decode revision %d: %w", revision, err)
	}
	return widgets, nil
}

// PruneHistory keeps only the newest keep revisions of a layout.
func (s *Store) PruneHistory(ctx context.Context, name string, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM layout_revisions
		 WHERE layout = ? AND id NOT IN (
			SELECT id FROM layout_revisions WHERE layout = ? ORDER BY revision DESC LIMIT ?
		 )`,
		name, name, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot prune history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count pruned rows: %w", err)
	}
	return n, nil
}

func encodeSettings(s core.Settings) (sql.NullString, error) {
	if s == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeSettings(v sql.NullString) (core.Settings, error) {
	if !v.Valid || v.String == "" || v.String == "null" {
		return nil, nil
	}
	var s core.Settings
	if err := json.Unmarshal([]byte(v.String), &s); err != nil {
		return nil, err
	}
	return s, nil
}

// parseTime handles both time.Time and string datetime values.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
