package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridfolio/internal/board"
	"github.com/vovakirdan/gridfolio/internal/config"
	"github.com/vovakirdan/gridfolio/internal/core"
	"github.com/vovakirdan/gridfolio/internal/storage"
)

func newLayoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect and edit stored layouts",
		Long: `Work on the layout selected with --layout without opening a board.

A layout that does not exist yet starts from the default layout.
Layouts are placed on a 1440x900 desktop viewport.

Examples:
  gridfolio layout show
  gridfolio layout autosort --layout work
  gridfolio layout export backup.json
  gridfolio layout import backup.json --layout restored
  gridfolio layout history
  gridfolio layout restore 12`,
	}

	cmd.AddCommand(
		newLayoutShowCmd(a),
		newLayoutListCmd(a),
		newLayoutAutosortCmd(a),
		newLayoutResetCmd(a),
		newLayoutExportCmd(a),
		newLayoutImportCmd(a),
		newLayoutDeleteCmd(a),
		newLayoutHistoryCmd(a),
		newLayoutRestoreCmd(a),
		newLayoutPruneCmd(a),
	)
	return cmd
}

func newLayoutShowCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the widgets of a layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLayout(cmd.Context(), func(store *board.Store) error {
				if asJSON {
					return store.Export(cmd.OutOrStdout())
				}
				printLayout(cmd.OutOrStdout(), store.Layout(), store.Snapshot())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the layout as JSON")
	return cmd
}

func newLayoutListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored layouts (sqlite only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSQLite(cmd.Context(), func(db *storage.Store) error {
				infos, err := db.ListLayouts(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(infos) == 0 {
					fmt.Fprintln(w, "No layouts stored yet.")
					return nil
				}

				maxNameLen := 4 // "Name" header
				for _, info := range infos {
					maxNameLen = max(maxNameLen, len(info.Name))
				}
				fmt.Fprintf(w, "  %-*s  %-8s  %-7s  %s\n", maxNameLen, "Name", "Revision", "Widgets", "Updated")
				fmt.Fprintf(w, "  %-*s  %-8s  %-7s  %s\n", maxNameLen, "----", "--------", "-------", "-------")
				for _, info := range infos {
					fmt.Fprintf(w, "  %-*s  %-8d  %-7d  %s\n",
						maxNameLen, info.Name, info.Revision, info.Widgets, info.UpdatedAt.Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}
}

func newLayoutAutosortCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "autosort",
		Short: "Pack the movable widgets toward the top-left",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLayout(cmd.Context(), func(store *board.Store) error {
				placements := store.Autosort()
				ws := store.Snapshot()
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Autosorted %q:\n\n", store.Layout())
				for _, p := range placements {
					i := core.IndexOf(ws, p.ID)
					if i < 0 {
						continue
					}
					fmt.Fprintf(w, "  %-16s  %-9s  (%.0f,%.0f)\n", p.ID, p.Reason, ws[i].X, ws[i].Y)
				}
				return nil
			})
		},
	}
}

func newLayoutResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace a layout with the default layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLayout(cmd.Context(), func(store *board.Store) error {
				store.ResetDefault()
				cmd.Printf("Reset %q to the default layout (%d widgets).\n", store.Layout(), len(store.Snapshot()))
				return nil
			})
		},
	}
}

func newLayoutExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write a layout as JSON to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLayout(cmd.Context(), func(store *board.Store) error {
				if len(args) == 0 || args[0] == "-" {
					return store.Export(cmd.OutOrStdout())
				}

				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("cannot create %s: %w", args[0], err)
				}
				if err := store.Export(f); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
}

func newLayoutImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace a layout with a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("cannot open %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}

			return a.withLayout(cmd.Context(), func(store *board.Store) error {
				if err := store.Import(r); err != nil {
					return err
				}
				cmd.Printf("Imported %d widgets into %q.\n", len(store.Snapshot()), store.Layout())
				return nil
			})
		},
	}
}

func newLayoutDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete a stored layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			backend, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			if err := backend.DeleteLayout(ctx, a.cfg.Storage.Layout); err != nil {
				return err
			}
			cmd.Printf("Deleted %q.\n", a.cfg.Storage.Layout)
			return nil
		},
	}
}

func newLayoutHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the saved revisions of a layout (sqlite only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSQLite(cmd.Context(), func(db *storage.Store) error {
				name := a.cfg.Storage.Layout
				revisions, err := db.History(cmd.Context(), name, limit)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "History - %s\n\n", name)
				if len(revisions) == 0 {
					fmt.Fprintln(w, "No revisions saved yet.")
					return nil
				}

				fmt.Fprintf(w, "  %-8s  %-7s  %s\n", "Revision", "Widgets", "Date")
				fmt.Fprintf(w, "  %-8s  %-7s  %s\n", "--------", "-------", "----")
				for _, r := range revisions {
					fmt.Fprintf(w, "  %-8d  %-7d  %s\n", r.Revision, len(r.Widgets), r.CreatedAt.Format("2006-01-02 15:04:05"))
				}
				fmt.Fprintln(w)
				fmt.Fprintf(w, "Run 'gridfolio layout restore <revision> --layout %s' to go back.\n", name)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of revisions to show")
	return cmd
}

func newLayoutRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <revision>",
		Short: "Bring back a saved revision of a layout (sqlite only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rev, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || rev < 1 {
				return fmt.Errorf("invalid revision %q", args[0])
			}

			ctx := cmd.Context()
			return a.withSQLite(ctx, func(db *storage.Store) error {
				name := a.cfg.Storage.Layout
				widgets, err := db.LoadRevision(ctx, name, rev)
				if err != nil {
					return err
				}
				if widgets == nil {
					return fmt.Errorf("layout %q has no revision %d", name, rev)
				}

				store, err := a.openLayout(ctx, db, core.DefaultViewport())
				if err != nil {
					return err
				}
				defer store.Wait()
				if err := store.Commit(widgets); err != nil {
					return err
				}
				cmd.Printf("Restored %q to revision %d (%d widgets).\n", name, rev, len(widgets))
				return nil
			})
		},
	}
}

func newLayoutPruneCmd(a *app) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop old revisions of a layout (sqlite only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if keep < 1 {
				return fmt.Errorf("--keep must be at least 1, got %d", keep)
			}
			return a.withSQLite(cmd.Context(), func(db *storage.Store) error {
				n, err := db.PruneHistory(cmd.Context(), a.cfg.Storage.Layout, keep)
				if err != nil {
					return err
				}
				cmd.Printf("Dropped %d revisions of %q.\n", n, a.cfg.Storage.Layout)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 20, "Number of newest revisions to keep")
	return cmd
}

// withLayout restores the configured layout, runs fn and waits for the
// resulting saves before closing the backend.
func (a *app) withLayout(ctx context.Context, fn func(*board.Store) error) error {
	backend, err := a.openBackend(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	store, err := a.openLayout(ctx, backend, core.DefaultViewport())
	if err != nil {
		return err
	}
	err = fn(store)
	store.Wait()
	return err
}

// withSQLite runs fn on the SQLite store. Revision history only exists in
// the sqlite backend.
func (a *app) withSQLite(ctx context.Context, fn func(*storage.Store) error) error {
	if a.cfg.Storage.Driver != config.DriverSQLite {
		return fmt.Errorf("layout history needs the %s driver, not %q", config.DriverSQLite, a.cfg.Storage.Driver)
	}
	backend, err := a.openBackend(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	db, ok := backend.(*storage.Store)
	if !ok {
		return fmt.Errorf("unexpected %T backend for the %s driver", backend, config.DriverSQLite)
	}
	return fn(db)
}

func printLayout(w io.Writer, name string, ws []core.Widget) {
	fmt.Fprintf(w, "Layout %q (%d widgets)\n\n", name, len(ws))
	if len(ws) == 0 {
		return
	}

	maxIDLen := 2 // "ID" header
	for _, wd := range ws {
		maxIDLen = max(maxIDLen, len(wd.ID))
	}

	fmt.Fprintf(w, "  %-*s  %-14s  %-11s  %-9s  %s\n", maxIDLen, "ID", "Type", "Position", "Size", "Flags")
	fmt.Fprintf(w, "  %-*s  %-14s  %-11s  %-9s  %s\n", maxIDLen, "--", "----", "--------", "----", "-----")
	for _, wd := range ws {
		var flags []string
		if wd.Locked {
			flags = append(flags, "locked")
		}
		if wd.Pinned {
			flags = append(flags, "pinned")
		}
		fmt.Fprintf(w, "  %-*s  %-14s  %-11s  %-9s  %s\n",
			maxIDLen, wd.ID, wd.Type,
			fmt.Sprintf("%.0f,%.0f", wd.X, wd.Y),
			fmt.Sprintf("%.0fx%.0f", wd.Width, wd.Height),
			strings.Join(flags, ","))
	}
}
