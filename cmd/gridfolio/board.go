package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/gridfolio/internal/core"
	"github.com/vovakirdan/gridfolio/internal/interact"
	"github.com/vovakirdan/gridfolio/internal/platform/tui"
	"github.com/vovakirdan/gridfolio/internal/storage"
)

func newBoardCmd(a *app) *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Edit a layout in this terminal",
		Long: `Open the layout selected with --layout as a terminal board.

One terminal column is board.cell_width pixels and one row is
board.cell_height pixels, so a narrow terminal gets the mobile grid.

Controls:
  Mouse drag         - Move a widget (drag its border to resize)
  Tab/Shift+Tab      - Select next/previous widget
  Arrows, h/j/k      - Move the selection by one cell
  Shift+Arrows       - Resize the selection by one cell
  a                  - Autosort
  l / p / e          - Lock, pin, expand
  n / c              - Add a note or a clock
  x                  - Remove the selection
  r                  - Reset to the default layout
  Q/Ctrl+C           - Quit

Examples:
  gridfolio board
  gridfolio board --layout work
  gridfolio board --pick              # Choose among the stored layouts
  gridfolio board --driver memory     # Scratch board, nothing is saved`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pick {
				ok, err := a.pickLayout(cmd.Context())
				if err != nil || !ok {
					return err
				}
			}
			return a.runBoard(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "Pick the layout from the stored ones (sqlite only)")
	return cmd
}

// pickLayout lets the user choose the layout to open. It returns false when
// the user quit the picker.
func (a *app) pickLayout(ctx context.Context) (bool, error) {
	var picked string
	err := a.withSQLite(ctx, func(db *storage.Store) error {
		layouts, err := db.ListLayouts(ctx)
		if err != nil {
			return err
		}
		name, ok, err := tui.RunPicker(layouts, a.cfg.Storage.Layout)
		if ok {
			picked = name
		}
		return err
	})
	if err != nil || picked == "" {
		return false, err
	}
	a.cfg.Storage.Layout = picked
	return true, nil
}

func (a *app) runBoard(ctx context.Context) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("board needs an interactive terminal")
	}

	// Get terminal size early so the layout is restored on the right grid
	mapper := tui.MouseMapper{CellW: a.cfg.Board.CellWidth, CellH: a.cfg.Board.CellHeight}
	vp := core.DefaultViewport()
	if w, h, err := term.GetSize(fd); err == nil {
		if size := tui.BoardViewport(mapper, w, h); size.Valid() {
			vp = size
		}
	}

	// Anything below an error would draw over the alternate screen
	logger := loggerFromContext(ctx).With()
	if !a.verbose {
		logger.SetLevel(log.ErrorLevel)
	}
	ctx = withLogger(ctx, logger)

	backend, err := a.openBackend(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	store, err := a.openLayout(ctx, backend, vp)
	if err != nil {
		logger.Error("cannot open layout", "layout", a.cfg.Storage.Layout, "err", err)
		return err
	}

	engine := interact.New(store, a.cfg.Interaction, interact.WithLogger(logger))
	err = tui.Run(engine, a.cfg.Board)
	engine.Close()
	store.Wait()
	return err
}
