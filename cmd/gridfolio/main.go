// gridfolio is a snap-to-grid widget board served over HTTP, SSH or in the
// local terminal.
//
// Usage:
//
//	gridfolio serve              - Start the HTTP API
//	gridfolio ssh                - Start the SSH board server
//	gridfolio board              - Edit a layout in this terminal
//	gridfolio kinds              - List the widget kinds
//	gridfolio layout <command>   - Inspect and edit stored layouts
//
// Global flags:
//
//	--config <path>  - Config file (YAML, or TOML when it ends in .toml)
//	--db <path>      - SQLite database path (default: ~/.gridfolio/layouts.db)
//	--layout <name>  - Layout to work on (default: default)
//	--verbose        - Debug logging
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridfolio/internal/board"
	"github.com/vovakirdan/gridfolio/internal/config"
	"github.com/vovakirdan/gridfolio/internal/core"
	"github.com/vovakirdan/gridfolio/internal/grid"
	"github.com/vovakirdan/gridfolio/internal/storage"

	// Import kinds to register them
	_ "github.com/vovakirdan/gridfolio/internal/kinds"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// app holds the global flags and the configuration resolved from them.
type app struct {
	configPath string
	dbPath     string
	layout     string
	driver     string
	verbose    bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "gridfolio",
		Short: "Gridfolio - a snap-to-grid widget board",
		Long: `Gridfolio arranges portfolio widgets on a snap-to-grid board. Widgets
are dragged, resized, swapped and autosorted without ever overlapping.

Available commands:
  serve    - Start the HTTP API used by the web front-end
  ssh      - Serve the terminal board over SSH
  board    - Edit a layout in this terminal
  kinds    - Show all widget kinds
  layout   - Show, sort, reset, export and import stored layouts

Examples:
  gridfolio serve --addr :8080
  gridfolio board --layout work
  gridfolio layout show
  gridfolio layout export > layout.json`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (YAML or TOML)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "Path to the layout database (overrides storage.db_path)")
	root.PersistentFlags().StringVar(&a.layout, "layout", "", "Layout name (overrides storage.layout)")
	root.PersistentFlags().StringVar(&a.driver, "driver", "", "Storage driver: sqlite, redis or memory")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newSSHCmd(a))
	root.AddCommand(newBoardCmd(a))
	root.AddCommand(newKindsCmd())
	root.AddCommand(newLayoutCmd(a))
	return root
}

// setup attaches the logger to the command context and loads the config.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level := log.InfoLevel
	if a.verbose {
		level = log.DebugLevel
	}
	logger := newLogger(cmd.ErrOrStderr(), level)
	cmd.SetContext(withLogger(cmd.Context(), logger))

	cfg, err := config.Load(a.configPath)
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		return err
	}
	if a.dbPath != "" {
		cfg.Storage.DBPath = a.dbPath
	}
	if a.layout != "" {
		cfg.Storage.Layout = a.layout
	}
	if a.driver != "" {
		cfg.Storage.Driver = a.driver
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		return err
	}
	a.cfg = cfg
	logger.Debug("configuration loaded", "driver", cfg.Storage.Driver, "layout", cfg.Storage.Layout)
	return nil
}

// openBackend opens the configured storage backend.
func (a *app) openBackend(ctx context.Context) (storage.Backend, error) {
	backend, err := storage.OpenBackend(ctx, a.cfg.Storage)
	if err != nil {
		loggerFromContext(ctx).Error("cannot open storage", "driver", a.cfg.Storage.Driver, "err", err)
		return nil, err
	}
	return backend, nil
}

// openLayout restores the configured layout from backend onto a grid bound
// to vp. A missing layout starts from the default one.
func (a *app) openLayout(ctx context.Context, backend storage.Backend, vp core.Viewport) (*board.Store, error) {
	store := board.New(
		grid.New(a.cfg.Grid, vp),
		board.WithPersister(backend, a.cfg.Storage.Layout),
		board.WithSearchRadius(a.cfg.Interaction.SearchRadius),
		board.WithLogger(loggerFromContext(ctx)),
	)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
