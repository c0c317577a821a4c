// Package config provides YAML (or TOML) configuration loading for the grid
// layout engine, its storage backends and the front-end servers.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the complete gridfolio configuration.
type Config struct {
	Grid        GridConfig        `yaml:"grid" toml:"grid"`
	Interaction InteractionConfig `yaml:"interaction" toml:"interaction"`
	Storage     StorageConfig     `yaml:"storage" toml:"storage"`
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Board       BoardConfig       `yaml:"board" toml:"board"`
}

// GridConfig holds the fixed grid constants shared by every layout operation.
type GridConfig struct {
	GridSize           float64 `yaml:"grid_size" toml:"grid_size"`
	OffsetX            float64 `yaml:"offset_x" toml:"offset_x"`
	OffsetY            float64 `yaml:"offset_y" toml:"offset_y"`
	Padding            float64 `yaml:"padding" toml:"padding"`
	UsableWidth        int     `yaml:"usable_width" toml:"usable_width"`
	UsableHeight       int     `yaml:"usable_height" toml:"usable_height"`
	MobileUsableWidth  int     `yaml:"mobile_usable_width" toml:"mobile_usable_width"`
	MobileUsableHeight int     `yaml:"mobile_usable_height" toml:"mobile_usable_height"`
	MobileBreakpoint   float64 `yaml:"mobile_breakpoint" toml:"mobile_breakpoint"`
}

// InteractionConfig tunes the drag/resize state machine.
type InteractionConfig struct {
	DragThreshold float64       `yaml:"drag_threshold" toml:"drag_threshold"`
	SwapDelay     time.Duration `yaml:"swap_delay" toml:"swap_delay"`
	RejectCue     time.Duration `yaml:"reject_cue" toml:"reject_cue"`
	SearchRadius  int           `yaml:"search_radius" toml:"search_radius"`
}

// StorageConfig selects and configures the layout persistence backend.
type StorageConfig struct {
	Driver        string        `yaml:"driver" toml:"driver"` // "sqlite", "redis" or "memory"
	DBPath        string        `yaml:"db_path" toml:"db_path"`
	Layout        string        `yaml:"layout" toml:"layout"` // Named layout used by CLI and board
	RedisAddr     string        `yaml:"redis_addr" toml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" toml:"redis_password"`
	RedisDB       int           `yaml:"redis_db" toml:"redis_db"`
	SessionTTL    time.Duration `yaml:"session_ttl" toml:"session_ttl"`
}

// ServerConfig configures the HTTP API and the SSH board server.
type ServerConfig struct {
	HTTPAddr    string        `yaml:"http_addr" toml:"http_addr"`
	SSHAddr     string        `yaml:"ssh_addr" toml:"ssh_addr"`
	HostKeyPath string        `yaml:"host_key_path" toml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	CookieName  string        `yaml:"cookie_name" toml:"cookie_name"`
}

// BoardConfig maps terminal cells to layout pixels for the terminal board.
type BoardConfig struct {
	CellWidth  float64 `yaml:"cell_width" toml:"cell_width"`
	CellHeight float64 `yaml:"cell_height" toml:"cell_height"`
}

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Validate checks the invariants the layout math relies on.
func (c Config) Validate() error {
	var errs []error
	g := c.Grid
	if g.GridSize <= 0 {
		errs = append(errs, errors.New("grid.grid_size must be positive"))
	}
	if g.OffsetX < 0 || g.OffsetX >= g.GridSize {
		errs = append(errs, fmt.Errorf("grid.offset_x must be in [0, grid_size), got %v", g.OffsetX))
	}
	if g.OffsetY < 0 || g.OffsetY >= g.GridSize {
		errs = append(errs, fmt.Errorf("grid.offset_y must be in [0, grid_size), got %v", g.OffsetY))
	}
	if g.Padding < 0 || 2*g.Padding >= g.GridSize {
		errs = append(errs, fmt.Errorf("grid.padding must be in [0, grid_size/2), got %v", g.Padding))
	}
	if g.UsableWidth < 1 || g.UsableHeight < 1 {
		errs = append(errs, errors.New("grid.usable_width and grid.usable_height must be at least 1"))
	}
	if g.MobileUsableWidth < 1 || g.MobileUsableHeight < 1 {
		errs = append(errs, errors.New("grid.mobile_usable_width and grid.mobile_usable_height must be at least 1"))
	}
	if c.Interaction.SearchRadius < 1 {
		errs = append(errs, errors.New("interaction.search_radius must be at least 1"))
	}
	if c.Interaction.DragThreshold < 0 {
		errs = append(errs, errors.New("interaction.drag_threshold must not be negative"))
	}
	switch c.Storage.Driver {
	case DriverSQLite, DriverRedis, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of sqlite, redis, memory", c.Storage.Driver))
	}
	if c.Board.CellWidth <= 0 || c.Board.CellHeight <= 0 {
		errs = append(errs, errors.New("board.cell_width and board.cell_height must be positive"))
	}
	return errors.Join(errs...)
}
