package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/gridfolio.yaml
var defaultYAML []byte

// Default returns the built-in configuration. It matches the embedded
// defaults/gridfolio.yaml and is used when that file cannot be parsed.
func Default() Config {
	return Config{
		Grid: GridConfig{
			GridSize:           80,
			OffsetX:            20,
			OffsetY:            20,
			Padding:            8,
			UsableWidth:        16,
			UsableHeight:       10,
			MobileUsableWidth:  5,
			MobileUsableHeight: 24,
			MobileBreakpoint:   768,
		},
		Interaction: InteractionConfig{
			DragThreshold: 5,
			SwapDelay:     time.Second,
			RejectCue:     300 * time.Millisecond,
			SearchRadius:  20,
		},
		Storage: StorageConfig{
			Driver:     DriverSQLite,
			DBPath:     "~/.gridfolio/layouts.db",
			Layout:     "default",
			RedisAddr:  "localhost:6379",
			SessionTTL: 30 * 24 * time.Hour,
		},
		Server: ServerConfig{
			HTTPAddr:    ":8080",
			SSHAddr:     ":23235",
			IdleTimeout: 30 * time.Minute,
			CookieName:  "gridfolio_session",
		},
		Board: BoardConfig{
			CellWidth:  10,
			CellHeight: 20,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
