package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/vovakirdan/gridfolio/internal/config"
	"github.com/vovakirdan/gridfolio/internal/core"
)

// Backend persists named widget layouts.
// LoadLayout returns nil, nil if the layout doesn't exist.
type Backend interface {
	SaveLayout(ctx context.Context, name string, widgets []core.Widget) error
	LoadLayout(ctx context.Context, name string) ([]core.Widget, error)
	DeleteLayout(ctx context.Context, name string) error
	io.Closer
}

var (
	_ Backend = (*Store)(nil)
	_ Backend = (*RedisStore)(nil)
	_ Backend = (*MemoryStore)(nil)
)

// OpenBackend opens the backend selected by cfg.Driver.
func OpenBackend(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return Open(cfg.DBPath)
	case config.DriverRedis:
		return OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionTTL,
		})
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
