package store

import (
	"context"
	"fmt"

	"github.com/clientlinkhq/clientlink/internal/config"
	"github.com/clientlinkhq/clientlink/internal/store/core"
	"github.com/clientlinkhq/clientlink/internal/store/memory"
	"github.com/clientlinkhq/clientlink/internal/store/pg"
)

// Open builds the repository selected by the storage config block.
func Open(ctx context.Context, cfg *config.Config) (core.Repository, error) {
	switch cfg.Storage.Driver {
	case "", "postgres":
		return pg.New(ctx, cfg.Storage.DSN, pg.PoolConfig{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
