package cache

import (
	"context"
	"fmt"

	"github.com/jaennil/guide_helper/backend/tileengine/pkg/config"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
)

// NewTileCache builds the disk tier selected by cfg. It returns nil when the
// tier is disabled.
func NewTileCache(ctx context.Context, cfg config.Disk, redisCfg config.Redis, l logger.Logger) (*DiskCache, error) {
	if !cfg.Enabled {
		l.Info("disk cache disabled")
		return nil, nil
	}

	var (
		store TileCache
		err   error
	)

	switch cfg.Backend {
	case "file", "":
		l.Info("using filesystem disk cache", "dir", cfg.Dir)
		store, err = NewFilesystemCache(cfg.Dir)
	case "sqlite":
		l.Info("using sqlite disk cache", "path", cfg.SQLitePath)
		store, err = NewSQLiteCache(cfg.SQLitePath, l)
	case "redis":
		l.Info("using redis disk cache", "addr", redisCfg.Addr, "ttl", redisCfg.TTL)
		store, err = NewRedisCache(ctx, RedisConfig{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
			TTL:      redisCfg.TTL,
		})
	case "memory":
		l.Info("using in-process disk cache")
		store = NewMapCache()
	default:
		return nil, fmt.Errorf("unknown disk cache backend: %s (supported: file, sqlite, redis, memory)", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s disk cache: %w", cfg.Backend, err)
	}

	return NewDiskCache(store, l), nil
}
