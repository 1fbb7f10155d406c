package cache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type SQLiteCache struct {
	db     *sql.DB
	logger logger.Logger
}

func NewSQLiteCache(path string, l logger.Logger) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}

	c := &SQLiteCache{
		db:     db,
		logger: l,
	}

	err = c.runMigrations()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite cache: %w", err)
	}

	l.Info("sqlite cache initialized", "path", path)

	return c, nil
}

func (c *SQLiteCache) runMigrations() error {
	goose.SetBaseFS(migrations)

	err := goose.SetDialect("sqlite3")
	if err != nil {
		return err
	}

	return goose.Up(c.db, "migrations")
}

var _ TileCache = (*SQLiteCache)(nil)

func (c *SQLiteCache) Get(ctx context.Context, key string) (TileCacheValue, bool, error) {
	c.logger.Debug("sqlite cache get", "key", key)

	query := `SELECT tile_data
	FROM tile_cache
	WHERE key = ?`

	var tileData []byte
	err := c.db.QueryRowContext(ctx, query, key).Scan(&tileData)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		c.logger.Error("sqlite cache get failed", "key", key, "error", err)
		return nil, false, err
	}

	return tileData, true, nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, v TileCacheValue) error {
	c.logger.Debug("sqlite cache set", "key", key, "bytes", len(v))

	query := `INSERT INTO tile_cache (key, tile_data, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET tile_data = excluded.tile_data, updated_at = excluded.updated_at`

	_, err := c.db.ExecContext(ctx, query, key, []byte(v))
	if err != nil {
		c.logger.Error("sqlite cache set failed", "key", key, "error", err)
		return err
	}

	return nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
